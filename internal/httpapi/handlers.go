package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthylinkx/chatbot/internal/errs"
	"github.com/healthylinkx/chatbot/internal/service"
	"github.com/healthylinkx/chatbot/pkg/log"
)

const (
	msgInvalidRequest = "invalid request"
	msgInternalError  = "An error occurred processing your request"
)

func (s *Server) handleChat(c *gin.Context) {
	var req service.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Rejecting chat request body: %v", err)
		writeError(c, http.StatusBadRequest, msgInvalidRequest)
		return
	}

	ctx := c.Request.Context()
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	resp, err := s.chat.Chat(ctx, req)
	if err != nil {
		// detail was logged by the service; callers only see a generic payload
		if errs.IsKind(err, errs.KindValidation) {
			writeError(c, http.StatusBadRequest, msgInvalidRequest)
			return
		}
		writeError(c, http.StatusInternalServerError, msgInternalError)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleHealth(c *gin.Context) {
	if s.health == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	st := s.health.Status()
	code := http.StatusOK
	status := "ok"
	if !st.Healthy {
		code = http.StatusServiceUnavailable
		status = "degraded"
	}
	c.JSON(code, gin.H{"status": status, "directory": st})
}

func writeError(c *gin.Context, code int, msg string) {
	c.AbortWithStatusJSON(code, gin.H{"error": msg})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("%s %s %d %s", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
