package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/healthylinkx/chatbot/internal/health"
	"github.com/healthylinkx/chatbot/internal/service"
)

type healthReporter interface {
	Status() health.Status
}

type Server struct {
	chat   service.ChatService
	health healthReporter

	requestTimeout time.Duration

	engine *gin.Engine
	server *http.Server
}

type Option func(*Server)

func WithHealth(h healthReporter) Option {
	return func(s *Server) {
		s.health = h
	}
}

// WithRequestTimeout bounds one /chat invocation, model retries included.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

func NewServer(chat service.ChatService, opts ...Option) *Server {
	s := &Server{
		chat:   chat,
		engine: gin.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.engine.Use(gin.Recovery(), requestLogger())
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) routes() {
	s.engine.POST("/chat", s.handleChat)
	s.engine.GET("/healthz", s.handleHealth)
}
