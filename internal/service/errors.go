package service

import (
	"errors"
	"fmt"

	"github.com/healthylinkx/chatbot/internal/errs"
	"github.com/healthylinkx/chatbot/pkg/log"
)

type ErrorHandler interface {
	Handle(err error) bool
}

type DefaultErrorHandler struct{}

func NewDefaultErrorHandler() ErrorHandler {
	return &DefaultErrorHandler{}
}

// Handle logs err with an operator hint. It reports whether err carried a
// known kind.
func (h *DefaultErrorHandler) Handle(err error) bool {
	var e *errs.Error
	if !errors.As(err, &e) {
		log.Error("Unknown Error: %v", err)
		return false
	}

	if e.Kind == errs.KindValidation || e.Kind == errs.KindCancelled {
		log.Warn("Error Detail: %v\n advice: %s", err, errs.Advice(e.Kind))
		return true
	}
	log.Error("Error Detail: %v\n advice: %s", err, errs.Advice(e.Kind))
	return true
}

// SafeExecute runs fn and converts a panic into a collaborator error.
func SafeExecute(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errs.New(errs.KindCollaborator, fmt.Sprintf("runtime error: %v", r))
		}
	}()

	return fn()
}
