package service

import (
	"context"

	"github.com/healthylinkx/chatbot/internal/agent"
	"github.com/healthylinkx/chatbot/internal/errs"
	"github.com/healthylinkx/chatbot/internal/llm"
)

// ChatRequest is the invocation boundary input. Nil parameters fall back to
// the configured defaults.
type ChatRequest struct {
	Messages    llm.Conversation `json:"messages"`
	MaxTokens   *int64           `json:"max_tokens,omitempty"`
	Temperature *float64         `json:"temperature,omitempty"`
}

type ChatResponse struct {
	Answer       string           `json:"answer"`
	Conversation llm.Conversation `json:"conversation"`
}

// ChatService is the boundary between transports and the orchestrator.
type ChatService interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

type chatService struct {
	agent    agent.Agent
	defaults llm.GenerationParams
	handler  ErrorHandler
}

func NewChatService(a agent.Agent, defaults llm.GenerationParams) ChatService {
	return chatService{
		agent:    a,
		defaults: defaults,
		handler:  NewDefaultErrorHandler(),
	}
}

// Chat runs one conversation. Errors are logged here with full detail; the
// returned error keeps its errs.Kind so the transport can pick a status.
func (s chatService) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	params := s.defaults
	if req.MaxTokens != nil {
		params.MaxTokens = *req.MaxTokens
	}
	if req.Temperature != nil {
		params.Temperature = *req.Temperature
	}

	var result *agent.Result
	err := SafeExecute(func() error {
		var runErr error
		result, runErr = s.agent.Execute(ctx, agent.Request{Messages: req.Messages, Params: params})
		return runErr
	})
	if err != nil {
		if result != nil {
			err = errs.Wrap(err, errs.KindOf(err), "chat failed").WithContext("turns", len(result.Conversation))
		}
		s.handler.Handle(err)
		return nil, err
	}

	return &ChatResponse{Answer: result.Answer, Conversation: result.Conversation}, nil
}
