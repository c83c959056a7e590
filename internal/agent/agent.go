package agent

import (
	"context"

	"github.com/healthylinkx/chatbot/internal/errs"
	"github.com/healthylinkx/chatbot/internal/llm"
	"github.com/healthylinkx/chatbot/internal/tools"
)

// DefaultMaxToolRounds caps tool round-trips per invocation.
const DefaultMaxToolRounds = 10

// ErrToolRoundsExceeded is returned when the model keeps requesting tools
// past the configured cap.
var ErrToolRoundsExceeded = errs.New(errs.KindCollaborator, "tool round limit exceeded")

// Agent runs a conversation to completion
type Agent interface {
	Execute(ctx context.Context, req Request) (*Result, error)
}

// ModelAdapter translates conversations to and from a model family's wire format.
// *llm.Adapter implements it.
type ModelAdapter interface {
	BuildRequest(conv llm.Conversation, params llm.GenerationParams) (llm.Request, error)
	ParseResponse(raw []byte) (llm.Outcome, error)
}

// ModelInvoker sends a request to the model endpoint. *llm.Invoker implements it.
type ModelInvoker interface {
	Invoke(ctx context.Context, req llm.Request) ([]byte, error)
}

// ToolDispatcher executes a named tool. *tools.Registry implements it.
type ToolDispatcher interface {
	Invoke(ctx context.Context, name string, args map[string]string) (tools.Result, error)
}

var (
	_ ModelAdapter   = (*llm.Adapter)(nil)
	_ ModelInvoker   = (*llm.Invoker)(nil)
	_ ToolDispatcher = (*tools.Registry)(nil)
	_ Agent          = (*Orchestrator)(nil)
)
