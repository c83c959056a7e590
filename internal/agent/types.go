package agent

import (
	"github.com/healthylinkx/chatbot/internal/llm"
	"github.com/healthylinkx/chatbot/internal/tools"
)

// Request represents one conversation invocation
type Request struct {
	// Messages is the caller-supplied conversation. It is never mutated.
	Messages llm.Conversation

	// Params are the generation parameters for every model round
	Params llm.GenerationParams
}

// Result represents the result of a finished conversation
type Result struct {
	// Answer is the final assistant text
	Answer string

	// Conversation is the input conversation plus every appended turn
	Conversation llm.Conversation

	// ToolCalls contains a record of all tool calls made during execution
	ToolCalls []ToolCallRecord

	// Rounds is the number of model calls made
	Rounds int
}

// ToolCallRecord records a single tool call and its outcome
type ToolCallRecord struct {
	CallID    string
	ToolName  string
	Arguments map[string]string
	Status    tools.Status
}

// toolResultBlock is the user turn that answers a tool_use block.
type toolResultBlock struct {
	Type      string       `json:"type"`
	ToolUseID string       `json:"tool_use_id"`
	Status    tools.Status `json:"status"`
	Content   any          `json:"content"`
}
