package tools

import (
	"context"

	"github.com/healthylinkx/chatbot/internal/directory"
	"github.com/healthylinkx/chatbot/internal/llm"
)

// Status is the outcome class of a tool execution.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusRejected Status = "rejected"
	StatusFailed   Status = "failed"
)

// ErrorDetail explains a rejected or failed execution.
type ErrorDetail struct {
	Message string `json:"message"`
	Query   string `json:"query,omitempty"`
}

// Result is the normalized output of a tool. Callers branch on Status;
// Execute never reports insufficient arguments or store failures as errors.
type Result struct {
	Status  Status             `json:"status"`
	Records []directory.Doctor `json:"records,omitempty"`
	Error   *ErrorDetail       `json:"error,omitempty"`
	// Query is the rendered filter, kept for logs.
	Query string `json:"-"`
}

// Tool defines the interface for tools that can be called by the model
type Tool interface {
	// Name returns the unique name of the tool
	Name() string

	// Description returns a description of what the tool does
	Description() string

	// Spec returns the declaration sent to tool-capable model families
	Spec() llm.ToolSpec

	// Execute runs the tool with the given arguments
	Execute(ctx context.Context, args map[string]string) (Result, error)
}
