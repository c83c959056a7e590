package llm

import (
	"encoding/json"
	"fmt"
)

// Role identifies the author of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message is one conversation turn.
//
// Content is model-agnostic text. Tool calls and tool results are stored as
// their JSON serialization.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the ordered, append-only history of one invocation.
type Conversation []Message

// Clone returns a copy that shares no backing array with c.
func (c Conversation) Clone() Conversation {
	out := make(Conversation, len(c))
	copy(out, c)
	return out
}

// Last returns the final turn. It panics on an empty conversation.
func (c Conversation) Last() Message {
	return c[len(c)-1]
}

// GenerationParams controls sampling for one model call.
type GenerationParams struct {
	MaxTokens   int64
	Temperature float64
}

func (p GenerationParams) Validate() error {
	if p.MaxTokens < 1 {
		return fmt.Errorf("max tokens must be greater than 0")
	}
	if p.Temperature < 0 || p.Temperature > 1 {
		return fmt.Errorf("temperature must be between 0 and 1")
	}
	return nil
}

// Request is the payload sent to the model endpoint. Callers treat it as
// opaque; only the adapter knows the body layout.
type Request struct {
	ModelID     string
	ContentType string
	Accept      string
	Body        []byte
}

// ToolSpec declares a capability the model may call.
type ToolSpec struct {
	Name        string
	Description string
	// Properties is the JSON Schema "properties" object of the input.
	Properties map[string]any
	Required   []string
}

// OutcomeKind tags the active variant of an Outcome.
type OutcomeKind int

const (
	OutcomeTerminal OutcomeKind = iota
	OutcomeToolCall
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeTerminal:
		return "terminal"
	case OutcomeToolCall:
		return "tool_call"
	default:
		return "unknown"
	}
}

// ToolCall is the model's request to run a declared tool.
type ToolCall struct {
	ID        string
	Name      string
	Arguments map[string]string
}

// Outcome is the normalized result of one model call. Text is set for
// OutcomeTerminal, Call for OutcomeToolCall.
type Outcome struct {
	Kind OutcomeKind
	Text string
	Call *ToolCall
}

func Terminal(text string) Outcome {
	return Outcome{Kind: OutcomeTerminal, Text: text}
}

func NewToolCall(id, name string, args map[string]string) Outcome {
	return Outcome{Kind: OutcomeToolCall, Call: &ToolCall{ID: id, Name: name, Arguments: args}}
}

// toolUseBlock mirrors the tool_use content block the model produced so the
// assistant turn records what was asked for.
type toolUseBlock struct {
	Type  string            `json:"type"`
	ID    string            `json:"id"`
	Name  string            `json:"name"`
	Input map[string]string `json:"input"`
}

// Serialize renders the outcome as assistant turn content: the plain text for
// a terminal outcome, the JSON tool_use block for a tool call.
func (o Outcome) Serialize() (string, error) {
	switch o.Kind {
	case OutcomeTerminal:
		return o.Text, nil
	case OutcomeToolCall:
		if o.Call == nil {
			return "", fmt.Errorf("tool call outcome without call")
		}
		input := o.Call.Arguments
		if input == nil {
			input = map[string]string{}
		}
		b, err := json.Marshal(toolUseBlock{
			Type:  "tool_use",
			ID:    o.Call.ID,
			Name:  o.Call.Name,
			Input: input,
		})
		if err != nil {
			return "", fmt.Errorf("marshal tool call: %w", err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("unknown outcome kind %d", o.Kind)
	}
}
