package llm

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// claudeRequestBody is the Bedrock InvokeModel body for Anthropic models.
// The model id travels outside the body.
type claudeRequestBody struct {
	AnthropicVersion string                   `json:"anthropic_version"`
	MaxTokens        int64                    `json:"max_tokens"`
	Temperature      float64                  `json:"temperature"`
	Messages         []anthropic.MessageParam `json:"messages"`
	System           string                   `json:"system,omitempty"`
	Tools            []anthropic.ToolParam    `json:"tools,omitempty"`
}

type claudeCodec struct {
	version string
	system  string
	tools   []anthropic.ToolParam
}

func newClaudeCodec(version, system string, specs []ToolSpec) claudeCodec {
	tools := make([]anthropic.ToolParam, 0, len(specs))
	for _, s := range specs {
		tools = append(tools, toToolParam(s))
	}
	return claudeCodec{version: version, system: system, tools: tools}
}

func toToolParam(s ToolSpec) anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        s.Name,
		Description: anthropic.String(s.Description),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: s.Properties,
			Required:   s.Required,
		},
	}
}

func (c claudeCodec) encode(conv Conversation, params GenerationParams) ([]byte, error) {
	msgs, err := toAPIMessages(conv)
	if err != nil {
		return nil, err
	}
	return json.Marshal(claudeRequestBody{
		AnthropicVersion: c.version,
		MaxTokens:        params.MaxTokens,
		Temperature:      params.Temperature,
		Messages:         msgs,
		System:           c.system,
		Tools:            c.tools,
	})
}

func toAPIMessages(conv Conversation) ([]anthropic.MessageParam, error) {
	out := make([]anthropic.MessageParam, 0, len(conv))
	for i, m := range conv {
		switch m.Role {
		case RoleUser:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		case RoleAssistant:
			out = append(out, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			return nil, fmt.Errorf("message[%d]: unknown role %q", i, m.Role)
		}
	}
	return out, nil
}

func (c claudeCodec) decode(raw []byte) (Outcome, error) {
	var resp anthropic.Message
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Outcome{}, fmt.Errorf("unmarshal claude response: %w", err)
	}
	if len(resp.Content) == 0 {
		return Outcome{}, fmt.Errorf("claude returned empty content")
	}

	if resp.StopReason == anthropic.StopReasonToolUse {
		// first tool_use block wins; a reasoning text block may precede it
		for _, block := range resp.Content {
			if block.Type != "tool_use" {
				continue
			}
			args, err := flattenArguments(block.Input)
			if err != nil {
				return Outcome{}, fmt.Errorf("tool %q input: %w", block.Name, err)
			}
			return NewToolCall(block.ID, block.Name, args), nil
		}
		return Outcome{}, fmt.Errorf("stop_reason tool_use without a tool_use block")
	}

	for _, block := range resp.Content {
		if block.Type == "text" {
			return Terminal(block.Text), nil
		}
	}
	return Outcome{}, fmt.Errorf("claude response has no text block")
}

// flattenArguments turns a tool input object into string arguments. Nulls
// are dropped; non-string scalars are formatted; nested values stay JSON.
func flattenArguments(input json.RawMessage) (map[string]string, error) {
	args := map[string]string{}
	if len(input) == 0 {
		return args, nil
	}

	var fields map[string]any
	if err := json.Unmarshal(input, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		switch val := v.(type) {
		case nil:
		case string:
			args[k] = val
		case float64, bool:
			args[k] = fmt.Sprint(val)
		default:
			b, err := json.Marshal(val)
			if err != nil {
				return nil, err
			}
			args[k] = string(b)
		}
	}
	return args, nil
}
