package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

type titanRequestBody struct {
	InputText            string                `json:"inputText"`
	TextGenerationConfig titanGenerationConfig `json:"textGenerationConfig"`
}

type titanGenerationConfig struct {
	MaxTokenCount int64    `json:"maxTokenCount"`
	Temperature   float64  `json:"temperature"`
	TopP          float64  `json:"topP"`
	StopSequences []string `json:"stopSequences"`
}

type titanResponseBody struct {
	InputTextTokenCount int `json:"inputTextTokenCount"`
	Results             []struct {
		TokenCount       int    `json:"tokenCount"`
		OutputText       string `json:"outputText"`
		CompletionReason string `json:"completionReason"`
	} `json:"results"`
}

// titanCodec speaks to single-prompt instruction models. There is no tool
// support: every response is terminal.
type titanCodec struct{}

// TitanPrompt flattens a conversation into the single prompt string sent to
// Titan models.
func TitanPrompt(conv Conversation) string {
	var sb strings.Builder
	for i, m := range conv {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(string(m.Role))
		sb.WriteString(": ")
		sb.WriteString(m.Content)
	}
	sb.WriteString("\nHuman: ")
	sb.WriteString(conv.Last().Content)
	sb.WriteString("\nassistant:")
	return sb.String()
}

func (titanCodec) encode(conv Conversation, params GenerationParams) ([]byte, error) {
	return json.Marshal(titanRequestBody{
		InputText: TitanPrompt(conv),
		TextGenerationConfig: titanGenerationConfig{
			MaxTokenCount: params.MaxTokens,
			Temperature:   params.Temperature,
			TopP:          1,
			StopSequences: []string{},
		},
	})
}

func (titanCodec) decode(raw []byte) (Outcome, error) {
	var resp titanResponseBody
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Outcome{}, fmt.Errorf("unmarshal titan response: %w", err)
	}
	if len(resp.Results) == 0 {
		return Outcome{}, fmt.Errorf("titan returned no results")
	}
	return Terminal(resp.Results[0].OutputText), nil
}
