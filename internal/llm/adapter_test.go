package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthylinkx/chatbot/internal/errs"
)

const (
	claudeModel = "anthropic.claude-3-haiku-20240307-v1:0"
	titanModel  = "amazon.titan-text-lite-v1"
)

var searchSpec = ToolSpec{
	Name:        "SearchDoctors",
	Description: "Search for doctors in the HealthyLinkx directory",
	Properties: map[string]any{
		"zipcode":   map[string]any{"type": "string", "description": "The zipcode of the address of the doctor."},
		"lastname":  map[string]any{"type": "string", "description": "The lastname of the doctor."},
		"specialty": map[string]any{"type": "string", "description": "The specialty of the doctor."},
		"gender":    map[string]any{"type": "string", "description": "The gender of the doctor."},
	},
}

func newClaudeAdapter(t *testing.T) *Adapter {
	t.Helper()
	a, err := NewAdapter(claudeModel,
		WithSystemPrompt("You are a healthcare assistant."),
		WithTools(searchSpec),
	)
	require.NoError(t, err)
	return a
}

func decodeBody(t *testing.T, req Request) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(req.Body, &body))
	return body
}

func TestResolveFamily(t *testing.T) {
	t.Parallel()

	tests := []struct {
		modelID string
		want    Family
	}{
		{modelID: claudeModel, want: FamilyClaude},
		{modelID: "anthropic.claude-v2", want: FamilyClaude},
		{modelID: "us.anthropic.claude-3-5-sonnet-20240620-v1:0", want: FamilyClaude},
		{modelID: titanModel, want: FamilyTitan},
		{modelID: "amazon.titan-text-express-v1", want: FamilyTitan},
	}
	for _, tt := range tests {
		t.Run(tt.modelID, func(t *testing.T) {
			got, err := ResolveFamily(tt.modelID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewAdapter_UnsupportedModelIsConfigurationError(t *testing.T) {
	t.Parallel()

	for _, id := range []string{"", "meta.llama3-8b-instruct-v1:0", "cohere.command-text-v14", "claude-3-haiku"} {
		a, err := NewAdapter(id, WithTools(searchSpec))
		require.Error(t, err, id)
		assert.Nil(t, a)
		assert.True(t, errs.IsKind(err, errs.KindConfiguration), "model %q: %v", id, err)
	}
}

func TestBuildRequest_ClaudeEmbedsSystemPromptAndSingleTool(t *testing.T) {
	t.Parallel()

	a := newClaudeAdapter(t)
	conv := Conversation{{Role: RoleUser, Content: "Find me a doctor named Anderson"}}

	req, err := a.BuildRequest(conv, GenerationParams{MaxTokens: 300, Temperature: 1.0})
	require.NoError(t, err)

	assert.Equal(t, claudeModel, req.ModelID)
	assert.Equal(t, "application/json", req.ContentType)
	assert.Equal(t, "application/json", req.Accept)

	body := decodeBody(t, req)
	assert.Equal(t, DefaultAnthropicVersion, body["anthropic_version"])
	assert.EqualValues(t, 300, body["max_tokens"])
	assert.EqualValues(t, 1.0, body["temperature"])
	assert.Equal(t, "You are a healthcare assistant.", body["system"])

	tools, ok := body["tools"].([]any)
	require.True(t, ok, "tools must be an array")
	require.Len(t, tools, 1)
	tool := tools[0].(map[string]any)
	assert.Equal(t, "SearchDoctors", tool["name"])
	assert.Equal(t, searchSpec.Description, tool["description"])
	schema := tool["input_schema"].(map[string]any)
	props := schema["properties"].(map[string]any)
	assert.Len(t, props, 4)
	for _, k := range []string{"zipcode", "lastname", "specialty", "gender"} {
		assert.Contains(t, props, k)
	}

	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	first := msgs[0].(map[string]any)
	assert.Equal(t, "user", first["role"])
	content := first["content"].([]any)
	require.Len(t, content, 1)
	assert.Equal(t, "Find me a doctor named Anderson", content[0].(map[string]any)["text"])
}

func TestBuildRequest_TitanConcatenatesPromptAndOmitsTools(t *testing.T) {
	t.Parallel()

	a, err := NewAdapter(titanModel, WithSystemPrompt("ignored"), WithTools(searchSpec))
	require.NoError(t, err)
	assert.False(t, a.Family().SupportsTools())

	conv := Conversation{
		{Role: RoleUser, Content: "Tell me a joke about programming."},
		{Role: RoleAssistant, Content: "Why do programmers prefer dark mode?"},
		{Role: RoleUser, Content: "Now one about AI."},
	}
	req, err := a.BuildRequest(conv, GenerationParams{MaxTokens: 200, Temperature: 0.5})
	require.NoError(t, err)

	body := decodeBody(t, req)
	assert.NotContains(t, body, "tools")
	assert.NotContains(t, body, "system")
	assert.Equal(t,
		"user: Tell me a joke about programming.\n"+
			"assistant: Why do programmers prefer dark mode?\n"+
			"user: Now one about AI.\n"+
			"Human: Now one about AI.\n"+
			"assistant:",
		body["inputText"])

	cfg := body["textGenerationConfig"].(map[string]any)
	assert.EqualValues(t, 200, cfg["maxTokenCount"])
	assert.EqualValues(t, 0.5, cfg["temperature"])
	assert.EqualValues(t, 1, cfg["topP"])
	assert.Equal(t, []any{}, cfg["stopSequences"])
}

func TestBuildRequest_IsIdempotent(t *testing.T) {
	t.Parallel()

	conv := Conversation{
		{Role: RoleUser, Content: "Any cardiologist in 98052?"},
		{Role: RoleAssistant, Content: `{"type":"tool_use","id":"toolu_1","name":"SearchDoctors","input":{"zipcode":"98052"}}`},
		{Role: RoleUser, Content: `[{"type":"tool_result","tool_use_id":"toolu_1","status":"success","content":[]}]`},
	}
	params := GenerationParams{MaxTokens: 300, Temperature: 1}

	for _, a := range []*Adapter{newClaudeAdapter(t), mustAdapter(t, titanModel)} {
		first, err := a.BuildRequest(conv, params)
		require.NoError(t, err)
		second, err := a.BuildRequest(conv, params)
		require.NoError(t, err)
		assert.Equal(t, first, second, a.Family().String())
	}
}

func TestBuildRequest_RejectsBadInput(t *testing.T) {
	t.Parallel()

	a := newClaudeAdapter(t)

	_, err := a.BuildRequest(nil, GenerationParams{MaxTokens: 10, Temperature: 1})
	assert.True(t, errs.IsKind(err, errs.KindValidation), "%v", err)

	_, err = a.BuildRequest(Conversation{{Role: "system", Content: "x"}}, GenerationParams{MaxTokens: 10, Temperature: 1})
	assert.True(t, errs.IsKind(err, errs.KindValidation), "%v", err)

	_, err = a.BuildRequest(Conversation{{Role: RoleUser, Content: "x"}}, GenerationParams{MaxTokens: 0, Temperature: 1})
	assert.True(t, errs.IsKind(err, errs.KindValidation), "%v", err)
}

func TestParseResponse_ClaudeToolUse(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"id": "msg_01",
		"type": "message",
		"role": "assistant",
		"model": "claude-3-haiku-20240307",
		"stop_reason": "tool_use",
		"content": [
			{"type": "text", "text": "<thinking>The user wants Anderson.</thinking>"},
			{"type": "tool_use", "id": "toolu_01", "name": "SearchDoctors", "input": {"lastname": "Anderson", "gender": "m", "zipcode": null, "limit": 3}}
		],
		"usage": {"input_tokens": 10, "output_tokens": 20}
	}`)

	out, err := newClaudeAdapter(t).ParseResponse(raw)
	require.NoError(t, err)

	assert.Equal(t, OutcomeToolCall, out.Kind)
	require.NotNil(t, out.Call)
	assert.Equal(t, "toolu_01", out.Call.ID)
	assert.Equal(t, "SearchDoctors", out.Call.Name)
	assert.Equal(t, map[string]string{"lastname": "Anderson", "gender": "m", "limit": "3"}, out.Call.Arguments)
}

func TestParseResponse_ClaudeEndTurnIsTerminal(t *testing.T) {
	t.Parallel()

	raw := []byte(`{
		"id": "msg_02",
		"type": "message",
		"role": "assistant",
		"stop_reason": "end_turn",
		"content": [{"type": "text", "text": "The capital of France is Paris."}]
	}`)

	out, err := newClaudeAdapter(t).ParseResponse(raw)
	require.NoError(t, err)
	assert.Equal(t, Terminal("The capital of France is Paris."), out)
}

func TestParseResponse_MalformedIsCollaboratorError(t *testing.T) {
	t.Parallel()

	claude := newClaudeAdapter(t)
	titan := mustAdapter(t, titanModel)

	cases := []struct {
		name string
		a    *Adapter
		raw  string
	}{
		{name: "claude not json", a: claude, raw: `not json`},
		{name: "claude empty content", a: claude, raw: `{"stop_reason":"end_turn","content":[]}`},
		{name: "claude tool_use without block", a: claude, raw: `{"stop_reason":"tool_use","content":[{"type":"text","text":"hmm"}]}`},
		{name: "titan no results", a: titan, raw: `{"inputTextTokenCount":3,"results":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.a.ParseResponse([]byte(tc.raw))
			require.Error(t, err)
			assert.True(t, errs.IsKind(err, errs.KindCollaborator), "%v", err)
		})
	}
}

func TestParseResponse_TitanEchoRoundTrip(t *testing.T) {
	t.Parallel()

	a := mustAdapter(t, titanModel)
	conv := Conversation{{Role: RoleUser, Content: "What is the capital of France?"}}

	req, err := a.BuildRequest(conv, GenerationParams{MaxTokens: 300, Temperature: 1})
	require.NoError(t, err)
	prompt := decodeBody(t, req)["inputText"].(string)

	echo, err := json.Marshal(map[string]any{
		"inputTextTokenCount": 12,
		"results": []map[string]any{
			{"tokenCount": 12, "outputText": prompt, "completionReason": "FINISH"},
		},
	})
	require.NoError(t, err)

	out, err := a.ParseResponse(echo)
	require.NoError(t, err)
	assert.Equal(t, OutcomeTerminal, out.Kind)
	assert.Equal(t, TitanPrompt(conv), out.Text)
}

func TestOutcome_Serialize(t *testing.T) {
	t.Parallel()

	text, err := Terminal("done").Serialize()
	require.NoError(t, err)
	assert.Equal(t, "done", text)

	call, err := NewToolCall("toolu_9", "SearchDoctors", map[string]string{"lastname": "X"}).Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"tool_use","id":"toolu_9","name":"SearchDoctors","input":{"lastname":"X"}}`, call)
}

func mustAdapter(t *testing.T, modelID string) *Adapter {
	t.Helper()
	a, err := NewAdapter(modelID)
	require.NoError(t, err)
	return a
}
