package llm

import (
	"fmt"

	"github.com/healthylinkx/chatbot/internal/errs"
)

const (
	jsonContentType = "application/json"

	DefaultAnthropicVersion = "bedrock-2023-05-31"
)

// codec is one family arm: it owns the wire format in both directions.
type codec interface {
	encode(conv Conversation, params GenerationParams) ([]byte, error)
	decode(raw []byte) (Outcome, error)
}

// Adapter translates conversations into endpoint requests and endpoint
// responses into outcomes for a single model id. It holds no mutable state
// and is safe for concurrent use.
type Adapter struct {
	modelID string
	family  Family
	codec   codec
}

type adapterOptions struct {
	systemPrompt     string
	tools            []ToolSpec
	anthropicVersion string
}

type AdapterOption func(*adapterOptions)

// WithSystemPrompt sets the fixed system instruction sent to tool-capable
// families.
func WithSystemPrompt(prompt string) AdapterOption {
	return func(o *adapterOptions) { o.systemPrompt = prompt }
}

// WithTools declares the tools offered to tool-capable families.
func WithTools(tools ...ToolSpec) AdapterOption {
	return func(o *adapterOptions) { o.tools = append(o.tools, tools...) }
}

func WithAnthropicVersion(v string) AdapterOption {
	return func(o *adapterOptions) { o.anthropicVersion = v }
}

// NewAdapter resolves the family of modelID once. An unknown family is a
// configuration error.
func NewAdapter(modelID string, opts ...AdapterOption) (*Adapter, error) {
	family, err := ResolveFamily(modelID)
	if err != nil {
		return nil, err
	}

	o := adapterOptions{anthropicVersion: DefaultAnthropicVersion}
	for _, opt := range opts {
		opt(&o)
	}

	a := &Adapter{modelID: modelID, family: family}
	switch family {
	case FamilyClaude:
		a.codec = newClaudeCodec(o.anthropicVersion, o.systemPrompt, o.tools)
	case FamilyTitan:
		a.codec = titanCodec{}
	default:
		return nil, errs.UnsupportedModel(modelID)
	}
	return a, nil
}

func (a *Adapter) ModelID() string { return a.modelID }

func (a *Adapter) Family() Family { return a.family }

// BuildRequest renders conv and params into an endpoint request. The result
// depends only on its inputs.
func (a *Adapter) BuildRequest(conv Conversation, params GenerationParams) (Request, error) {
	if len(conv) == 0 {
		return Request{}, errs.InvalidInput("conversation is empty")
	}
	for i, m := range conv {
		if !m.Role.Valid() {
			return Request{}, errs.InvalidInput(fmt.Sprintf("message[%d]: unknown role %q", i, m.Role))
		}
	}
	if err := params.Validate(); err != nil {
		return Request{}, errs.Wrap(err, errs.KindValidation, "invalid generation parameters")
	}

	body, err := a.codec.encode(conv, params)
	if err != nil {
		return Request{}, errs.Wrap(err, errs.KindValidation, "encode request body").
			WithContext("family", a.family.String())
	}

	return Request{
		ModelID:     a.modelID,
		ContentType: jsonContentType,
		Accept:      jsonContentType,
		Body:        body,
	}, nil
}

// ParseResponse decodes a raw endpoint response into an outcome.
func (a *Adapter) ParseResponse(raw []byte) (Outcome, error) {
	out, err := a.codec.decode(raw)
	if err != nil {
		return Outcome{}, errs.Wrap(err, errs.KindCollaborator, "malformed model response").
			WithContext("family", a.family.String())
	}
	return out, nil
}
