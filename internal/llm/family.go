package llm

import (
	"strings"

	"github.com/healthylinkx/chatbot/internal/errs"
)

// Family is the closed set of model families the adapter can speak to.
type Family int

const (
	FamilyClaude Family = iota + 1
	FamilyTitan
)

func (f Family) String() string {
	switch f {
	case FamilyClaude:
		return "anthropic.claude"
	case FamilyTitan:
		return "amazon.titan"
	default:
		return "unknown"
	}
}

// SupportsTools reports whether requests for f carry the declared tools.
func (f Family) SupportsTools() bool {
	return f == FamilyClaude
}

// Bedrock cross-region inference profiles prefix the model id with a
// geography, e.g. "us.anthropic.claude-3-5-sonnet-20240620-v1:0".
var inferenceProfilePrefixes = []string{"us.", "eu.", "apac.", "us-gov.", "global."}

// ResolveFamily maps a model id to its family by prefix.
func ResolveFamily(modelID string) (Family, error) {
	id := strings.TrimSpace(modelID)
	for _, p := range inferenceProfilePrefixes {
		if strings.HasPrefix(id, p) {
			id = strings.TrimPrefix(id, p)
			break
		}
	}

	switch {
	case strings.HasPrefix(id, "anthropic.claude"):
		return FamilyClaude, nil
	case strings.HasPrefix(id, "amazon.titan"):
		return FamilyTitan, nil
	default:
		return 0, errs.UnsupportedModel(modelID)
	}
}
