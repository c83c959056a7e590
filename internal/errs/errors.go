package errs

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

type Kind int

const (
	// KindUnknown is never produced by this module; it is what KindOf
	// reports for foreign errors.
	KindUnknown Kind = iota
	KindTransient
	KindConfiguration
	KindValidation
	KindCollaborator
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindTransient:
		return "Transient"
	case KindConfiguration:
		return "Configuration"
	case KindValidation:
		return "Validation"
	case KindCollaborator:
		return "Collaborator"
	case KindCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Error is the single error type surfaced by the orchestration core.
type Error struct {
	Kind    Kind
	Message string
	Context map[string]any
	Cause   error
}

func New(kind Kind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Context: make(map[string]any),
	}
}

func NewWithCause(kind Kind, message string, cause error) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Context: make(map[string]any),
		Cause:   cause,
	}
}

// Wrap is NewWithCause with the argument order of fmt.Errorf call sites.
func Wrap(err error, kind Kind, message string) *Error {
	return NewWithCause(kind, message, err)
}

func (e *Error) Error() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("[%s] %s", e.Kind, e.Message))

	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		ctxParts := make([]string, 0, len(keys))
		for _, k := range keys {
			ctxParts = append(ctxParts, fmt.Sprintf("%s=%v", k, e.Context[k]))
		}
		parts = append(parts, fmt.Sprintf("context: %s", strings.Join(ctxParts, ", ")))
	}

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause: %v", e.Cause))
	}

	return strings.Join(parts, " | ")
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// KindOf returns the kind of the outermost *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func UnsupportedModel(modelID string) *Error {
	return New(KindConfiguration, "unsupported model").WithContext("model_id", modelID)
}

func UnsupportedTool(name string) *Error {
	return New(KindConfiguration, "unsupported tool").WithContext("tool", name)
}

func InvalidInput(message string) *Error {
	return New(KindValidation, "invalid input: "+message)
}

// FromContext converts a context error into KindCancelled. It returns nil
// when ctx is still live, so callers can write
//
//	if cerr := errs.FromContext(ctx); cerr != nil { return cerr }
func FromContext(ctx context.Context) *Error {
	if err := ctx.Err(); err != nil {
		return NewWithCause(KindCancelled, "invocation cancelled", err)
	}
	return nil
}

// Advice returns an operator-facing hint for a failure kind. It is meant for
// logs only and never reaches the boundary caller.
func Advice(kind Kind) string {
	switch kind {
	case KindTransient:
		return "The model endpoint kept throttling; check account quotas or lower the request rate"
	case KindConfiguration:
		return "Check MODEL_ID and the declared tool set; this will not recover by retrying"
	case KindValidation:
		return "The caller sent a malformed request; messages must be a non-empty list of user/assistant turns"
	case KindCollaborator:
		return "A downstream dependency failed; check model endpoint and directory database connectivity"
	case KindCancelled:
		return "The caller cancelled or the deadline expired before the conversation finished"
	default:
		return "Review the detailed error and related configuration"
	}
}
