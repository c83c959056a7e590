package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_FormatsKindContextAndCause(t *testing.T) {
	t.Parallel()

	err := NewWithCause(KindCollaborator, "query failed", errors.New("connection refused")).
		WithContext("table", "doctors").
		WithContext("attempt", 2)

	assert.Equal(t,
		"[Collaborator] query failed | context: attempt=2, table=doctors | cause: connection refused",
		err.Error())
}

func TestKindOf_SeesThroughWrapping(t *testing.T) {
	t.Parallel()

	base := UnsupportedModel("meta.llama3")
	wrapped := fmt.Errorf("build request: %w", base)

	assert.Equal(t, KindConfiguration, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindConfiguration))
	assert.False(t, IsKind(wrapped, KindTransient))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
	assert.False(t, IsKind(nil, KindUnknown))
}

func TestUnwrap_ExposesCause(t *testing.T) {
	t.Parallel()

	cause := context.DeadlineExceeded
	err := Wrap(cause, KindCancelled, "deadline")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestFromContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, FromContext(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := FromContext(ctx)
	require.NotNil(t, err)
	assert.Equal(t, KindCancelled, err.Kind)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdvice_CoversEveryKind(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{KindTransient, KindConfiguration, KindValidation, KindCollaborator, KindCancelled} {
		assert.NotEqual(t, Advice(KindUnknown), Advice(k), k.String())
	}
}
