package llm

import (
	"context"
	"errors"
	"time"

	"github.com/healthylinkx/chatbot/internal/errs"
	"github.com/healthylinkx/chatbot/pkg/log"
)

const (
	DefaultMaxAttempts = 5
	DefaultBaseDelay   = 100 * time.Millisecond
)

// Endpoint sends one request to the model service and returns the raw
// response body. Implementations report rate limiting as *ThrottlingError.
type Endpoint interface {
	Send(ctx context.Context, req Request) ([]byte, error)
}

// ThrottlingError marks a transient rate-limit rejection from the endpoint.
type ThrottlingError struct {
	Cause error
}

func (e *ThrottlingError) Error() string {
	if e.Cause == nil {
		return "model endpoint throttled"
	}
	return "model endpoint throttled: " + e.Cause.Error()
}

func (e *ThrottlingError) Unwrap() error { return e.Cause }

func IsThrottling(err error) bool {
	var t *ThrottlingError
	return errors.As(err, &t)
}

// SleepFunc waits for d or until ctx is done, whichever is first.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Invoker calls an Endpoint with bounded exponential backoff on throttling.
type Invoker struct {
	endpoint    Endpoint
	maxAttempts int
	baseDelay   time.Duration
	sleep       SleepFunc
}

type InvokerOption func(*Invoker)

func WithMaxAttempts(n int) InvokerOption {
	return func(i *Invoker) {
		if n > 0 {
			i.maxAttempts = n
		}
	}
}

func WithBaseDelay(d time.Duration) InvokerOption {
	return func(i *Invoker) {
		if d > 0 {
			i.baseDelay = d
		}
	}
}

// WithSleep replaces the backoff wait; tests use it to record delays.
func WithSleep(fn SleepFunc) InvokerOption {
	return func(i *Invoker) {
		if fn != nil {
			i.sleep = fn
		}
	}
}

func NewInvoker(endpoint Endpoint, opts ...InvokerOption) *Invoker {
	i := &Invoker{
		endpoint:    endpoint,
		maxAttempts: DefaultMaxAttempts,
		baseDelay:   DefaultBaseDelay,
		sleep:       sleepContext,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Backoff returns the wait after the failed attempt k (0-indexed).
func (i *Invoker) Backoff(k int) time.Duration {
	return (1 << k) * i.baseDelay
}

// Invoke sends req, retrying only throttling failures. The last throttling
// error surfaces as KindTransient once attempts run out; any other failure
// is returned at once as KindCollaborator.
func (i *Invoker) Invoke(ctx context.Context, req Request) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt < i.maxAttempts; attempt++ {
		if cerr := errs.FromContext(ctx); cerr != nil {
			return nil, cerr
		}

		raw, err := i.endpoint.Send(ctx, req)
		if err == nil {
			return raw, nil
		}
		if cerr := errs.FromContext(ctx); cerr != nil {
			return nil, cerr
		}
		if !IsThrottling(err) {
			return nil, errs.Wrap(err, errs.KindCollaborator, "model endpoint call failed").
				WithContext("model_id", req.ModelID).
				WithContext("attempt", attempt+1)
		}

		lastErr = err
		if attempt == i.maxAttempts-1 {
			break
		}

		delay := i.Backoff(attempt)
		log.Warn("Model endpoint throttled (attempt %d/%d), waiting %s", attempt+1, i.maxAttempts, delay)
		if err := i.sleep(ctx, delay); err != nil {
			return nil, errs.Wrap(err, errs.KindCancelled, "cancelled during backoff")
		}
	}

	return nil, errs.Wrap(lastErr, errs.KindTransient, "model endpoint still throttling").
		WithContext("model_id", req.ModelID).
		WithContext("attempts", i.maxAttempts)
}
