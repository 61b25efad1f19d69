package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensAfterThreshold(t *testing.T) {
	cb := NewCircuitBreaker(3, 2, time.Hour)
	assert.Equal(t, CircuitClosed, cb.GetState())

	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.GetState())
	assert.NoError(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.GetState())
	assert.ErrorIs(t, cb.Allow(), ErrCircuitOpen)
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(3, 2, time.Hour)

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()

	// The count starts over, so two more failures stay under the threshold.
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, CircuitClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(1, 2, time.Millisecond)

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.GetState())

	// After the open timeout the next request probes in half-open.
	time.Sleep(5 * time.Millisecond)
	assert.NoError(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, CircuitHalfOpen, cb.GetState())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.GetState())
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(1, 2, time.Millisecond)

	cb.RecordFailure()
	time.Sleep(5 * time.Millisecond)
	assert.NoError(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.GetState())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.GetState())
	assert.ErrorIs(t, cb.Allow(), ErrCircuitOpen)
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "CLOSED", CircuitClosed.String())
	assert.Equal(t, "OPEN", CircuitOpen.String())
	assert.Equal(t, "HALF_OPEN", CircuitHalfOpen.String())
}

func TestIsRetriableError(t *testing.T) {
	retriable := []error{
		context.DeadlineExceeded,
		errors.New("429 too many requests"),
		errors.New("rate limit exceeded"),
		errors.New("500 internal server error"),
		errors.New("502 bad gateway"),
		errors.New("service unavailable"),
		errors.New("connection refused"),
		errors.New("read: connection reset by peer"),
		errors.New("dial tcp: i/o timeout"),
	}
	for _, err := range retriable {
		assert.True(t, isRetriableError(err), "%v should be retriable", err)
	}

	notRetriable := []error{
		nil,
		errors.New("401 unauthorized"),
		errors.New("invalid request: missing field"),
	}
	for _, err := range notRetriable {
		assert.False(t, isRetriableError(err), "%v should not be retriable", err)
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, 2, cfg.MaxRetries)
	assert.True(t, cfg.CircuitBreakerEnabled)
	assert.Equal(t, 3, cfg.MaxConcurrentCalls)
}
