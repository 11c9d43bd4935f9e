package maintain

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_Success(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return nil
	}

	err := Retry(context.Background(), operation, 3, 10*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, attempts, "should succeed on first try")
}

func TestRetry_EventualSuccess(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := Retry(context.Background(), operation, 5, 10*time.Millisecond, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts, "should succeed on third attempt")
}

func TestRetry_TinyBaseDelay(t *testing.T) {
	// A sub-2ns delay leaves no room for jitter; the backoff must cope
	// rather than panic.
	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}

	err := Retry(context.Background(), operation, 5, time.Nanosecond, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	operation := func() error {
		attempts++
		return expectedErr
	}

	err := Retry(context.Background(), operation, 3, 10*time.Millisecond, nil)
	require.Error(t, err)
	assert.Equal(t, expectedErr, err, "should return the original error")
	assert.Equal(t, 3, attempts, "should attempt exactly maxAttempts times")
}

func TestRetry_NonRetryableStopsImmediately(t *testing.T) {
	transient := errors.New("transient")
	fatal := errors.New("fatal")

	attempts := 0
	operation := func() error {
		attempts++
		return fatal
	}

	err := Retry(context.Background(), operation, 5, 10*time.Millisecond, func(err error) bool {
		return errors.Is(err, transient)
	})
	require.Error(t, err)
	assert.Equal(t, fatal, err)
	assert.Equal(t, 1, attempts, "non-retryable error should not be retried")
}

func TestRetry_RetryablePredicate(t *testing.T) {
	transient := errors.New("transient")

	attempts := 0
	operation := func() error {
		attempts++
		if attempts < 2 {
			return transient
		}
		return nil
	}

	err := Retry(context.Background(), operation, 5, 10*time.Millisecond, func(err error) bool {
		return errors.Is(err, transient)
	})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetry_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	operation := func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}

	err := Retry(ctx, operation, 10, 10*time.Millisecond, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled, "should return context.Canceled")
	assert.LessOrEqual(t, attempts, 2, "should stop when context is canceled")
}

func TestRetry_InvalidMaxAttempts(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("error")
	}

	err := Retry(context.Background(), operation, 0, 10*time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	assert.Equal(t, 0, attempts, "should not attempt with maxAttempts=0")

	err = Retry(context.Background(), operation, -1, 10*time.Millisecond, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	assert.Equal(t, 0, attempts)
}
