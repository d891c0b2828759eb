package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 4 * time.Millisecond}
}

func TestWithRetry_SucceedsFirstAttempt(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastPolicy(), func() error {
		calls++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RecoversFromRateLimit(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastPolicy(), func() error {
		calls++
		if calls < 3 {
			return fmt.Errorf("wrapped: %w", ErrRateLimited)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastPolicy(), func() error {
		calls++
		return ErrRateLimited
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_NonRateLimitErrorsSurfaceImmediately(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	err := WithRetry(context.Background(), fastPolicy(), func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Hour}, func() error {
		return ErrRateLimited
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestClassifyProviderError(t *testing.T) {
	rateLimited := &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"}
	err := classifyProviderError(fmt.Errorf("call: %w", rateLimited))
	assert.ErrorIs(t, err, ErrRateLimited)

	serverErr := &googleapi.Error{Code: http.StatusInternalServerError}
	err = classifyProviderError(serverErr)
	assert.NotErrorIs(t, err, ErrRateLimited)

	assert.NoError(t, classifyProviderError(nil))
}
