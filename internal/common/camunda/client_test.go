package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"gavl-predictor/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(maxRetries int) *Client {
	return &Client{config: &ClientConfig{
		ConnectionTimeout: time.Second,
		RetryConfig: &RetryConfig{
			MaxRetries: maxRetries,
			BaseDelay:  time.Millisecond,
			MaxDelay:   2 * time.Millisecond,
		},
	}}
}

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		msg       string
		retryable bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"read: connection reset by peer", true},
		{"write: broken pipe", true},
		{"rpc error: code = NotFound desc = job not found", false},
		{"permission denied", false},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableZeebeError(stderrors.New(tt.msg)))
		})
	}
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code errors.ErrorCode
	}{
		{"connection refused", errors.ErrCodeExternalService},
		{"deadline exceeded", errors.ErrCodeTimeout},
		{"job not found", errors.ErrCodeNotFound},
		{"unauthorized", errors.ErrCodeAuthentication},
		{"something odd", errors.ErrCodeExternalService},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := mapZeebeError(stderrors.New(tt.msg), "topology", 2)
			assert.Equal(t, tt.code, errors.CodeOf(err))
			assert.Contains(t, err.Error(), "after 3 attempts")
		})
	}
}

func TestBackoff(t *testing.T) {
	rc := &RetryConfig{BaseDelay: 100 * time.Millisecond, MaxDelay: time.Second}
	assert.Equal(t, 100*time.Millisecond, backoff(rc, 0))
	assert.Equal(t, 400*time.Millisecond, backoff(rc, 2))
	assert.Equal(t, time.Second, backoff(rc, 4))
	assert.Equal(t, time.Second, backoff(rc, 62), "overflow falls back to MaxDelay")
}

func TestExecuteWithRetry(t *testing.T) {
	t.Run("retries transient errors until success", func(t *testing.T) {
		calls := 0
		result, err := testClient(3).ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			if calls < 3 {
				return nil, stderrors.New("unavailable")
			}
			return "ok", nil
		}, "topology")

		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("stops on permanent error", func(t *testing.T) {
		calls := 0
		_, err := testClient(3).ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("permission denied")
		}, "topology")

		require.Error(t, err)
		assert.Equal(t, 1, calls)
		assert.Equal(t, errors.ErrCodeAuthentication, errors.CodeOf(err))
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		calls := 0
		_, err := testClient(2).ExecuteWithRetry(context.Background(), func(context.Context) (interface{}, error) {
			calls++
			return nil, stderrors.New("connection refused")
		}, "topology")

		require.Error(t, err)
		assert.Equal(t, 3, calls)
		assert.Equal(t, errors.ErrCodeExternalService, errors.CodeOf(err))
	})

	t.Run("honours cancellation", func(t *testing.T) {
		c := testClient(5)
		c.config.RetryConfig.BaseDelay = time.Hour
		c.config.RetryConfig.MaxDelay = time.Hour

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.ExecuteWithRetry(ctx, func(context.Context) (interface{}, error) {
			return nil, stderrors.New("unavailable")
		}, "topology")
		require.Error(t, err)
		assert.Equal(t, errors.ErrCodeTimeout, errors.CodeOf(err))
	})
}
