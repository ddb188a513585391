package recovery

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(config RetryConfig) (*RecoveryHandler, *[]time.Duration) {
	rh := NewRecoveryHandler(config, zerolog.Nop())
	var delays []time.Duration
	rh.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return rh, &delays
}

func noJitter() RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.Jitter = false
	return cfg
}

func TestExecuteWithRecovery_RetriesTransientErrors(t *testing.T) {
	rh, delays := newTestHandler(noJitter())

	calls := 0
	err := rh.ExecuteWithRecovery(context.Background(), "postgres", "get_candidates", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return stderrors.New("dial tcp: connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, *delays)

	stats := rh.GetErrorStats()
	assert.Equal(t, 2, stats.TotalErrors)
	assert.Equal(t, 2, stats.ErrorsByCategory[errors.ErrorCategoryNetwork])
}

func TestExecuteWithRecovery_GivesUp(t *testing.T) {
	rh, delays := newTestHandler(noJitter())

	calls := 0
	err := rh.ExecuteWithRecovery(context.Background(), "postgres", "get_candidates", func(ctx context.Context) error {
		calls++
		return stderrors.New("i/o timeout")
	})

	require.Error(t, err)
	assert.Equal(t, errors.ErrorCategoryTimeout, errors.CategoryOf(err))
	assert.Equal(t, 3, calls, "two retries for timeouts")
	assert.Len(t, *delays, 2)
}

func TestExecuteWithRecovery_NonRetryable(t *testing.T) {
	rh, delays := newTestHandler(noJitter())

	calls := 0
	err := rh.ExecuteWithRecovery(context.Background(), "file", "load", func(ctx context.Context) error {
		calls++
		return errors.NewAnalysisError(errors.ErrorCategoryData, "file", "load", "malformed row")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *delays)
	assert.Equal(t, errors.ErrorCategoryData, errors.CategoryOf(err))
}

func TestExecuteWithRecovery_UnavailableNotRetriedByDefault(t *testing.T) {
	rh, _ := newTestHandler(noJitter())

	calls := 0
	err := rh.ExecuteWithRecovery(context.Background(), "postgres", "get_candidates", func(ctx context.Context) error {
		calls++
		return errors.NewAnalysisError(errors.ErrorCategoryUnavailable, "postgres", "get_candidates", "circuit breaker is open")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestExecuteWithRecovery_Cancelled(t *testing.T) {
	rh, _ := newTestHandler(noJitter())
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	err := rh.ExecuteWithRecovery(ctx, "postgres", "get_candidates", func(ctx context.Context) error {
		calls++
		cancel()
		return stderrors.New("connection reset")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, rh.GetErrorStats().TotalErrors)
}

func TestCalculateDelay(t *testing.T) {
	rh := NewRecoveryHandler(noJitter(), zerolog.Nop())

	assert.Equal(t, 500*time.Millisecond, rh.calculateDelay(errors.ErrorCategoryNetwork, 0))
	assert.Equal(t, 2*time.Second, rh.calculateDelay(errors.ErrorCategoryNetwork, 2))
	assert.Equal(t, 2*time.Second, rh.calculateDelay(errors.ErrorCategoryRateLimit, 0))
	assert.Equal(t, 10*time.Second, rh.calculateDelay(errors.ErrorCategoryNetwork, 10))

	jittered := NewRecoveryHandler(DefaultRetryConfig(), zerolog.Nop()).calculateDelay(errors.ErrorCategoryNetwork, 0)
	assert.GreaterOrEqual(t, jittered, 500*time.Millisecond)
	assert.Less(t, jittered, 550*time.Millisecond)
}

func TestWithMaxRetries(t *testing.T) {
	base := DefaultRetryConfig()

	cfg := base.WithMaxRetries(5)
	assert.Equal(t, 5, cfg.MaxRetries[errors.ErrorCategoryTimeout])
	assert.Equal(t, 2, base.MaxRetries[errors.ErrorCategoryTimeout], "original untouched")

	assert.Empty(t, base.WithMaxRetries(0).MaxRetries)
}

func TestGetErrorStats_ReturnsSnapshot(t *testing.T) {
	rh, _ := newTestHandler(noJitter())
	_ = rh.ExecuteWithRecovery(context.Background(), "x", "y", func(ctx context.Context) error {
		return stderrors.New("parse error")
	})

	snapshot := rh.GetErrorStats()
	require.Equal(t, 1, snapshot.TotalErrors)
	snapshot.ErrorsByCategory[errors.ErrorCategoryData] = 99

	current := rh.GetErrorStats()
	assert.Equal(t, 1, current.ErrorsByCategory[errors.ErrorCategoryData])
	assert.Equal(t, 1.0, current.GetErrorRate(errors.ErrorCategoryData))
}
