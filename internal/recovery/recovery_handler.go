package recovery

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
	"github.com/rs/zerolog"
)

// RecoveryHandler retries collaborator calls that fail with a retryable error category
type RecoveryHandler struct {
	mu          sync.Mutex
	errorStats  *errors.ErrorStats
	retryConfig RetryConfig
	logger      zerolog.Logger

	// replaced in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// RetryConfig defines retry behavior per error category. Categories without an entry are not retried.
type RetryConfig struct {
	MaxRetries map[errors.ErrorCategory]int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	Multiplier float64
	Jitter     bool
}

// DefaultRetryConfig retries transient failures a few times with exponential backoff
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: map[errors.ErrorCategory]int{
			errors.ErrorCategoryNetwork:   3,
			errors.ErrorCategoryTimeout:   2,
			errors.ErrorCategoryTemporary: 2,
			errors.ErrorCategoryRateLimit: 3,
		},
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   10 * time.Second,
		Multiplier: 2,
		Jitter:     true,
	}
}

// WithMaxRetries returns a copy of c where every retried category allows n retries; n <= 0 disables retries
func (c RetryConfig) WithMaxRetries(n int) RetryConfig {
	out := c
	out.MaxRetries = make(map[errors.ErrorCategory]int, len(c.MaxRetries))
	if n <= 0 {
		return out
	}
	for category := range c.MaxRetries {
		out.MaxRetries[category] = n
	}
	return out
}

// NewRecoveryHandler creates a new recovery handler
func NewRecoveryHandler(config RetryConfig, logger zerolog.Logger) *RecoveryHandler {
	return &RecoveryHandler{
		errorStats:  errors.NewErrorStats(),
		retryConfig: config,
		logger:      logger,
		sleep:       sleepContext,
	}
}

// ShouldRetry reports whether a failure of category after attempt retries may be retried
func (rh *RecoveryHandler) ShouldRetry(err *errors.AnalysisError, attempt int) bool {
	if err == nil || !err.IsRetryable() {
		return false
	}
	maxRetries, ok := rh.retryConfig.MaxRetries[err.Category]
	return ok && attempt < maxRetries
}

// calculateDelay returns the exponential backoff for the given retry attempt (0-based)
func (rh *RecoveryHandler) calculateDelay(category errors.ErrorCategory, attempt int) time.Duration {
	baseDelay := rh.retryConfig.BaseDelay

	// Rate limiting needs longer delays
	if category == errors.ErrorCategoryRateLimit {
		baseDelay *= 4
	}

	multiplier := 1.0
	for i := 0; i < attempt; i++ {
		multiplier *= rh.retryConfig.Multiplier
	}
	delay := time.Duration(float64(baseDelay) * multiplier)

	if rh.retryConfig.MaxDelay > 0 && delay > rh.retryConfig.MaxDelay {
		delay = rh.retryConfig.MaxDelay
	}

	if rh.retryConfig.Jitter {
		delay = addJitter(delay)
	}

	return delay
}

// addJitter adds up to 10% random jitter
func addJitter(delay time.Duration) time.Duration {
	jitter := int64(float64(delay) * 0.1)
	if jitter <= 0 {
		return delay
	}
	return delay + time.Duration(rand.Int63n(jitter))
}

// ExecuteWithRecovery runs fn until it succeeds, fails with a non-retryable error,
// exhausts the retries of its category, or ctx ends. The last error is returned categorized.
func (rh *RecoveryHandler) ExecuteWithRecovery(
	ctx context.Context,
	component, operation string,
	fn func(ctx context.Context) error,
) error {
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn(ctx)
		if err == nil {
			if attempt > 0 {
				rh.logger.Info().
					Str("component", component).
					Str("operation", operation).
					Int("attempts", attempt+1).
					Msg("operation succeeded after retry")
			}
			return nil
		}

		// the caller gave up; not a collaborator failure
		if ctx.Err() != nil {
			return err
		}

		categorized := errors.CategorizeError(err, component, operation)
		rh.record(categorized)

		if !rh.ShouldRetry(categorized, attempt) {
			if attempt > 0 {
				rh.logger.Warn().
					Err(categorized).
					Str("category", string(categorized.Category)).
					Int("attempts", attempt+1).
					Msg("giving up after retries")
			}
			return categorized
		}

		delay := rh.calculateDelay(categorized.Category, attempt)
		rh.logger.Debug().
			Err(categorized).
			Str("category", string(categorized.Category)).
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Msg("retrying operation")

		if err := rh.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (rh *RecoveryHandler) record(err *errors.AnalysisError) {
	rh.mu.Lock()
	defer rh.mu.Unlock()
	rh.errorStats.RecordError(err)
}

// GetErrorStats returns a snapshot of the error statistics
func (rh *RecoveryHandler) GetErrorStats() errors.ErrorStats {
	rh.mu.Lock()
	defer rh.mu.Unlock()

	snapshot := errors.ErrorStats{
		TotalErrors:      rh.errorStats.TotalErrors,
		ErrorsByCategory: make(map[errors.ErrorCategory]int, len(rh.errorStats.ErrorsByCategory)),
	}
	for k, v := range rh.errorStats.ErrorsByCategory {
		snapshot.ErrorsByCategory[k] = v
	}
	return snapshot
}

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
