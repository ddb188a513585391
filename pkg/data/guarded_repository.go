package data

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/errors"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const guardComponent = "guarded_repository"

// GuardConfig holds the limits applied around a candidate repository
type GuardConfig struct {
	Timeout                time.Duration // per call
	RequestsPerSecond      float64       // 0 disables rate limiting
	Burst                  int
	MaxConsecutiveFailures uint32        // failures before the breaker opens
	OpenTimeout            time.Duration // time the breaker stays open
}

// DefaultGuardConfig returns the limits used by the CLI
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		Timeout:                30 * time.Second,
		RequestsPerSecond:      10,
		Burst:                  5,
		MaxConsecutiveFailures: 5,
		OpenTimeout:            60 * time.Second,
	}
}

// GuardedRepository bounds calls to a remote repository with a timeout, a token-bucket
// limiter and a circuit breaker. Its errors are categorized.
type GuardedRepository struct {
	repository walkforward.CandidateRepository
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	timeout    time.Duration
	logger     zerolog.Logger
}

// NewGuardedRepository wraps repository; name identifies the breaker in logs
func NewGuardedRepository(repository walkforward.CandidateRepository, name string, cfg GuardConfig) *GuardedRepository {
	g := &GuardedRepository{
		repository: repository,
		timeout:    cfg.Timeout,
		logger:     zerolog.Nop(),
	}

	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}

	maxFailures := cfg.MaxConsecutiveFailures
	if maxFailures == 0 {
		maxFailures = 5
	}

	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			g.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("candidate repository circuit breaker changed state")
		},
		// A cancelled run says nothing about the health of the repository
		IsSuccessful: func(err error) bool {
			return err == nil || stderrors.Is(err, context.Canceled)
		},
	})

	return g
}

// SetLogger sets the logger used for breaker state changes
func (g *GuardedRepository) SetLogger(logger zerolog.Logger) {
	g.logger = logger
}

// State returns the circuit breaker state
func (g *GuardedRepository) State() gobreaker.State {
	return g.breaker.State()
}

// GetCandidates implements walkforward.CandidateRepository
func (g *GuardedRepository) GetCandidates(ctx context.Context, labID string, window walkforward.Window) ([]walkforward.Candidate, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, errors.WrapError(err, errors.ErrorCategoryRateLimit, guardComponent, "wait")
		}
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	out, err := g.breaker.Execute(func() (interface{}, error) {
		return g.repository.GetCandidates(callCtx, labID, window)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, errors.WrapError(err, errors.ErrorCategoryUnavailable, guardComponent, "get_candidates").
				WithContext("breaker", g.breaker.Name())
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, errors.CategorizeError(err, guardComponent, "get_candidates")
	}

	candidates, _ := out.([]walkforward.Candidate)
	return candidates, nil
}
