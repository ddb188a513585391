package data

import (
	"fmt"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/internal/recovery"
	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

// Options selects and configures the candidate source stack
type Options struct {
	// Exactly one of Path or DatabaseDSN
	Path        string
	DatabaseDSN string
	MaxDBConns  int

	QueryTimeout time.Duration
	Guard        GuardConfig
	Retry        recovery.RetryConfig // zero value disables retries

	// Empty RedisAddr keeps the cache in memory
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration
	DisableCache  bool
}

// Stack is an assembled candidate repository together with the resources it owns
type Stack struct {
	Repository walkforward.CandidateRepository
	Cached     *CachedRepository
	Guard      *GuardedRepository  // nil for file sources
	Retrying   *RetryingRepository // nil for file sources

	db    *sqlx.DB
	redis *RedisCache
}

// NewStack builds source -> guard -> retry (remote sources only) -> cache from opts
func NewStack(opts Options, logger zerolog.Logger) (*Stack, error) {
	stack := &Stack{}

	switch {
	case opts.Path != "" && opts.DatabaseDSN != "":
		return nil, fmt.Errorf("candidate source is ambiguous: both a file path and a database DSN are set")

	case opts.Path != "":
		files := NewFileRepository(opts.Path)
		files.SetLogger(logger)
		stack.Repository = files

	case opts.DatabaseDSN != "":
		db, err := OpenPostgres(opts.DatabaseDSN, opts.MaxDBConns)
		if err != nil {
			return nil, err
		}
		stack.db = db

		guarded := NewGuardedRepository(NewPostgresRepository(db, opts.QueryTimeout), "postgres", opts.Guard)
		guarded.SetLogger(logger)
		stack.Guard = guarded

		stack.Retrying = NewRetryingRepository(guarded, "postgres", recovery.NewRecoveryHandler(opts.Retry, logger))
		stack.Repository = stack.Retrying

	default:
		return nil, fmt.Errorf("no candidate source: set a file path or a database DSN")
	}

	if opts.DisableCache {
		return stack, nil
	}

	var cache CandidateCache = NewMemoryCache()
	if opts.RedisAddr != "" {
		redisCache, err := NewRedisCache(opts.RedisAddr, opts.RedisPassword, opts.RedisDB, opts.CacheTTL)
		if err != nil {
			// the run still works without the shared cache
			logger.Warn().Err(err).Str("addr", opts.RedisAddr).Msg("redis unavailable, using in-memory cache")
		} else {
			stack.redis = redisCache
			cache = redisCache
		}
	}

	stack.Cached = NewCachedRepositoryWithCache(stack.Repository, cache)
	stack.Cached.SetLogger(logger)
	stack.Repository = stack.Cached

	return stack, nil
}

// Close releases the database and Redis connections
func (s *Stack) Close() error {
	var firstErr error
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			firstErr = err
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
