package data

import (
	"context"
	"sync/atomic"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/rs/zerolog"
)

// CachedRepository wraps another CandidateRepository with caching keyed by lab and window.
// Cache failures are logged and fall through to the wrapped repository.
type CachedRepository struct {
	repository walkforward.CandidateRepository
	cache      CandidateCache
	logger     zerolog.Logger

	hits   int64
	misses int64
}

// NewCachedRepository creates a cached repository backed by memory
func NewCachedRepository(repository walkforward.CandidateRepository) *CachedRepository {
	return NewCachedRepositoryWithCache(repository, NewMemoryCache())
}

// NewCachedRepositoryWithCache creates a cached repository with a custom cache
func NewCachedRepositoryWithCache(repository walkforward.CandidateRepository, cache CandidateCache) *CachedRepository {
	return &CachedRepository{
		repository: repository,
		cache:      cache,
		logger:     zerolog.Nop(),
	}
}

// SetLogger sets the logger used for cache failures
func (r *CachedRepository) SetLogger(logger zerolog.Logger) {
	r.logger = logger
}

// CacheKey identifies one lab and window
func CacheKey(labID string, window walkforward.Window) string {
	return labID + ":" + window.Start.Format(walkforward.DateLayout) + ":" + window.End.Format(walkforward.DateLayout)
}

// GetCandidates implements walkforward.CandidateRepository
func (r *CachedRepository) GetCandidates(ctx context.Context, labID string, window walkforward.Window) ([]walkforward.Candidate, error) {
	key := CacheKey(labID, window)

	cached, found, err := r.cache.Get(ctx, key)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("candidate cache read failed")
	}
	if found {
		atomic.AddInt64(&r.hits, 1)
		return cached, nil
	}
	atomic.AddInt64(&r.misses, 1)

	candidates, err := r.repository.GetCandidates(ctx, labID, window)
	if err != nil {
		return nil, err
	}

	if err := r.cache.Set(ctx, key, candidates); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("candidate cache write failed")
	}

	r.logger.Debug().
		Str("lab_id", labID).
		Str("window", window.String()).
		Int("candidates", len(candidates)).
		Msg("loaded and cached candidates")

	return candidates, nil
}

// Stats returns cache hits and misses since creation
func (r *CachedRepository) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&r.hits), atomic.LoadInt64(&r.misses)
}

// GetCache returns the underlying cache for external management
func (r *CachedRepository) GetCache() CandidateCache {
	return r.cache
}

// ClearCache clears all cached entries
func (r *CachedRepository) ClearCache(ctx context.Context) error {
	return r.cache.Clear(ctx)
}
