package data

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ducminhle1904/crypto-wfo-analyzer/pkg/walkforward"
	"github.com/go-redis/redis/v8"
)

// MemoryCache implements CandidateCache using in-memory storage
type MemoryCache struct {
	cache map[string][]walkforward.Candidate
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string][]walkforward.Candidate),
	}
}

// Get retrieves candidates from cache if available
func (c *MemoryCache) Get(ctx context.Context, key string) ([]walkforward.Candidate, bool, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	candidates, exists := c.cache[key]
	if !exists {
		return nil, false, nil
	}

	// Return a copy to prevent external modifications
	return copyCandidates(candidates), true, nil
}

// Set stores candidates in cache
func (c *MemoryCache) Set(ctx context.Context, key string, candidates []walkforward.Candidate) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = copyCandidates(candidates)
	return nil
}

// Clear removes all cached entries
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string][]walkforward.Candidate)
	return nil
}

// Size returns the number of cached entries
func (c *MemoryCache) Size(ctx context.Context) (int, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache), nil
}

func copyCandidates(candidates []walkforward.Candidate) []walkforward.Candidate {
	if candidates == nil {
		return nil
	}
	out := make([]walkforward.Candidate, len(candidates))
	for i, c := range candidates {
		out[i] = c
		if c.Parameters != nil {
			params := make(map[string]float64, len(c.Parameters))
			for k, v := range c.Parameters {
				params[k] = v
			}
			out[i].Parameters = params
		}
	}
	return out
}

// DefaultRedisPrefix namespaces the keys written by RedisCache
const DefaultRedisPrefix = "wfo:candidates:"

// RedisCache implements CandidateCache on Redis so several runs can share loaded candidates
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection
func NewRedisCache(addr, password string, db int, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
		IdleTimeout:  5 * time.Minute,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisCacheWithClient(rdb, DefaultRedisPrefix, ttl), nil
}

// NewRedisCacheWithClient wraps an existing client
func NewRedisCacheWithClient(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

// Get retrieves candidates from Redis; a missing key is a miss, not an error
func (r *RedisCache) Get(ctx context.Context, key string) ([]walkforward.Candidate, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var candidates []walkforward.Candidate
	if err := json.Unmarshal(raw, &candidates); err != nil {
		return nil, false, fmt.Errorf("redis get: malformed cache entry %s: %w", key, err)
	}

	return candidates, true, nil
}

// Set stores candidates in Redis with the configured TTL
func (r *RedisCache) Set(ctx context.Context, key string, candidates []walkforward.Candidate) error {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	if err := r.client.Set(ctx, r.prefix+key, raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// Clear removes every key under the cache prefix
func (r *RedisCache) Clear(ctx context.Context) error {
	keys, err := r.client.Keys(ctx, r.prefix+"*").Result()
	if err != nil {
		return fmt.Errorf("redis keys: %w", err)
	}

	if len(keys) > 0 {
		if err := r.client.Del(ctx, keys...).Err(); err != nil {
			return fmt.Errorf("redis clear: %w", err)
		}
	}

	return nil
}

// Size returns the number of keys under the cache prefix
func (r *RedisCache) Size(ctx context.Context) (int, error) {
	keys, err := r.client.Keys(ctx, r.prefix+"*").Result()
	if err != nil {
		return 0, fmt.Errorf("redis keys: %w", err)
	}
	return len(keys), nil
}

// Close closes the underlying client
func (r *RedisCache) Close() error {
	return r.client.Close()
}
