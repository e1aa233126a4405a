package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultCacheEntries = 10000
	defaultCacheTTL     = 24 * time.Hour
)

// CacheConfig controls the embedding cache tiers.
type CacheConfig struct {
	// Namespace separates vectors of different models sharing one Redis.
	Namespace  string
	MaxEntries int
	TTL        time.Duration
	// RedisURL enables the L2 tier when set.
	RedisURL string
}

// Cache decorates a Provider with an in-memory L1 and an optional Redis L2 tier.
type Cache struct {
	inner     Provider
	namespace string
	max       int
	ttl       time.Duration
	logger    *zap.Logger

	mu sync.RWMutex
	l1 map[string]Vector

	rdb *redis.Client

	hits   atomic.Int64
	misses atomic.Int64
}

// NewCache wraps inner. An unreachable or invalid Redis URL disables L2 with a warning.
func NewCache(ctx context.Context, inner Provider, cfg CacheConfig, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Cache{
		inner:     inner,
		namespace: strings.TrimSpace(cfg.Namespace),
		max:       cfg.MaxEntries,
		ttl:       cfg.TTL,
		logger:    logger,
		l1:        make(map[string]Vector),
	}
	if c.max <= 0 {
		c.max = defaultCacheEntries
	}
	if c.ttl <= 0 {
		c.ttl = defaultCacheTTL
	}

	if url := strings.TrimSpace(cfg.RedisURL); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			logger.Warn("embedding cache: invalid redis url, L2 disabled", zap.Error(err))
			return c
		}

		rdb := redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			logger.Warn("embedding cache: redis unreachable, L2 disabled", zap.Error(err))
			_ = rdb.Close()
			return c
		}

		c.rdb = rdb
		logger.Info("embedding cache: L2 redis connected", zap.String("addr", opts.Addr))
	}

	return c
}

// Embed returns the cached vector of text, computing it on a miss.
func (c *Cache) Embed(ctx context.Context, text string) (Vector, error) {
	out, err := c.EmbedSet(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedSet serves hits from the cache and sends the misses, in order, to the inner provider.
func (c *Cache) EmbedSet(ctx context.Context, texts []string) ([]Vector, error) {
	out := make([]Vector, len(texts))
	missIdx := make([]int, 0, len(texts))
	missTexts := make([]string, 0, len(texts))

	for i, text := range texts {
		if v, ok := c.get(ctx, c.key(text)); ok {
			out[i] = v
			c.hits.Add(1)
			continue
		}
		c.misses.Add(1)
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}

	if len(missTexts) == 0 {
		return out, nil
	}

	computed, err := c.inner.EmbedSet(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missTexts) {
		return nil, fmt.Errorf("embedding provider returned %d vectors for %d texts", len(computed), len(missTexts))
	}

	for j, idx := range missIdx {
		out[idx] = computed[j]
		c.set(ctx, c.key(missTexts[j]), computed[j])
	}

	return out, nil
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Close releases the Redis connection, if any.
func (c *Cache) Close() error {
	if c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

func (c *Cache) key(text string) string {
	sum := sha256.Sum256([]byte(c.namespace + "|" + text))
	return fmt.Sprintf("emb:%x", sum[:16])
}

func (c *Cache) get(ctx context.Context, key string) (Vector, bool) {
	c.mu.RLock()
	v, ok := c.l1[key]
	c.mu.RUnlock()
	if ok {
		return v, true
	}

	if c.rdb == nil {
		return nil, false
	}

	data, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}

	var stored Vector
	if err := json.Unmarshal(data, &stored); err != nil {
		c.logger.Debug("embedding cache: corrupt L2 entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	c.storeL1(key, stored)
	return stored, true
}

func (c *Cache) set(ctx context.Context, key string, v Vector) {
	c.storeL1(key, v)

	if c.rdb == nil {
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Debug("embedding cache: L2 set failed", zap.Error(err))
	}
}

// storeL1 evicts an arbitrary entry when the map is full.
func (c *Cache) storeL1(key string, v Vector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.l1[key]; !ok && len(c.l1) >= c.max {
		for k := range c.l1 {
			delete(c.l1, k)
			break
		}
	}
	c.l1[key] = v
}
