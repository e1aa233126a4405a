package embedding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (p *countingProvider) Embed(ctx context.Context, text string) (Vector, error) {
	out, err := p.EmbedSet(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

func (p *countingProvider) EmbedSet(_ context.Context, texts []string) ([]Vector, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, append([]string(nil), texts...))
	if p.err != nil {
		return nil, p.err
	}

	out := make([]Vector, len(texts))
	for i, text := range texts {
		out[i] = Vector{float32(len(text)), 1}
	}
	return out, nil
}

var _ Provider = (*Cache)(nil)

func TestCacheServesHitsAndSendsMissesInOrder(t *testing.T) {
	inner := &countingProvider{}
	cache := NewCache(context.Background(), inner, CacheConfig{Namespace: "test"}, nil)
	ctx := context.Background()

	_, err := cache.EmbedSet(ctx, []string{"a", "bb"})
	require.NoError(t, err)

	out, err := cache.EmbedSet(ctx, []string{"ccc", "a", "dddd", "bb"})
	require.NoError(t, err)

	require.Len(t, inner.calls, 2)
	assert.Equal(t, []string{"ccc", "dddd"}, inner.calls[1])
	assert.Equal(t, []Vector{{3, 1}, {1, 1}, {4, 1}, {2, 1}}, out)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(4), misses)
}

func TestCacheEmbedUsesCachedVector(t *testing.T) {
	inner := &countingProvider{}
	cache := NewCache(context.Background(), inner, CacheConfig{}, nil)

	first, err := cache.Embed(context.Background(), "python")
	require.NoError(t, err)
	second, err := cache.Embed(context.Background(), "python")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, inner.calls, 1)
}

func TestCachePropagatesProviderErrors(t *testing.T) {
	boom := errors.New("provider down")
	cache := NewCache(context.Background(), &countingProvider{err: boom}, CacheConfig{}, nil)

	_, err := cache.EmbedSet(context.Background(), []string{"x"})
	require.ErrorIs(t, err, boom)
}

func TestCacheEvictsWhenFull(t *testing.T) {
	inner := &countingProvider{}
	cache := NewCache(context.Background(), inner, CacheConfig{MaxEntries: 2}, nil)
	ctx := context.Background()

	_, err := cache.EmbedSet(ctx, []string{"a", "b", "c"})
	require.NoError(t, err)

	cache.mu.RLock()
	size := len(cache.l1)
	cache.mu.RUnlock()
	assert.Equal(t, 2, size)
}

func TestCacheInvalidRedisURLDisablesL2(t *testing.T) {
	cache := NewCache(context.Background(), &countingProvider{}, CacheConfig{RedisURL: "://bad"}, nil)
	assert.Nil(t, cache.rdb)
	assert.NoError(t, cache.Close())
}
