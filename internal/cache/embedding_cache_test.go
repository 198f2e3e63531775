package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddingKey(t *testing.T) {
	a := embeddingKey("nomic", "hello")
	assert.True(t, strings.HasPrefix(a, "docqa:embedding:nomic:"))
	assert.Len(t, strings.TrimPrefix(a, "docqa:embedding:nomic:"), 64)
	assert.Equal(t, a, embeddingKey("nomic", "hello"))
	assert.NotEqual(t, a, embeddingKey("other", "hello"))
	assert.NotEqual(t, a, embeddingKey("nomic", "hello!"))
}

func TestEmbeddingCache_UnreachableRedis(t *testing.T) {
	client := redisv9.NewClient(&redisv9.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	c := NewEmbeddingCache(client, 0)
	assert.Equal(t, defaultEmbeddingTTL, c.ttl)

	vec, hit, err := c.Get(context.Background(), "m", "text")
	require.Error(t, err)
	assert.False(t, hit)
	assert.Nil(t, vec)

	assert.Error(t, c.Set(context.Background(), "m", "text", []float32{1, 2}))
}
