package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

const defaultEmbeddingTTL = 7 * 24 * time.Hour

// EmbeddingCache keeps chunk vectors in redis keyed by model and text hash,
// so re-uploading a document after a restart does not re-embed it.
type EmbeddingCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewEmbeddingCache(client *redisv9.Client, ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = defaultEmbeddingTTL
	}
	return &EmbeddingCache{client: client, ttl: ttl}
}

func (c *EmbeddingCache) Get(ctx context.Context, model, text string) ([]float32, bool, error) {
	raw, err := c.client.Get(ctx, embeddingKey(model, text)).Bytes()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get embedding failed: %w", err)
	}

	var vec []float32
	if err := json.Unmarshal(raw, &vec); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached embedding failed: %w", err)
	}
	return vec, true, nil
}

func (c *EmbeddingCache) Set(ctx context.Context, model, text string, vec []float32) error {
	payload, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("marshal embedding cache failed: %w", err)
	}
	if err := c.client.Set(ctx, embeddingKey(model, text), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set embedding failed: %w", err)
	}
	return nil
}

func embeddingKey(model, text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("docqa:embedding:%s:%s", model, hex.EncodeToString(sum[:]))
}
