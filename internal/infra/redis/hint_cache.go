package redis

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"time"

	"github.com/redis/go-redis/v9"

	"ctg-quiz-service/internal/app"
)

// HintCache decorates a HintProvider with a Redis cache keyed by question
// text, so repeat hint requests for the same question skip the LLM backend.
// Caching stays best effort: any Redis failure falls through to the provider.
type HintCache struct {
	client   *redis.Client
	provider app.HintProvider
	ttl      time.Duration
}

func NewHintCache(client *redis.Client, provider app.HintProvider, ttl time.Duration) *HintCache {
	return &HintCache{client: client, provider: provider, ttl: ttl}
}

func (c *HintCache) FetchHint(ctx context.Context, questionText string) string {
	key := c.key(questionText)
	if hint, err := c.client.Get(ctx, key).Result(); err == nil && hint != "" {
		return hint
	}

	hint := c.provider.FetchHint(ctx, questionText)
	_ = c.client.Set(ctx, key, hint, c.ttl).Err()
	return hint
}

func (c *HintCache) key(questionText string) string {
	// question text can exceed sensible key length, hash it
	sum := sha1.Sum([]byte(questionText))
	return "quiz:hint:" + hex.EncodeToString(sum[:])
}
