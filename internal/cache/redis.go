package cache

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Hot profiles expire so corrections eventually propagate without a manual
// cache flush.
const profileTTL = 24 * time.Hour

// RedisCache is the hot tier of the shared word-profile store. The server
// runs fine without it (fail-open): every miss just falls through to
// Postgres or the LLM.
type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	log.Printf("Connected to Redis at %s", redisURL)
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	return c.client.Get(ctx, key).Bytes()
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, key, value, profileTTL).Err()
}

func (c *RedisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// ProfileKey generates the cache key for a word profile.
// Lookups are case-insensitive, so keys are normalized to lowercase.
func ProfileKey(word string) string {
	return "profile:" + strings.ToLower(strings.TrimSpace(word))
}
