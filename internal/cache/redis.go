package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Camalot9/picasaweb-go/internal/logger"
)

// KeyPrefixCache is the prefix for cached response keys.
const KeyPrefixCache = "picasa:cache:"

// RedisStore caches response bodies in Redis, sharing the cache across
// processes. Expiry is delegated to Redis TTLs, so there is nothing to
// sweep. Like FileStore it is fail-soft: Redis errors log a warning and
// degrade to a miss or a dropped write, never a request error.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
}

// NewRedisStore creates a Redis-backed store. A zero ttl means DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration, log logger.Logger) *RedisStore {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisStore{client: client, ttl: ttl, log: log}
}

// RedisKey returns the Redis key for a request URL.
func RedisKey(url string) string {
	return KeyPrefixCache + SanitizeKey(url)
}

// Get returns the cached body for url, or ok=false on a miss.
func (s *RedisStore) Get(ctx context.Context, url string) (string, bool) {
	body, err := s.client.Get(ctx, RedisKey(url)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.log.Warn("failed to read cached response", logger.Error(err))
		}
		return "", false
	}
	return body, true
}

// Put stores body under url. Empty bodies are skipped.
func (s *RedisStore) Put(ctx context.Context, url, body string) {
	if body == "" {
		return
	}
	if err := s.client.Set(ctx, RedisKey(url), body, s.ttl).Err(); err != nil {
		s.log.Warn("failed to cache response", logger.Error(err))
	}
}

// Invalidate drops the entry for url.
func (s *RedisStore) Invalidate(ctx context.Context, url string) {
	if err := s.client.Del(ctx, RedisKey(url)).Err(); err != nil {
		s.log.Warn("failed to invalidate cached response", logger.Error(err))
	}
}

// Flush removes every cached response key.
func (s *RedisStore) Flush(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, KeyPrefixCache+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
