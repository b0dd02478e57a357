package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the key the snapshot document is stored under.
const DefaultRedisKey = "bankbridge:snapshot:banks"

// ErrSnapshotMissing indicates the Redis key holds no snapshot document.
var ErrSnapshotMissing = errors.New("snapshot missing in redis")

// RedisSource reads the dataset document from a Redis string key. This lets
// several service instances share one published dataset. The document is
// still read exactly once at startup.
type RedisSource struct {
	redis *redis.Client
	key   string
}

// NewRedisSource creates a Redis-backed source. An empty key selects DefaultRedisKey.
func NewRedisSource(redisClient *redis.Client, key string) *RedisSource {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSource{
		redis: redisClient,
		key:   key,
	}
}

// Load implements Source.
func (r *RedisSource) Load(ctx context.Context) (*Store, error) {
	data, err := r.redis.Get(ctx, r.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w: key %s", ErrSnapshotMissing, r.key)
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return Parse(data)
}

// Name implements Source.
func (r *RedisSource) Name() string {
	return "redis:" + r.key
}

// Publish writes the store's records under the source key with no expiry.
func (r *RedisSource) Publish(ctx context.Context, store *Store) error {
	if store == nil {
		return fmt.Errorf("snapshot store cannot be nil")
	}

	data, err := json.Marshal(store.Document())
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := r.redis.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
