package queue

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDedupStoreConfig configures the Redis-backed dedup store.
type RedisDedupStoreConfig struct {
	// Prefix namespaces the keys written to Redis.
	// Default: "rpcshield:dedup:"
	Prefix string

	// TTL is how long a recorded key is remembered. Zero means keys never
	// expire, which grows without bound; set a TTL in production.
	// Default: 24h
	TTL time.Duration
}

// RedisDedupStore is a DedupStore backed by Redis, for deployments where
// several engine instances must agree on which idempotency keys have been
// seen. Recorded keys expire after the configured TTL so the set does not
// grow forever.
type RedisDedupStore struct {
	client *redis.Client
	config RedisDedupStoreConfig
}

// NewRedisDedupStore creates a dedup store on top of an existing client.
func NewRedisDedupStore(client *redis.Client, config RedisDedupStoreConfig) *RedisDedupStore {
	if config.Prefix == "" {
		config.Prefix = "rpcshield:dedup:"
	}
	if config.TTL == 0 {
		config.TTL = 24 * time.Hour
	}

	return &RedisDedupStore{
		client: client,
		config: config,
	}
}

// Seen reports whether the key has been recorded and has not expired.
func (s *RedisDedupStore) Seen(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.config.Prefix+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkSeen records the key with the configured TTL. SET NX makes the mark
// itself atomic, so two engine instances racing on the same key cannot each
// treat it as fresh: the loser's write is a no-op and does not extend the
// winner's TTL.
func (s *RedisDedupStore) MarkSeen(ctx context.Context, key string) error {
	return s.client.SetNX(ctx, s.config.Prefix+key, "1", s.config.TTL).Err()
}

var _ DedupStore = (*RedisDedupStore)(nil)
