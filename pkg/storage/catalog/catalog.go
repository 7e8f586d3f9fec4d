// Package catalog provides an ordered record list backed by a Redis list.
// Records are opaque serialized blobs; interpretation is the caller's concern.
package catalog

import (
	"context"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Config contains the information required to reach the catalog backend.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Key           string
}

// Store represents the catalog capabilities the service expects. Append
// pushes to the head, so list order is newest-insertion-first. Remove
// rewrites the list without the matched records and is serialized against
// concurrent Remove calls.
type Store interface {
	Append(ctx context.Context, record []byte) error
	List(ctx context.Context) ([][]byte, error)
	Remove(ctx context.Context, match func([]byte) bool) (removed, remaining int64, err error)
	Count(ctx context.Context) (int64, error)
	Close() error
}

// New connects to Redis and verifies the connection.
func New(ctx context.Context, cfg Config) (Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &redisStore{rdb: rdb, key: cfg.Key}, nil
}

type redisStore struct {
	rdb *redis.Client
	key string

	// mu serializes the read-filter-rewrite sequence in Remove.
	mu sync.Mutex
}

func (s *redisStore) Append(ctx context.Context, record []byte) error {
	return s.rdb.LPush(ctx, s.key, record).Err()
}

func (s *redisStore) List(ctx context.Context) ([][]byte, error) {
	values, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	records := make([][]byte, 0, len(values))
	for _, v := range values {
		records = append(records, []byte(v))
	}
	return records, nil
}

func (s *redisStore) Remove(ctx context.Context, match func([]byte) bool) (int64, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	values, err := s.rdb.LRange(ctx, s.key, 0, -1).Result()
	if err != nil {
		return 0, 0, err
	}

	kept, removed := filterValues(values, match)
	if removed == 0 {
		return 0, int64(len(kept)), nil
	}

	pipe := s.rdb.TxPipeline()
	pipe.Del(ctx, s.key)
	if len(kept) > 0 {
		// RPush in LRange order preserves head-to-tail ordering.
		args := make([]interface{}, len(kept))
		for i, v := range kept {
			args[i] = v
		}
		pipe.RPush(ctx, s.key, args...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, fmt.Errorf("rewrite catalog: %w", err)
	}
	return removed, int64(len(kept)), nil
}

func (s *redisStore) Count(ctx context.Context) (int64, error) {
	return s.rdb.LLen(ctx, s.key).Result()
}

func (s *redisStore) Close() error {
	return s.rdb.Close()
}

func filterValues(values []string, match func([]byte) bool) (kept []string, removed int64) {
	kept = make([]string, 0, len(values))
	for _, v := range values {
		if match([]byte(v)) {
			removed++
			continue
		}
		kept = append(kept, v)
	}
	return kept, removed
}
