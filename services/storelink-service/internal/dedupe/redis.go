// Package dedupe remembers webhook delivery ids so platform redeliveries are
// acknowledged without being processed twice.
package dedupe

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb    redis.Cmdable
	ttl    time.Duration
	prefix string
}

func NewRedisStore(rdb redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl, prefix: "storelink:webhook:"}
}

// Claim records deliveryID and reports whether this is its first sighting.
func (s *RedisStore) Claim(ctx context.Context, deliveryID string) (bool, error) {
	deliveryID = strings.TrimSpace(deliveryID)
	if deliveryID == "" {
		return false, errors.New("delivery id is empty")
	}
	return s.rdb.SetNX(ctx, s.prefix+deliveryID, time.Now().UTC().Unix(), s.ttl).Result()
}

func ReadyCheck(rdb redis.Cmdable) func(context.Context) error {
	return func(ctx context.Context) error {
		if rdb == nil {
			return errors.New("redis not configured")
		}
		return rdb.Ping(ctx).Err()
	}
}
