package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisAttemptLog stores submission attempt times in redis so the
// cooldown holds across every replica serving the same session.
func NewRedisAttemptLog(client *redis.Client) *RedisAttemptLog {
	return &RedisAttemptLog{
		client:   client,
		minTTL:   time.Second,
		keySpace: "order:attempt",
	}
}

type RedisAttemptLog struct {
	client   *redis.Client
	minTTL   time.Duration
	keySpace string
}

func (r RedisAttemptLog) LastAttempt(ctx context.Context, sessionID string) (time.Time, bool, error) {
	key := r.cacheKey(sessionID)

	raw, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse attempt time failed: %w", err)
	}
	return time.UnixMilli(ms), true, nil
}

// RecordAttempt keeps the entry for at least ttl; once it expires the
// cooldown is over anyway.
func (r RedisAttemptLog) RecordAttempt(ctx context.Context, sessionID string, at time.Time, ttl time.Duration) error {
	if ttl < r.minTTL {
		ttl = r.minTTL
	}
	key := r.cacheKey(sessionID)
	if err := r.client.Set(ctx, key, strconv.FormatInt(at.UnixMilli(), 10), ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (r RedisAttemptLog) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.cacheKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r RedisAttemptLog) cacheKey(sessionID string) string {
	return fmt.Sprintf("%s:%s", r.keySpace, sessionID)
}
