package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RedisStore keeps one sorted set per key, scored by hit time in
// milliseconds, so every replica sees the same window.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "moodkeeper:ratelimit:"}
}

// NewRedisClient connects and pings, in the manner of a startup check.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return client, nil
}

func (s *RedisStore) Take(ctx context.Context, key string, now time.Time, window time.Duration, max int) (Decision, error) {
	k := s.prefix + key
	nowMs := now.UnixMilli()
	cutoff := strconv.FormatInt(now.Add(-window).UnixMilli(), 10)
	member := strconv.FormatInt(nowMs, 10) + "-" + uuid.NewString()

	var card *redis.IntCmd
	var oldest *redis.ZSliceCmd

	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, k, "-inf", cutoff)
		p.ZAdd(ctx, k, &redis.Z{Score: float64(nowMs), Member: member})
		card = p.ZCard(ctx, k)
		oldest = p.ZRangeWithScores(ctx, k, 0, 0)
		p.PExpire(ctx, k, window)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit: %w", err)
	}

	count := int(card.Val())
	if count <= max {
		return Decision{Allowed: true, Remaining: max - count}, nil
	}

	// Rejected hits do not occupy the window.
	if err := s.client.ZRem(ctx, k, member).Err(); err != nil {
		return Decision{}, fmt.Errorf("redis rate limit: %w", err)
	}

	first := now
	if z := oldest.Val(); len(z) > 0 {
		first = time.UnixMilli(int64(z[0].Score))
	}

	return Decision{Allowed: false, Remaining: 0, RetryAfter: retryAfter(first, now, window)}, nil
}
