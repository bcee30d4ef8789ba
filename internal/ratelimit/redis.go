package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "poetry:ratelimit:"

// Redis counts requests per key in fixed one-minute windows shared by every
// server instance pointed at the same Redis.
type Redis struct {
	client *redis.Client
	rpm    int
	now    func() time.Time
}

func NewRedis(client *redis.Client, rpm int) *Redis {
	return &Redis{client: client, rpm: rpm, now: time.Now}
}

func NewRedisFromURL(url string, rpm int) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	return NewRedis(redis.NewClient(opts), rpm), nil
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	now := r.now()
	window := now.Truncate(time.Minute)
	redisKey := fmt.Sprintf("%s%s:%d", keyPrefix, key, window.Unix())

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, 2*time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit counter: %w", err)
	}

	if incr.Val() > int64(r.rpm) {
		return false, window.Add(time.Minute).Sub(now), nil
	}
	return true, 0, nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
