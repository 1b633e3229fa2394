package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// AttemptLimiter ограничение числа попыток входа по ключу
type AttemptLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Reset(ctx context.Context, key string) error
}

// RedisLimiter счетчик попыток, INCR и EXPIRE в одной транзакции MULTI.
// Окно отсчитывается от последней попытки.
type RedisLimiter struct {
	client redis.Cmdable
	max    int64
	window time.Duration
	prefix string
}

func NewRedisLimiter(client redis.Cmdable, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client: client,
		max:    int64(max),
		window: window,
		prefix: "donaplus:signin:",
	}
}

func (l *RedisLimiter) key(k string) string {
	return l.prefix + strings.ToLower(strings.TrimSpace(k))
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.key(key)
	var incr *redis.IntCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, l.window)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("count attempts: %w", err)
	}
	return incr.Val() <= l.max, nil
}

func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, l.key(key)).Err()
}
