package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis создает разделяемый кэш заблокированных сессий поверх Redis
// из URL (например, redis://:pass@host:6379/0). Если prefix пустой —
// используется "blockedsessions:". Все экземпляры сервиса, смотрящие в
// один Redis, видят блокировку в пределах TTL request-токена.
func NewRedis(redisURL, prefix string, ttl time.Duration) (BlockedSessions, error) {
	if prefix == "" {
		prefix = "blockedsessions:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisCache{rdb: rdb, prefix: prefix, ttl: ttl}, nil
}

func (c *redisCache) key(userID int32) string {
	return c.prefix + strconv.FormatInt(int64(userID), 10)
}

// Храним момент блокировки в миллисекундах Unix-эпохи; авто-истечение
// по TTL делает сам Redis.
func (c *redisCache) Block(ctx context.Context, userID int32) error {
	blockedAt := time.Now().UTC().UnixMilli()
	return c.rdb.Set(ctx, c.key(userID), strconv.FormatInt(blockedAt, 10), c.ttl).Err()
}

func (c *redisCache) BlockedSince(ctx context.Context, userID int32, issuedAt time.Time) (bool, error) {
	v, err := c.rdb.Get(ctx, c.key(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}

		return false, err
	}

	blockedAt, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return false, err
	}

	return blockedAt > issuedAt.UnixMilli(), nil
}

func (c *redisCache) Close() error { return c.rdb.Close() }
