package lock

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domain "github.com/ialiagadev/physia-scheduler/internal/domain/appointment"
)

// unlockScript deletes the key only while it still holds our token.
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	client *redis.Client
	log    *zap.Logger
}

func NewRedisLocker(client *redis.Client, log *zap.Logger) *RedisLocker {
	return &RedisLocker{client: client, log: log}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func (l *RedisLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()

	acquired, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		l.log.Error("lock.TryLock failed", zap.String("key", key), zap.Error(err))
		return "", false, err
	}
	if !acquired {
		l.log.Info("lock.TryLock not acquired", zap.String("key", key))
		return "", false, nil
	}

	return token, true, nil
}

func (l *RedisLocker) Unlock(ctx context.Context, key string, token string) error {
	released, err := unlockScript.Run(ctx, l.client, []string{key}, token).Int()
	if err != nil {
		l.log.Error("lock.Unlock failed", zap.String("key", key), zap.Error(err))
		return err
	}
	if released == 0 {
		l.log.Warn("lock.Unlock lock no longer owned", zap.String("key", key))
	}
	return nil
}

// Compile-time check
var _ domain.Locker = (*RedisLocker)(nil)
