package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nearby-places/internal/config"
)

const (
	dialTimeout = 2 * time.Second
	// Кеш не должен задерживать поиск: медленный Redis считается промахом
	opTimeout = 500 * time.Millisecond

	connectAttempts = 3
)

// Redis - подключение к Redis для кеша результатов поиска
type Redis struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedis подключается к Redis. Ping повторяется несколько раз,
// чтобы сервис переживал одновременный старт с Redis.
func NewRedis(cfg *config.RedisConfig, logger *zap.Logger) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(200*time.Millisecond), connectAttempts-1)
	ping := func() error {
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		return client.Ping(ctx).Err()
	}
	notify := func(err error, wait time.Duration) {
		logger.Warn("Redis ping failed, retrying",
			zap.String("addr", cfg.Addr()),
			zap.Duration("wait", wait),
			zap.Error(err))
	}

	if err := backoff.RetryNotify(ping, policy, notify); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr(), err)
	}

	logger.Info("Redis connected", zap.String("addr", cfg.Addr()), zap.Int("db", cfg.DB))

	return &Redis{
		client: client,
		logger: logger,
	}, nil
}

func (r *Redis) Close() error {
	r.logger.Info("Closing Redis connection")
	return r.client.Close()
}

// Health проверяет доступность Redis
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *Redis) Client() *redis.Client {
	return r.client
}
