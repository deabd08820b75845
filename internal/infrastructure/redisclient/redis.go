package redisclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/niklvrr/TicketBoard/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var (
	errRedisAddrEmpty = errors.New("redis address is empty")
	errRedisPing      = errors.New("redis ping error")
)

func NewRedisClient(ctx context.Context, cfg *config.RedisConfig, logger *zap.Logger) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, errRedisAddrEmpty
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rc.Ping(ctx).Err(); err != nil {
		rc.Close()
		return nil, fmt.Errorf("%w: %w", errRedisPing, err)
	}

	logger.Debug("redis connection ok", zap.String("addr", cfg.Addr))
	return rc, nil
}
