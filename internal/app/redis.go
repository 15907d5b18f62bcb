package app

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/outbound"
	redisstorage "github.com/taoyao-code/timebox/internal/storage/redis"
)

// NewRedisClient 创建Redis客户端，未启用时返回 nil
func NewRedisClient(cfg cfgpkg.RedisConfig, logger *zap.Logger) (*redisstorage.Client, error) {
	if !cfg.Enabled {
		logger.Info("redis is disabled, skipping initialization")
		return nil, nil
	}

	client, err := redisstorage.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("redis client initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("pool_size", cfg.PoolSize))

	return client, nil
}

// NewQueue 按 queue.backend 创建下发队列
func NewQueue(cfg cfgpkg.QueueConfig, client *redisstorage.Client, logger *zap.Logger) (outbound.Queue, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "memory":
		logger.Info("using in-memory job queue", zap.Int("capacity", cfg.Capacity))
		return outbound.NewMemoryQueue(cfg.Capacity), nil
	case "redis":
		if client == nil {
			return nil, fmt.Errorf("queue backend redis: %w", redisstorage.ErrDisabled)
		}
		logger.Info("using redis job queue", zap.Int("capacity", cfg.Capacity))
		return outbound.NewRedisQueue(redisstorage.NewJobQueue(client, cfg.Capacity)), nil
	default:
		return nil, fmt.Errorf("unknown queue backend %q", cfg.Backend)
	}
}
