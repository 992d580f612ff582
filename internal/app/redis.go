package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
	"github.com/taoyao-code/vedirect-server/internal/health"
	redisstorage "github.com/taoyao-code/vedirect-server/internal/storage/redis"
)

// NewRedisClient 创建Redis客户端。未启用时返回 (nil, nil)。
func NewRedisClient(cfg cfgpkg.RedisConfig, logger *zap.Logger) (*redisstorage.Client, error) {
	if !cfg.Enable {
		logger.Info("redis is disabled, skipping initialization")
		return nil, nil
	}

	client, err := redisstorage.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	logger.Info("redis client initialized",
		zap.String("addr", cfg.Addr),
		zap.Int("db", cfg.DB))

	return client, nil
}

// NewLatestCache 创建最新遥测缓存。client 为 nil 时返回 nil。
func NewLatestCache(client *redisstorage.Client, cfg cfgpkg.RedisConfig) *redisstorage.LatestCache {
	if client == nil {
		return nil
	}
	return redisstorage.NewLatestCache(client, cfg.LatestTTL)
}

// AddRedisChecker 添加Redis检查器到聚合器
func AddRedisChecker(aggregator *health.Aggregator, redisClient *redisstorage.Client) {
	if redisClient != nil {
		aggregator.AddChecker(health.NewRedisChecker(redisClient))
	}
}
