package app

import (
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
	"github.com/taoyao-code/vedirect-server/internal/session"
	redisstorage "github.com/taoyao-code/vedirect-server/internal/storage/redis"
)

// NewPresenceStore 构造设备在线状态存储。
// 配置要求 redis 且客户端可用时用 Redis 实现（多实例部署共享视图），
// 否则退回内存实现。
func NewPresenceStore(
	cfg cfgpkg.SessionConfig,
	redisClient *redisstorage.Client,
	serverID string,
	logger *zap.Logger,
) session.PresenceStore {
	if cfg.Store == "redis" && redisClient != nil {
		logger.Info("using redis presence store",
			zap.String("server_id", serverID),
			zap.Duration("offline_timeout", cfg.OfflineTimeout))
		return session.NewRedisManager(redisClient.Client, serverID, cfg.OfflineTimeout)
	}

	if cfg.Store == "redis" {
		logger.Warn("session.store=redis but redis is disabled, falling back to memory store")
	}
	logger.Info("using memory presence store",
		zap.Duration("offline_timeout", cfg.OfflineTimeout))
	return session.New(cfg.OfflineTimeout)
}
