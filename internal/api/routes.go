package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/taoyao-code/vedirect-server/internal/api/middleware"
	"github.com/taoyao-code/vedirect-server/internal/session"
	"github.com/taoyao-code/vedirect-server/internal/storage"
	redisstore "github.com/taoyao-code/vedirect-server/internal/storage/redis"
)

// RegisterReadOnlyRoutes 注册只读查询路由
func RegisterReadOnlyRoutes(
	r *gin.Engine,
	repo storage.CoreRepo,
	sess session.PresenceStore,
	cache *redisstore.LatestCache,
	historyLimit int,
	authCfg middleware.AuthConfig,
	logger *zap.Logger,
) {
	if r == nil || repo == nil || sess == nil {
		return
	}

	handler := NewReadOnlyHandler(repo, sess, cache, historyLimit, logger)

	// 快速就绪检查(无需认证)
	r.GET("/ready", handler.Ready)

	// API路由组(需要认证)
	api := r.Group("/api")
	api.Use(middleware.CORS())
	if authCfg.Enabled {
		api.Use(middleware.APIKeyAuth(authCfg, logger))
		logger.Info("api authentication enabled", zap.Int("api_keys_count", len(authCfg.APIKeys)))
	} else {
		logger.Warn("api authentication disabled - only for development!")
	}

	// 设备与遥测查询
	api.GET("/devices", handler.ListDevices)
	api.GET("/devices/:serial", handler.GetDevice)
	api.GET("/devices/:serial/latest", handler.GetLatest)
	api.GET("/devices/:serial/history", handler.ListHistory)

	// 在线状态
	api.GET("/presence", handler.ListPresence)

	logger.Info("readonly routes registered", zap.Int("endpoints", 5))
}
