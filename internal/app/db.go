package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
	"github.com/taoyao-code/vedirect-server/internal/migrate"
	pgstorage "github.com/taoyao-code/vedirect-server/internal/storage/pg"
)

// ConnectDBAndMigrate 建立数据库连接并按需执行迁移。
// 数据库未启用时返回 (nil, nil)。
func ConnectDBAndMigrate(ctx context.Context, cfg cfgpkg.DatabaseConfig, log *zap.Logger) (*pgxpool.Pool, error) {
	if !cfg.Enable {
		log.Info("database is disabled, telemetry will not be persisted")
		return nil, nil
	}

	dbpool, err := pgstorage.NewPool(ctx, cfg.DSN, cfg.MaxOpenConns, cfg.MaxIdleConns, cfg.ConnMaxLifetime, log)
	if err != nil {
		log.Error("db connect error", zap.Error(err))
		return nil, err
	}
	if cfg.AutoMigrate {
		if err = (migrate.Runner{Dir: cfg.MigrationsDir}).Up(ctx, dbpool); err != nil {
			log.Error("db migrate error", zap.Error(err))
			return dbpool, err
		}
		log.Info("db migrations applied")
	}
	return dbpool, nil
}
