package app

import (
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
	"github.com/taoyao-code/vedirect-server/internal/storage"
	"github.com/taoyao-code/vedirect-server/internal/storage/gormrepo"
)

// NewCoreRepo 打开查询侧 gorm 连接并构造 CoreRepo。
// 写入热路径走 pgx，这里只服务只读 API 的查询。
// 数据库未启用时返回 (nil, nil)。
func NewCoreRepo(cfg cfgpkg.DatabaseConfig, log *zap.Logger) (storage.CoreRepo, error) {
	if !cfg.Enable {
		return nil, nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		log.Error("gorm open error", zap.Error(err))
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	return gormrepo.New(db), nil
}
