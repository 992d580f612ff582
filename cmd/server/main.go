package main

import (
	"flag"
	"os"

	"go.uber.org/zap"

	"github.com/taoyao-code/vedirect-server/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/vedirect-server/internal/config"
	"github.com/taoyao-code/vedirect-server/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "配置文件路径（默认读 VED_CONFIG 或 configs/example.yaml）")
	flag.Parse()

	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		panic(err)
	}

	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	if err := bootstrap.Run(cfg, zap.L()); err != nil {
		zap.L().Error("server exited with error", zap.Error(err))
		os.Exit(1)
	}
}
