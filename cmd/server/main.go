package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/taoyao-code/timebox/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/timebox/internal/config"
	"github.com/taoyao-code/timebox/internal/logging"
)

func main() {
	// 1) 加载配置
	cfg, err := cfgpkg.Load("")
	if err != nil {
		panic(err)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// 3) 启动守护进程，阻塞直到收到退出信号
	if err := bootstrap.Run(context.Background(), cfg, zap.L()); err != nil {
		logger.Fatal("timebox daemon exited", zap.Error(err))
	}
}
