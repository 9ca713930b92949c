package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/taoyao-code/record-server/internal/app/bootstrap"
	cfgpkg "github.com/taoyao-code/record-server/internal/config"
	"github.com/taoyao-code/record-server/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "config file path (default: $RECORD_CONFIG or configs/example.yaml)")
	flag.Parse()

	// 1) 加载配置
	cfg, err := cfgpkg.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "load config:", err)
		os.Exit(1)
	}

	// 2) 初始化日志
	logger, err := logging.InitLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	// 3) 分阶段启动，阻塞至收到退出信号
	if err := bootstrap.Run(cfg, zap.L()); err != nil {
		zap.L().Error("record server exited with error", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}
