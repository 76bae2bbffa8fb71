package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/DevN0mad/Workasana/internal/config"
	"github.com/DevN0mad/Workasana/internal/core"
)

var (
	configPath = flag.String("config", "/etc/workasana/reportd.yaml", "Путь к файлу с конфигурацией")
)

func main() {
	flag.Parse()
	bootLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfgMgr, err := config.NewManager(*configPath, bootLogger, config.WithDaemon())
	if err != nil {
		bootLogger.Error("Failed to init config manager", "error", err)
		os.Exit(1)
	}

	logger, closeLog, err := cfgMgr.Current().Logging.NewLogger(os.Stdout)
	if err != nil {
		bootLogger.Error("Failed to init logger", "error", err)
		os.Exit(1)
	}
	defer closeLog()

	app := core.NewApp(ctx, logger)

	if err := app.ApplyConfig(cfgMgr.Current()); err != nil {
		logger.Error("Failed to apply initial config", "error", err)
		os.Exit(1)
	}

	cfgMgr.OnChange(func(newCfg config.Config) {
		if err := app.ApplyConfig(newCfg); err != nil {
			logger.Error("Failed to apply new config", "error", err)
		}
	})

	<-ctx.Done()
	logger.Info("Shutdown requested", "reason", ctx.Err())

	app.Shutdown()
	logger.Info("Shutdown complete")
}
