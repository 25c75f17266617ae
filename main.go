package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/talqs/talqs/backend/go-services/internal/app"
	"github.com/talqs/talqs/backend/go-services/internal/config"
	"github.com/talqs/talqs/backend/go-services/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	// LOG_LEVEL: debug|info|warn|error, LOG_FORMAT: text|json (env or .env)
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	logger.Infof("config loaded: generation=%s auth=%s mongo=%v redis=%v minio=%v",
		cfg.Generation.Provider, cfg.Auth.Mode, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.MinIO.Endpoint != "")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, app.Options{
		Name:         "talqs",
		DocumentFlow: true,
		Summarize:    true,
		QA:           true,
	})
	if err != nil {
		logger.Fatalf("failed to build service: %v", err)
	}
	if err := a.Run(ctx); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
