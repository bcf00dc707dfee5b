package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/noah-isme/studentlink-portal/internal/stubserver"
	"github.com/noah-isme/studentlink-portal/pkg/config"
	"github.com/noah-isme/studentlink-portal/pkg/logger"
	"github.com/noah-isme/studentlink-portal/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	srv, err := stubserver.New(cfg.Stub, logr, metrics.New())
	if err != nil {
		logr.Fatal("failed to build stub server", zap.Error(err))
	}
	if err := srv.Run(); err != nil {
		logr.Fatal("stub server exited", zap.Error(err))
	}
}
