package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"tether/internal/config"
	"tether/internal/logging"
	"tether/internal/network"
)

func main() {
	configFlag := flag.String("config", "", "configuration file path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("ensure directories: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	engine, closeStore, err := buildEngine(cfg, logger)
	if err != nil {
		logger.Error("build engine", logging.Error(err))
		return
	}
	defer closeStore()

	if err := engine.Initialize(ctx); err != nil {
		logger.Error("initialize engine", logging.Error(err))
		return
	}

	probe := network.NewProbe(cfg.Sync.ProbeTarget, time.Duration(cfg.Sync.ProbeTimeoutSeconds)*time.Second)
	interval := time.Duration(cfg.Sync.IntervalSeconds) * time.Second

	logger.Info("tetherd started",
		logging.String("backend", cfg.Storage.Backend),
		logging.Int("pending", engine.PendingCount()),
		logging.Duration("interval", interval),
	)

	runLoop(ctx, logger, engine, probe, interval)
	logger.Info("tetherd shutting down")
}
