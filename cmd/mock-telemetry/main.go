package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yegors/flight-overlay/internal/config"
	"github.com/yegors/flight-overlay/internal/mocksource"
	"github.com/yegors/flight-overlay/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	listen := flag.String("listen", "", "Override the listen address from the [mock] section")
	timeScale := flag.Float64("time-scale", 0, "Override the sim seconds per wall-clock second")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		if *configPath != "" {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}
	if *listen != "" {
		cfg.Mock.Listen = *listen
	}
	if *timeScale > 0 {
		cfg.Mock.TimeScale = *timeScale
	}
	if err := cfg.ValidateHeadless(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		File:       cfg.Logging.File,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting mock telemetry source",
		logger.String("destination", cfg.Mock.DestinationName),
		logger.Float64("time_scale", cfg.Mock.TimeScale))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mocksource.NewServer(cfg.Mock, log).Run(ctx); err != nil {
		log.Error("Mock telemetry source failed", logger.Error(err))
		os.Exit(1)
	}
	log.Info("Mock telemetry source stopped")
}
