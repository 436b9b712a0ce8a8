package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yegors/flight-overlay/internal/config"
	"github.com/yegors/flight-overlay/internal/overlay"
	"github.com/yegors/flight-overlay/internal/scheduler"
	"github.com/yegors/flight-overlay/internal/telemetry"
	"github.com/yegors/flight-overlay/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	source := flag.String("source", "", "Override the telemetry source URL")
	logFile := flag.String("log", "overlay-tui.log", "Log file, the terminal is owned by the UI")
	flag.Parse()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		if *configPath != "" {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		cfg = config.Default()
	}
	if *source != "" {
		cfg.Telemetry.SourceURL = *source
	}
	if err := cfg.ValidateHeadless(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	file := cfg.Logging.File
	if file == "" {
		file = *logFile
	}
	log, err := logger.New(logger.Config{
		Level:         cfg.Logging.Level,
		Format:        "json",
		File:          file,
		MaxSizeMB:     cfg.Logging.MaxSizeMB,
		MaxBackups:    cfg.Logging.MaxBackups,
		MaxAgeDays:    cfg.Logging.MaxAgeDays,
		DisableStderr: true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store := telemetry.NewStore()
	client := telemetry.NewClient(cfg.Telemetry.SourceURL,
		time.Duration(cfg.Telemetry.TimeoutMs)*time.Millisecond, log)
	poller := telemetry.NewPoller(client, store, log)

	p := tea.NewProgram(newModel(cfg.Telemetry.SourceURL, poller.Status), tea.WithAltScreen())
	port := programPort{send: p.Send}

	engine, err := overlay.NewEngine(overlay.SettingsFromConfig(cfg), store, port, port, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating overlay engine: %v\n", err)
		os.Exit(1)
	}
	sched := scheduler.New(log)
	if err := engine.Register(sched, poller, cfg.Telemetry.Async); err != nil {
		fmt.Fprintf(os.Stderr, "Error registering overlay tasks: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Error("Scheduler stopped", logger.Error(err))
		}
	}()

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
