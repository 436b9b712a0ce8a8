package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/browser"
	"github.com/yegors/flight-overlay/internal/api"
	"github.com/yegors/flight-overlay/internal/config"
	"github.com/yegors/flight-overlay/internal/overlay"
	"github.com/yegors/flight-overlay/internal/scheduler"
	"github.com/yegors/flight-overlay/internal/telemetry"
	"github.com/yegors/flight-overlay/internal/websocket"
	"github.com/yegors/flight-overlay/pkg/logger"
)

var (
	// Version is injected at build time
	Version = "dev"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file (optional - will search in configs/ and root directory)")
	flag.Parse()

	// Load configuration with fallback logic
	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		if *configPath != "" {
			fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "No configuration file found, using built-in defaults")
		cfg = config.Default()
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	// Create logger
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

	log.Info("Starting flight overlay server",
		logger.String("version", Version),
		logger.String("config_path", *configPath),
		logger.String("telemetry_source", cfg.Telemetry.SourceURL),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry components
	store := telemetry.NewStore()
	client := telemetry.NewClient(cfg.Telemetry.SourceURL,
		time.Duration(cfg.Telemetry.TimeoutMs)*time.Millisecond, log)
	poller := telemetry.NewPoller(client, store, log)

	// Create and start WebSocket server
	wsServer := websocket.NewServer(log)
	go wsServer.Run(ctx)

	frames := api.NewFrameCache(wsServer)
	wsServer.SetMessageHandler(api.NewWebSocketHandler(frames, log))

	engine, err := overlay.NewEngine(overlay.SettingsFromConfig(cfg), store, frames, frames, log)
	if err != nil {
		log.Error("Failed to create overlay engine", logger.Error(err))
		os.Exit(1)
	}

	sched := scheduler.New(log)
	if err := engine.Register(sched, poller, cfg.Telemetry.Async); err != nil {
		log.Error("Failed to register overlay tasks", logger.Error(err))
		os.Exit(1)
	}
	schedDone := make(chan struct{})
	go func() {
		defer close(schedDone)
		if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("Scheduler stopped", logger.Error(err))
		}
	}()

	router := api.NewRouter(frames, poller.Status, cfg, wsServer, log)
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router.Routes(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSecs) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSecs) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSecs) * time.Second,
	}

	go func() {
		log.Info("Starting HTTP server", logger.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error on startup", logger.String("addr", server.Addr), logger.Error(err))
			cancel()
		}
	}()

	if cfg.Server.OpenBrowser {
		url := fmt.Sprintf("http://%s/", addr)
		if err := browser.OpenURL(url); err != nil {
			log.Warn("Failed to open browser", logger.String("url", url), logger.Error(err))
		}
	}

	// Wait for interrupt signal or a failed listener
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case <-ctx.Done():
	}

	log.Info("Shutting down server...")

	// Stop the overlay tasks before the listener so no frame is broadcast mid-shutdown
	cancel()
	<-schedDone
	log.Info("Overlay tasks stopped.", logger.Any("task_runs", sched.Stats()))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", logger.String("addr", server.Addr), logger.Error(err))
	}

	log.Info("Server fully stopped")
}
