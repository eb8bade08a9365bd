// Package main runs the PlaySquad matchmaking daemon: HTTP API, presence
// channel and the scoring engine over a local SQLite database.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/mkovalev/playsquad/internal/api"
	"github.com/mkovalev/playsquad/internal/config"
	"github.com/mkovalev/playsquad/internal/events"
	"github.com/mkovalev/playsquad/internal/match"
	"github.com/mkovalev/playsquad/internal/presence"
	"github.com/mkovalev/playsquad/internal/status"
	"github.com/mkovalev/playsquad/internal/storage"
	"github.com/mkovalev/playsquad/internal/storage/repository"
)

var (
	configPath = flag.String("config", "", "Config file path (default: ~/.playsquad/config.toml)")
	addr       = flag.String("addr", "", "Listen address (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (default: ~/.playsquad/data.db)")
	debug      = flag.Bool("debug", false, "Enable debug logging")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *debug || cfg.App.DebugMode {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("matchd exited with error", "error", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	if *configPath != "" {
		return config.LoadFrom(*configPath)
	}
	return config.Load()
}

func run(cfg *config.Config, logger *slog.Logger) error {
	// Database: flag wins over config; fall back to the home default.
	path := *dbPath
	if path == "" {
		path = cfg.Database.Path
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}
		path = filepath.Join(home, ".playsquad", "data.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	dbCfg := storage.DefaultConfig(path)
	dbCfg.AutoMigrate = cfg.Database.AutoMigrate
	dbCfg.JournalMode = cfg.Database.JournalMode
	dbCfg.Synchronous = cfg.Database.Synchronous
	if busy, err := cfg.GetBusyTimeout(); err == nil {
		dbCfg.BusyTimeout = busy
	}

	db, err := storage.Open(dbCfg)
	if err != nil {
		return err
	}
	logger.Info("database open", "path", path)

	// Engine
	dispatcher := events.NewDispatcher(logger)
	tracker := presence.NewTracker(dispatcher, logger)
	hub := presence.NewHub(presence.HubConfig{
		Tracker:   tracker,
		Logger:    logger,
		JoinRate:  cfg.Presence.JoinRate,
		JoinBurst: cfg.Presence.JoinBurst,
	})

	ttl, _ := cfg.GetOptimisticTTL()
	store, err := status.NewStore(status.StoreConfig{
		Repository:    repository.NewStatusRepository(db.Conn()),
		Dispatcher:    dispatcher,
		Logger:        logger,
		OptimisticTTL: ttl,
	})
	if err != nil {
		return err
	}

	profiles := repository.NewProfileRepository(db.Conn())
	pipeline, err := match.NewPipeline(profiles, logger)
	if err != nil {
		return err
	}

	resolver := status.NewResolver(tracker, store)
	controller, err := match.NewController(match.ControllerConfig{
		Source:        pipeline,
		Statuses:      resolver,
		Logger:        logger,
		RetainOnError: cfg.Engine.RetainOnError,
	})
	if err != nil {
		return err
	}
	dispatcher.Register(controller)

	go hub.Run()

	// HTTP
	readTimeout, _ := time.ParseDuration(cfg.Server.ReadTimeout)
	writeTimeout, _ := time.ParseDuration(cfg.Server.WriteTimeout)
	server, err := api.NewServer(&api.Config{
		Addr:           cfg.Server.Addr,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, api.Deps{
		Controller: controller,
		Resolver:   resolver,
		Statuses:   store,
		Profiles:   profiles,
		Hub:        hub,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	server.Start()
	logger.Info("matchd running", "addr", cfg.Server.Addr)

	// Config hot reload: the engine knobs that can change without a
	// restart. Server address, database and presence limits still need
	// one.
	watchCtx, stopWatch := context.WithCancel(context.Background())
	defer stopWatch()
	if *configPath != "" {
		watcher, err := config.NewWatcher(*configPath, func(next *config.Config) {
			controller.SetRetainOnError(next.Engine.RetainOnError)
			if nextTTL, err := next.GetOptimisticTTL(); err == nil {
				store.SetOptimisticTTL(nextTTL)
			}
			logger.Info("engine options reloaded",
				"retain_on_error", next.Engine.RetainOnError,
				"optimistic_ttl", next.Engine.OptimisticTTL)
		}, logger)
		if err == nil {
			go func() { _ = watcher.Run(watchCtx) }()
		}
	}

	// Wait for shutdown signal.
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	s := <-sig
	logger.Info("shutting down", "signal", s.String())

	shutdownBudget, err := cfg.GetShutdownTimeout()
	if err != nil {
		shutdownBudget = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownBudget)
	defer cancel()

	// Order matters: stop accepting requests, announce the presence
	// leave before tearing the channel down, write the offline status,
	// then close storage.
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown incomplete", "error", err)
	}
	if err := tracker.Disconnect(ctx); err != nil {
		logger.Warn("presence teardown incomplete", "error", err)
	}
	store.Shutdown(ctx)
	if err := db.Close(); err != nil {
		logger.Warn("database close failed", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}
