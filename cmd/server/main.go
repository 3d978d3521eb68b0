package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mcoot/matchqueue/internal/api"
	"github.com/mcoot/matchqueue/internal/factory"
	"github.com/mcoot/matchqueue/internal/jobs"
	"github.com/mcoot/matchqueue/internal/services/matchmaking"
	"github.com/mcoot/matchqueue/internal/services/sessions"
	redisstorage "github.com/mcoot/matchqueue/internal/storage/redis"
)

func main() {
	level, err := parseLogLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Set up logging with JSON output
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	cfg, serverConfig, err := configFromEnv()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg.Logger = logger

	// Create application factory
	app, err := factory.New(cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Start(ctx); err != nil {
		logger.Error("failed to start background workers", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := api.NewServer(app.Handler(), serverConfig, logger)
	server.OnShutdown(app.Events.Close)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", storageType(cfg)),
	)

	// Wait for shutdown or error
	exitCode := 0
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			exitCode = 1
		}
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		logger.Error("failed to stop application", slog.String("error", err.Error()))
		exitCode = 1
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// configFromEnv builds the factory and server configuration from environment variables
func configFromEnv() (factory.Config, api.ServerConfig, error) {
	cfg := factory.Config{
		StorageType:       os.Getenv("STORAGE_TYPE"),
		SessionsConfig:    sessions.DefaultConfig(),
		MatchmakingConfig: matchmaking.DefaultConfig(),
		SweeperConfig:     jobs.DefaultSweeperConfig(),
	}
	serverConfig := api.DefaultServerConfig()

	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil || p <= 0 || p > 65535 {
			return cfg, serverConfig, fmt.Errorf("PORT must be a port number, got %q", port)
		}
		serverConfig.Port = p
	}

	// Configure Redis if storage type is redis
	if cfg.StorageType == factory.StorageTypeRedis {
		redisURL := os.Getenv("REDIS_URL")
		if redisURL == "" {
			return cfg, serverConfig, fmt.Errorf("REDIS_URL required when STORAGE_TYPE=redis")
		}
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = redisURL
		cfg.RedisConfig = &redisCfg
	}

	if v := os.Getenv("SESSION_DURATION"); v != "" {
		d, err := parsePositiveDuration("SESSION_DURATION", v)
		if err != nil {
			return cfg, serverConfig, err
		}
		cfg.SessionsConfig.SessionDuration = d
	}

	if v := os.Getenv("MATCHMAKING_INTERVAL"); v != "" {
		d, err := parsePositiveDuration("MATCHMAKING_INTERVAL", v)
		if err != nil {
			return cfg, serverConfig, err
		}
		cfg.MatchmakingConfig.Interval = d
	}

	if v := os.Getenv("SESSION_SWEEP_SCHEDULE"); v != "" {
		cfg.SweeperConfig.Schedule = v
	}

	return cfg, serverConfig, nil
}

func parsePositiveDuration(name, value string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", name, value)
	}
	return d, nil
}

func parseLogLevel(value string) (slog.Level, error) {
	switch strings.ToLower(value) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", value)
	}
}

func storageType(cfg factory.Config) string {
	if cfg.StorageType == "" {
		return factory.StorageTypeMemory
	}
	return cfg.StorageType
}
