package factory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/mcoot/matchqueue/internal/api"
	"github.com/mcoot/matchqueue/internal/dependencies/clock"
	"github.com/mcoot/matchqueue/internal/dependencies/random"
	"github.com/mcoot/matchqueue/internal/jobs"
	"github.com/mcoot/matchqueue/internal/metrics"
	"github.com/mcoot/matchqueue/internal/services/accounts"
	"github.com/mcoot/matchqueue/internal/services/auth"
	"github.com/mcoot/matchqueue/internal/services/matchmaking"
	"github.com/mcoot/matchqueue/internal/services/sessions"
	"github.com/mcoot/matchqueue/internal/sse"
	"github.com/mcoot/matchqueue/internal/storage"
	"github.com/mcoot/matchqueue/internal/storage/memory"
	redisstorage "github.com/mcoot/matchqueue/internal/storage/redis"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Observability
	Logger  *slog.Logger
	Metrics *metrics.Metrics

	// Services
	Accounts          *accounts.Store
	Sessions          *sessions.Table
	AuthService       *auth.Service
	MatchmakingEngine *matchmaking.Engine
	SessionSweeper    *jobs.SessionSweeper
	Events            *sse.Hub

	// Background workers
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Config holds configuration for the application factory
type Config struct {
	// AccountsConfig holds configuration for the account store (optional)
	// If zero value, defaults to accounts.DefaultConfig()
	AccountsConfig accounts.Config
	// SessionsConfig holds configuration for the session table (optional)
	// Zero fields fall back to sessions.DefaultConfig()
	SessionsConfig sessions.Config
	// MatchmakingConfig holds configuration for the engine (optional)
	MatchmakingConfig matchmaking.Config
	// SweeperConfig holds the expired-session sweep schedule (optional)
	SweeperConfig jobs.SweeperConfig
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	// Use default account config if not provided
	accountsCfg := cfg.AccountsConfig
	if accountsCfg.BcryptCost == 0 {
		accountsCfg = accounts.DefaultConfig()
	}

	return newWithDependencies(store, clock.New(), random.New(), accountsCfg, cfg, logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, accountsCfg accounts.Config, cfg Config, logger *slog.Logger) *App {
	m := metrics.New()

	accountStore := accounts.New(store, clk, accountsCfg, logger)
	sessionTable := sessions.New(clk, rnd, cfg.SessionsConfig, logger)
	authService := auth.New(accountStore, sessionTable, logger)
	engine := matchmaking.New(sessionTable, accountStore, clk, m, cfg.MatchmakingConfig, logger)
	sweeper := jobs.NewSessionSweeper(sessionTable, cfg.SweeperConfig, logger)
	events := sse.NewHub(logger)
	engine.OnMatch(events)

	m.TrackActiveSessions(sessionTable.ActiveCount)

	return &App{
		Storage:           store,
		Clock:             clk,
		Random:            rnd,
		Logger:            logger,
		Metrics:           m,
		Accounts:          accountStore,
		Sessions:          sessionTable,
		AuthService:       authService,
		MatchmakingEngine: engine,
		SessionSweeper:    sweeper,
		Events:            events,
	}
}

// Handler returns the HTTP handler serving the API and metrics
func (a *App) Handler() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:            a.Logger,
		Metrics:           a.Metrics,
		AuthService:       a.AuthService,
		Sessions:          a.Sessions,
		MatchmakingEngine: a.MatchmakingEngine,
		Events:            a.Events,
	})
}

// Start launches the matchmaking loop, the event hub and the session sweeper.
// Event streams block until Start has been called.
func (a *App) Start(ctx context.Context) error {
	if err := a.SessionSweeper.Start(); err != nil {
		return err
	}

	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.Events.Run()
	}()
	go func() {
		defer a.wg.Done()
		a.MatchmakingEngine.Run(ctx)
	}()
	return nil
}

// Stop halts background workers and releases storage connections
func (a *App) Stop(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
		a.Events.Close()
		a.wg.Wait()
		a.SessionSweeper.Stop(ctx)
	}

	if closer, ok := a.Storage.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
