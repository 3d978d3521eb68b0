package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/matchqueue/internal/api/apierr"
	"github.com/mcoot/matchqueue/internal/api/handler"
	apimiddleware "github.com/mcoot/matchqueue/internal/api/middleware"
	"github.com/mcoot/matchqueue/internal/api/response"
	"github.com/mcoot/matchqueue/internal/metrics"
	"github.com/mcoot/matchqueue/internal/middleware"
	"github.com/mcoot/matchqueue/internal/services/auth"
	"github.com/mcoot/matchqueue/internal/services/matchmaking"
	"github.com/mcoot/matchqueue/internal/services/sessions"
	"github.com/mcoot/matchqueue/internal/sse"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger            *slog.Logger
	Metrics           *metrics.Metrics
	AuthService       *auth.Service
	Sessions          *sessions.Table
	MatchmakingEngine *matchmaking.Engine
	Events            *sse.Hub
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	accountHandler := handler.NewAccountHandler(cfg.AuthService)
	matchmakingHandler := handler.NewMatchmakingHandler(cfg.MatchmakingEngine, cfg.Events)

	// Create middleware
	authMiddleware := apimiddleware.Auth(cfg.Sessions)

	// Metrics scrape endpoint sits outside the API middleware
	r.Handle("/metrics", cfg.Metrics.Handler()).Methods(http.MethodGet)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(apimiddleware.Recovery(cfg.Logger))
	api.Use(middleware.Logging(cfg.Logger))
	api.Use(middleware.Metrics(cfg.Metrics))
	api.NotFoundHandler = http.HandlerFunc(notFoundHandler)

	// Account routes (no auth required for creating accounts/logging in)
	api.HandleFunc("/accounts", accountHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/accounts/login", accountHandler.Login).Methods(http.MethodPost)

	// Protected account routes
	accountsProtected := api.PathPrefix("/accounts").Subrouter()
	accountsProtected.Use(authMiddleware)
	accountsProtected.HandleFunc("/me", accountHandler.GetMe).Methods(http.MethodGet)
	accountsProtected.HandleFunc("/logout", accountHandler.Logout).Methods(http.MethodPost)

	// Matchmaking routes (all require auth)
	matchmakingRoutes := api.PathPrefix("/matchmaking").Subrouter()
	matchmakingRoutes.Use(authMiddleware)
	matchmakingRoutes.HandleFunc("/queue", matchmakingHandler.Enqueue).Methods(http.MethodPost)
	matchmakingRoutes.HandleFunc("/queue", matchmakingHandler.Cancel).Methods(http.MethodDelete)
	matchmakingRoutes.HandleFunc("/status", matchmakingHandler.Status).Methods(http.MethodGet)
	matchmakingRoutes.HandleFunc("/events", matchmakingHandler.Events).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	apierr.WriteError(w, apierr.NewNotFoundError())
}
