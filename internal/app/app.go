package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/teamops/teamledger/internal/auth"
	"github.com/teamops/teamledger/internal/handlers"
	"github.com/teamops/teamledger/internal/logger"
	"github.com/teamops/teamledger/internal/repository"
	"github.com/teamops/teamledger/internal/services"
	"github.com/teamops/teamledger/internal/websocket"
)

// App holds all application dependencies
type App struct {
	log      logger.Logger
	handlers *handlers.Handlers
	repo     *repository.Repository
}

// New creates and initializes a new application instance
func New(log logger.Logger, dbPath string, sessions *auth.Auth) (*App, error) {
	repo, err := repository.New(dbPath)
	if err != nil {
		return nil, err
	}

	// Initialize services
	scopeService := services.NewScopeService(log, repo)
	reconciliationService := services.NewReconciliationService(log, repo)
	analyticsService := services.NewAnalyticsService(log, repo)

	// Initialize WebSocket hub and wire it as the summary-invalidation sink
	hub := websocket.New(log)
	hub.Start()
	reconciliationService.SetBroadcaster(hub)

	h := handlers.New(
		reconciliationService,
		analyticsService,
		scopeService,
		sessions,
		hub,
		log,
	)

	return &App{
		log:      log,
		handlers: h,
		repo:     repo,
	}, nil
}

// Router returns the configured HTTP router
func (a *App) Router() chi.Router {
	return a.handlers.Router()
}

// Repository returns the underlying repository, for seeding and maintenance
func (a *App) Repository() *repository.Repository {
	return a.repo
}

// Close releases app resources
func (a *App) Close() error {
	return a.repo.Close()
}

// Run starts the HTTP server
func (a *App) Run(addr string) error {
	a.log.Info("Server starting", "addr", addr)
	return http.ListenAndServe(addr, a.Router())
}
