package handlers

import (
	"net/http"

	"github.com/teamops/teamledger/internal/auth"
	"github.com/teamops/teamledger/internal/models"
	"github.com/teamops/teamledger/internal/services"
	"github.com/teamops/teamledger/internal/websocket"
)

// Handlers holds all HTTP handler dependencies
type Handlers struct {
	Reconciliation services.ReconciliationServicer
	Analytics      services.AnalyticsServicer
	Scope          services.ScopeServicer
	Auth           *auth.Auth
	Hub            *websocket.Hub
	Log            HTTPLogger
}

// HTTPLogger is an interface for loggers that support HTTP logging control
type HTTPLogger interface {
	HTTPLogging() bool
}

// New creates a new Handlers instance with all dependencies
func New(
	reconciliation services.ReconciliationServicer,
	analytics services.AnalyticsServicer,
	scope services.ScopeServicer,
	sessions *auth.Auth,
	hub *websocket.Hub,
	log HTTPLogger,
) *Handlers {
	return &Handlers{
		Reconciliation: reconciliation,
		Analytics:      analytics,
		Scope:          scope,
		Auth:           sessions,
		Hub:            hub,
		Log:            log,
	}
}

// callerScope resolves the request's session into a CallerScope. RequireAuth
// guarantees a session is present on these routes.
func (h *Handlers) callerScope(r *http.Request) (models.CallerScope, error) {
	session, ok := auth.SessionFromContext(r.Context())
	if !ok {
		return models.CallerScope{}, Unauthorized("No session")
	}
	return h.Scope.ResolveScope(r.Context(), session.Role, session.ManagerID)
}
