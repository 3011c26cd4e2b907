package handlers

import (
	"net/http"

	"github.com/teamops/teamledger/internal/auth"
	"github.com/teamops/teamledger/internal/models"
)

// handleLogin creates a session from the admin password or a manager access
// code
func (h *Handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}

	switch {
	case req.Password != "":
		token, ok := h.Auth.LoginAdmin(req.Password)
		if !ok {
			respondError(w, Unauthorized("Invalid password"))
			return
		}
		auth.SetSessionCookie(w, token)
		respondOK(w, LoginResponse{Role: models.RoleAdmin})

	case req.AccessCode != "":
		manager, err := h.Scope.ResolveAccessCode(r.Context(), req.AccessCode)
		if err != nil {
			respondError(w, err)
			return
		}
		token := h.Auth.LoginManager(manager.ID)
		auth.SetSessionCookie(w, token)
		respondOK(w, LoginResponse{Role: models.RoleManager})

	default:
		respondError(w, BadRequest("Provide a password or an access code"))
	}
}

// handleLogout invalidates the current session
func (h *Handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(auth.CookieName); err == nil {
		h.Auth.Logout(cookie.Value)
	}
	auth.ClearSessionCookie(w)
	respondSuccess(w, "Logged out")
}
