package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"sync"
	"time"

	"github.com/teamops/teamledger/internal/models"
)

const (
	CookieName    = "teamledger_session"
	SessionExpiry = 24 * time.Hour
)

type contextKey int

const sessionKey contextKey = 0

// Session is an authenticated caller: the admin, or a manager identified by
// their access code
type Session struct {
	Token     string
	Role      string
	ManagerID int64
	Expires   time.Time
}

// Auth handles session-based authentication for the admin password and
// manager access codes
type Auth struct {
	adminPassword string
	sessions      map[string]Session
	mu            sync.RWMutex
}

// New creates a new Auth instance with the given admin password
func New(adminPassword string) *Auth {
	return &Auth{
		adminPassword: adminPassword,
		sessions:      make(map[string]Session),
	}
}

// LoginAdmin validates the admin password and returns a session token if valid
func (a *Auth) LoginAdmin(password string) (string, bool) {
	if a.adminPassword == "" || password != a.adminPassword {
		return "", false
	}
	return a.createSession(models.RoleAdmin, 0), true
}

// LoginManager creates a session for a manager already resolved from their
// access code
func (a *Auth) LoginManager(managerID int64) string {
	return a.createSession(models.RoleManager, managerID)
}

func (a *Auth) createSession(role string, managerID int64) string {
	token := generateToken()
	session := Session{
		Token:     token,
		Role:      role,
		ManagerID: managerID,
		Expires:   time.Now().Add(SessionExpiry),
	}
	a.mu.Lock()
	a.sessions[token] = session
	a.mu.Unlock()
	return token
}

// Logout invalidates a session token
func (a *Auth) Logout(token string) {
	a.mu.Lock()
	delete(a.sessions, token)
	a.mu.Unlock()
}

// Session returns the session for a token if it exists and has not expired
func (a *Auth) Session(token string) (Session, bool) {
	a.mu.RLock()
	session, exists := a.sessions[token]
	a.mu.RUnlock()

	if !exists {
		return Session{}, false
	}

	if time.Now().After(session.Expires) {
		a.mu.Lock()
		delete(a.sessions, token)
		a.mu.Unlock()
		return Session{}, false
	}

	return session, true
}

// SessionFromRequest extracts and validates the session from a request cookie
func (a *Auth) SessionFromRequest(r *http.Request) (Session, bool) {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Session{}, false
	}
	return a.Session(cookie.Value)
}

// RequireAuth middleware for API endpoints (returns 401). The validated
// session is placed in the request context.
func (a *Auth) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := a.SessionFromRequest(r)
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"UNAUTHORIZED","error":"Unauthorized - please log in"}`))
			return
		}
		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// WithSession stores a session in a context
func WithSession(ctx context.Context, session Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the session stored by RequireAuth
func SessionFromContext(ctx context.Context) (Session, bool) {
	session, ok := ctx.Value(sessionKey).(Session)
	return session, ok
}

// SetSessionCookie sets the session cookie on the response
func SetSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(SessionExpiry.Seconds()),
	})
}

// ClearSessionCookie removes the session cookie
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// generateToken creates a random session token
func generateToken() string {
	bytes := make([]byte, 32)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
