package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teamops/teamledger/internal/models"
)

func TestLoginAdmin(t *testing.T) {
	a := New("secret")

	token, ok := a.LoginAdmin("secret")
	if !ok {
		t.Fatal("expected login to succeed")
	}
	session, ok := a.Session(token)
	if !ok {
		t.Fatal("expected session to exist")
	}
	if session.Role != models.RoleAdmin {
		t.Errorf("expected admin role, got %q", session.Role)
	}

	if _, ok := a.LoginAdmin("wrong"); ok {
		t.Error("expected login with wrong password to fail")
	}
}

func TestLoginAdmin_DisabledWithoutPassword(t *testing.T) {
	a := New("")

	if _, ok := a.LoginAdmin(""); ok {
		t.Error("admin login must be disabled when no password is configured")
	}
}

func TestLoginManager(t *testing.T) {
	a := New("secret")

	token := a.LoginManager(42)
	session, ok := a.Session(token)
	if !ok {
		t.Fatal("expected session to exist")
	}
	if session.Role != models.RoleManager || session.ManagerID != 42 {
		t.Errorf("unexpected session: %+v", session)
	}
}

func TestLogout(t *testing.T) {
	a := New("secret")

	token := a.LoginManager(1)
	a.Logout(token)
	if _, ok := a.Session(token); ok {
		t.Error("expected session to be invalidated")
	}
}

func TestSession_Expiry(t *testing.T) {
	a := New("secret")

	token := a.LoginManager(1)
	a.mu.Lock()
	session := a.sessions[token]
	session.Expires = time.Now().Add(-time.Minute)
	a.sessions[token] = session
	a.mu.Unlock()

	if _, ok := a.Session(token); ok {
		t.Error("expected expired session to be rejected")
	}
}

func TestSession_UnknownToken(t *testing.T) {
	a := New("secret")
	if _, ok := a.Session("no-such-token"); ok {
		t.Error("expected unknown token to be rejected")
	}
}

func TestRequireAuth(t *testing.T) {
	a := New("secret")
	token, _ := a.LoginAdmin("secret")

	var gotSession Session
	handler := a.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSession, _ = SessionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// no cookie
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/events", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without cookie, got %d", rec.Code)
	}

	// valid cookie
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 with valid cookie, got %d", rec.Code)
	}
	if gotSession.Role != models.RoleAdmin {
		t.Errorf("expected the session in the request context, got %+v", gotSession)
	}
}

func TestSessionCookieRoundTrip(t *testing.T) {
	rec := httptest.NewRecorder()
	SetSessionCookie(rec, "tok-123")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != "tok-123" {
		t.Fatalf("unexpected cookies: %+v", cookies)
	}
	if !cookies[0].HttpOnly {
		t.Error("expected an http-only cookie")
	}

	rec = httptest.NewRecorder()
	ClearSessionCookie(rec)
	cookies = rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].MaxAge != -1 {
		t.Fatalf("expected a clearing cookie, got %+v", cookies)
	}
}

func TestGenerateToken_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		token := generateToken()
		if len(token) != 64 {
			t.Fatalf("expected 64 hex chars, got %d", len(token))
		}
		if seen[token] {
			t.Fatal("generated a duplicate token")
		}
		seen[token] = true
	}
}
