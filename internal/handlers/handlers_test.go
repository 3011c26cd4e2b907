package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/teamops/teamledger/internal/app"
	"github.com/teamops/teamledger/internal/auth"
	"github.com/teamops/teamledger/internal/logger"
	"github.com/teamops/teamledger/internal/services"
)

const adminPassword = "test-admin-secret"

type testServer struct {
	*httptest.Server

	tournament int64
	camp       int64
	fee        int64
	uniform    int64
	rental     int64
	ana        int64
	accessCode string
}

// newTestServer boots the full app against an in-memory database and seeds
// one Under 15 tournament with a payment definition plus one Under 17 camp
// without one
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	log := logger.NewWithWriter(io.Discard, slog.LevelError)

	a, err := app.New(log, ":memory:", auth.New(adminPassword))
	if err != nil {
		t.Fatalf("app.New failed: %v", err)
	}
	t.Cleanup(func() { a.Close() })

	repo := a.Repository()
	orgID, err := repo.CreateOrganization(ctx, "Riverside FC")
	if err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	catA, err := repo.CreateCategory(ctx, orgID, "Under 15")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	catB, err := repo.CreateCategory(ctx, orgID, "Under 17")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	tournament, err := repo.CreateEvent(ctx, orgID, "Spring Tournament", "City Arena", "", time.Date(2026, 4, 12, 9, 0, 0, 0, time.UTC), []int64{catA})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}
	camp, err := repo.CreateEvent(ctx, orgID, "U17 Camp", "", "", time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC), []int64{catB})
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	defID, err := repo.CreatePaymentDefinition(ctx, &tournament, "Spring Tournament fees", time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("CreatePaymentDefinition failed: %v", err)
	}
	fee, err := repo.CreatePaymentItem(ctx, defID, "Registration fee", 3000, false, true, false)
	if err != nil {
		t.Fatalf("CreatePaymentItem failed: %v", err)
	}
	uniform, err := repo.CreatePaymentItem(ctx, defID, "Uniform", 5000, true, false, false)
	if err != nil {
		t.Fatalf("CreatePaymentItem failed: %v", err)
	}
	rental, err := repo.CreatePaymentItem(ctx, defID, "Field rental", 20000, false, false, true)
	if err != nil {
		t.Fatalf("CreatePaymentItem failed: %v", err)
	}

	ana, err := repo.CreateAthlete(ctx, "Ana Souza", "ana@example.com")
	if err != nil {
		t.Fatalf("CreateAthlete failed: %v", err)
	}
	if err := repo.AssignAthleteCategory(ctx, ana, catA); err != nil {
		t.Fatalf("AssignAthleteCategory failed: %v", err)
	}

	accessCode := "MG-4411"
	managerID, err := repo.CreateManager(ctx, "Marcos Silva", accessCode)
	if err != nil {
		t.Fatalf("CreateManager failed: %v", err)
	}
	if err := repo.AssignManagerCategory(ctx, managerID, catA); err != nil {
		t.Fatalf("AssignManagerCategory failed: %v", err)
	}

	server := httptest.NewServer(a.Router())
	t.Cleanup(server.Close)

	return &testServer{
		Server:     server,
		tournament: tournament,
		camp:       camp,
		fee:        fee,
		uniform:    uniform,
		rental:     rental,
		ana:        ana,
		accessCode: accessCode,
	}
}

// login posts the credentials and returns the session cookie
func (ts *testServer) login(t *testing.T, body map[string]string) *http.Cookie {
	t.Helper()
	payload, _ := json.Marshal(body)
	resp, err := http.Post(ts.URL+"/api/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned status %d", resp.StatusCode)
	}
	for _, cookie := range resp.Cookies() {
		if cookie.Name == auth.CookieName {
			return cookie
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func (ts *testServer) loginAdmin(t *testing.T) *http.Cookie {
	return ts.login(t, map[string]string{"password": adminPassword})
}

func (ts *testServer) loginManager(t *testing.T) *http.Cookie {
	return ts.login(t, map[string]string{"access_code": ts.accessCode})
}

// do performs an authenticated request with an optional JSON body
func (ts *testServer) do(t *testing.T, method, path string, cookie *http.Cookie, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequest(method, ts.URL+path, reader)
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cookie != nil {
		req.AddCookie(cookie)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, target interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func assertErrorCode(t *testing.T, resp *http.Response, status int, code string) {
	t.Helper()
	if resp.StatusCode != status {
		t.Errorf("expected status %d, got %d", status, resp.StatusCode)
	}
	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &body)
	if body.Code != code {
		t.Errorf("expected error code %q, got %q", code, body.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLogin_AdminPassword(t *testing.T) {
	ts := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{"password": adminPassword})
	resp, err := http.Post(ts.URL+"/api/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Role string `json:"role"`
	}
	decodeBody(t, resp, &body)
	if body.Role != "admin" {
		t.Errorf("expected role admin, got %q", body.Role)
	}
}

func TestLogin_InvalidPassword(t *testing.T) {
	ts := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{"password": "wrong"})
	resp, err := http.Post(ts.URL+"/api/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	assertErrorCode(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestLogin_AccessCode(t *testing.T) {
	ts := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{"access_code": ts.accessCode})
	resp, err := http.Post(ts.URL+"/api/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	var body struct {
		Role string `json:"role"`
	}
	decodeBody(t, resp, &body)
	if body.Role != "manager" {
		t.Errorf("expected role manager, got %q", body.Role)
	}
}

func TestLogin_InvalidAccessCode(t *testing.T) {
	ts := newTestServer(t)

	payload, _ := json.Marshal(map[string]string{"access_code": "NOPE"})
	resp, err := http.Post(ts.URL+"/api/login", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	assertErrorCode(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestLogin_MissingCredentials(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Post(ts.URL+"/api/login", "application/json", bytes.NewReader([]byte("{}")))
	if err != nil {
		t.Fatalf("login request failed: %v", err)
	}
	assertErrorCode(t, resp, http.StatusBadRequest, "BAD_REQUEST")
}

func TestProtectedRoutes_RequireSession(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/events")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertErrorCode(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestLogout_InvalidatesSession(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.loginAdmin(t)

	resp := ts.do(t, http.MethodPost, "/api/logout", cookie, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout returned %d", resp.StatusCode)
	}

	resp = ts.do(t, http.MethodGet, "/api/events", cookie, nil)
	assertErrorCode(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestListEvents_ScopedByRole(t *testing.T) {
	ts := newTestServer(t)

	var body struct {
		Events []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"events"`
	}

	resp := ts.do(t, http.MethodGet, "/api/events", ts.loginAdmin(t), nil)
	decodeBody(t, resp, &body)
	if len(body.Events) != 2 {
		t.Errorf("expected 2 events for admin, got %d", len(body.Events))
	}

	resp = ts.do(t, http.MethodGet, "/api/events", ts.loginManager(t), nil)
	decodeBody(t, resp, &body)
	if len(body.Events) != 1 || body.Events[0].ID != ts.tournament {
		t.Errorf("expected only the tournament for the manager, got %+v", body.Events)
	}
}

func TestGetPaymentDefinition_ExcludesFixedItems(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d/payment-definition", ts.tournament), ts.loginManager(t), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Items []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"items"`
	}
	decodeBody(t, resp, &body)
	if len(body.Items) != 2 {
		t.Fatalf("expected 2 athlete-facing items, got %d", len(body.Items))
	}
	for _, item := range body.Items {
		if item.ID == ts.rental {
			t.Error("fixed item leaked into the definition response")
		}
	}
}

func TestGetPaymentDefinition_NotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodGet, fmt.Sprintf("/api/events/%d/payment-definition", ts.camp), ts.loginAdmin(t), nil)
	assertErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestConfirmAttendance_Endpoint(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.loginManager(t)

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/%d/athletes/%d/confirm", ts.tournament, ts.ana),
		cookie,
		map[string]interface{}{"items": []services.ItemQuantity{{PaymentItemID: ts.uniform, Quantity: 2}}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirm returned %d", resp.StatusCode)
	}

	var summaries []struct {
		EventID        int64 `json:"event_id"`
		ConfirmedCount int   `json:"confirmed_count"`
	}
	resp = ts.do(t, http.MethodGet, "/api/analytics/events", cookie, nil)
	decodeBody(t, resp, &summaries)
	if len(summaries) != 1 || summaries[0].ConfirmedCount != 1 {
		t.Errorf("expected 1 confirmed athlete in the summary, got %+v", summaries)
	}
}

func TestConfirmAttendance_EmptyBodyAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/%d/athletes/%d/confirm", ts.tournament, ts.ana),
		ts.loginAdmin(t), nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("bare confirmation must succeed, got %d", resp.StatusCode)
	}
}

func TestConfirmAttendance_OutOfScopeForbidden(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/%d/athletes/%d/confirm", ts.camp, ts.ana),
		ts.loginManager(t), nil)
	assertErrorCode(t, resp, http.StatusForbidden, "FORBIDDEN")
}

func TestConfirmAttendance_NegativeQuantity(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/%d/athletes/%d/confirm", ts.tournament, ts.ana),
		ts.loginAdmin(t),
		map[string]interface{}{"items": []services.ItemQuantity{{PaymentItemID: ts.uniform, Quantity: -1}}})
	assertErrorCode(t, resp, http.StatusBadRequest, "VALIDATION_ERROR")
}

func TestConfirmAttendance_InvalidEventID(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/abc/athletes/%d/confirm", ts.ana),
		ts.loginAdmin(t), nil)
	assertErrorCode(t, resp, http.StatusBadRequest, "BAD_REQUEST")
}

func TestConfirmAttendance_EventNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/9999/athletes/%d/confirm", ts.ana),
		ts.loginAdmin(t), nil)
	assertErrorCode(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestRegisterPayment_Endpoint(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.loginManager(t)

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/%d/athletes/%d/payments", ts.tournament, ts.ana),
		cookie,
		map[string]interface{}{"items": []services.ItemQuantity{{PaymentItemID: ts.fee, Quantity: 1}}})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("payment returned %d", resp.StatusCode)
	}

	var summaries []struct {
		EventID            int64 `json:"event_id"`
		PaidCount          int   `json:"paid_count"`
		TotalReceivedCents int64 `json:"total_received_cents"`
	}
	resp = ts.do(t, http.MethodGet, "/api/analytics/events", cookie, nil)
	decodeBody(t, resp, &summaries)
	if len(summaries) != 1 || summaries[0].PaidCount != 1 || summaries[0].TotalReceivedCents != 3000 {
		t.Errorf("expected 1 paid athlete and 3000 cents, got %+v", summaries)
	}
}

func TestRegisterPayment_NoItems(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/%d/athletes/%d/payments", ts.tournament, ts.ana),
		ts.loginAdmin(t),
		map[string]interface{}{"items": []services.ItemQuantity{}})
	assertErrorCode(t, resp, http.StatusBadRequest, "BAD_REQUEST")
}

func TestCancelAttendance_Endpoint(t *testing.T) {
	ts := newTestServer(t)
	cookie := ts.loginAdmin(t)

	resp := ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/%d/athletes/%d/confirm", ts.tournament, ts.ana), cookie, nil)
	resp.Body.Close()
	resp = ts.do(t, http.MethodPost,
		fmt.Sprintf("/api/events/%d/athletes/%d/cancel", ts.tournament, ts.ana), cookie, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("cancel returned %d", resp.StatusCode)
	}

	var summaries []struct {
		ConfirmedCount int `json:"confirmed_count"`
	}
	resp = ts.do(t, http.MethodGet, "/api/analytics/events", cookie, nil)
	decodeBody(t, resp, &summaries)
	for _, s := range summaries {
		if s.ConfirmedCount != 0 {
			t.Errorf("expected no confirmed athletes after cancel, got %d", s.ConfirmedCount)
		}
	}
}
