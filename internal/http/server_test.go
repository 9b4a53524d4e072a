package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"messbook/internal/auth"
	"messbook/internal/core"
	"messbook/internal/service"
	"messbook/internal/store"
	"messbook/internal/store/memory"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()

	mem := memory.New()
	records := service.NewRecordService(mem, mem, nil)
	duty := service.NewDutyService(mem)
	dashboard := service.NewDashboardService(records, duty)
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	passwords := auth.NewPasswordAuthenticator(mem, mem)
	sessions := service.NewSessionService(passwords, nil, tokens, records)

	srv := NewServer(":0", sessions, records, duty, dashboard, tokens)
	srv.today = func() core.Date { return core.NewDate(2024, 3, 13) } // a Wednesday

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(srv.rateLimiter.stop)
	return srv, ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func signUp(t *testing.T, ts *httptest.Server) string {
	t.Helper()
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
		"email":    "anna@example.com",
		"name":     "Anna",
		"password": "correct horse",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("signup status = %d, want 201", resp.StatusCode)
	}
	session := decodeBody[sessionResponse](t, resp)
	if session.Token == "" {
		t.Fatal("signup returned empty token")
	}
	return session.Token
}

func TestHealthEndpoints(t *testing.T) {
	_, ts := newTestServer(t)
	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(ts.URL + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status = %d, want 200", path, resp.StatusCode)
		}
	}
}

func TestAuthRequired(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/expenses", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unauthenticated list status = %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/expenses", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("bad token list status = %d, want 401", resp.StatusCode)
	}
}

func TestSignUpSignInFlow(t *testing.T) {
	_, ts := newTestServer(t)
	signUp(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/signin", "", map[string]string{
		"email":    "anna@example.com",
		"password": "correct horse",
	})
	if resp.StatusCode != http.StatusOK {
		t.Errorf("signin status = %d, want 200", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/signin", "", map[string]string{
		"email":    "anna@example.com",
		"password": "wrong",
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/auth/signup", "", map[string]string{
		"email":    "anna@example.com",
		"name":     "Dup",
		"password": "another pass",
	})
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("duplicate signup status = %d, want 409", resp.StatusCode)
	}
}

func TestGoogleSignInPopupBlocked(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/google", "", map[string]string{
		"client_error": "popup_blocked",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("popup blocked status = %d, want 400", resp.StatusCode)
	}
	env := decodeBody[errorEnvelope](t, resp)
	if env.Error.Code != "sign_in_blocked" {
		t.Errorf("error code = %q, want sign_in_blocked", env.Error.Code)
	}
}

func TestExpenseLifecycle(t *testing.T) {
	_, ts := newTestServer(t)
	token := signUp(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/expenses", token, map[string]any{
		"date":        "2024-03-13",
		"amount":      "15.50",
		"items":       []string{"milk", "bread"},
		"description": "groceries",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[expenseResponse](t, resp)
	if created.Amount != "15.50" {
		t.Errorf("created amount = %q, want 15.50", created.Amount)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/expenses", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list expenses status = %d, want 200", resp.StatusCode)
	}
	list := decodeBody[expenseListResponse](t, resp)
	if len(list.Expenses) != 1 || list.Expenses[0].ID != created.ID {
		t.Errorf("list = %v, want the created expense", list.Expenses)
	}
	if list.FetchError != "" {
		t.Errorf("fetch_error = %q, want empty on a fresh read", list.FetchError)
	}
}

// glitchExpenseStore fails listing once tripped, for degraded-read tests.
type glitchExpenseStore struct {
	store.ExpenseStore
	down bool
}

func (g *glitchExpenseStore) ListExpensesByOwner(ctx context.Context, ownerID string) ([]core.Expense, error) {
	if g.down {
		return nil, store.Unavailable(errors.New("connection refused"))
	}
	return g.ExpenseStore.ListExpensesByOwner(ctx, ownerID)
}

func TestListExpensesReportsStaleSnapshot(t *testing.T) {
	mem := memory.New()
	glitch := &glitchExpenseStore{ExpenseStore: mem}
	records := service.NewRecordService(glitch, mem, nil)
	duty := service.NewDutyService(mem)
	dashboard := service.NewDashboardService(records, duty)
	tokens := auth.NewJWTManager("test-secret", time.Hour)
	passwords := auth.NewPasswordAuthenticator(mem, mem)
	sessions := service.NewSessionService(passwords, nil, tokens, records)

	srv := NewServer(":0", sessions, records, duty, dashboard, tokens)
	srv.today = func() core.Date { return core.NewDate(2024, 3, 13) }
	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)
	t.Cleanup(srv.rateLimiter.stop)
	token := signUp(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/expenses", token, map[string]any{
		"date":   "2024-03-13",
		"amount": "15.50",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense status = %d, want 201", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/expenses", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list expenses status = %d, want 200", resp.StatusCode)
	}
	decodeBody[expenseListResponse](t, resp)

	glitch.down = true

	// A degraded read still returns the records, with the fetch error
	// surfaced so the client can show the stale state.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/expenses", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stale list status = %d, want 200", resp.StatusCode)
	}
	list := decodeBody[expenseListResponse](t, resp)
	if len(list.Expenses) != 1 {
		t.Errorf("stale list = %d records, want 1", len(list.Expenses))
	}
	if list.FetchError == "" {
		t.Error("fetch_error empty, want the retained store error")
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/dashboard", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", resp.StatusCode)
	}
	dash := decodeBody[dashboardResponse](t, resp)
	if dash.FetchError == "" {
		t.Error("dashboard fetch_error empty, want the retained store error")
	}
	if dash.TotalExpenses != "15.50" {
		t.Errorf("stale dashboard total = %q, want 15.50", dash.TotalExpenses)
	}
}

func TestCreateExpenseRejectsBadAmount(t *testing.T) {
	_, ts := newTestServer(t)
	token := signUp(t, ts)

	for _, amount := range []string{"", "abc", "-5.00"} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/expenses", token, map[string]any{
			"date":   "2024-03-13",
			"amount": amount,
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("amount %q status = %d, want 400", amount, resp.StatusCode)
		}
	}
}

func TestContributionStartsPending(t *testing.T) {
	_, ts := newTestServer(t)
	token := signUp(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/contributions", token, map[string]string{
		"date":   "2024-03-01",
		"amount": "300.00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create contribution status = %d, want 201", resp.StatusCode)
	}
	created := decodeBody[contributionResponse](t, resp)
	if created.Status != "pending" {
		t.Errorf("status = %q, want pending", created.Status)
	}
}

func TestDutyEndpoints(t *testing.T) {
	_, ts := newTestServer(t)
	token := signUp(t, ts)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/duty/days", token, map[string]any{
		"days": []string{"wednesday", "friday"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("replace duty days status = %d, want 200", resp.StatusCode)
	}
	days := decodeBody[dutyDaysResponse](t, resp)
	if len(days.Days) != 2 {
		t.Errorf("days = %v, want 2 entries", days.Days)
	}

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/duty/days", token, map[string]any{
		"days": []string{"monday", "tuesday", "friday"},
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("three duty days status = %d, want 422", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/duty/toggle", token, map[string]string{
		"day": "monday",
	})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("toggle third day status = %d, want 422", resp.StatusCode)
	}

	// Wednesday today: even though Wednesday is selected, the next duty is
	// Friday of the same week.
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/duty/next", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("next duty status = %d, want 200", resp.StatusCode)
	}
	next := decodeBody[nextDutyResponse](t, resp)
	if !next.HasDuty || next.Date != "2024-03-15" {
		t.Errorf("next duty = %+v, want has_duty with 2024-03-15", next)
	}
}

func TestDashboardEndpoint(t *testing.T) {
	_, ts := newTestServer(t)
	token := signUp(t, ts)

	for i, amount := range []string{"200.00", "150.00"} {
		resp := doJSON(t, http.MethodPost, ts.URL+"/api/expenses", token, map[string]any{
			"date":        fmt.Sprintf("2024-03-1%d", i),
			"amount":      amount,
			"description": "x",
		})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("create expense status = %d, want 201", resp.StatusCode)
		}
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/contributions", token, map[string]string{
		"date":   "2024-03-01",
		"amount": "300.00",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create contribution status = %d, want 201", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/dashboard", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status = %d, want 200", resp.StatusCode)
	}
	dash := decodeBody[dashboardResponse](t, resp)

	if dash.TotalExpenses != "350.00" {
		t.Errorf("total expenses = %q, want 350.00", dash.TotalExpenses)
	}
	if dash.Balance != "-50.00" {
		t.Errorf("balance = %q, want -50.00", dash.Balance)
	}
	if dash.Direction != "deficit" {
		t.Errorf("direction = %q, want deficit", dash.Direction)
	}
	if len(dash.Trend) != 2 {
		t.Errorf("trend = %v, want 2 points", dash.Trend)
	}
	if len(dash.Activity) != 3 {
		t.Errorf("activity = %v, want 3 items", dash.Activity)
	}
}

func TestSignOut(t *testing.T) {
	_, ts := newTestServer(t)
	token := signUp(t, ts)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/auth/signout", token, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("signout status = %d, want 204", resp.StatusCode)
	}
}
