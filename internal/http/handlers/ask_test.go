package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"oracle/internal/adapter/repo"
	"oracle/internal/domain"
	"oracle/internal/http/handlers"
	"oracle/internal/http/httpapi"
	"oracle/internal/oracle"
)

func newTestServer(t *testing.T) (http.Handler, *repo.MemoryStore) {
	t.Helper()
	store := repo.NewMemoryStore()
	engine := oracle.NewEngine(domain.NewTierCatalog(), store, zerolog.Nop())
	filter, err := oracle.NewSafetyFilter(oracle.SafetyConfig{})
	if err != nil {
		t.Fatalf("NewSafetyFilter: %v", err)
	}
	fallbacks, err := oracle.NewFallbackCatalog(1)
	if err != nil {
		t.Fatalf("NewFallbackCatalog: %v", err)
	}
	responder := oracle.NewResponder(nil, filter, fallbacks, 80, zerolog.Nop())
	dispatcher := oracle.NewDispatcher(engine, responder, store, store, time.Second, zerolog.Nop())
	app := handlers.NewApp(dispatcher, nil, zerolog.Nop())
	return httpapi.NewRouter(app, nil), store
}

func postJSON(t *testing.T, h http.Handler, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", rec.Body.String(), err)
		}
	}
	return rec.Code, out
}

func getJSON(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, out
}

func TestAskFullFlow(t *testing.T) {
	h, _ := newTestServer(t)

	// First contact routes into setup.
	code, body := postJSON(t, h, "/v1/oracle/ask", `{"user_id":"u1","persona":"light","text":"will I be happy"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if body["outcome"] != "setup_prompt" {
		t.Fatalf("outcome = %v", body["outcome"])
	}

	// A valid profile completes setup.
	code, body = postJSON(t, h, "/v1/oracle/ask", `{"user_id":"u1","persona":"light","text":"Maria 15/03/1990"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if body["outcome"] != "setup_accepted" || body["name"] != "Maria" {
		t.Fatalf("body = %v", body)
	}

	// The first real question is answered from the fallback pool.
	code, body = postJSON(t, h, "/v1/oracle/ask", `{"user_id":"u1","persona":"light","text":"will I be happy"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if body["outcome"] != "answered" || body["method"] != "fallback" || body["persona"] != "light" {
		t.Fatalf("body = %v", body)
	}
	if s, _ := body["text"].(string); s == "" {
		t.Fatal("answer text must not be empty")
	}

	// The free tier cooldown denies an immediate follow-up.
	code, body = postJSON(t, h, "/v1/oracle/ask", `{"user_id":"u1","persona":"light","text":"and then"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if body["outcome"] != "denied" || body["reason"] != "cooldown_active" {
		t.Fatalf("body = %v", body)
	}
}

func TestAskValidation(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing user", `{"persona":"light","text":"hi"}`},
		{"missing text", `{"user_id":"u1","persona":"light"}`},
		{"unknown persona", `{"user_id":"u1","persona":"void","text":"hi"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := postJSON(t, h, "/v1/oracle/ask", tt.body)
			if code != http.StatusBadRequest {
				t.Fatalf("status = %d, body %v", code, body)
			}
			if body["error"] != "bad_request" {
				t.Fatalf("error = %v", body["error"])
			}
		})
	}
}

func TestStatusEndpoint(t *testing.T) {
	h, _ := newTestServer(t)

	code, body := getJSON(t, h, "/v1/users/u1/status")
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if body["tier"] != "free" {
		t.Fatalf("tier = %v", body["tier"])
	}
	if body["remaining"] != float64(50) {
		t.Fatalf("remaining = %v", body["remaining"])
	}
	if body["questions_used"] != float64(0) {
		t.Fatalf("questions_used = %v", body["questions_used"])
	}
}

func TestUpgradeEndpoint(t *testing.T) {
	h, store := newTestServer(t)

	expires := time.Now().UTC().AddDate(0, 6, 0).Format(time.RFC3339)
	code, body := postJSON(t, h, "/v1/users/u1/upgrade", `{"tier_id":"premium_6m","expires_at":"`+expires+`"}`)
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if body["status"] != "upgraded" || body["tier_id"] != "premium_6m" {
		t.Fatalf("body = %v", body)
	}

	ent, err := store.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ent.TierID != domain.TierPremium6M {
		t.Fatalf("tier = %q", ent.TierID)
	}
	if ent.TierExpiresAt == nil {
		t.Fatal("expiry must be set")
	}

	// Unlimited tiers report a null remaining count.
	code, body = getJSON(t, h, "/v1/users/u1/status")
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if body["tier"] != "premium_6m" {
		t.Fatalf("tier = %v", body["tier"])
	}
	if body["remaining"] != nil {
		t.Fatalf("remaining = %v, want null", body["remaining"])
	}

	code, body = postJSON(t, h, "/v1/users/u1/upgrade", `{"tier_id":"gold","expires_at":"`+expires+`"}`)
	if code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %v", code, body)
	}
}

func TestHealthEndpoint(t *testing.T) {
	h, _ := newTestServer(t)
	code, body := getJSON(t, h, "/v1/healthz")
	if code != http.StatusOK {
		t.Fatalf("status = %d, body %v", code, body)
	}
	if body["status"] != "ok" {
		t.Fatalf("body = %v", body)
	}
}
