package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"agencydesk/internal/config"
	"agencydesk/internal/models"
	"agencydesk/internal/ratelimit"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

// newTestServer builds the full route table without a store or providers.
// Only routes that never reach them are exercised.
func newTestServer(t *testing.T, apiKey string, maxRequests int, ping error) *Server {
	t.Helper()
	cfg := &config.Config{
		Env:                "production",
		APIKey:             apiKey,
		DatabaseURL:        "postgres://localhost/agencydesk",
		GeminiAPIKey:       "gemini-key",
		DataForSEOLogin:    "login",
		DataForSEOPassword: "password",
	}
	s := New(cfg, zap.NewNop())
	rule := ratelimit.Rule{Max: maxRequests, Window: time.Minute}
	s.RegisterRoutes(Services{
		Pinger:  pingFunc(func(context.Context) error { return ping }),
		Limiter: ratelimit.New(ratelimit.NewMemoryStore(), ratelimit.Config{Default: rule, Expensive: rule}),
	})
	return s
}

func send(t *testing.T, s *Server, method, path, token string) (*http.Response, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.App.Test(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, string(body)
}

func TestRoutes_APIKey(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{"health is public", "/api/health", "", http.StatusOK},
		{"missing key", "/api/clients", "", http.StatusUnauthorized},
		{"wrong key", "/api/clients", "nope", http.StatusUnauthorized},
		{"health check outside api", "/healthz", "", http.StatusOK},
		{"unknown api route", "/api/nothing-here", "secret", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, "secret", 100, nil)
			resp, body := send(t, s, http.MethodGet, tt.path, tt.token)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("GET %s: expected %d, got %d: %s", tt.path, tt.wantStatus, resp.StatusCode, body)
			}
		})
	}
}

func TestErrorHandler_JSONEnvelope(t *testing.T) {
	s := newTestServer(t, "", 100, nil)
	resp, body := send(t, s, http.MethodGet, "/no/such/page", "")

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var envelope models.ErrorResponse
	if err := json.Unmarshal([]byte(body), &envelope); err != nil {
		t.Fatalf("expected a JSON error envelope, got %q: %v", body, err)
	}
	if envelope.Error == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestRateLimit_AppliesToAPI(t *testing.T) {
	s := newTestServer(t, "", 2, nil)

	for i := range 2 {
		if resp, body := send(t, s, http.MethodGet, "/api/health", ""); resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d: %s", i+1, resp.StatusCode, body)
		}
	}

	resp, body := send(t, s, http.MethodGet, "/api/health", "")
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d: %s", resp.StatusCode, body)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Error("expected a Retry-After header")
	}

	// Health checks are not rate limited.
	for range 3 {
		if resp, _ := send(t, s, http.MethodGet, "/healthz", ""); resp.StatusCode != http.StatusOK {
			t.Fatalf("expected /healthz to stay available, got %d", resp.StatusCode)
		}
	}
}

func TestReadiness_DatabaseDown(t *testing.T) {
	s := newTestServer(t, "", 100, errors.New("connection refused"))
	if resp, _ := send(t, s, http.MethodGet, "/readyz", ""); resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer(t, "secret", 100, nil)
	resp, body := send(t, s, http.MethodGet, "/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "go_goroutines") {
		t.Error("expected default Go collector output")
	}
}

func TestSplitOrigins(t *testing.T) {
	got := splitOrigins(" https://a.example, ,https://b.example ")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("splitOrigins() = %v", got)
	}
}
