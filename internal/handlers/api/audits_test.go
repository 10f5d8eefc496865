package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agencydesk/internal/audit"
	"agencydesk/internal/config"
	"agencydesk/internal/models"
	"agencydesk/internal/providers/llm"
)

const auditPage = `<!doctype html><html lang="en"><head><title>Riverside Dental</title></head>
<body><h1>Family dentistry</h1><p>We look after the whole family.</p></body></html>`

func newAuditApp(t *testing.T, store *memStore, router *llm.Router, allowPrivate bool) *fiber.App {
	t.Helper()
	auditor := audit.NewAuditor(audit.NewFetcher(5*time.Second, allowPrivate), router, testCatalogue(t), zap.NewNop())
	h := NewAuditHandler(store, auditor, router, &config.Config{GeminiAPIKey: "k"}, zap.NewNop())

	app := fiber.New()
	app.Get("/api/audits", h.List)
	app.Post("/api/audits", h.Create)
	app.Post("/api/deep-audit", h.DeepAudit)
	app.Get("/api/deep-audit", h.Status)
	return app
}

func pageServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(auditPage))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDeepAudit_SaveAndList(t *testing.T) {
	store := newMemStore()
	app := newAuditApp(t, store, llm.NewRouter(), true)
	srv := pageServer(t)

	status, body := do(t, app, http.MethodPost, "/api/deep-audit", `{"url":"`+srv.URL+`","save":true}`)
	require.Equal(t, fiber.StatusOK, status, string(body))

	resp := decodeBody[models.DeepAuditResponse](t, body)
	require.NotNil(t, resp.AuditID)
	assert.Equal(t, "Riverside Dental", resp.StructuredFields.Title)
	assert.NotEmpty(t, resp.Issues)
	assert.Nil(t, resp.StructuredAudit)

	status, body = do(t, app, http.MethodGet, "/api/audits", "")
	require.Equal(t, fiber.StatusOK, status)
	audits := decodeBody[[]models.Audit](t, body)
	require.Len(t, audits, 1)
	assert.Equal(t, *resp.AuditID, audits[0].ID.String())
	assert.Equal(t, resp.Score, *audits[0].Score)
}

func TestDeepAudit_StructuredAuditParseFailureIsWarning(t *testing.T) {
	app := newAuditApp(t, newMemStore(), testRouter("The site looks fine."), true)
	srv := pageServer(t)

	status, body := do(t, app, http.MethodPost, "/api/deep-audit", `{"url":"`+srv.URL+`"}`)
	require.Equal(t, fiber.StatusOK, status, string(body))

	resp := decodeBody[models.DeepAuditResponse](t, body)
	assert.Nil(t, resp.AuditID)
	assert.Len(t, resp.Warnings, 1)
}

func TestDeepAudit_Rejections(t *testing.T) {
	app := newAuditApp(t, newMemStore(), llm.NewRouter(), false)
	srv := pageServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"missing url", `{}`},
		{"bad scheme", `{"url":"ftp://example.com"}`},
		{"private address", `{"url":"` + srv.URL + `"}`},
		{"bad client id", `{"url":"https://example.com","clientId":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, http.MethodPost, "/api/deep-audit", tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status, string(body))
		})
	}
}

func TestDeepAudit_Status(t *testing.T) {
	app := newAuditApp(t, newMemStore(), testRouter(`{}`), true)

	status, body := do(t, app, http.MethodGet, "/api/deep-audit", "")
	require.Equal(t, fiber.StatusOK, status)

	resp := decodeBody[struct {
		Credentials     map[string]bool `json:"credentials"`
		TextProviders   []string        `json:"textProviders"`
		StructuredAudit bool            `json:"structuredAudit"`
	}](t, body)
	assert.True(t, resp.Credentials["gemini"])
	assert.Equal(t, []string{"stub"}, resp.TextProviders)
	assert.True(t, resp.StructuredAudit)
}

func TestAudits_Create(t *testing.T) {
	app := newAuditApp(t, newMemStore(), llm.NewRouter(), true)

	status, body := do(t, app, http.MethodPost, "/api/audits", `{"url":"example.com","score":72,"structuredAudit":{"summary":"ok"}}`)
	require.Equal(t, fiber.StatusOK, status, string(body))
	a := decodeBody[models.Audit](t, body)
	assert.Equal(t, "https://example.com", a.URL)

	status, _ = do(t, app, http.MethodPost, "/api/audits", `{"url":"example.com","score":140}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, _ = do(t, app, http.MethodPost, "/api/audits", `{"url":"example.com","structuredFields":"text"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
}
