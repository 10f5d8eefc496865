package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agencydesk/internal/report"
)

func newExportApp(t *testing.T) *fiber.App {
	t.Helper()
	renderer, err := report.NewRenderer()
	require.NoError(t, err)
	h := NewExportHandler(renderer, zap.NewNop())
	app := fiber.New()
	app.Post("/api/export-report", h.Export)
	return app
}

func TestExportReport(t *testing.T) {
	const audit = `{"url":"https://acme.example","score":72,"issues":[{"id":"h1-missing","category":"on-page","severity":"high","title":"Missing H1 heading","detail":"The page has no <h1>."}]}`

	tests := []struct {
		name        string
		body        string
		contentType string
		filename    string
		contains    []string
	}{
		{
			name:        "markdown from audit",
			body:        `{"audit":` + audit + `}`,
			contentType: "text/markdown",
			filename:    `filename="audit-https-acme.md"`,
			contains:    []string{"# SEO audit: https://acme.example", "**Score:** 72/100", "Missing H1 heading"},
		},
		{
			name:        "text with appended report",
			body:        `{"audit":` + audit + `,"report":"## Next steps\n\nBook a call.","format":"txt","filename":"acme"}`,
			contentType: "text/plain",
			filename:    `filename="acme.txt"`,
			contains:    []string{"Missing H1 heading", "Book a call."},
		},
		{
			name:        "html from report only",
			body:        `{"report":"# Q3 review\n\nTraffic is **up**.","format":".HTML","filename":"Q3 review"}`,
			contentType: "text/html",
			filename:    `filename="Q3-review.html"`,
			contains:    []string{"<strong>up</strong>", "Q3 review"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newExportApp(t)
			req := httptest.NewRequest(http.MethodPost, "/api/export-report", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")

			resp, err := app.Test(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			data, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			require.Equal(t, http.StatusOK, resp.StatusCode, string(data))
			assert.Contains(t, resp.Header.Get("Content-Type"), tt.contentType)
			assert.Contains(t, resp.Header.Get("Content-Disposition"), "attachment")
			assert.Contains(t, resp.Header.Get("Content-Disposition"), tt.filename)
			for _, want := range tt.contains {
				assert.Contains(t, string(data), want)
			}
		})
	}
}

func TestExportReport_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"nothing to export", `{"format":"md"}`, "audit"},
		{"blank report", `{"report":"   "}`, "audit"},
		{"unknown format", `{"report":"# Hi","format":"pdf"}`, "format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, data := do(t, newExportApp(t), http.MethodPost, "/api/export-report", tt.body)
			require.Equal(t, http.StatusBadRequest, status)
			assert.Contains(t, string(data), `"`+tt.field+`"`)
		})
	}
}
