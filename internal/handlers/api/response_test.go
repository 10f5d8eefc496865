package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"agencydesk/internal/audit"
	"agencydesk/internal/db"
	"agencydesk/internal/generate"
	"agencydesk/internal/models"
	"agencydesk/internal/providers/dataforseo"
	"agencydesk/internal/providers/llm"
	"agencydesk/internal/validation"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantMessage string
		wantDetails bool
	}{
		{"field errors", validation.FieldErrors{"url": "is required"}, 400, "validation failed", true},
		{"payload error", &models.PayloadError{Field: "payload", Message: "must be an object"}, 400, "validation failed", true},
		{"unknown client", fmt.Errorf("insert: %w", db.ErrUnknownClient), 400, "validation failed", true},
		{"unknown provider", fmt.Errorf("%w: cohere", llm.ErrUnknownProvider), 400, "validation failed", true},
		{"blocked address", fmt.Errorf("dial: %w", audit.ErrBlockedAddress), 400, "validation failed", true},
		{"asset not found", db.ErrAssetNotFound, 404, "client asset not found", false},
		{"client not found", db.ErrClientNotFound, 404, "client not found", false},
		{"no text provider", llm.ErrNotConfigured, 503, "no text generation provider is configured", false},
		{"no keyword provider", dataforseo.ErrNotConfigured, 503, "keyword data provider credentials are not configured", false},
		{"parse failure", &llm.ParseFailure{Raw: "nope", Err: errors.New("bad")}, 500, "generated response was not valid JSON", true},
		{"invalid shape", fmt.Errorf("%w: content: body is empty", generate.ErrInvalidShape), 500, "generated response was incomplete", false},
		{"provider api error", &dataforseo.APIError{StatusCode: 40501, Message: "secret"}, 500, "fallback", false},
		{"timeout", fmt.Errorf("call: %w", context.DeadlineExceeded), 500, "upstream request timed out", false},
		{"anything else", errors.New("connection refused to 10.0.0.3"), 500, "fallback", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/", func(c fiber.Ctx) error {
				return writeError(c, zap.NewNop(), tt.err, "fallback")
			})

			status, body := do(t, app, http.MethodGet, "/", "")
			require.Equal(t, tt.wantStatus, status)

			resp := decodeBody[models.ErrorResponse](t, body)
			assert.Equal(t, tt.wantMessage, resp.Error)
			assert.Equal(t, tt.wantDetails, resp.Details != nil)
			assert.NotContains(t, string(body), "secret")
			assert.NotContains(t, string(body), "10.0.0.3")
		})
	}
}

func TestWriteError_ParseFailureCarriesRaw(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c fiber.Ctx) error {
		return writeError(c, zap.NewNop(), &llm.ParseFailure{Raw: "Sure! {oops", Err: errors.New("bad")}, "x")
	})

	_, body := do(t, app, http.MethodGet, "/", "")
	resp := decodeBody[struct {
		Details struct {
			Raw string `json:"raw"`
		} `json:"details"`
	}](t, body)
	assert.Equal(t, "Sure! {oops", resp.Details.Raw)
}
