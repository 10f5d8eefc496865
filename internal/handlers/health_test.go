package handlers

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestKubeHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		path       string
		ping       error
		wantStatus int
	}{
		{"liveness ignores database", "/healthz", errors.New("down"), fiber.StatusOK},
		{"ready", "/readyz", nil, fiber.StatusOK},
		{"not ready", "/readyz", errors.New("down"), fiber.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewKubeHealthHandler(pingFunc(func(context.Context) error { return tt.ping }), zap.NewNop())
			app := fiber.New()
			app.Get("/healthz", h.Liveness)
			app.Get("/readyz", h.Readiness)

			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
