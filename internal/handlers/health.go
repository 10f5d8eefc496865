package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"
)

// Pinger checks that a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// KubeHealthHandler handles Kubernetes liveness and readiness endpoints.
type KubeHealthHandler struct {
	db     Pinger
	logger *zap.Logger
}

// NewKubeHealthHandler creates a new health handler.
func NewKubeHealthHandler(database Pinger, logger *zap.Logger) *KubeHealthHandler {
	return &KubeHealthHandler{db: database, logger: logger}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness checks.
// Returns 200 OK if the application is running.
func (h *KubeHealthHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint for Kubernetes readiness checks.
// Returns 200 OK if the application can serve traffic (database is reachable).
func (h *KubeHealthHandler) Readiness(c fiber.Ctx) error {
	if err := h.db.Ping(c.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "database unavailable",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
