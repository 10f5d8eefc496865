package api

import (
	"sort"

	"github.com/gofiber/fiber/v3"

	"agencydesk/internal/config"
	"agencydesk/internal/models"
)

// HealthHandler reports whether the credentials the API depends on are present.
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler creates a new API health handler.
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Health answers 200 when the datastore, at least one text provider and the
// keyword provider are configured, and 503 otherwise. Both list what is present.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	creds := h.cfg.Credentials()

	var missing []string
	if !creds["database"] {
		missing = append(missing, "database")
	}
	if !h.cfg.HasTextProvider() {
		missing = append(missing, "text provider (openai, anthropic or gemini)")
	}
	if !creds["dataforseo"] {
		missing = append(missing, "dataforseo")
	}
	sort.Strings(missing)

	resp := models.HealthResponse{Status: "ok", Credentials: creds, Missing: missing}
	if len(missing) > 0 {
		resp.Status = "degraded"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}
	return c.JSON(resp)
}
