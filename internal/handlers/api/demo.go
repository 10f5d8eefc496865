package api

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"agencydesk/internal/demo"
)

// DemoHandler manages the shared demo audit asset.
type DemoHandler struct {
	svc     *demo.Service
	devMode bool
	logger  *zap.Logger
}

// NewDemoHandler creates a new demo handler. Cleanup is only served when devMode is set.
func NewDemoHandler(svc *demo.Service, devMode bool, logger *zap.Logger) *DemoHandler {
	return &DemoHandler{svc: svc, devMode: devMode, logger: logger}
}

// CreateAuditAsset returns the demo asset, creating it on first use.
func (h *DemoHandler) CreateAuditAsset(c fiber.Ctx) error {
	resp, err := h.svc.CreateOrReuse(c.Context())
	if err != nil {
		return writeError(c, h.logger, err, "failed to create demo asset")
	}
	return c.JSON(resp)
}

// Cleanup removes all but the newest demo asset.
func (h *DemoHandler) Cleanup(c fiber.Ctx) error {
	if !h.devMode {
		return jsonError(c, fiber.StatusNotFound, "not found")
	}

	removed, err := h.svc.Cleanup(c.Context())
	if err != nil {
		return writeError(c, h.logger, err, "failed to clean up demo assets")
	}
	return c.JSON(fiber.Map{"removed": removed})
}
