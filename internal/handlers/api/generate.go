package api

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"agencydesk/internal/generate"
)

// GenerateHandler exposes the keyword and content generation modes via JSON API.
type GenerateHandler struct {
	gen    *generate.Generator
	logger *zap.Logger
}

// NewGenerateHandler creates a new API generation handler.
func NewGenerateHandler(gen *generate.Generator, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{gen: gen, logger: logger}
}

// validatable is a request body that normalises and checks itself.
type validatable interface {
	Validate() error
}

// decode binds and validates a request body.
func decode[T any, PT interface {
	*T
	validatable
}](c fiber.Ctx) (*T, error) {
	req := new(T)
	if err := bind(c, req); err != nil {
		return nil, err
	}
	if err := PT(req).Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// Keywords returns provider keyword ideas, annotated and sorted by priority.
func (h *GenerateHandler) Keywords(c fiber.Ctx) error {
	req, err := decode[generate.KeywordsRequest](c)
	if err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.Keywords(c.Context(), *req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to fetch keyword ideas")
	}
	return c.JSON(resp)
}

// KeywordMetrics returns volume, cost and trend for the given keywords.
func (h *GenerateHandler) KeywordMetrics(c fiber.Ctx) error {
	req, err := decode[generate.MetricsRequest](c)
	if err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.Metrics(c.Context(), *req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to fetch keyword metrics")
	}
	return c.JSON(resp)
}

// KeywordSuite returns ideas, metrics and clusters for a seed.
func (h *GenerateHandler) KeywordSuite(c fiber.Ctx) error {
	req, err := decode[generate.KeywordsRequest](c)
	if err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.Suite(c.Context(), *req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to build keyword suite")
	}
	return c.JSON(resp)
}

// KeywordCluster groups supplied keywords.
func (h *GenerateHandler) KeywordCluster(c fiber.Ctx) error {
	req, err := decode[generate.ClusterRequest](c)
	if err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.Cluster(c.Context(), *req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to cluster keywords")
	}
	return c.JSON(resp)
}

// KeywordResearch returns generated, themed keyword ideas.
func (h *GenerateHandler) KeywordResearch(c fiber.Ctx) error {
	req, err := decode[generate.ResearchRequest](c)
	if err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.Research(c.Context(), *req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to research keywords")
	}
	return c.JSON(resp)
}

// Content generates blog, landing, social or email copy.
func (h *GenerateHandler) Content(c fiber.Ctx) error {
	req, err := decode[generate.ContentRequest](c)
	if err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.Content(c.Context(), *req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to generate content")
	}
	return c.JSON(resp)
}

// PressRelease generates a press release.
func (h *GenerateHandler) PressRelease(c fiber.Ctx) error {
	req, err := decode[generate.PressReleaseRequest](c)
	if err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.PressRelease(c.Context(), *req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to generate press release")
	}
	return c.JSON(resp)
}

// Sales generates sales material for a prospect.
func (h *GenerateHandler) Sales(c fiber.Ctx) error {
	req, err := decode[generate.SalesRequest](c)
	if err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.Sales(c.Context(), *req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to generate sales material")
	}
	return c.JSON(resp)
}

// Lelandize rewrites text in the house voice.
func (h *GenerateHandler) Lelandize(c fiber.Ctx) error {
	var req generate.RewriteRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	if err := req.ValidateLelandize(); err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.Lelandize(c.Context(), req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to rewrite text")
	}
	return c.JSON(resp)
}

// ToneAdjust rewrites text with a target tone.
func (h *GenerateHandler) ToneAdjust(c fiber.Ctx) error {
	var req generate.RewriteRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	if err := req.ValidateTone(); err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	resp, err := h.gen.AdjustTone(c.Context(), req)
	if err != nil {
		return writeError(c, h.logger, err, "failed to adjust tone")
	}
	return c.JSON(resp)
}
