package api

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"agencydesk/internal/leads"
	"agencydesk/internal/models"
	"agencydesk/internal/validation"
)

const (
	defaultLeadLimit = 20
	maxLeadLimit     = 100
)

// LeadHandler finds and scores business leads via JSON API.
type LeadHandler struct {
	svc    *leads.Service
	logger *zap.Logger
}

// NewLeadHandler creates a new API lead handler.
func NewLeadHandler(svc *leads.Service, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{svc: svc, logger: logger}
}

// Generate searches business listings and optionally scores them.
func (h *LeadHandler) Generate(c fiber.Ctx) error {
	var body struct {
		Query    string `json:"query"`
		Location string `json:"location"`
		Limit    int    `json:"limit"`
		Score    bool   `json:"score"`
		Provider string `json:"provider"`
	}
	if err := bind(c, &body); err != nil {
		return writeError(c, h.logger, err, "invalid request body")
	}

	body.Query = strings.TrimSpace(body.Query)
	switch {
	case body.Query == "":
		return writeError(c, h.logger, validation.FieldErrors{"query": "is required"}, "invalid request")
	case len(body.Query) > maxNameLength:
		return writeError(c, h.logger, validation.FieldErrors{"query": "must be at most 200 characters"}, "invalid request")
	}

	resp, err := h.svc.Generate(c.Context(),
		body.Query,
		strings.TrimSpace(body.Location),
		validation.ClampLimit(body.Limit, defaultLeadLimit, maxLeadLimit),
		body.Score,
		body.Provider,
	)
	if err != nil {
		return writeError(c, h.logger, err, "failed to fetch business listings")
	}
	return c.JSON(resp)
}

// Enrich scores a caller-supplied lead list.
func (h *LeadHandler) Enrich(c fiber.Ctx) error {
	var body struct {
		Leads    []models.Lead `json:"leads"`
		Goal     string        `json:"goal"`
		Provider string        `json:"provider"`
	}
	if err := bind(c, &body); err != nil {
		return writeError(c, h.logger, err, "invalid request body")
	}

	errs := validation.FieldErrors{}
	switch {
	case len(body.Leads) == 0:
		errs.Add("leads", "at least one lead is required")
	case len(body.Leads) > maxLeadLimit:
		errs.Add("leads", fmt.Sprintf("at most %d leads are allowed", maxLeadLimit))
	}
	for i := range body.Leads {
		body.Leads[i].Name = strings.TrimSpace(body.Leads[i].Name)
		if body.Leads[i].Name == "" {
			errs.Add(fmt.Sprintf("leads[%d].name", i), "is required")
		}
	}
	if err := errs.Err(); err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}

	scored, err := h.svc.Score(c.Context(), body.Leads, strings.TrimSpace(body.Goal), body.Provider)
	if err != nil {
		return writeError(c, h.logger, err, "failed to score leads")
	}
	return c.JSON(models.LeadsResponse{Leads: scored, Scored: true})
}
