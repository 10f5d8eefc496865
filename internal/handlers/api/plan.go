package api

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"agencydesk/internal/audit"
	"agencydesk/internal/metrics"
	"agencydesk/internal/models"
	"agencydesk/internal/plan"
	"agencydesk/internal/prompts"
	"agencydesk/internal/providers/llm"
	"agencydesk/internal/report"
	"agencydesk/internal/validation"
)

// PlanHandler turns audits into phased execution plans.
type PlanHandler struct {
	router  *llm.Router
	prompts *prompts.Catalogue
	logger  *zap.Logger
}

// NewPlanHandler creates a new execution plan handler.
func NewPlanHandler(router *llm.Router, catalogue *prompts.Catalogue, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{router: router, prompts: catalogue, logger: logger}
}

type planResponse struct {
	Format   string                       `json:"format"`
	URL      string                       `json:"url,omitempty"`
	Plan     *models.ExecutionPlanPayload `json:"plan,omitempty"`
	Steps    []plan.Step                  `json:"steps,omitempty"`
	Columns  []plan.Column                `json:"columns,omitempty"`
	Warnings []string                     `json:"warnings,omitempty"`
}

// Formats lists the supported plan formats.
func (h *PlanHandler) Formats(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"formats": plan.Formats, "default": plan.FormatFull})
}

// Create builds a plan from an audit. Issues are derived from the structured
// fields when the audit carries none.
func (h *PlanHandler) Create(c fiber.Ctx) error {
	var body struct {
		Audit     *report.Audit `json:"audit"`
		Format    string        `json:"format"`
		Download  bool          `json:"download"`
		Summarize bool          `json:"summarize"`
		Provider  string        `json:"provider"`
	}
	if err := bind(c, &body); err != nil {
		return writeError(c, h.logger, err, "invalid request body")
	}

	errs := validation.FieldErrors{}
	body.Format = strings.ToLower(strings.TrimSpace(body.Format))
	if body.Format == "" {
		body.Format = plan.FormatFull
	}
	if !plan.ValidFormat(body.Format) {
		errs.Add("format", "must be one of full, workflow, bbb")
	}
	if body.Audit == nil {
		errs.Add("audit", "is required")
	}
	if err := errs.Err(); err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}
	if body.Summarize {
		if err := h.router.Check(body.Provider); err != nil {
			return writeError(c, h.logger, err, "invalid request")
		}
	}

	issues := body.Audit.Issues
	if len(issues) == 0 && body.Audit.Fields != nil {
		_, issues = audit.Score(*body.Audit.Fields)
	}
	p := plan.Build(body.Audit.URL, issues)

	var warnings []string
	if body.Summarize {
		if w := h.summarize(c, body.Provider, &p); w != "" {
			warnings = append(warnings, w)
		}
	}

	if body.Download {
		c.Attachment(report.Filename("execution-plan-"+body.Format, report.FormatMarkdown))
		c.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
		return c.SendString(plan.Markdown(p, body.Format))
	}

	resp := planResponse{Format: body.Format, URL: p.URL, Warnings: warnings}
	switch body.Format {
	case plan.FormatWorkflow:
		resp.Steps = plan.Workflow(p)
	case plan.FormatBoard:
		resp.Columns = plan.Board(p)
	default:
		resp.Plan = &p
	}
	return c.JSON(resp)
}

// summarize overlays generated phase summaries and returns a warning on failure.
func (h *PlanHandler) summarize(c fiber.Ctx, provider string, p *models.ExecutionPlanPayload) string {
	if !h.router.Configured() {
		return "phase summaries not generated: no text provider configured"
	}
	if err := plan.Summarize(c.Context(), h.router, h.prompts, provider, p); err != nil {
		var pf *llm.ParseFailure
		if errors.As(err, &pf) {
			metrics.RecordParseFailure("execution-plan")
		}
		h.logger.Warn("plan summaries failed", zap.String("url", p.URL), zap.Error(err))
		return "phase summaries not generated: the text provider call failed"
	}
	return ""
}
