package api

import (
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"agencydesk/internal/report"
	"agencydesk/internal/validation"
)

const maxReportLength = 1 << 20

// ExportHandler renders downloadable reports.
type ExportHandler struct {
	renderer *report.Renderer
	logger   *zap.Logger
}

// NewExportHandler creates a new report export handler.
func NewExportHandler(renderer *report.Renderer, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{renderer: renderer, logger: logger}
}

// Export renders an audit, or caller-supplied markdown, as txt, md or html.
func (h *ExportHandler) Export(c fiber.Ctx) error {
	var body struct {
		Audit    *report.Audit `json:"audit"`
		Report   string        `json:"report"`
		Format   string        `json:"format"`
		Filename string        `json:"filename"`
	}
	if err := bind(c, &body); err != nil {
		return writeError(c, h.logger, err, "invalid request body")
	}

	errs := validation.FieldErrors{}
	body.Format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(body.Format), "."))
	if body.Format == "" {
		body.Format = report.FormatMarkdown
	}
	if !report.ValidFormat(body.Format) {
		errs.Add("format", "must be one of txt, md, html")
	}
	if body.Audit == nil && strings.TrimSpace(body.Report) == "" {
		errs.Add("audit", "audit or report is required")
	}
	if len(body.Report) > maxReportLength {
		errs.Add("report", "is too long")
	}
	if err := errs.Err(); err != nil {
		return writeError(c, h.logger, err, "invalid request")
	}

	// The audit section comes first; a supplied report is appended as written.
	var parts []string
	if body.Audit != nil {
		parts = append(parts, strings.TrimSpace(report.Markdown(*body.Audit)))
	}
	if r := strings.TrimSpace(body.Report); r != "" {
		parts = append(parts, r)
	}
	source := strings.Join(parts, "\n\n") + "\n"

	name := body.Filename
	if strings.TrimSpace(name) == "" && body.Audit != nil && body.Audit.URL != "" {
		name = "audit-" + body.Audit.URL
	}

	file, err := h.renderer.Render(source, body.Format, name)
	if err != nil {
		return writeError(c, h.logger, err, "failed to render report")
	}

	c.Attachment(file.Name)
	c.Set(fiber.HeaderContentType, file.ContentType)
	return c.Send(file.Body)
}
