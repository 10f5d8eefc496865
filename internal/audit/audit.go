// Package audit fetches a page, measures on-page SEO fields, scores them and
// optionally asks a text provider for a written assessment.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"agencydesk/internal/metrics"
	"agencydesk/internal/models"
	"agencydesk/internal/prompts"
	"agencydesk/internal/providers/llm"
)

const excerptWords = 400

// Result is a completed page audit.
type Result struct {
	URL             string
	Score           int
	Issues          []models.AuditIssue
	Fields          models.AuditFields
	RawScan         string
	StructuredAudit map[string]any
	Warnings        []string
}

// Auditor runs page audits.
type Auditor struct {
	fetcher *Fetcher
	router  *llm.Router
	prompts *prompts.Catalogue
	logger  *zap.Logger
}

// NewAuditor returns an auditor. router may be nil or empty, in which case
// no written assessment is produced.
func NewAuditor(fetcher *Fetcher, router *llm.Router, catalogue *prompts.Catalogue, logger *zap.Logger) *Auditor {
	return &Auditor{fetcher: fetcher, router: router, prompts: catalogue, logger: logger}
}

// Run audits rawURL. provider selects the text provider for the assessment;
// empty picks the first configured one. A provider name no configured provider
// carries is rejected before the page is fetched.
func (a *Auditor) Run(ctx context.Context, rawURL, provider string) (*Result, error) {
	if err := a.router.Check(provider); err != nil {
		return nil, err
	}

	page, err := a.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	fields, text, err := Scan(page)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", rawURL, err)
	}

	score, issues := Score(fields)
	res := &Result{
		URL:      rawURL,
		Score:    score,
		Issues:   issues,
		Fields:   fields,
		RawScan:  RawScan(fields),
		Warnings: []string{},
	}

	if !a.router.Configured() {
		return res, nil
	}

	structured, err := a.assess(ctx, provider, res, text)
	if err != nil {
		var pf *llm.ParseFailure
		if errors.As(err, &pf) {
			metrics.RecordParseFailure("structured-audit")
		}
		a.logger.Warn("structured audit unavailable", zap.String("url", rawURL), zap.Error(err))
		res.Warnings = append(res.Warnings, "structured audit unavailable: "+warningText(err))
		return res, nil
	}
	res.StructuredAudit = structured
	return res, nil
}

func (a *Auditor) assess(ctx context.Context, provider string, res *Result, text string) (map[string]any, error) {
	fieldsJSON, err := json.MarshalIndent(res.Fields, "", "  ")
	if err != nil {
		return nil, err
	}

	req, err := a.prompts.Build("structured-audit", map[string]any{
		"URL":     res.URL,
		"Score":   res.Score,
		"Fields":  string(fieldsJSON),
		"Issues":  res.Issues,
		"Excerpt": excerpt(text, excerptWords),
	})
	if err != nil {
		return nil, err
	}

	var out map[string]any
	if err := a.router.GenerateJSON(ctx, provider, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// warningText keeps provider internals out of client-facing warnings.
func warningText(err error) string {
	var pf *llm.ParseFailure
	switch {
	case errors.As(err, &pf):
		return "response was not valid JSON"
	case errors.Is(err, context.DeadlineExceeded):
		return "provider timed out"
	default:
		return "provider request failed"
	}
}

func excerpt(text string, words int) string {
	fields := strings.Fields(text)
	if len(fields) <= words {
		return strings.Join(fields, " ")
	}
	return strings.Join(fields[:words], " ") + " ..."
}
