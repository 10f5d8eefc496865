// Package leads turns business listings into normalised leads and merges
// generated fit scores back into them.
package leads

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"

	"agencydesk/internal/metrics"
	"agencydesk/internal/models"
	"agencydesk/internal/prompts"
	"agencydesk/internal/providers/dataforseo"
	"agencydesk/internal/providers/llm"
)

// ListingSource searches business listings.
type ListingSource interface {
	Configured() bool
	BusinessListings(ctx context.Context, query, location string, limit int) ([]dataforseo.Listing, error)
}

// Normalize converts listings to leads. Names and fields are trimmed, listings
// without a name are dropped and duplicate names (case-insensitive) keep the first.
func Normalize(listings []dataforseo.Listing) []models.Lead {
	seen := make(map[string]struct{}, len(listings))
	out := make([]models.Lead, 0, len(listings))
	for _, l := range listings {
		name := strings.TrimSpace(l.Title)
		key := strings.ToLower(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, models.Lead{
			Name:     name,
			Category: strings.TrimSpace(l.Category),
			Address:  strings.TrimSpace(l.Address),
			Phone:    strings.TrimSpace(l.Phone),
			Website:  strings.TrimSpace(l.Website),
			Rating:   l.Rating,
			Reviews:  l.Reviews,
		})
	}
	return out
}

// Scored is one generated fit score.
type Scored struct {
	Name   string   `json:"name"`
	Score  *float64 `json:"score"`
	Reason string   `json:"reason"`
}

// ApplyScores merges scores into leads by case-insensitive name and orders the
// result by descending score, unscored leads last in their original order.
// Scores are clamped to 0-100.
func ApplyScores(leads []models.Lead, scores []Scored) []models.Lead {
	byName := make(map[string]Scored, len(scores))
	for _, s := range scores {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if _, exists := byName[key]; !exists && key != "" {
			byName[key] = s
		}
	}

	out := make([]models.Lead, len(leads))
	for i, lead := range leads {
		if s, ok := byName[strings.ToLower(strings.TrimSpace(lead.Name))]; ok {
			if s.Score != nil && !math.IsNaN(*s.Score) {
				v := math.Max(0, math.Min(100, *s.Score))
				lead.Score = &v
			}
			if reason := strings.TrimSpace(s.Reason); reason != "" {
				lead.Reason = &reason
			}
		}
		out[i] = lead
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Score, out[j].Score
		if a == nil || b == nil {
			return a != nil && b == nil
		}
		return *a > *b
	})
	return out
}

// Service finds and scores leads.
type Service struct {
	source  ListingSource
	router  *llm.Router
	prompts *prompts.Catalogue
	logger  *zap.Logger
}

// NewService returns a lead service.
func NewService(source ListingSource, router *llm.Router, catalogue *prompts.Catalogue, logger *zap.Logger) *Service {
	return &Service{source: source, router: router, prompts: catalogue, logger: logger}
}

// Generate searches listings and optionally scores them. A scoring failure is
// reported as a warning; the unscored leads are still returned.
func (s *Service) Generate(ctx context.Context, query, location string, limit int, score bool, provider string) (*models.LeadsResponse, error) {
	if score {
		if err := s.router.Check(provider); err != nil {
			return nil, err
		}
	}
	if s.source == nil || !s.source.Configured() {
		return nil, dataforseo.ErrNotConfigured
	}

	listings, err := s.source.BusinessListings(ctx, query, location, limit)
	if err != nil {
		return nil, err
	}

	resp := &models.LeadsResponse{Leads: Normalize(listings), Warnings: []string{}}
	if !score || len(resp.Leads) == 0 {
		return resp, nil
	}
	if !s.router.Configured() {
		resp.Warnings = append(resp.Warnings, "lead scoring skipped: no text provider configured")
		return resp, nil
	}

	scored, err := s.Score(ctx, resp.Leads, "", provider)
	if err != nil {
		s.logger.Warn("lead scoring failed", zap.String("query", query), zap.Error(err))
		resp.Warnings = append(resp.Warnings, "lead scoring failed; leads are unscored")
		return resp, nil
	}
	resp.Leads = scored
	resp.Scored = true
	return resp, nil
}

// Score asks a text provider to score leads against goal and merges the answer.
func (s *Service) Score(ctx context.Context, leads []models.Lead, goal, provider string) ([]models.Lead, error) {
	req, err := s.prompts.Build("lead-score", map[string]any{"Goal": goal, "Leads": leads})
	if err != nil {
		return nil, err
	}

	var out struct {
		Leads []Scored `json:"leads"`
	}
	if err := s.router.GenerateJSON(ctx, provider, req, &out); err != nil {
		var pf *llm.ParseFailure
		if errors.As(err, &pf) {
			metrics.RecordParseFailure("lead-score")
		}
		return nil, err
	}
	return ApplyScores(leads, out.Leads), nil
}
