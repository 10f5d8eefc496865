package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"agencydesk/internal/keywords"
	"agencydesk/internal/models"
	"agencydesk/internal/providers/dataforseo"
	"agencydesk/internal/providers/llm"
	"agencydesk/internal/validation"
)

// Keyword request limits.
const (
	DefaultKeywordLimit = 50
	MaxKeywordLimit     = 200
	MaxMetricsKeywords  = 1000
	maxClusterKeywords  = 1000
	suiteMetricsLimit   = 100
)

// KeywordSource supplies keyword ideas and metrics.
type KeywordSource interface {
	Configured() bool
	KeywordIdeas(ctx context.Context, seed string, locale dataforseo.Locale, limit int) ([]models.KeywordIdea, error)
	KeywordMetrics(ctx context.Context, keywords []string, locale dataforseo.Locale) ([]models.KeywordMetrics, error)
}

// KeywordsRequest asks for keyword ideas around a seed.
type KeywordsRequest struct {
	Seed     string `json:"seed"`
	Location string `json:"location"`
	Language string `json:"language"`
	Limit    int    `json:"limit"`
	Annotate *bool  `json:"annotate"`
	Business string `json:"business"`
	Provider string `json:"provider"`
}

func (r *KeywordsRequest) Validate() error {
	errs := validation.FieldErrors{}
	r.Seed = validation.NormalizeKeyword(r.Seed)
	if ok, msg := validation.ValidateKeyword(r.Seed); !ok {
		errs.Add("seed", msg)
	}
	if r.Limit < 0 {
		errs.Add("limit", "must not be negative")
	}
	r.Limit = validation.ClampLimit(r.Limit, DefaultKeywordLimit, MaxKeywordLimit)
	return errs.Err()
}

func (r *KeywordsRequest) locale() dataforseo.Locale {
	return dataforseo.Locale{Location: strings.TrimSpace(r.Location), Language: strings.TrimSpace(r.Language)}
}

// annotate reports whether annotation was asked for; it defaults to on.
func (r *KeywordsRequest) annotate() bool {
	return r.Annotate == nil || *r.Annotate
}

func (g *Generator) source() (KeywordSource, error) {
	if g.keywords == nil || !g.keywords.Configured() {
		return nil, dataforseo.ErrNotConfigured
	}
	return g.keywords, nil
}

// fetchIdeas returns deduplicated ideas for req with difficulty filled in.
// Twice the limit is fetched so priority sorting has candidates to choose from.
func (g *Generator) fetchIdeas(ctx context.Context, req KeywordsRequest) ([]models.KeywordIdea, error) {
	src, err := g.source()
	if err != nil {
		return nil, err
	}
	ideas, err := src.KeywordIdeas(ctx, req.Seed, req.locale(), min(req.Limit*2, MaxKeywordLimit))
	if err != nil {
		return nil, err
	}
	ideas = keywords.Dedupe(ideas)
	keywords.FillDifficulty(ideas)
	return ideas, nil
}

// Keywords fetches ideas, optionally annotates them and returns the merged list
// sorted by priority and truncated to the limit. Annotation problems become warnings.
func (g *Generator) Keywords(ctx context.Context, req KeywordsRequest) (*models.KeywordIdeasResponse, error) {
	if err := g.checkProvider(req.annotate(), req.Provider); err != nil {
		return nil, err
	}
	ideas, err := g.fetchIdeas(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &models.KeywordIdeasResponse{Seed: req.Seed, Warnings: []string{}}
	var annotations []map[string]any
	if req.annotate() {
		annotations, resp.Warnings = g.annotate(ctx, req, ideas)
		resp.Annotated = len(annotations) > 0
	}
	resp.Keywords = keywords.Enrich(ideas, annotations, req.Limit)
	return resp, nil
}

// annotate requests annotations batch by batch. A failed batch is skipped with a
// warning so the remaining batches still apply.
func (g *Generator) annotate(ctx context.Context, req KeywordsRequest, ideas []models.KeywordIdea) ([]map[string]any, []string) {
	warnings := []string{}
	if len(ideas) == 0 {
		return nil, warnings
	}
	if !g.router.Configured() {
		return nil, append(warnings, "keyword annotation skipped: no text provider configured")
	}

	var out []map[string]any
	batches := keywords.Batches(keywords.Texts(ideas), g.batchSize)
	for i, batch := range batches {
		var doc any
		err := g.run(ctx, "keyword-annotate", "keyword-annotate", map[string]any{
			"Seed":     req.Seed,
			"Business": strings.TrimSpace(req.Business),
			"Keywords": batch,
		}, req.Provider, &doc)
		if err == nil {
			var recs []map[string]any
			if recs, err = keywords.AnnotationsFrom(doc); err == nil {
				out = append(out, recs...)
				continue
			}
		}

		g.logger.Warn("keyword annotation batch failed",
			zap.String("seed", req.Seed),
			zap.Int("batch", i+1),
			zap.Error(err),
		)
		warnings = append(warnings, annotationWarning(i+1, len(batches), err))
		if ctx.Err() != nil {
			break
		}
	}
	return out, warnings
}

func annotationWarning(batch, total int, err error) string {
	var pf *llm.ParseFailure
	reason := "the text provider call failed"
	switch {
	case errors.As(err, &pf):
		reason = "the response was not valid JSON"
	case errors.Is(err, keywords.ErrNotAnArray):
		reason = "the response did not contain a keyword list"
	}
	if total == 1 {
		return "keyword annotation skipped: " + reason
	}
	return fmt.Sprintf("keyword annotation batch %d of %d skipped: %s", batch, total, reason)
}

// MetricsRequest asks for metrics of explicit keywords.
type MetricsRequest struct {
	Keywords []string `json:"keywords"`
	Location string   `json:"location"`
	Language string   `json:"language"`
}

// Validate normalises and deduplicates the keywords.
func (r *MetricsRequest) Validate() error {
	errs := validation.FieldErrors{}
	seen := make(map[string]struct{}, len(r.Keywords))
	out := make([]string, 0, len(r.Keywords))
	for i, kw := range r.Keywords {
		kw = validation.NormalizeKeyword(kw)
		if ok, msg := validation.ValidateKeyword(kw); !ok {
			errs.Add(fmt.Sprintf("keywords[%d]", i), msg)
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	switch {
	case len(r.Keywords) == 0:
		errs.Add("keywords", "at least one keyword is required")
	case len(out) > MaxMetricsKeywords:
		errs.Add("keywords", fmt.Sprintf("at most %d keywords are allowed", MaxMetricsKeywords))
	}
	r.Keywords = out
	return errs.Err()
}

// Metrics returns volume, cost, competition and trend for each keyword.
func (g *Generator) Metrics(ctx context.Context, req MetricsRequest) (*models.KeywordMetricsResponse, error) {
	src, err := g.source()
	if err != nil {
		return nil, err
	}
	m, err := src.KeywordMetrics(ctx, req.Keywords, dataforseo.Locale{Location: req.Location, Language: req.Language})
	if err != nil {
		return nil, err
	}
	fillMetricsDifficulty(m)
	return &models.KeywordMetricsResponse{Metrics: m}, nil
}

func fillMetricsDifficulty(m []models.KeywordMetrics) {
	for i := range m {
		if m[i].DifficultyScore != nil || m[i].Competition == nil {
			continue
		}
		var volume int64
		if m[i].SearchVolume != nil {
			volume = *m[i].SearchVolume
		}
		d := keywords.EstimateDifficulty(*m[i].Competition, volume)
		m[i].DifficultyScore = &d
	}
}

// ClusterRequest asks for supplied keywords to be clustered.
type ClusterRequest struct {
	Keywords []models.KeywordIdea `json:"keywords"`
	Label    bool                 `json:"label"`
	Provider string               `json:"provider"`
}

func (r *ClusterRequest) Validate() error {
	errs := validation.FieldErrors{}
	if len(r.Keywords) == 0 {
		errs.Add("keywords", "at least one keyword is required")
	}
	if len(r.Keywords) > maxClusterKeywords {
		errs.Add("keywords", fmt.Sprintf("at most %d keywords are allowed", maxClusterKeywords))
	}
	for i, k := range r.Keywords {
		if strings.TrimSpace(k.Keyword) == "" {
			errs.Add(fmt.Sprintf("keywords[%d].keyword", i), "is required")
		}
	}
	return errs.Err()
}

// Cluster groups the keywords by their leading tokens and, when asked, names the
// clusters with a text provider. Naming problems become warnings.
func (g *Generator) Cluster(ctx context.Context, req ClusterRequest) (*models.KeywordClusterResponse, error) {
	if err := g.checkProvider(req.Label, req.Provider); err != nil {
		return nil, err
	}

	resp := &models.KeywordClusterResponse{Clusters: keywords.Cluster(req.Keywords), Warnings: []string{}}
	if !req.Label || len(resp.Clusters) == 0 {
		return resp, nil
	}
	if !g.router.Configured() {
		resp.Warnings = append(resp.Warnings, "cluster labelling skipped: no text provider configured")
		return resp, nil
	}

	labels := map[string]string{}
	if err := g.run(ctx, "keyword-cluster", "keyword-cluster-labels", map[string]any{"Clusters": resp.Clusters}, req.Provider, &labels); err != nil {
		g.logger.Warn("cluster labelling failed", zap.Int("clusters", len(resp.Clusters)), zap.Error(err))
		resp.Warnings = append(resp.Warnings, "cluster labelling skipped: "+failureReason(err))
		return resp, nil
	}
	resp.Clusters = keywords.ApplyLabels(resp.Clusters, labels)
	resp.Labeled = true
	return resp, nil
}

// checkProvider rejects a misspelled provider before any work when the request
// will use a text provider.
func (g *Generator) checkProvider(needed bool, provider string) error {
	if !needed {
		return nil
	}
	return g.router.Check(provider)
}

func failureReason(err error) string {
	var pf *llm.ParseFailure
	if errors.As(err, &pf) {
		return "the response was not valid JSON"
	}
	return "the text provider call failed"
}

// Suite returns ideas, metrics and clusters for one seed in a single response.
// Only the ideas are required; metrics and annotation failures become warnings.
func (g *Generator) Suite(ctx context.Context, req KeywordsRequest) (*models.KeywordSuiteResponse, error) {
	if err := g.checkProvider(req.annotate(), req.Provider); err != nil {
		return nil, err
	}
	ideas, err := g.fetchIdeas(ctx, req)
	if err != nil {
		return nil, err
	}

	resp := &models.KeywordSuiteResponse{Seed: req.Seed, Metrics: []models.KeywordMetrics{}, Warnings: []string{}}

	var annotations []map[string]any
	if req.annotate() {
		annotations, resp.Warnings = g.annotate(ctx, req, ideas)
	}
	resp.Keywords = keywords.Enrich(ideas, annotations, req.Limit)

	texts := keywords.Texts(resp.Keywords)
	if len(texts) > suiteMetricsLimit {
		texts = texts[:suiteMetricsLimit]
	}
	if len(texts) > 0 {
		m, err := g.keywords.KeywordMetrics(ctx, texts, req.locale())
		if err != nil {
			g.logger.Warn("suite metrics failed", zap.String("seed", req.Seed), zap.Error(err))
			resp.Warnings = append(resp.Warnings, "keyword metrics unavailable")
		} else {
			fillMetricsDifficulty(m)
			resp.Metrics = m
		}
	}

	resp.Clusters = keywords.Cluster(resp.Keywords)
	return resp, nil
}
