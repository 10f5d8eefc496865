// Package generate implements the text generation modes: marketing content,
// press releases, sales material, rewrites and keyword research.
package generate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"agencydesk/internal/metrics"
	"agencydesk/internal/prompts"
	"agencydesk/internal/providers/llm"
)

// ErrInvalidShape is returned when a generated JSON document decodes but lacks required content.
var ErrInvalidShape = errors.New("generated response has an unexpected shape")

// Generator runs generation modes against the configured text providers.
type Generator struct {
	router    *llm.Router
	prompts   *prompts.Catalogue
	keywords  KeywordSource
	logger    *zap.Logger
	batchSize int
}

// Option configures a Generator.
type Option func(*Generator)

// WithBatchSize sets how many keywords are annotated per prompt.
func WithBatchSize(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.batchSize = n
		}
	}
}

// New returns a Generator. source may be nil when no keyword metrics provider is configured.
func New(router *llm.Router, catalogue *prompts.Catalogue, source KeywordSource, logger *zap.Logger, opts ...Option) *Generator {
	g := &Generator{
		router:    router,
		prompts:   catalogue,
		keywords:  source,
		logger:    logger,
		batchSize: 50,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// run builds prompt id, asks provider for JSON and decodes it into out.
func (g *Generator) run(ctx context.Context, mode, id string, data any, provider string, out any) error {
	req, err := g.prompts.Build(id, data)
	if err != nil {
		return err
	}

	if err := g.router.GenerateJSON(ctx, provider, req, out); err != nil {
		var pf *llm.ParseFailure
		if errors.As(err, &pf) {
			metrics.RecordParseFailure(mode)
			g.logger.Warn("generated response was not valid JSON",
				zap.String("mode", mode),
				zap.Int("raw_length", len(pf.Raw)),
				zap.Error(pf.Err),
			)
		}
		return err
	}
	return nil
}

func invalidShape(mode, msg string) error {
	return fmt.Errorf("%w: %s: %s", ErrInvalidShape, mode, msg)
}
