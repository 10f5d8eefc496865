package generate

import (
	"context"
	"math"
	"strings"

	"agencydesk/internal/models"
	"agencydesk/internal/validation"
)

const defaultResearchLimit = 30

// ResearchRequest asks for keyword ideas without a metrics provider.
type ResearchRequest struct {
	Seed     string `json:"seed"`
	Audience string `json:"audience"`
	Location string `json:"location"`
	Limit    int    `json:"limit"`
	Provider string `json:"provider"`
}

func (r *ResearchRequest) Validate() error {
	errs := validation.FieldErrors{}
	r.Seed = validation.NormalizeKeyword(r.Seed)
	if ok, msg := validation.ValidateKeyword(r.Seed); !ok {
		errs.Add("seed", msg)
	}
	r.Audience = strings.TrimSpace(r.Audience)
	r.Location = strings.TrimSpace(r.Location)
	r.Limit = validation.ClampLimit(r.Limit, defaultResearchLimit, MaxKeywordLimit)
	return errs.Err()
}

// ResearchTheme is a named group of researched keywords.
type ResearchTheme struct {
	Name     string               `json:"name"`
	Keywords []models.KeywordIdea `json:"keywords"`
}

// ResearchResult is a themed keyword list.
type ResearchResult struct {
	Seed   string          `json:"seed"`
	Themes []ResearchTheme `json:"themes"`
}

type researchDoc struct {
	Themes []struct {
		Name     string `json:"name"`
		Keywords []struct {
			Keyword       string   `json:"keyword"`
			Intent        string   `json:"intent"`
			PriorityScore *float64 `json:"priorityScore"`
			Notes         string   `json:"notes"`
		} `json:"keywords"`
	} `json:"themes"`
}

// Research asks a text provider for themed keyword ideas around the seed.
func (g *Generator) Research(ctx context.Context, req ResearchRequest) (*ResearchResult, error) {
	var doc researchDoc
	if err := g.run(ctx, "keyword-research", "keyword-research", req, req.Provider, &doc); err != nil {
		return nil, err
	}

	res := normalizeResearch(req.Seed, doc, req.Limit)
	if len(res.Themes) == 0 {
		return nil, invalidShape("keyword-research", "no keywords returned")
	}
	return res, nil
}

// normalizeResearch drops blank and duplicate keywords across themes, discards
// unknown intents, clamps priority to 0-10 and keeps at most limit keywords.
func normalizeResearch(seed string, doc researchDoc, limit int) *ResearchResult {
	res := &ResearchResult{Seed: seed, Themes: []ResearchTheme{}}
	seen := map[string]struct{}{}
	total := 0

	for _, t := range doc.Themes {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			name = "Other"
		}
		theme := ResearchTheme{Name: name}

		for _, k := range t.Keywords {
			if total >= limit {
				break
			}
			kw := validation.NormalizeKeyword(k.Keyword)
			if kw == "" {
				continue
			}
			if _, dup := seen[kw]; dup {
				continue
			}
			seen[kw] = struct{}{}

			idea := models.KeywordIdea{Keyword: kw, ClusterLabel: &name}
			if intent := strings.ToLower(strings.TrimSpace(k.Intent)); models.ValidIntent(intent) {
				idea.Intent = &intent
			}
			if k.PriorityScore != nil && !math.IsNaN(*k.PriorityScore) {
				p := math.Max(0, math.Min(10, *k.PriorityScore))
				idea.PriorityScore = &p
			}
			if notes := strings.TrimSpace(k.Notes); notes != "" {
				idea.Notes = &notes
			}
			theme.Keywords = append(theme.Keywords, idea)
			total++
		}

		if len(theme.Keywords) > 0 {
			res.Themes = append(res.Themes, theme)
		}
	}
	return res
}
