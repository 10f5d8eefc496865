package generate

import (
	"context"
	"slices"
	"strings"

	"agencydesk/internal/models"
	"agencydesk/internal/validation"
)

// Content kinds and sales kinds accepted by the generation modes.
var (
	ContentKinds = []string{"blog", "landing", "social", "email"}
	SalesKinds   = []string{"cold-email", "call-script", "one-pager"}
)

const maxInputLength = 20000

// ContentRequest asks for a piece of marketing content.
type ContentRequest struct {
	Kind     string   `json:"kind"`
	Topic    string   `json:"topic"`
	Audience string   `json:"audience"`
	Keywords []string `json:"keywords"`
	Tone     string   `json:"tone"`
	Provider string   `json:"provider"`
}

// Validate normalises r in place and reports invalid fields.
func (r *ContentRequest) Validate() error {
	errs := validation.FieldErrors{}
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	if r.Kind == "" {
		r.Kind = "blog"
	}
	if !slices.Contains(ContentKinds, r.Kind) {
		errs.Add("kind", "must be one of "+strings.Join(ContentKinds, ", "))
	}
	r.Topic = strings.TrimSpace(r.Topic)
	if r.Topic == "" {
		errs.Add("topic", "is required")
	}
	r.Keywords = compact(r.Keywords)
	return errs.Err()
}

// ContentResult is generated marketing content.
type ContentResult struct {
	Kind         string `json:"kind"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	CallToAction string `json:"callToAction,omitempty"`
}

// Content generates blog, landing page, social or email copy.
func (g *Generator) Content(ctx context.Context, req ContentRequest) (*ContentResult, error) {
	var out ContentResult
	if err := g.run(ctx, "content", "content-generate", req, req.Provider, &out); err != nil {
		return nil, err
	}

	out.Kind = req.Kind
	out.Title = strings.TrimSpace(out.Title)
	out.Body = strings.TrimSpace(out.Body)
	out.CallToAction = strings.TrimSpace(out.CallToAction)
	if out.Body == "" {
		return nil, invalidShape("content", "body is empty")
	}
	return &out, nil
}

// PressReleaseRequest asks for a press release.
type PressReleaseRequest struct {
	Company      string `json:"company"`
	Announcement string `json:"announcement"`
	Location     string `json:"location"`
	Quote        string `json:"quote"`
	Provider     string `json:"provider"`
}

func (r *PressReleaseRequest) Validate() error {
	errs := validation.FieldErrors{}
	r.Company = strings.TrimSpace(r.Company)
	r.Announcement = strings.TrimSpace(r.Announcement)
	if r.Company == "" {
		errs.Add("company", "is required")
	}
	if r.Announcement == "" {
		errs.Add("announcement", "is required")
	}
	if len(r.Announcement) > maxInputLength {
		errs.Add("announcement", "is too long")
	}
	return errs.Err()
}

// PressRelease generates a press release. Empty paragraphs and quotes are dropped.
func (g *Generator) PressRelease(ctx context.Context, req PressReleaseRequest) (*models.PressReleasePayload, error) {
	var out models.PressReleasePayload
	if err := g.run(ctx, "press-release", "press-release", req, req.Provider, &out); err != nil {
		return nil, err
	}

	out.Headline = strings.TrimSpace(out.Headline)
	out.Body = compact(out.Body)
	quotes := out.Quotes[:0]
	for _, q := range out.Quotes {
		q.Text = strings.TrimSpace(q.Text)
		q.Attribution = strings.TrimSpace(q.Attribution)
		if q.Text != "" {
			quotes = append(quotes, q)
		}
	}
	out.Quotes = quotes

	if out.Headline == "" || len(out.Body) == 0 {
		return nil, invalidShape("press-release", "headline and body are required")
	}
	if err := out.Validate(); err != nil {
		return nil, invalidShape("press-release", err.Error())
	}
	return &out, nil
}

// SalesRequest asks for sales material aimed at one prospect.
type SalesRequest struct {
	Kind     string `json:"kind"`
	Prospect string `json:"prospect"`
	Offer    string `json:"offer"`
	Findings string `json:"findings"`
	Provider string `json:"provider"`
}

func (r *SalesRequest) Validate() error {
	errs := validation.FieldErrors{}
	r.Kind = strings.ToLower(strings.TrimSpace(r.Kind))
	if r.Kind == "" {
		r.Kind = "cold-email"
	}
	if !slices.Contains(SalesKinds, r.Kind) {
		errs.Add("kind", "must be one of "+strings.Join(SalesKinds, ", "))
	}
	r.Prospect = strings.TrimSpace(r.Prospect)
	if r.Prospect == "" {
		errs.Add("prospect", "is required")
	}
	if len(r.Findings) > maxInputLength {
		errs.Add("findings", "is too long")
	}
	return errs.Err()
}

// SalesResult is generated sales material.
type SalesResult struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Sales generates a cold email, call script or one-pager.
func (g *Generator) Sales(ctx context.Context, req SalesRequest) (*SalesResult, error) {
	var out SalesResult
	if err := g.run(ctx, "sales", "sales-generate", req, req.Provider, &out); err != nil {
		return nil, err
	}

	out.Kind = req.Kind
	out.Title = strings.TrimSpace(out.Title)
	out.Body = strings.TrimSpace(out.Body)
	if out.Body == "" {
		return nil, invalidShape("sales", "body is empty")
	}
	return &out, nil
}

// RewriteRequest asks for text to be rewritten. Tone is only used by tone adjustment.
type RewriteRequest struct {
	Text     string `json:"text"`
	Tone     string `json:"tone"`
	Provider string `json:"provider"`
}

func (r *RewriteRequest) validate(needTone bool) error {
	errs := validation.FieldErrors{}
	r.Text = strings.TrimSpace(r.Text)
	r.Tone = strings.TrimSpace(r.Tone)
	if r.Text == "" {
		errs.Add("text", "is required")
	}
	if len(r.Text) > maxInputLength {
		errs.Add("text", "is too long")
	}
	if needTone && r.Tone == "" {
		errs.Add("tone", "is required")
	}
	return errs.Err()
}

// ValidateLelandize checks a house-voice rewrite request.
func (r *RewriteRequest) ValidateLelandize() error { return r.validate(false) }

// ValidateTone checks a tone adjustment request.
func (r *RewriteRequest) ValidateTone() error { return r.validate(true) }

// RewriteResult is rewritten text.
type RewriteResult struct {
	Text string `json:"text"`
}

// Lelandize rewrites text in the house voice.
func (g *Generator) Lelandize(ctx context.Context, req RewriteRequest) (*RewriteResult, error) {
	return g.rewrite(ctx, "lelandize", req)
}

// AdjustTone rewrites text with the requested tone.
func (g *Generator) AdjustTone(ctx context.Context, req RewriteRequest) (*RewriteResult, error) {
	return g.rewrite(ctx, "tone-adjust", req)
}

func (g *Generator) rewrite(ctx context.Context, mode string, req RewriteRequest) (*RewriteResult, error) {
	var out RewriteResult
	if err := g.run(ctx, mode, mode, req, req.Provider, &out); err != nil {
		return nil, err
	}
	out.Text = strings.TrimSpace(out.Text)
	if out.Text == "" {
		return nil, invalidShape(mode, "text is empty")
	}
	return &out, nil
}

// compact trims every string and drops the empty ones.
func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
