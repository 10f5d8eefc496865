// Package llm wraps the text generation providers behind one interface and
// enforces the JSON contract for generated structured output.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultMaxTokens = 2048
	defaultRateLimit = 2.0 // requests per second per provider
	defaultBurst     = 4
)

var (
	// ErrNotConfigured is returned when no provider with credentials can serve a request.
	ErrNotConfigured = errors.New("no text generation provider configured")
	// ErrUnknownProvider is returned when a caller names a provider that does not exist.
	ErrUnknownProvider = errors.New("unknown text generation provider")
	// ErrEmptyResponse is returned when a provider answers without any text.
	ErrEmptyResponse = errors.New("empty response from provider")
)

// Request is a single prompt sent to a provider.
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
	// JSON asks the provider for a JSON object response where the API supports it.
	JSON bool
}

// Provider generates text from a prompt.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}

// Options configures an HTTP-backed provider client.
type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	// RateLimit is the sustained requests per second allowed; zero uses the default.
	RateLimit float64
}

func (o Options) timeout() time.Duration {
	if o.Timeout > 0 {
		return o.Timeout
	}
	return defaultTimeout
}

func (o Options) limiter() *rate.Limiter {
	limit := o.RateLimit
	if limit <= 0 {
		limit = defaultRateLimit
	}
	return rate.NewLimiter(rate.Limit(limit), defaultBurst)
}

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}

// APIError is a non-success answer from a provider API.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.StatusCode, e.Message)
}

// CallObserver is notified after every provider call.
type CallObserver func(provider string, err error)

// Router selects a provider by name, falling back to the first configured one.
type Router struct {
	providers []Provider
	observer  CallObserver
}

// NewRouter returns a router over providers. Nil providers are skipped, so callers
// can pass the result of optional constructors directly.
func NewRouter(providers ...Provider) *Router {
	r := &Router{}
	for _, p := range providers {
		if p != nil {
			r.providers = append(r.providers, p)
		}
	}
	return r
}

// SetObserver installs a callback run after each Generate call.
func (r *Router) SetObserver(fn CallObserver) {
	r.observer = fn
}

// Configured reports whether any provider is available.
func (r *Router) Configured() bool {
	return r != nil && len(r.providers) > 0
}

// Names lists the available providers in preference order.
func (r *Router) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Pick returns the named provider, or the first available one when name is empty.
func (r *Router) Pick(name string) (Provider, error) {
	if !r.Configured() {
		return nil, ErrNotConfigured
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return r.providers[0], nil
	}
	for _, p := range r.providers {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
}

// Check returns ErrUnknownProvider when name is set and no available provider
// carries it. A router without providers accepts any name; callers report
// ErrNotConfigured on their own terms.
func (r *Router) Check(name string) error {
	if !r.Configured() {
		return nil
	}
	_, err := r.Pick(name)
	return err
}

// Generate sends req to the selected provider.
func (r *Router) Generate(ctx context.Context, provider string, req Request) (string, error) {
	p, err := r.Pick(provider)
	if err != nil {
		return "", err
	}
	text, err := p.Generate(ctx, req)
	if r.observer != nil {
		r.observer(p.Name(), err)
	}
	if err != nil {
		return "", err
	}
	return text, nil
}

// GenerateJSON asks for a JSON response and decodes it into v.
// A response that is not valid JSON yields a *ParseFailure carrying the raw text.
func (r *Router) GenerateJSON(ctx context.Context, provider string, req Request, v any) error {
	req.JSON = true
	text, err := r.Generate(ctx, provider, req)
	if err != nil {
		return err
	}
	return DecodeJSON(text, v)
}
