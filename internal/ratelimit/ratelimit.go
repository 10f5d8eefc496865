// Package ratelimit implements a fixed-window request limiter keyed by caller
// and route group, with a pluggable window store.
package ratelimit

import (
	"context"
	"math"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Rule is the number of requests allowed per window.
type Rule struct {
	Max    int
	Window time.Duration
}

// Decision is the outcome of one Allow call.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// RetryAfterSeconds rounds RetryAfter up to whole seconds, never below one.
func (d Decision) RetryAfterSeconds() int {
	return max(1, int(math.Ceil(d.RetryAfter.Seconds())))
}

// Config configures a Limiter.
type Config struct {
	Default   Rule
	Expensive Rule
	// ExpensiveGroups are first path segments under /api that use the Expensive rule.
	ExpensiveGroups []string
	// OnReject is called with the route group of every rejected request.
	OnReject func(group string)
	Logger   *zap.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultExpensiveGroups are the routes that call paid providers or fetch remote pages.
var DefaultExpensiveGroups = []string{"deep-audit", "keywords", "keyword-suite", "lead-generator", "lead-enrich"}

// Limiter applies fixed-window limits.
type Limiter struct {
	store     Store
	cfg       Config
	expensive map[string]struct{}
}

// New returns a limiter over store.
func New(store Store, cfg Config) *Limiter {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	l := &Limiter{store: store, cfg: cfg, expensive: make(map[string]struct{})}
	for _, g := range cfg.ExpensiveGroups {
		l.expensive[g] = struct{}{}
	}
	return l
}

// RuleFor returns the rule that applies to group.
func (l *Limiter) RuleFor(group string) Rule {
	first, _, _ := strings.Cut(group, "/")
	if _, ok := l.expensive[first]; ok {
		return l.cfg.Expensive
	}
	return l.cfg.Default
}

// Allow records a request from identifier to group and decides whether it may proceed.
func (l *Limiter) Allow(ctx context.Context, identifier, group string) (Decision, error) {
	rule := l.RuleFor(group)
	now := l.cfg.Now()

	count, resetAt, err := l.store.Hit(ctx, identifier+"|"+group, rule.Window, now)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{
		Allowed:   count <= rule.Max,
		Limit:     rule.Max,
		Remaining: max(0, rule.Max-count),
	}
	if !d.Allowed {
		d.RetryAfter = resetAt.Sub(now)
	}
	return d, nil
}

// Middleware enforces the limiter on every request. Store failures let the request through.
func (l *Limiter) Middleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		group := RouteGroup(c.Path())
		d, err := l.Allow(c.Context(), Identify(c), group)
		if err != nil {
			l.cfg.Logger.Warn("rate limit store unavailable", zap.String("group", group), zap.Error(err))
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))

		if !d.Allowed {
			if l.cfg.OnReject != nil {
				l.cfg.OnReject(group)
			}
			secs := d.RetryAfterSeconds()
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":      "Rate limit exceeded. Please try again later.",
				"retryAfter": secs,
			})
		}
		return c.Next()
	}
}

const maxAgentLen = 64

// Identify derives the caller identifier: the first X-Forwarded-For hop, then
// X-Real-IP, then the first 64 characters of the User-Agent, then the socket address.
func Identify(c fiber.Ctx) string {
	if fwd := c.Get(fiber.HeaderXForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if realIP := strings.TrimSpace(c.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if ua := c.Get(fiber.HeaderUserAgent); ua != "" {
		if len(ua) > maxAgentLen {
			ua = ua[:maxAgentLen]
		}
		return "ua:" + ua
	}
	ip := c.IP()
	if host, _, err := net.SplitHostPort(ip); err == nil {
		return host
	}
	return ip
}

// RouteGroup returns the first two path segments after /api, joined by "/".
// UUID segments collapse to ":id" so every record of a resource shares a window.
func RouteGroup(path string) string {
	path = strings.Trim(path, "/")
	if rest, ok := strings.CutPrefix(path, "api"); ok && (rest == "" || rest[0] == '/') {
		path = strings.TrimPrefix(rest, "/")
	}
	segments := strings.Split(path, "/")
	segments = segments[:min(2, len(segments))]
	for i, seg := range segments {
		if _, err := uuid.Parse(seg); err == nil {
			segments[i] = ":id"
		}
	}
	return strings.Join(segments, "/")
}
