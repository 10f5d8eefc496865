package validation

import (
	"net"
	"net/url"
	"sort"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Keyword limits accepted by the keyword data provider.
const (
	MaxKeywordLength = 80
	MaxKeywordWords  = 10
)

// FieldErrors collects per-field validation messages.
type FieldErrors map[string]string

// Add records msg for field unless the field already has a message.
func (f FieldErrors) Add(field, msg string) {
	if _, exists := f[field]; !exists {
		f[field] = msg
	}
}

// Err returns f as an error, or nil when no field failed.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return f
}

func (f FieldErrors) Error() string {
	fields := make([]string, 0, len(f))
	for k := range f {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	parts := make([]string, len(fields))
	for i, k := range fields {
		parts[i] = k + ": " + f[k]
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NormalizeKeyword trims, lowercases and collapses internal whitespace.
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(strings.ToLower(keyword)), " ")
}

// ValidateKeyword checks a search keyword is non-empty, short enough for the
// provider and free of control characters.
func ValidateKeyword(keyword string) (bool, string) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return false, "keyword is required"
	}
	if len([]rune(keyword)) > MaxKeywordLength {
		return false, "keyword must be at most 80 characters"
	}
	if len(strings.Fields(keyword)) > MaxKeywordWords {
		return false, "keyword must be at most 10 words"
	}
	for _, r := range keyword {
		if unicode.IsControl(r) {
			return false, "keyword contains control characters"
		}
	}
	return true, ""
}

// NormalizeURL trims raw and adds an https scheme when none is given.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.Contains(raw, "://") {
		return raw
	}
	if i := strings.IndexByte(raw, ':'); i > 0 && !strings.ContainsAny(raw[:i], "./") {
		if _, err := net.LookupPort("tcp", raw[i+1:]); err != nil {
			// Looks like scheme:opaque, e.g. javascript:alert(1).
			return raw
		}
	}
	return "https://" + raw
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Hostname() == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// IsPrivateIP checks if an IP address is in a private/reserved range.
// Used to prevent SSRF attacks against internal networks.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}
	if ip.IsPrivate() || ip.IsUnspecified() {
		return true
	}

	// Cloud metadata endpoints (AWS/GCP link-local is covered above; Azure wire server is not)
	if ip.Equal(net.ParseIP("168.63.129.16")) {
		return true
	}

	// Carrier-grade NAT
	_, cgnat, _ := net.ParseCIDR("100.64.0.0/10")
	return cgnat.Contains(ip)
}

// ParseOptionalUUID parses s as a UUID. An empty string yields nil.
func ParseOptionalUUID(s string) (*uuid.UUID, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, false
	}
	return &id, true
}

// ClampLimit returns limit bounded to [1, maxLimit], using def when limit is not positive.
func ClampLimit(limit, def, maxLimit int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxLimit)
}
