package audit

import (
	"fmt"
	"strings"

	"agencydesk/internal/models"
)

// Deductions per issue severity.
var penalty = map[string]int{
	models.SeverityHigh:   15,
	models.SeverityMedium: 8,
	models.SeverityLow:    3,
}

const (
	minTitleLen       = 30
	maxTitleLen       = 60
	minDescriptionLen = 70
	maxDescriptionLen = 160
	thinContentWords  = 300
	slowResponseMs    = 3000
	lowTextRatio      = 0.1
)

type check struct {
	id       string
	category string
	severity string
	title    string
	failed   func(f models.AuditFields) (bool, string)
}

var checks = []check{
	{"status-error", "technical", models.SeverityHigh, "Page returns an error status",
		func(f models.AuditFields) (bool, string) {
			return f.StatusCode >= 400, fmt.Sprintf("HTTP %d returned.", f.StatusCode)
		}},
	{"https-missing", "technical", models.SeverityHigh, "Page is not served over HTTPS",
		func(f models.AuditFields) (bool, string) {
			return !f.HTTPS, "Browsers flag plain HTTP pages as not secure."
		}},
	{"noindex", "technical", models.SeverityHigh, "Page is excluded from indexing",
		func(f models.AuditFields) (bool, string) {
			return strings.Contains(f.Robots, "noindex"), "robots meta contains noindex."
		}},
	{"title-missing", "on-page", models.SeverityHigh, "Missing title tag",
		func(f models.AuditFields) (bool, string) {
			return f.Title == "", "The page has no <title>."
		}},
	{"title-length", "on-page", models.SeverityMedium, "Title length outside 30-60 characters",
		func(f models.AuditFields) (bool, string) {
			return f.Title != "" && (f.TitleLength < minTitleLen || f.TitleLength > maxTitleLen),
				fmt.Sprintf("Title is %d characters.", f.TitleLength)
		}},
	{"meta-description-missing", "on-page", models.SeverityHigh, "Missing meta description",
		func(f models.AuditFields) (bool, string) {
			return f.MetaDescription == "", "Search results will show an auto-generated snippet."
		}},
	{"meta-description-length", "on-page", models.SeverityLow, "Meta description length outside 70-160 characters",
		func(f models.AuditFields) (bool, string) {
			return f.MetaDescription != "" && (f.MetaDescriptionLen < minDescriptionLen || f.MetaDescriptionLen > maxDescriptionLen),
				fmt.Sprintf("Meta description is %d characters.", f.MetaDescriptionLen)
		}},
	{"h1-missing", "on-page", models.SeverityHigh, "Missing H1 heading",
		func(f models.AuditFields) (bool, string) {
			return f.H1Count == 0, "The page has no <h1>."
		}},
	{"h1-multiple", "on-page", models.SeverityMedium, "Multiple H1 headings",
		func(f models.AuditFields) (bool, string) {
			return f.H1Count > 1, fmt.Sprintf("%d H1 elements found; use exactly one.", f.H1Count)
		}},
	{"viewport-missing", "mobile", models.SeverityHigh, "No mobile viewport",
		func(f models.AuditFields) (bool, string) {
			return !f.HasViewport, "Without a viewport meta tag the page renders at desktop width on phones."
		}},
	{"images-missing-alt", "accessibility", models.SeverityMedium, "Images missing alt text",
		func(f models.AuditFields) (bool, string) {
			return f.ImagesMissingAlt > 0, fmt.Sprintf("%d of %d images have no alt attribute.", f.ImagesMissingAlt, f.ImageCount)
		}},
	{"thin-content", "content", models.SeverityMedium, "Thin content",
		func(f models.AuditFields) (bool, string) {
			return f.WordCount < thinContentWords, fmt.Sprintf("%d words of main content.", f.WordCount)
		}},
	{"slow-response", "performance", models.SeverityMedium, "Slow server response",
		func(f models.AuditFields) (bool, string) {
			return f.ResponseTimeMs > slowResponseMs, fmt.Sprintf("Response took %d ms.", f.ResponseTimeMs)
		}},
	{"canonical-missing", "technical", models.SeverityLow, "No canonical URL",
		func(f models.AuditFields) (bool, string) {
			return f.Canonical == "", "Declare a canonical link to avoid duplicate indexing."
		}},
	{"structured-data-missing", "technical", models.SeverityLow, "No structured data",
		func(f models.AuditFields) (bool, string) {
			return !f.HasStructuredData, "No JSON-LD or microdata found."
		}},
	{"open-graph-missing", "social", models.SeverityLow, "No Open Graph tags",
		func(f models.AuditFields) (bool, string) {
			return !f.HasOpenGraph, "Shared links will have no preview image or title."
		}},
	{"lang-missing", "accessibility", models.SeverityLow, "No document language",
		func(f models.AuditFields) (bool, string) {
			return f.Lang == "", "Set the lang attribute on <html>."
		}},
	{"low-text-ratio", "content", models.SeverityLow, "Low text to HTML ratio",
		func(f models.AuditFields) (bool, string) {
			return f.TextToHTMLRatio < lowTextRatio, fmt.Sprintf("Visible text is %.0f%% of the HTML.", f.TextToHTMLRatio*100)
		}},
}

// Score runs every check against fields and returns a 0-100 score with the failed checks.
func Score(fields models.AuditFields) (int, []models.AuditIssue) {
	score := 100
	issues := []models.AuditIssue{}
	for _, c := range checks {
		failed, detail := c.failed(fields)
		if !failed {
			continue
		}
		score -= penalty[c.severity]
		issues = append(issues, models.AuditIssue{
			ID:       c.id,
			Category: c.category,
			Severity: c.severity,
			Title:    c.title,
			Detail:   detail,
		})
	}
	return max(0, score), issues
}

// RawScan renders fields as the plain-text scan summary stored with an audit.
func RawScan(f models.AuditFields) string {
	yesNo := func(b bool) string {
		if b {
			return "yes"
		}
		return "no"
	}
	orMissing := func(s string) string {
		if s == "" {
			return "missing"
		}
		return s
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "GET %s -> %d in %dms\n", f.FinalURL, f.StatusCode, f.ResponseTimeMs)
	fmt.Fprintf(&sb, "title: %q (%d chars)\n", f.Title, f.TitleLength)
	fmt.Fprintf(&sb, "meta description: %s\n", orMissing(f.MetaDescription))
	fmt.Fprintf(&sb, "canonical: %s\n", orMissing(f.Canonical))
	fmt.Fprintf(&sb, "robots: %s\n", orMissing(f.Robots))
	fmt.Fprintf(&sb, "h1: %d, h2: %d\n", f.H1Count, f.H2Count)
	fmt.Fprintf(&sb, "images: %d (%d without alt)\n", f.ImageCount, f.ImagesMissingAlt)
	fmt.Fprintf(&sb, "links: %d internal, %d external\n", f.InternalLinks, f.ExternalLinks)
	fmt.Fprintf(&sb, "words: %d\n", f.WordCount)
	fmt.Fprintf(&sb, "viewport: %s, open graph: %s, structured data: %s",
		yesNo(f.HasViewport), yesNo(f.HasOpenGraph), yesNo(f.HasStructuredData))
	return sb.String()
}
