package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"agencydesk/internal/models"
)

func sampleAudit() Audit {
	score := 58
	return Audit{
		URL:   "https://riverside.test/",
		Score: &score,
		Issues: []models.AuditIssue{
			{Severity: models.SeverityHigh, Title: "Missing meta description", Detail: "No snippet | control"},
		},
		Fields: &models.AuditFields{StatusCode: 200, HTTPS: true, Title: "Riverside", WordCount: 412},
		StructuredAudit: map[string]any{
			"summary":   "Solid basics, thin content.",
			"strengths": []any{"HTTPS enabled"},
			"recommendations": []any{
				map[string]any{"title": "Write a meta description", "impact": "high", "effort": "low"},
				"Add schema markup",
			},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleAudit())

	assert.True(t, strings.HasPrefix(md, "# SEO audit: https://riverside.test/\n"))
	assert.Contains(t, md, "**Score:** 58/100")
	assert.Contains(t, md, "## Summary\n\nSolid basics, thin content.")
	assert.Contains(t, md, "- HTTPS enabled")
	assert.Contains(t, md, `| high | Missing meta description | No snippet \| control |`)
	assert.Contains(t, md, "- Write a meta description (impact: high, effort: low)")
	assert.Contains(t, md, "- Add schema markup")
	assert.Contains(t, md, "| Words | 412 |")
	assert.Contains(t, md, "| Canonical | - |")
}

func TestMarkdown_Empty(t *testing.T) {
	assert.Equal(t, "# SEO audit\n", Markdown(Audit{}))
}

func TestRender(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) }

	source := Markdown(sampleAudit())

	tests := []struct {
		format      string
		contentType string
		contains    []string
		excludes    []string
	}{
		{FormatMarkdown, "text/markdown; charset=utf-8", []string{"# SEO audit", "**Score:**"}, nil},
		{FormatText, "text/plain; charset=utf-8", []string{"SEO audit: https://riverside.test/", "Score: 58/100", "- HTTPS enabled"}, []string{"**", "# "}},
		{FormatHTML, "text/html; charset=utf-8", []string{"<title>SEO audit: https://riverside.test/</title>", "<h1>SEO audit", "<table>", "<strong>Score:</strong>", "Generated 2024-05-01 09:30 UTC"}, []string{"&lt;h1&gt;"}},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := r.Render(source, tt.format, "Riverside Audit.pdf")
			require.NoError(t, err)

			assert.Equal(t, "Riverside-Audit."+tt.format, f.Name)
			assert.Equal(t, tt.contentType, f.ContentType)
			body := string(f.Body)
			for _, s := range tt.contains {
				assert.Contains(t, body, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, body, s)
			}
		})
	}
}

func TestRender_UnknownFormat(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render("# x", "pdf", "")
	assert.Error(t, err)
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name, format, want string
	}{
		{"", "md", "report.md"},
		{"../../etc/passwd", "txt", "etc-passwd.txt"},
		{"Acme Q3 report.html", "html", "Acme-Q3-report.html"},
		{"...", "md", "report.md"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Filename(tt.name, tt.format), tt.name)
	}
}

func TestPlainText(t *testing.T) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	got := PlainText(md, "# Title\n\nSome *emphasis* and `code`.\n\n- one\n- two\n\n```\nraw block\n```\n")
	assert.Equal(t, "Title\n\nSome emphasis and code.\n\n- one\n- two\n\nraw block\n", got)
}
