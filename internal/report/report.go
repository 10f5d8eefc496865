// Package report renders audit reports as downloadable text, markdown or HTML files.
package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/template/html/v3"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"agencydesk/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

// Formats accepted by Render.
const (
	FormatText     = "txt"
	FormatMarkdown = "md"
	FormatHTML     = "html"
)

// ValidFormat reports whether f is an export format.
func ValidFormat(f string) bool {
	return f == FormatText || f == FormatMarkdown || f == FormatHTML
}

var contentTypes = map[string]string{
	FormatText:     "text/plain; charset=utf-8",
	FormatMarkdown: "text/markdown; charset=utf-8",
	FormatHTML:     "text/html; charset=utf-8",
}

// Audit is the audit data a report is built from. All fields are optional.
type Audit struct {
	URL             string              `json:"url"`
	Score           *int                `json:"score"`
	Issues          []models.AuditIssue `json:"issues"`
	Fields          *models.AuditFields `json:"structuredFields"`
	StructuredAudit map[string]any      `json:"structuredAudit"`
}

// File is a rendered download.
type File struct {
	Name        string
	ContentType string
	Body        []byte
}

// Renderer converts markdown reports to the export formats.
type Renderer struct {
	md     goldmark.Markdown
	engine *html.Engine
	now    func() time.Time
}

// NewRenderer loads the embedded HTML layout.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("failed to load report templates: %w", err)
	}
	return &Renderer{
		md:     goldmark.New(goldmark.WithExtensions(extension.GFM)),
		engine: engine,
		now:    time.Now,
	}, nil
}

// Render produces the file for markdown source in format.
func (r *Renderer) Render(source, format, filename string) (*File, error) {
	if !ValidFormat(format) {
		return nil, fmt.Errorf("unknown report format %q", format)
	}

	var body []byte
	switch format {
	case FormatMarkdown:
		body = []byte(source)
	case FormatText:
		body = []byte(PlainText(r.md, source))
	case FormatHTML:
		var err error
		if body, err = r.renderHTML(source); err != nil {
			return nil, err
		}
	}

	return &File{
		Name:        Filename(filename, format),
		ContentType: contentTypes[format],
		Body:        body,
	}, nil
}

func (r *Renderer) renderHTML(source string) ([]byte, error) {
	var content bytes.Buffer
	if err := r.md.Convert([]byte(source), &content); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}

	var out bytes.Buffer
	err := r.engine.Render(&out, "report", map[string]any{
		"Title":     documentTitle(source),
		"Body":      template.HTML(content.String()),
		"Generated": r.now().UTC().Format("2006-01-02 15:04 MST"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}
	return out.Bytes(), nil
}

func documentTitle(source string) string {
	for _, line := range strings.Split(source, "\n") {
		if t, ok := strings.CutPrefix(strings.TrimSpace(line), "# "); ok {
			return strings.TrimSpace(t)
		}
	}
	return "Report"
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Filename sanitises name and gives it the extension for format.
func Filename(name, format string) string {
	name = strings.Trim(unsafeFilename.ReplaceAllString(strings.TrimSpace(name), "-"), "-.")
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		name = strings.TrimRight(name[:i], "-.")
	}
	if name == "" {
		name = "report"
	}
	if len(name) > 80 {
		name = name[:80]
	}
	return name + "." + format
}

// Markdown builds the markdown report for a.
func Markdown(a Audit) string {
	var sb strings.Builder

	if a.URL != "" {
		fmt.Fprintf(&sb, "# SEO audit: %s\n\n", a.URL)
	} else {
		sb.WriteString("# SEO audit\n\n")
	}
	if a.Score != nil {
		fmt.Fprintf(&sb, "**Score:** %d/100\n\n", *a.Score)
	}

	if summary, ok := a.StructuredAudit["summary"].(string); ok && summary != "" {
		fmt.Fprintf(&sb, "## Summary\n\n%s\n\n", summary)
	}
	writeList(&sb, "Strengths", a.StructuredAudit["strengths"])
	writeList(&sb, "Weaknesses", a.StructuredAudit["weaknesses"])

	if len(a.Issues) > 0 {
		sb.WriteString("## Issues\n\n| Severity | Issue | Detail |\n|---|---|---|\n")
		for _, is := range a.Issues {
			fmt.Fprintf(&sb, "| %s | %s | %s |\n", is.Severity, cell(is.Title), cell(is.Detail))
		}
		sb.WriteString("\n")
	}

	if recs, ok := a.StructuredAudit["recommendations"].([]any); ok && len(recs) > 0 {
		sb.WriteString("## Recommendations\n\n")
		for _, rec := range recs {
			switch v := rec.(type) {
			case string:
				fmt.Fprintf(&sb, "- %s\n", v)
			case map[string]any:
				title, _ := v["title"].(string)
				if title == "" {
					continue
				}
				impact, _ := v["impact"].(string)
				effort, _ := v["effort"].(string)
				fmt.Fprintf(&sb, "- %s", title)
				if impact != "" || effort != "" {
					fmt.Fprintf(&sb, " (impact: %s, effort: %s)", orDash(impact), orDash(effort))
				}
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\n")
	}

	if f := a.Fields; f != nil {
		sb.WriteString("## Measured fields\n\n| Field | Value |\n|---|---|\n")
		rows := [][2]string{
			{"Status", fmt.Sprint(f.StatusCode)},
			{"Response time", fmt.Sprintf("%d ms", f.ResponseTimeMs)},
			{"HTTPS", yesNo(f.HTTPS)},
			{"Title", f.Title},
			{"Meta description", f.MetaDescription},
			{"Canonical", f.Canonical},
			{"H1 / H2", fmt.Sprintf("%d / %d", f.H1Count, f.H2Count)},
			{"Images without alt", fmt.Sprintf("%d of %d", f.ImagesMissingAlt, f.ImageCount)},
			{"Links", fmt.Sprintf("%d internal, %d external", f.InternalLinks, f.ExternalLinks)},
			{"Words", fmt.Sprint(f.WordCount)},
		}
		for _, row := range rows {
			fmt.Fprintf(&sb, "| %s | %s |\n", row[0], cell(orDash(row[1])))
		}
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n") + "\n"
}

func writeList(sb *strings.Builder, heading string, v any) {
	items, ok := v.([]any)
	if !ok || len(items) == 0 {
		return
	}
	fmt.Fprintf(sb, "## %s\n\n", heading)
	for _, item := range items {
		if s, ok := item.(string); ok && s != "" {
			fmt.Fprintf(sb, "- %s\n", s)
		}
	}
	sb.WriteString("\n")
}

func cell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", `\|`), "\n", " ")
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
