// Package plan turns audit issues into a phased execution plan and renders it
// as a full plan, an ordered workflow or a build-backlog board.
package plan

import (
	"context"
	"fmt"
	"strings"

	"agencydesk/internal/models"
	"agencydesk/internal/prompts"
	"agencydesk/internal/providers/llm"
)

// Phase names, in delivery order.
const (
	PhaseQuickWins   = "Quick wins"
	PhaseFoundations = "Foundations"
	PhaseGrowth      = "Growth"
)

// Output formats.
const (
	FormatFull     = "full"
	FormatWorkflow = "workflow"
	FormatBoard    = "bbb"
)

// Formats lists the accepted formats with a short description.
var Formats = []FormatInfo{
	{FormatFull, "Phases with issues and artifacts"},
	{FormatWorkflow, "Ordered task list with owners"},
	{FormatBoard, "Build-backlog board: one checklist per phase"},
}

// FormatInfo describes an output format.
type FormatInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ValidFormat reports whether f is a known format.
func ValidFormat(f string) bool {
	for _, info := range Formats {
		if info.Name == f {
			return true
		}
	}
	return false
}

var phaseOf = map[string]string{
	"on-page":       PhaseQuickWins,
	"accessibility": PhaseQuickWins,
	"social":        PhaseQuickWins,
	"technical":     PhaseFoundations,
	"mobile":        PhaseFoundations,
	"performance":   PhaseFoundations,
	"content":       PhaseGrowth,
}

var artifacts = map[string][]string{
	PhaseQuickWins:   {"Updated title and meta description copy", "Heading outline", "Image alt text sheet"},
	PhaseFoundations: {"Technical fix tickets", "Schema markup snippet", "Canonical and indexing checklist"},
	PhaseGrowth:      {"Keyword map", "Content calendar", "Service page briefs"},
}

var ownerOf = map[string]string{
	"on-page":       "SEO specialist",
	"social":        "SEO specialist",
	"content":       "Content writer",
	"accessibility": "Developer",
	"technical":     "Developer",
	"mobile":        "Developer",
	"performance":   "Developer",
}

var severityRank = map[string]int{
	models.SeverityHigh:   0,
	models.SeverityMedium: 1,
	models.SeverityLow:    2,
}

// Build groups issues into the three phases. Within a phase issues are ordered
// by severity, keeping input order among equals. Every phase is present even when empty.
func Build(url string, issues []models.AuditIssue) models.ExecutionPlanPayload {
	order := []string{PhaseQuickWins, PhaseFoundations, PhaseGrowth}
	byPhase := make(map[string][]models.AuditIssue, len(order))

	for rank := 0; rank <= 2; rank++ {
		for _, issue := range issues {
			r, ok := severityRank[issue.Severity]
			if !ok {
				r = 2
			}
			if r != rank {
				continue
			}
			phase, ok := phaseOf[issue.Category]
			if !ok {
				phase = PhaseGrowth
			}
			byPhase[phase] = append(byPhase[phase], issue)
		}
	}

	p := models.ExecutionPlanPayload{URL: url, Phases: make([]models.PlanPhase, 0, len(order))}
	for _, name := range order {
		phaseIssues := byPhase[name]
		if phaseIssues == nil {
			phaseIssues = []models.AuditIssue{}
		}
		p.Phases = append(p.Phases, models.PlanPhase{
			Name:      name,
			Summary:   summarize(phaseIssues),
			Issues:    phaseIssues,
			Artifacts: append([]string(nil), artifacts[name]...),
		})
	}
	return p
}

func summarize(issues []models.AuditIssue) string {
	if len(issues) == 0 {
		return "No issues in this phase."
	}
	high := 0
	for _, is := range issues {
		if is.Severity == models.SeverityHigh {
			high++
		}
	}
	noun := "issues"
	if len(issues) == 1 {
		noun = "issue"
	}
	return fmt.Sprintf("%d %s, %d high severity.", len(issues), noun, high)
}

// Step is one task in the workflow format.
type Step struct {
	Step     int    `json:"step"`
	Phase    string `json:"phase"`
	Task     string `json:"task"`
	Detail   string `json:"detail"`
	Owner    string `json:"owner"`
	Severity string `json:"severity"`
}

// Workflow flattens the plan into ordered steps with owners.
func Workflow(p models.ExecutionPlanPayload) []Step {
	steps := []Step{}
	for _, phase := range p.Phases {
		for _, issue := range phase.Issues {
			owner, ok := ownerOf[issue.Category]
			if !ok {
				owner = "Account manager"
			}
			steps = append(steps, Step{
				Step:     len(steps) + 1,
				Phase:    phase.Name,
				Task:     "Fix: " + issue.Title,
				Detail:   issue.Detail,
				Owner:    owner,
				Severity: issue.Severity,
			})
		}
		for _, a := range phase.Artifacts {
			steps = append(steps, Step{
				Step:  len(steps) + 1,
				Phase: phase.Name,
				Task:  "Deliver: " + a,
				Owner: "Account manager",
			})
		}
	}
	return steps
}

// ChecklistItem is one card on the backlog board.
type ChecklistItem struct {
	Text string `json:"text"`
	Done bool   `json:"done"`
}

// Column is one phase of the backlog board.
type Column struct {
	Phase string          `json:"phase"`
	Items []ChecklistItem `json:"items"`
}

// Board renders the plan as a build-backlog board: one checklist per phase.
func Board(p models.ExecutionPlanPayload) []Column {
	cols := make([]Column, 0, len(p.Phases))
	for _, phase := range p.Phases {
		col := Column{Phase: phase.Name, Items: []ChecklistItem{}}
		for _, issue := range phase.Issues {
			col.Items = append(col.Items, ChecklistItem{Text: issue.Title})
		}
		for _, a := range phase.Artifacts {
			col.Items = append(col.Items, ChecklistItem{Text: a})
		}
		cols = append(cols, col)
	}
	return cols
}

// Summarize asks a text provider for a client-facing summary of each phase and
// replaces the computed summaries with the answers it gets.
func Summarize(ctx context.Context, router *llm.Router, catalogue *prompts.Catalogue, provider string, p *models.ExecutionPlanPayload) error {
	type phaseView struct {
		Name   string
		Issues []string
	}
	views := make([]phaseView, len(p.Phases))
	for i, ph := range p.Phases {
		views[i].Name = ph.Name
		for _, is := range ph.Issues {
			views[i].Issues = append(views[i].Issues, is.Title)
		}
	}

	req, err := catalogue.Build("execution-plan", map[string]any{"URL": p.URL, "Phases": views})
	if err != nil {
		return err
	}

	var summaries map[string]any
	if err := router.GenerateJSON(ctx, provider, req, &summaries); err != nil {
		return err
	}
	for i := range p.Phases {
		if s, ok := summaries[p.Phases[i].Name].(string); ok && strings.TrimSpace(s) != "" {
			p.Phases[i].Summary = strings.TrimSpace(s)
		}
	}
	return nil
}
