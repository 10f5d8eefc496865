package plan

import (
	"fmt"
	"strings"

	"agencydesk/internal/models"
)

func title(p models.ExecutionPlanPayload) string {
	if p.URL == "" {
		return "# Execution plan\n\n"
	}
	return fmt.Sprintf("# Execution plan: %s\n\n", p.URL)
}

// Markdown renders p in the given format.
func Markdown(p models.ExecutionPlanPayload, format string) string {
	var sb strings.Builder
	sb.WriteString(title(p))

	switch format {
	case FormatWorkflow:
		for _, s := range Workflow(p) {
			fmt.Fprintf(&sb, "%d. **%s** (%s, %s)", s.Step, s.Task, s.Phase, s.Owner)
			if s.Detail != "" {
				fmt.Fprintf(&sb, ": %s", s.Detail)
			}
			sb.WriteString("\n")
		}
	case FormatBoard:
		for _, col := range Board(p) {
			fmt.Fprintf(&sb, "## %s\n\n", col.Phase)
			for _, item := range col.Items {
				mark := " "
				if item.Done {
					mark = "x"
				}
				fmt.Fprintf(&sb, "- [%s] %s\n", mark, item.Text)
			}
			sb.WriteString("\n")
		}
	default:
		for _, phase := range p.Phases {
			fmt.Fprintf(&sb, "## %s\n\n%s\n\n", phase.Name, phase.Summary)
			if len(phase.Issues) > 0 {
				sb.WriteString("### Issues\n\n")
				for _, is := range phase.Issues {
					fmt.Fprintf(&sb, "- **%s** [%s]: %s\n", is.Title, is.Severity, is.Detail)
				}
				sb.WriteString("\n")
			}
			sb.WriteString("### Artifacts\n\n")
			for _, a := range phase.Artifacts {
				fmt.Fprintf(&sb, "- %s\n", a)
			}
			sb.WriteString("\n")
		}
	}
	return strings.TrimRight(sb.String(), "\n") + "\n"
}
