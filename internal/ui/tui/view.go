package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nsforge/nsforge/pkg/nsapi"
)

func renderView(m Model) string {
	var b strings.Builder

	renderHeader(&b, m)

	if m.Record != nil {
		renderDetails(&b, m)
	}

	b.WriteString(footerStyle.Render("  q to quit"))
	b.WriteString("\n")

	return b.String()
}

func renderHeader(b *strings.Builder, m Model) {
	title := "nsforge: " + m.RequestID
	if m.Record != nil {
		title = "nsforge: " + m.Record.NamespaceName
	}
	b.WriteString(titleStyle.Render(title))

	status := " "
	switch {
	case m.Err != nil:
		status += failedStyle.Render(fmt.Sprintf("Error: %v", m.Err))
	case m.Record == nil:
		status += dimStyle.Render("Connecting...")
	default:
		status += phaseLabel(m.Record.Phase, m.SpinnerFrame)
	}
	b.WriteString(status)
	b.WriteString("\n")
}

func phaseLabel(phase nsapi.Phase, frame int) string {
	switch phase {
	case nsapi.PhaseCompleted:
		return readyStyle.Render("Completed")
	case nsapi.PhaseFailed:
		return failedStyle.Render("Failed")
	case nsapi.PhaseCancelled:
		return warningStyle.Render("Cancelled")
	default:
		return warningStyle.Render(currentSpinner(frame) + " " + string(phase))
	}
}

func renderDetails(b *strings.Builder, m Model) {
	r := m.Record

	b.WriteString(sectionStyle.Render("  Request"))
	b.WriteString("\n")
	writeField(b, "Team", r.Team)
	writeField(b, "Environment", string(r.Environment))
	writeField(b, "Tier", string(r.ResourceTier))
	writeField(b, "Network", string(r.NetworkPolicy))
	if len(r.Features) > 0 {
		writeField(b, "Features", strings.Join(r.Features, ", "))
	}
	if r.WorkflowRef != "" {
		writeField(b, "Workflow", r.WorkflowRef)
	}
	writeField(b, "Age", time.Since(r.CreatedAt).Round(time.Second).String())

	if r.ErrorMessage != "" {
		b.WriteString(sectionStyle.Render("  Error"))
		b.WriteString("\n")
		fmt.Fprintf(b, "  %s\n", failedStyle.Render(r.ErrorMessage))
	}
}

func writeField(b *strings.Builder, name, value string) {
	fmt.Fprintf(b, "  %s %s\n", dimStyle.Render(name+":"), value)
}
