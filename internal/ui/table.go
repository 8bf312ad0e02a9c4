package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"faultline/internal/incident"
	"faultline/internal/scenario"
)

const (
	statusWidth  = 12
	timeWidth    = 8
	idWidth      = 8
	minTextWidth = 20
	defaultWidth = 80
)

var titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))

// IncidentTable renders journal entries, one per line, fitted to width.
func IncidentTable(incs []incident.Incident, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("incidents (%d)", len(incs))))
	b.WriteString("\n\n")
	if len(incs) == 0 {
		b.WriteString("  no incidents recorded\n")
		return b.String()
	}

	textWidth := width - statusWidth - timeWidth - idWidth - 8
	if textWidth < minTextWidth {
		textWidth = minTextWidth
	}
	for i := range incs {
		inc := &incs[i]
		status := "logged"
		if inc.Rethrown {
			status = "rethrown"
		}
		where := inc.Component
		if where == "" {
			where = "<global>"
		}
		text := fmt.Sprintf("%s in %s: %s", where, inc.Info, inc.Message)
		statusStyled := styleStatus(status).Render(fmt.Sprintf("%12s", status))
		fmt.Fprintf(&b, "  %s %s %-8s %s\n", statusStyled, inc.Time.Local().Format("15:04:05"), shortID(inc.ID), truncate(text, textWidth))
	}
	return b.String()
}

// ResultsTable renders scenario results in input order. A result whose
// expectations failed is shown as "mismatch".
func ResultsTable(results []*scenario.Result, width int) string {
	if width <= 0 {
		width = defaultWidth
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("scenarios (%d)", len(results))))
	b.WriteString("\n\n")

	nameWidth := width - statusWidth - 4
	if nameWidth < minTextWidth {
		nameWidth = minTextWidth
	}
	for _, res := range results {
		if res == nil {
			continue
		}
		status := ResultStatus(res)
		statusStyled := styleStatus(status).Render(fmt.Sprintf("%12s", status))
		fmt.Fprintf(&b, "  %s %s\n", statusStyled, truncate(res.Name, nameWidth))
	}
	return b.String()
}

// ResultStatus is the one-word summary of a scenario result.
func ResultStatus(res *scenario.Result) string {
	switch {
	case res.Err != nil:
		return "error"
	case res.Check() != nil:
		return "mismatch"
	default:
		return res.Outcome.String()
	}
}

func shortID(id string) string {
	if len(id) > idWidth {
		return id[:idWidth]
	}
	return id
}

func styleStatus(status string) lipgloss.Style {
	switch status {
	case "suppressed":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case "error", "mismatch", "rethrown":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	case "logged":
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
	}
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}
