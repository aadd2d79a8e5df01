package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dd0wney/capsl/pkg/automaton"
	"github.com/dd0wney/capsl/pkg/checker"
	"github.com/dd0wney/capsl/pkg/export"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF")).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF"))

	boxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#00FF00")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFF00"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

const rowFormat = "%-8s %-28s %7s %8s %12s %8s %6s"

func renderSummary(res *checker.Result, art *export.Artifact, artifactPath string, diagrams []string) string {
	var rows strings.Builder
	rows.WriteString(headerStyle.Render(fmt.Sprintf(rowFormat, "KIND", "AUTOMATON", "STATES", "SIGNALS", "TRANSITIONS", "ILLEGAL", "TRAPS")))
	rows.WriteString("\n")

	for _, e := range art.Entries {
		rows.WriteString(renderRow(e.Kind, e.Automaton, len(e.TrapStates)))
		rows.WriteString("\n")
		if len(e.Unresolved) > 0 {
			rows.WriteString(warnStyle.Render("         unresolved: " + strings.Join(e.Unresolved, ", ")))
			rows.WriteString("\n")
		}
	}

	var s strings.Builder
	s.WriteString(titleStyle.Render("capsl checker " + res.Name))
	s.WriteString("\n")
	s.WriteString(boxStyle.Render(strings.TrimRight(rows.String(), "\n")))
	s.WriteString("\n")
	s.WriteString(successStyle.Render(fmt.Sprintf("✓ %d components, %d rules", res.Components.Len(), res.Rules.Len())))
	s.WriteString("\n")
	s.WriteString(helpStyle.Render(fmt.Sprintf("artifact %s → %s", art.ID, artifactPath)))
	for _, d := range diagrams {
		s.WriteString("\n")
		s.WriteString(helpStyle.Render("diagram  " + d))
	}
	return s.String()
}

func renderRow(kind string, a *automaton.Automaton, traps int) string {
	row := fmt.Sprintf(rowFormat,
		kind,
		truncate(a.Name, 28),
		fmt.Sprint(len(a.States)),
		fmt.Sprint(len(a.Signals)),
		fmt.Sprint(len(a.Transitions)),
		fmt.Sprint(a.NumIllegal),
		fmt.Sprint(traps),
	)
	if kind == export.KindComponent && a.NumIllegal > 0 {
		return warnStyle.Render(row)
	}
	return row
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
