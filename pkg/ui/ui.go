// Package ui renders compliance results for the terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/user/cloudcomply/pkg/engine"
)

var (
	Primary = lipgloss.Color("#4285F4")
	Muted   = lipgloss.Color("#6B7280")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(Primary).
			Padding(0, 1)

	LabelStyle = lipgloss.NewStyle().
			Foreground(Muted)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary)

	ProgressEmptyStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#3B3B4F"))
)

const barWidth = 25

// TierStyle colors text with the tier's report color.
func TierStyle(t engine.Tier) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(t.Color())).Bold(true)
}

// SeverityStyle returns the style of a severity label.
func SeverityStyle(s engine.Severity) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch s {
	case engine.SeverityHigh:
		return base.Foreground(lipgloss.Color("#dc3545"))
	case engine.SeverityMedium:
		return base.Foreground(lipgloss.Color("#ffc107"))
	case engine.SeverityLow:
		return base.Foreground(lipgloss.Color("#17a2b8"))
	default:
		return lipgloss.NewStyle().Foreground(Muted)
	}
}

// Title renders a section banner.
func Title(s string) string {
	return TitleStyle.Render(s)
}

// ScoreLine renders one framework's score as a meter:
//
//	CIS        #################........  66.7% Poor (1/3 controls affected)
func ScoreLine(s engine.Score, nameWidth int) string {
	style := TierStyle(s.Tier)

	filled := int(float64(barWidth) * s.Percentage / 100)
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		if i < filled {
			bar.WriteString(style.Render("#"))
		} else {
			bar.WriteString(ProgressEmptyStyle.Render("."))
		}
	}

	return fmt.Sprintf("  %s %s %s %s %s",
		padRight(HeaderStyle.Render(s.Framework), nameWidth),
		bar.String(),
		style.Render(fmt.Sprintf("%5.1f%%", s.Percentage)),
		style.Render(string(s.Tier)),
		LabelStyle.Render(fmt.Sprintf("(%d/%d controls affected)", s.AffectedControls, s.TotalControls)),
	)
}

// ScoreSummary renders a block of score lines, one per framework.
func ScoreSummary(scores []engine.Score) string {
	if len(scores) == 0 {
		return LabelStyle.Render("  no frameworks to score")
	}
	width := 0
	for _, s := range scores {
		width = max(width, lipgloss.Width(s.Framework))
	}
	lines := []string{Title("Compliance Scores")}
	for _, s := range scores {
		lines = append(lines, ScoreLine(s, width))
	}
	return strings.Join(lines, "\n")
}

// ControlsTable renders ranked control records with their finding counts and
// the remediation of each control's first finding.
func ControlsTable(records []engine.ControlRecord) string {
	if len(records) == 0 {
		return LabelStyle.Render("  no affected controls")
	}
	idWidth, nameWidth := len("CONTROL"), len("NAME")
	for _, r := range records {
		idWidth = max(idWidth, lipgloss.Width(r.ID))
		nameWidth = max(nameWidth, lipgloss.Width(r.Name))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
		padRight(HeaderStyle.Render("CONTROL"), idWidth),
		padRight(HeaderStyle.Render("NAME"), nameWidth),
		HeaderStyle.Render("FINDINGS"),
		HeaderStyle.Render("REMEDIATION"),
	)
	for _, r := range records {
		fmt.Fprintf(&b, "  %s  %s  %8d  %s\n",
			padRight(r.ID, idWidth),
			padRight(r.Name, nameWidth),
			len(r.Findings),
			LabelStyle.Render(r.Remediation()),
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

// FindingsTable renders the findings attributed to one control.
func FindingsTable(findings []engine.Finding) string {
	var b strings.Builder
	for _, f := range findings {
		fmt.Fprintf(&b, "  %s  %s  %s  %s\n",
			SeverityStyle(f.Severity).Render(padRight(string(f.Severity), 6)),
			f.ResourceName,
			LabelStyle.Render(f.ProjectID),
			f.FindingType,
		)
	}
	return strings.TrimRight(b.String(), "\n")
}

// padRight pads s to width visible cells; ANSI codes are not counted.
func padRight(s string, width int) string {
	padding := width - lipgloss.Width(s)
	if padding <= 0 {
		return s
	}
	return s + strings.Repeat(" ", padding)
}
