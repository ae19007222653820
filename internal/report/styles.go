package report

import (
	"github.com/charmbracelet/lipgloss"

	"runcoach/internal/analysis"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginTop(1)

	mutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(22)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor)

	goodStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	warnStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	badStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(0, 1)
)

// gradeStyle colors A/B green, C amber and D red.
func gradeStyle(g analysis.Grade) lipgloss.Style {
	switch g {
	case analysis.GradeA, analysis.GradeB:
		return goodStyle
	case analysis.GradeC:
		return warnStyle
	case analysis.GradeD:
		return badStyle
	default:
		return mutedStyle
	}
}

func statusStyle(s analysis.StepStatus) lipgloss.Style {
	switch s {
	case analysis.StatusHit, analysis.StatusFast:
		return goodStyle
	case analysis.StatusPartial:
		return warnStyle
	case analysis.StatusMissed:
		return badStyle
	default:
		return mutedStyle
	}
}

func directionStyle(d analysis.Direction) lipgloss.Style {
	switch d {
	case analysis.DirectionImproved:
		return goodStyle
	case analysis.DirectionDegraded:
		return badStyle
	default:
		return mutedStyle
	}
}

func complianceStyle(pct int) lipgloss.Style {
	switch {
	case pct >= 80:
		return goodStyle
	case pct >= 50:
		return warnStyle
	default:
		return badStyle
	}
}

// renderMetric renders a metric with label and value
func renderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
	)
}
