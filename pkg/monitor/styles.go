package monitor

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/marcus/notif/pkg/monitor/keymap"
)

var (
	// Base colors
	primaryColor = lipgloss.Color("212")
	mutedColor   = lipgloss.Color("241")
	successColor = lipgloss.Color("42")
	warningColor = lipgloss.Color("214")
	errorColor   = lipgloss.Color("196")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Background(lipgloss.Color("237")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	titleStyle  = lipgloss.NewStyle().Bold(true)
	subtleStyle = lipgloss.NewStyle().Foreground(mutedColor)
	helpStyle   = lipgloss.NewStyle().Foreground(mutedColor)

	sectionHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("255")).
			MarginTop(1)

	// Selected row style - inverted colors for visibility
	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.Color("237")).
				Foreground(lipgloss.Color("255"))

	statusOKStyle    = lipgloss.NewStyle().Foreground(successColor)
	statusErrorStyle = lipgloss.NewStyle().Foreground(errorColor).Bold(true)

	behaviorStyles = map[string]lipgloss.Style{
		"default": lipgloss.NewStyle().Foreground(lipgloss.Color("45")),
		"muted":   lipgloss.NewStyle().Foreground(mutedColor),
	}

	pendingKeyStyle = lipgloss.NewStyle().Foreground(warningColor)
)

// formatBehavior renders a behavior summary with color
func formatBehavior(summary string) string {
	style, ok := behaviorStyles[summary]
	if !ok {
		return summary
	}
	return style.Render(summary)
}

// formatFooter renders the footer help for a keymap context
func formatFooter(r *keymap.Registry, ctx keymap.Context) string {
	switch ctx {
	case keymap.ContextModal:
		return helpStyle.Render(r.ModalFooterHelp())
	case keymap.ContextInput:
		return helpStyle.Render(r.InputFooterHelp())
	default:
		return helpStyle.Render(r.FooterHelp())
	}
}
