package monitor

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/marcus/notif/internal/modal"
	"github.com/marcus/notif/internal/selection"
)

// renderView renders the whole page
func (m Model) renderView() string {
	width := m.contentWidth()

	var body string
	switch {
	case m.HelpOpen:
		body = panelStyle.Width(width - 2).Render(m.Keymap.GenerateHelp())
	case m.ModalOpen():
		body = m.renderModal(width)
	default:
		body = m.renderList(width)
	}

	parts := []string{m.renderHeader(width), body}
	if status := m.renderStatus(); status != "" {
		parts = append(parts, ansi.Truncate(status, width, "…"))
	}
	parts = append(parts, ansi.Truncate(m.renderFooter(), width, "…"))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader(width int) string {
	title := m.Bundle.DisplayName
	if title == "" {
		title = m.Bundle.Name
	}
	header := panelTitleStyle.Render("Notifications: " + title)
	if !m.LastRefresh.IsZero() {
		header += " " + subtleStyle.Render("updated "+m.LastRefresh.Format("15:04:05"))
	}
	return ansi.Truncate(header, width, "…")
}

// renderList renders the event type list with one row per notification
func (m Model) renderList(width int) string {
	if m.Err != nil {
		return statusErrorStyle.Render("Error: " + m.Err.Error())
	}
	if len(m.Notifications) == 0 {
		return subtleStyle.Render("No event types in this bundle")
	}

	inner := width - 4
	appWidth := 0
	for _, n := range m.Notifications {
		appWidth = max(appWidth, lipgloss.Width(n.ApplicationDisplayName))
	}

	var sb strings.Builder
	for i, n := range m.Notifications {
		if i > 0 {
			sb.WriteString("\n")
		}
		summary := behaviorSummary(n)
		row := fmt.Sprintf("%-*s  %s  %s", appWidth, n.ApplicationDisplayName,
			titleStyle.Render(n.EventTypeDisplayName), formatBehavior(summary))
		row = ansi.Truncate(row, inner, "…")
		if i == m.Cursor {
			row = selectedRowStyle.Render(ansi.Strip(row))
		}
		sb.WriteString(row)
	}

	if m.Default != nil {
		sb.WriteString("\n")
		sb.WriteString(sectionHeader.Render("Default behavior"))
		sb.WriteString("\n")
		line := "muted"
		if len(m.Default.Actions) > 0 {
			line = actionsSummary(m.Default.Actions)
		}
		sb.WriteString(ansi.Truncate(subtleStyle.Render(line), inner, "…"))
	}

	return panelStyle.Width(width - 2).Render(sb.String())
}

// renderModal renders the edit modal for whichever template is open
func (m Model) renderModal(width int) string {
	inner := width - 4

	var title, description string
	switch st := m.Modal.State().(type) {
	case modal.OpenNotification:
		title = st.Data.ApplicationDisplayName + " / " + st.Data.EventTypeDisplayName
		description = st.Data.Description
	case modal.OpenDefault:
		title = "Default behavior"
		description = "Actions for event types that use the bundle default"
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(ansi.Truncate(title, inner, "…")))
	if description != "" {
		sb.WriteString("\n")
		sb.WriteString(subtleStyle.Render(ansi.Truncate(description, inner, "…")))
	}

	sb.WriteString("\n")
	for _, mode := range selection.Modes(m.Edit.Template()) {
		mark := "( )"
		if mode == m.Edit.Mode() {
			mark = "(•)"
		}
		sb.WriteString(fmt.Sprintf("\n%s %s", mark, mode.Label()))
	}

	mode := m.Edit.Mode()
	if mode == selection.ModeMute {
		return modalStyle.Width(width - 2).Render(sb.String())
	}

	// Default actions are shown read-only; custom rows carry the cursor
	editable := mode == selection.ModeCustom
	heading := "Default actions"
	if editable {
		heading = "Actions"
	}
	sb.WriteString("\n")
	sb.WriteString(sectionHeader.Render(heading))
	list := m.Edit.EffectiveActions()
	if len(list) == 0 {
		sb.WriteString("\n" + subtleStyle.Render("none"))
	}
	for i, a := range list {
		if !editable {
			sb.WriteString("\n" + subtleStyle.Render(ansi.Truncate("• "+actionLabel(a), inner, "…")))
			continue
		}
		row := ansi.Truncate(fmt.Sprintf("%d. %s", i+1, actionLabel(a)), inner, "…")
		if i == m.ActionCursor {
			row = selectedRowStyle.Render(row)
		}
		sb.WriteString("\n" + row)
	}
	if editable && m.InputActive {
		sb.WriteString("\n\n" + m.RecipientInput.View())
	}

	return modalStyle.Width(width - 2).Render(sb.String())
}

func (m Model) renderStatus() string {
	if m.StatusMessage == "" {
		return ""
	}
	if m.StatusIsError {
		return statusErrorStyle.Render(m.StatusMessage)
	}
	return statusOKStyle.Render(m.StatusMessage)
}

func (m Model) renderFooter() string {
	footer := formatFooter(m.Keymap, m.currentContext())
	if pending := m.Keymap.PendingKey(); pending != "" {
		footer = pendingKeyStyle.Render(pending+"…") + "  " + footer
	}
	return footer
}
