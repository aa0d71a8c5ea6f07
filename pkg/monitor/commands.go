package monitor

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/notif/internal/modal"
	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/selection"
	"github.com/marcus/notif/pkg/monitor/keymap"
)

var errNoDefault = errors.New("default behavior not loaded")

// currentContext returns the keymap context based on current UI state
func (m Model) currentContext() keymap.Context {
	if m.HelpOpen {
		return keymap.ContextHelp
	}
	if m.InputActive {
		return keymap.ContextInput
	}
	if m.ModalOpen() {
		return keymap.ContextModal
	}
	return keymap.ContextMain
}

// handleKey processes key input using the keymap registry
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctx := m.currentContext()

	// Recipient input: only confirm/cancel are commands, everything else types
	if ctx == keymap.ContextInput {
		if cmd, found := m.Keymap.Lookup(msg, ctx); found &&
			(cmd == keymap.CmdInputConfirm || cmd == keymap.CmdInputCancel) {
			return m.executeCommand(cmd)
		}
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		var inputCmd tea.Cmd
		m.RecipientInput, inputCmd = m.RecipientInput.Update(msg)
		return m, inputCmd
	}

	cmd, found := m.Keymap.Lookup(msg, ctx)
	if !found {
		return m, nil
	}
	return m.executeCommand(cmd)
}

// executeCommand executes a keymap command and returns the updated model and any tea.Cmd
func (m Model) executeCommand(cmd keymap.Command) (tea.Model, tea.Cmd) {
	switch cmd {
	// Global commands
	case keymap.CmdQuit:
		return m, tea.Quit

	case keymap.CmdToggleHelp:
		m.HelpOpen = !m.HelpOpen
		return m, nil

	case keymap.CmdRefresh:
		return m, m.fetchData()

	// Navigation
	case keymap.CmdCursorDown:
		if m.ModalOpen() {
			m.ActionCursor++
			m.clampActionCursor()
		} else {
			m.Cursor++
			m.clampCursor()
		}
		return m, nil

	case keymap.CmdCursorUp:
		if m.ModalOpen() {
			m.ActionCursor--
			m.clampActionCursor()
		} else {
			m.Cursor--
			m.clampCursor()
		}
		return m, nil

	case keymap.CmdCursorTop:
		m.Cursor = 0
		return m, nil

	case keymap.CmdCursorBottom:
		m.Cursor = len(m.Notifications) - 1
		m.clampCursor()
		return m, nil

	// Page
	case keymap.CmdEditNotification:
		n, ok := m.SelectedNotification()
		if !ok {
			return m, nil
		}
		var defaults []models.Action
		if m.Default != nil {
			defaults = m.Default.Actions
		}
		m.Modal.Dispatch(modal.EditNotification(n, defaults))
		m.Edit = selection.NewForNotification(n, defaults)
		m.ActionCursor = 0
		return m, nil

	case keymap.CmdEditDefault:
		if m.Default == nil {
			return m, m.setStatus(errNoDefault.Error(), true)
		}
		m.Modal.Dispatch(modal.EditDefault(*m.Default))
		m.Edit = selection.NewForDefault(*m.Default)
		m.ActionCursor = 0
		return m, nil

	// Modal
	case keymap.CmdClose:
		m.closeModal()
		return m, nil

	case keymap.CmdModeMute:
		return m.apply(m.Edit.Select(selection.ModeMute))

	case keymap.CmdModeDefault:
		return m.apply(m.Edit.Select(selection.ModeUseDefault))

	case keymap.CmdModeCustom:
		return m.apply(m.Edit.Select(selection.ModeCustom))

	case keymap.CmdAddAction:
		next, err := m.Edit.AppendAction()
		if err == nil {
			m.ActionCursor = len(next.CustomActions()) - 1
		}
		return m.apply(next, err)

	case keymap.CmdRemoveAction:
		return m.apply(m.Edit.RemoveAction(m.ActionCursor))

	case keymap.CmdCycleKind:
		kind := models.KindIntegration
		if a, ok := m.currentAction(); ok && a.Kind == models.KindIntegration {
			kind = models.KindEmailSubscription
		}
		return m.apply(m.Edit.SetActionKind(m.ActionCursor, kind, models.DefaultIntegrationType))

	case keymap.CmdClearRecipients:
		return m.apply(m.Edit.ClearRecipients(m.ActionCursor))

	case keymap.CmdCycleIntegration:
		a, ok := m.currentAction()
		if !ok || a.Kind != models.KindIntegration {
			return m, m.setStatus("Select an integration action first", true)
		}
		ref, ok := m.nextIntegration(a)
		if !ok {
			return m, m.setStatus("No integrations configured", true)
		}
		return m.apply(m.Edit.SetIntegration(m.ActionCursor, ref))

	case keymap.CmdEnterRecipient:
		a, ok := m.currentAction()
		if !ok || a.Kind != models.KindEmailSubscription {
			return m, m.setStatus("Select an email action first", true)
		}
		m.InputActive = true
		m.RecipientInput.SetValue("")
		return m, m.RecipientInput.Focus()

	case keymap.CmdInputConfirm:
		value := strings.TrimSpace(m.RecipientInput.Value())
		m.InputActive = false
		m.RecipientInput.Blur()
		m.RecipientInput.SetValue("")
		if value == "" {
			return m, nil
		}
		return m.apply(m.Edit.ToggleRecipient(m.ActionCursor, value))

	case keymap.CmdInputCancel:
		m.InputActive = false
		m.RecipientInput.Blur()
		m.RecipientInput.SetValue("")
		return m, nil

	case keymap.CmdSave:
		return m.save()
	}

	return m, nil
}

// apply installs the result of a selection transition, or reports its error
func (m Model) apply(next selection.State, err error) (tea.Model, tea.Cmd) {
	if err != nil {
		return m, m.setStatus(err.Error(), true)
	}
	m.Edit = next
	m.clampActionCursor()
	return m, nil
}

// currentAction returns the custom action under the modal cursor
func (m Model) currentAction() (models.Action, bool) {
	if m.Edit.Mode() != selection.ModeCustom {
		return models.Action{}, false
	}
	list := m.Edit.CustomActions()
	if m.ActionCursor < 0 || m.ActionCursor >= len(list) {
		return models.Action{}, false
	}
	return list[m.ActionCursor], true
}

// nextIntegration returns the integration after the one a points at,
// wrapping around, among integrations of a's type
func (m Model) nextIntegration(a models.Action) (models.IntegrationRef, bool) {
	var candidates []models.Integration
	for _, i := range m.Integrations {
		if a.Integration == nil || i.Type == a.Integration.Type {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return models.IntegrationRef{}, false
	}
	next := 0
	if a.Integration != nil {
		for idx, i := range candidates {
			if i.ID == a.Integration.ID {
				next = (idx + 1) % len(candidates)
				break
			}
		}
	}
	return candidates[next].Ref(), true
}

// save validates the open behavior and returns a command persisting it
func (m Model) save() (tea.Model, tea.Cmd) {
	lookup, err := m.DB.IntegrationLookup()
	if err != nil {
		return m, m.setStatus(err.Error(), true)
	}
	if err := m.Edit.Validate(lookup); err != nil {
		return m, m.setStatus(err.Error(), true)
	}

	database, behavior := m.DB, m.Edit.Submit()
	switch st := m.Modal.State().(type) {
	case modal.OpenNotification:
		id, label := st.Data.ID, st.Data.EventTypeDisplayName
		return m, func() tea.Msg {
			return SaveResultMsg{Label: label, Err: database.SaveNotificationBehavior(id, behavior)}
		}
	case modal.OpenDefault:
		bundleID := st.Data.BundleID
		label := fmt.Sprintf("default behavior for %s", m.Bundle.DisplayName)
		return m, func() tea.Msg {
			return SaveResultMsg{Label: label, Err: database.SaveDefaultBehavior(bundleID, behavior.Actions)}
		}
	}
	return m, nil
}
