// Package monitor implements the interactive bundle page: a list of event
// types with a single edit modal for notification and default behaviors.
package monitor

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/modal"
	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/selection"
	"github.com/marcus/notif/pkg/monitor/keymap"
)

const statusDuration = 3 * time.Second

// Model is the Bubble Tea model for the bundle page
type Model struct {
	DB     *db.DB
	Bundle models.Facet
	Keymap *keymap.Registry

	// Window dimensions
	Width  int
	Height int

	// Page data
	Notifications []models.Notification
	Default       *models.DefaultBehavior
	Integrations  []models.Integration
	LastRefresh   time.Time
	Err           error // Last load error, if any

	// UI state
	Cursor   int
	HelpOpen bool

	// Edit modal: the reducer owns which template is open, Edit holds the
	// in-progress selection for it
	Modal          *modal.Reducer
	Edit           selection.State
	ActionCursor   int
	RecipientInput textinput.Model
	InputActive    bool

	StatusMessage string
	StatusIsError bool
}

// NewModel creates a bundle page model. A nil registry gets the default bindings.
func NewModel(database *db.DB, bundle models.Facet, km *keymap.Registry) Model {
	if km == nil {
		km = keymap.NewRegistry()
		keymap.RegisterDefaults(km)
	}

	ti := textinput.New()
	ti.Placeholder = "recipient"
	ti.CharLimit = 128
	ti.Prompt = "› "

	return Model{
		DB:             database,
		Bundle:         bundle,
		Keymap:         km,
		Modal:          modal.NewReducer(),
		RecipientInput: ti,
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.fetchData()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Recipient input: forward non-key messages (cursor blink) to the textinput.
	// Key messages are handled in handleKey.
	if m.InputActive {
		if _, isKey := msg.(tea.KeyMsg); !isKey {
			var inputCmd tea.Cmd
			m.RecipientInput, inputCmd = m.RecipientInput.Update(msg)
			if inputCmd != nil {
				return m, inputCmd
			}
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.RecipientInput.Width = max(m.contentWidth()-8, 10)
		return m, nil

	case RefreshDataMsg:
		if msg.Err != nil {
			m.Err = msg.Err
			return m, nil
		}
		m.Err = nil
		m.Notifications = msg.Notifications
		m.Default = msg.Default
		m.Integrations = msg.Integrations
		m.LastRefresh = msg.Timestamp
		m.clampCursor()
		return m, nil

	case SaveResultMsg:
		if msg.Err != nil {
			return m, m.setStatus("Save failed: "+msg.Err.Error(), true)
		}
		m.closeModal()
		return m, tea.Batch(m.fetchData(), m.setStatus("Saved "+msg.Label, false))

	case ClearStatusMsg:
		m.StatusMessage = ""
		m.StatusIsError = false
		return m, nil
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	return m.renderView()
}

// fetchData returns a command that loads the page and sends a RefreshDataMsg
func (m Model) fetchData() tea.Cmd {
	database, bundleID := m.DB, m.Bundle.ID
	return func() tea.Msg {
		return FetchData(database, bundleID)
	}
}

// setStatus shows a status line and schedules its removal
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.StatusMessage = text
	m.StatusIsError = isErr
	return tea.Tick(statusDuration, func(time.Time) tea.Msg { return ClearStatusMsg{} })
}

// ModalOpen reports whether the edit modal is showing
func (m Model) ModalOpen() bool {
	return m.Modal.State().IsOpen()
}

// SelectedNotification returns the notification under the cursor
func (m Model) SelectedNotification() (models.Notification, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Notifications) {
		return models.Notification{}, false
	}
	return m.Notifications[m.Cursor], true
}

func (m *Model) clampCursor() {
	if m.Cursor >= len(m.Notifications) {
		m.Cursor = len(m.Notifications) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func (m *Model) clampActionCursor() {
	n := len(m.Edit.CustomActions())
	if m.ActionCursor >= n {
		m.ActionCursor = n - 1
	}
	if m.ActionCursor < 0 {
		m.ActionCursor = 0
	}
}

func (m *Model) closeModal() {
	m.Modal.Dispatch(modal.None())
	m.Edit = selection.State{}
	m.ActionCursor = 0
	m.InputActive = false
	m.RecipientInput.Blur()
	m.RecipientInput.SetValue("")
}

func (m Model) contentWidth() int {
	if m.Width <= 0 {
		return 80
	}
	return m.Width
}
