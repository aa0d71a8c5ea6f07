// Package selection tracks the mute / use-default / custom choice for a
// behavior being edited and derives the effective action list from it.
//
// State values are immutable: every transition and intent returns a new State.
package selection

import (
	"fmt"

	"github.com/marcus/notif/internal/actions"
	"github.com/marcus/notif/internal/models"
)

// Mode is the coarse behavior choice for a template
type Mode int

const (
	ModeMute Mode = iota
	ModeUseDefault
	ModeCustom
)

// String returns the flag/display name for the mode
func (m Mode) String() string {
	switch m {
	case ModeUseDefault:
		return "default"
	case ModeCustom:
		return "custom"
	default:
		return "mute"
	}
}

// Label returns the human-facing description for the mode
func (m Mode) Label() string {
	switch m {
	case ModeUseDefault:
		return "Use default notification actions"
	case ModeCustom:
		return "Use custom notification actions"
	default:
		return "Mute notifications"
	}
}

// ParseMode parses a mode name as produced by String
func ParseMode(s string) (Mode, error) {
	switch s {
	case "mute":
		return ModeMute, nil
	case "default", "use-default":
		return ModeUseDefault, nil
	case "custom":
		return ModeCustom, nil
	}
	return ModeMute, fmt.Errorf("unknown mode %q (want mute, default or custom)", s)
}

// Modes returns the modes selectable for a template type
func Modes(t models.TemplateType) []Mode {
	if t == models.TemplateNotification {
		return []Mode{ModeMute, ModeUseDefault, ModeCustom}
	}
	return []Mode{ModeMute, ModeCustom}
}

// State is the edit state for one behavior form
type State struct {
	template        models.TemplateType
	mode            Mode
	customActions   []models.Action
	defaultSnapshot []models.Action
}

// NewForNotification starts editing an event type. defaultActions is the
// bundle default shown read-only in use-default mode. The initial mode is
// always mute, regardless of the loaded data.
func NewForNotification(n models.Notification, defaultActions []models.Action) State {
	return State{
		template:        models.TemplateNotification,
		mode:            ModeMute,
		customActions:   models.CloneActions(n.Actions),
		defaultSnapshot: models.CloneActions(defaultActions),
	}
}

// NewForDefault starts editing a bundle default behavior
func NewForDefault(d models.DefaultBehavior) State {
	return State{
		template:        models.TemplateDefault,
		mode:            ModeMute,
		customActions:   models.CloneActions(d.Actions),
		defaultSnapshot: []models.Action{},
	}
}

// Template returns the template type being edited
func (s State) Template() models.TemplateType {
	return s.template
}

// Mode returns the active mode
func (s State) Mode() Mode {
	return s.mode
}

// UseDefault reports whether the behavior defers to the bundle default
func (s State) UseDefault() bool {
	return s.mode == ModeUseDefault
}

// CustomActions returns a copy of the custom action list, whatever the mode
func (s State) CustomActions() []models.Action {
	return models.CloneActions(s.customActions)
}

// EffectiveActions returns the actions the current mode resolves to
func (s State) EffectiveActions() []models.Action {
	switch s.mode {
	case ModeCustom:
		return models.CloneActions(s.customActions)
	case ModeUseDefault:
		return models.CloneActions(s.defaultSnapshot)
	default:
		return []models.Action{}
	}
}

// Select switches mode. Entering custom mode with no actions seeds one
// default action; existing custom actions are kept across mode changes.
func (s State) Select(mode Mode) (State, error) {
	switch mode {
	case ModeMute:
	case ModeUseDefault:
		if s.template != models.TemplateNotification {
			return s, fmt.Errorf("use-default is only available for notifications: %w", actions.ErrInvalidState)
		}
	case ModeCustom:
		if len(s.customActions) == 0 {
			s.customActions = []models.Action{models.DefaultAction()}
		}
	default:
		return s, fmt.Errorf("select mode %d: %w", mode, actions.ErrInvalidState)
	}
	s.mode = mode
	return s, nil
}

func (s State) requireCustom(op string) error {
	if s.mode != ModeCustom {
		return fmt.Errorf("%s in %s mode: %w", op, s.mode, actions.ErrInvalidState)
	}
	return nil
}

// AppendAction adds a default action to the custom list
func (s State) AppendAction() (State, error) {
	if err := s.requireCustom("append action"); err != nil {
		return s, err
	}
	s.customActions = actions.Append(s.customActions, models.DefaultAction())
	return s, nil
}

// RemoveAction removes the custom action at index
func (s State) RemoveAction(index int) (State, error) {
	if err := s.requireCustom("remove action"); err != nil {
		return s, err
	}
	list, err := actions.RemoveAt(s.customActions, index)
	if err != nil {
		return s, err
	}
	s.customActions = list
	return s, nil
}

// SetActionKind changes the kind of the custom action at index
func (s State) SetActionKind(index int, kind models.ActionKind, integrationType models.IntegrationType) (State, error) {
	return s.update("set action kind", index, func(a models.Action) (models.Action, error) {
		return actions.SetKind(a, kind, integrationType), nil
	})
}

// ToggleRecipient toggles a recipient on the custom action at index
func (s State) ToggleRecipient(index int, recipient string) (State, error) {
	return s.update("toggle recipient", index, func(a models.Action) (models.Action, error) {
		return actions.ToggleRecipient(a, recipient)
	})
}

// ClearRecipients empties the recipients of the custom action at index
func (s State) ClearRecipients(index int) (State, error) {
	return s.update("clear recipients", index, func(a models.Action) (models.Action, error) {
		return actions.ClearRecipients(a), nil
	})
}

// SetIntegration selects the integration of the custom action at index
func (s State) SetIntegration(index int, ref models.IntegrationRef) (State, error) {
	return s.update("set integration", index, func(a models.Action) (models.Action, error) {
		return actions.SetIntegration(a, ref)
	})
}

func (s State) update(op string, index int, fn func(models.Action) (models.Action, error)) (State, error) {
	if err := s.requireCustom(op); err != nil {
		return s, err
	}
	if index < 0 || index >= len(s.customActions) {
		return s, &actions.IndexError{Op: op, Index: index, Len: len(s.customActions)}
	}
	updated, err := fn(s.customActions[index])
	if err != nil {
		return s, err
	}
	list, err := actions.ReplaceAt(s.customActions, index, updated)
	if err != nil {
		return s, err
	}
	s.customActions = list
	return s, nil
}

// Submit produces the behavior payload for the persistence layer. Only
// custom mode carries actions; use-default defers to the bundle default.
func (s State) Submit() models.Behavior {
	b := models.Behavior{UseDefault: s.UseDefault(), Actions: []models.WireAction{}}
	if s.mode == ModeCustom {
		b.Actions = models.ToWireList(s.customActions)
	}
	return b
}
