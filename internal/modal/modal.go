// Package modal holds the single edit-modal slot of the bundle page.
//
// There is one slot: any intent replaces whatever is open. Callers must not
// expect a second open request to queue behind the first.
package modal

import (
	"github.com/marcus/notif/internal/models"
)

// State is one of Closed, OpenDefault or OpenNotification
type State interface {
	IsOpen() bool
	isState()
}

// Closed means no modal is shown
type Closed struct{}

// OpenDefault edits a bundle default behavior
type OpenDefault struct {
	Data models.DefaultBehavior
}

// OpenNotification edits one event type, with the bundle default actions as
// a read-only reference
type OpenNotification struct {
	Data           models.Notification
	DefaultActions []models.Action
}

func (Closed) IsOpen() bool           { return false }
func (OpenDefault) IsOpen() bool      { return true }
func (OpenNotification) IsOpen() bool { return true }

func (Closed) isState()           {}
func (OpenDefault) isState()      {}
func (OpenNotification) isState() {}

// Intent is a request to change the modal slot
type Intent interface {
	isIntent()
}

type editDefault struct {
	template models.DefaultBehavior
}

type editNotification struct {
	template       models.Notification
	defaultActions []models.Action
}

type none struct{}

func (editDefault) isIntent()      {}
func (editNotification) isIntent() {}
func (none) isIntent()             {}

// EditDefault opens the default behavior editor
func EditDefault(template models.DefaultBehavior) Intent {
	return editDefault{template: template}
}

// EditNotification opens the editor for a single event type
func EditNotification(template models.Notification, defaultActions []models.Action) Intent {
	return editNotification{template: template, defaultActions: defaultActions}
}

// None closes whatever is open
func None() Intent {
	return none{}
}

// Reduce applies intent. The current state is ignored.
func Reduce(_ State, intent Intent) State {
	switch in := intent.(type) {
	case editDefault:
		return OpenDefault{Data: in.template}
	case editNotification:
		return OpenNotification{
			Data:           in.template,
			DefaultActions: models.CloneActions(in.defaultActions),
		}
	default:
		return Closed{}
	}
}

// Reducer keeps the current state for the page lifetime
type Reducer struct {
	state State
}

// NewReducer returns a reducer in the Closed state
func NewReducer() *Reducer {
	return &Reducer{state: Closed{}}
}

// State returns the current state
func (r *Reducer) State() State {
	if r.state == nil {
		return Closed{}
	}
	return r.state
}

// Dispatch applies intent and returns the new state
func (r *Reducer) Dispatch(intent Intent) State {
	r.state = Reduce(r.State(), intent)
	return r.state
}
