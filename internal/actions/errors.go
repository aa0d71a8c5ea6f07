package actions

import (
	"errors"
	"fmt"

	"github.com/marcus/notif/internal/models"
)

var (
	// ErrIndexOutOfRange is returned when an index does not address an element of the list
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidState is returned when an operation does not apply to the action's kind
	ErrInvalidState = errors.New("invalid state")
)

// IndexError describes an out-of-range list access
type IndexError struct {
	Op    string
	Index int
	Len   int
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("%s: index %d out of range [0, %d)", e.Op, e.Index, e.Len)
}

func (e *IndexError) Unwrap() error {
	return ErrIndexOutOfRange
}

// StateError describes an operation applied to an action of the wrong kind
type StateError struct {
	Op   string
	Kind models.ActionKind
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: not valid for %s action", e.Op, e.Kind)
}

func (e *StateError) Unwrap() error {
	return ErrInvalidState
}
