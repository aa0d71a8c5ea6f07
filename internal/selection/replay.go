package selection

import (
	"fmt"

	"github.com/marcus/notif/internal/actions"
	"github.com/marcus/notif/internal/models"
)

// Replay switches s to custom mode and rebuilds its action list as list by
// issuing the same intents the form would: remove, append, set kind, then
// recipients or integration. Errors from any intent stop the replay.
func Replay(s State, list []models.Action) (State, error) {
	s, err := s.Select(ModeCustom)
	if err != nil {
		return s, err
	}
	for i := len(s.customActions) - 1; i >= 0; i-- {
		if s, err = s.RemoveAction(i); err != nil {
			return s, err
		}
	}

	for i, a := range list {
		if s, err = s.AppendAction(); err != nil {
			return s, err
		}
		var integrationType models.IntegrationType
		if a.Integration != nil {
			integrationType = a.Integration.Type
		}
		if s, err = s.SetActionKind(i, a.Kind, integrationType); err != nil {
			return s, err
		}

		switch a.Kind {
		case models.KindIntegration:
			if a.Integration != nil {
				if s, err = s.SetIntegration(i, *a.Integration); err != nil {
					return s, err
				}
			}
		default:
			for _, r := range a.Recipients {
				if s, err = s.ToggleRecipient(i, r); err != nil {
					return s, err
				}
			}
		}
	}
	return s, nil
}

// ApplyBehavior drives s to the state a submitted behavior describes.
// Submitting the result reproduces b up to recipient de-duplication.
func ApplyBehavior(s State, b models.Behavior, lookup func(id string) (models.IntegrationRef, bool)) (State, error) {
	list, err := models.FromWireList(b.Actions, lookup)
	if err != nil {
		return s, err
	}
	switch {
	case b.UseDefault:
		return s.Select(ModeUseDefault)
	case len(list) == 0:
		return s.Select(ModeMute)
	default:
		return Replay(s, list)
	}
}

// Validate checks that s can be stored. Outside custom mode there is nothing
// to check; in custom mode every action must be well formed and every
// integration action must name an integration lookup knows.
func (s State) Validate(lookup func(id string) (models.IntegrationRef, bool)) error {
	if s.mode != ModeCustom {
		return nil
	}
	if err := actions.ValidateList(s.customActions, true); err != nil {
		return err
	}
	for i, a := range s.customActions {
		if a.Kind != models.KindIntegration {
			continue
		}
		if _, ok := lookup(a.Integration.ID); !ok {
			return fmt.Errorf("action %d: unknown integration %s", i, a.Integration.ID)
		}
	}
	return nil
}
