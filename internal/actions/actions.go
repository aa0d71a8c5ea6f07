// Package actions implements the pure edit operations over notification
// actions and ordered action lists. No function mutates its arguments.
package actions

import (
	"fmt"

	"github.com/marcus/notif/internal/models"
)

// Append returns a new list with action at the end
func Append(list []models.Action, action models.Action) []models.Action {
	out := make([]models.Action, 0, len(list)+1)
	out = append(out, list...)
	return append(out, action.Clone())
}

// RemoveAt returns a new list without the element at index
func RemoveAt(list []models.Action, index int) ([]models.Action, error) {
	if index < 0 || index >= len(list) {
		return nil, &IndexError{Op: "remove", Index: index, Len: len(list)}
	}
	out := make([]models.Action, 0, len(list)-1)
	out = append(out, list[:index]...)
	return append(out, list[index+1:]...), nil
}

// ReplaceAt returns a new list with the element at index replaced by action
func ReplaceAt(list []models.Action, index int, action models.Action) ([]models.Action, error) {
	if index < 0 || index >= len(list) {
		return nil, &IndexError{Op: "replace", Index: index, Len: len(list)}
	}
	out := make([]models.Action, len(list))
	copy(out, list)
	out[index] = action.Clone()
	return out, nil
}

// SetKind switches an action's kind. Prior recipients and integration
// selection are always discarded. integrationType is ignored for email
// subscriptions and defaults to webhook when empty.
func SetKind(action models.Action, kind models.ActionKind, integrationType models.IntegrationType) models.Action {
	if kind == models.KindIntegration {
		if integrationType == "" {
			integrationType = models.DefaultIntegrationType
		}
		return models.Action{
			Kind:        models.KindIntegration,
			Integration: &models.IntegrationRef{Type: integrationType, ID: ""},
			Recipients:  []string{},
		}
	}
	return models.Action{
		Kind:       models.KindEmailSubscription,
		Recipients: []string{},
	}
}

// ToggleRecipient removes recipient if already selected, otherwise appends it
func ToggleRecipient(action models.Action, recipient string) (models.Action, error) {
	if action.Kind != models.KindEmailSubscription {
		return action, &StateError{Op: "toggle recipient", Kind: action.Kind}
	}
	out := action.Clone()
	for i, r := range out.Recipients {
		if r == recipient {
			out.Recipients = append(out.Recipients[:i], out.Recipients[i+1:]...)
			return out, nil
		}
	}
	out.Recipients = append(out.Recipients, recipient)
	return out, nil
}

// ClearRecipients empties the recipient list
func ClearRecipients(action models.Action) models.Action {
	out := action.Clone()
	out.Recipients = []string{}
	return out
}

// SetIntegration points an integration action at ref
func SetIntegration(action models.Action, ref models.IntegrationRef) (models.Action, error) {
	if action.Kind != models.KindIntegration {
		return action, &StateError{Op: "set integration", Kind: action.Kind}
	}
	out := action.Clone()
	out.Integration = &ref
	return out, nil
}

// Validate checks that an action satisfies the kind invariant. requireTarget
// additionally rejects integration actions without an id.
func Validate(action models.Action, requireTarget bool) error {
	switch action.Kind {
	case models.KindEmailSubscription:
		if action.Integration != nil {
			return fmt.Errorf("email subscription carries an integration reference")
		}
		seen := make(map[string]bool, len(action.Recipients))
		for _, r := range action.Recipients {
			if seen[r] {
				return fmt.Errorf("duplicate recipient %q", r)
			}
			seen[r] = true
		}
	case models.KindIntegration:
		if len(action.Recipients) > 0 {
			return fmt.Errorf("integration action carries recipients")
		}
		if action.Integration == nil {
			return fmt.Errorf("integration action has no integration reference")
		}
		if requireTarget && action.Integration.ID == "" {
			return fmt.Errorf("integration action has no integration selected")
		}
	default:
		return fmt.Errorf("unknown action kind %q", action.Kind)
	}
	return nil
}

// ValidateList validates every action in list
func ValidateList(list []models.Action, requireTarget bool) error {
	for i, a := range list {
		if err := Validate(a, requireTarget); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}
	return nil
}
