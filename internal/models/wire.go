package models

import "fmt"

// WireAction is the action shape accepted by the persistence layer. The
// integration type collapses into the action type; only the id survives.
type WireAction struct {
	Type          ActionKind `json:"type"`
	Recipient     []string   `json:"recipient"`
	IntegrationID string     `json:"integrationId"`
}

// Behavior is the payload submitted when a behavior form is saved
type Behavior struct {
	UseDefault bool         `json:"useDefault"`
	Actions    []WireAction `json:"actions"`
}

// ToWire converts an action to its wire form
func ToWire(a Action) WireAction {
	w := WireAction{Type: a.Kind, Recipient: []string{}}
	switch a.Kind {
	case KindIntegration:
		if a.Integration != nil {
			w.IntegrationID = a.Integration.ID
		}
	default:
		w.Recipient = append(w.Recipient, a.Recipients...)
	}
	return w
}

// ToWireList converts an action list to wire form
func ToWireList(actions []Action) []WireAction {
	out := make([]WireAction, len(actions))
	for i, a := range actions {
		out[i] = ToWire(a)
	}
	return out
}

// FromWire converts a wire action back to an Action. lookup resolves the
// integration type and name for an id; a nil lookup or a miss falls back to
// DefaultIntegrationType.
func FromWire(w WireAction, lookup func(id string) (IntegrationRef, bool)) (Action, error) {
	if !IsValidActionKind(w.Type) {
		return Action{}, fmt.Errorf("unknown action type %q", w.Type)
	}
	if w.Type == KindIntegration {
		ref := IntegrationRef{Type: DefaultIntegrationType, ID: w.IntegrationID}
		if lookup != nil && w.IntegrationID != "" {
			if found, ok := lookup(w.IntegrationID); ok {
				ref = found
			}
		}
		return Action{Kind: KindIntegration, Integration: &ref, Recipients: []string{}}, nil
	}

	a := Action{Kind: KindEmailSubscription, Recipients: []string{}}
	seen := make(map[string]bool, len(w.Recipient))
	for _, r := range w.Recipient {
		if seen[r] {
			continue
		}
		seen[r] = true
		a.Recipients = append(a.Recipients, r)
	}
	return a, nil
}

// FromWireList converts a wire action list, failing on the first invalid entry
func FromWireList(ws []WireAction, lookup func(id string) (IntegrationRef, bool)) ([]Action, error) {
	out := make([]Action, 0, len(ws))
	for i, w := range ws {
		a, err := FromWire(w, lookup)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		out = append(out, a)
	}
	return out, nil
}
