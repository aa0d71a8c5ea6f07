package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestToWire(t *testing.T) {
	tests := []struct {
		name   string
		action Action
		want   WireAction
	}{
		{
			name:   "email",
			action: Action{Kind: KindEmailSubscription, Recipients: []string{"a", "b"}},
			want:   WireAction{Type: KindEmailSubscription, Recipient: []string{"a", "b"}},
		},
		{
			name:   "email nil recipients",
			action: Action{Kind: KindEmailSubscription},
			want:   WireAction{Type: KindEmailSubscription, Recipient: []string{}},
		},
		{
			name:   "integration",
			action: Action{Kind: KindIntegration, Integration: &IntegrationRef{Type: IntegrationWebhook, ID: "i-1", Name: "hook"}},
			want:   WireAction{Type: KindIntegration, Recipient: []string{}, IntegrationID: "i-1"},
		},
		{
			name:   "integration without ref",
			action: Action{Kind: KindIntegration},
			want:   WireAction{Type: KindIntegration, Recipient: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToWire(tt.action)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ToWire = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestWireJSONShape(t *testing.T) {
	b := Behavior{
		UseDefault: false,
		Actions: ToWireList([]Action{
			{Kind: KindIntegration, Integration: &IntegrationRef{Type: IntegrationWebhook, ID: "i-1"}},
		}),
	}
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"useDefault":false,"actions":[{"type":"INTEGRATION","recipient":[],"integrationId":"i-1"}]}`
	if string(data) != want {
		t.Errorf("json = %s\nwant %s", data, want)
	}
}

func TestFromWire(t *testing.T) {
	lookup := func(id string) (IntegrationRef, bool) {
		if id == "known" {
			return IntegrationRef{Type: IntegrationWebhook, ID: id, Name: "Known hook"}, true
		}
		return IntegrationRef{}, false
	}

	a, err := FromWire(WireAction{Type: KindEmailSubscription, Recipient: []string{"a", "b", "a"}}, lookup)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	if !reflect.DeepEqual(a.Recipients, []string{"a", "b"}) || a.Integration != nil {
		t.Errorf("email = %+v", a)
	}

	a, err = FromWire(WireAction{Type: KindIntegration, IntegrationID: "known"}, lookup)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	if a.Integration == nil || a.Integration.Name != "Known hook" {
		t.Errorf("known integration = %+v", a.Integration)
	}

	a, err = FromWire(WireAction{Type: KindIntegration, IntegrationID: "other"}, nil)
	if err != nil {
		t.Fatalf("FromWire: %v", err)
	}
	if a.Integration.Type != DefaultIntegrationType || a.Integration.ID != "other" {
		t.Errorf("fallback integration = %+v", a.Integration)
	}

	for _, typ := range []ActionKind{"SMS", ""} {
		if _, err := FromWire(WireAction{Type: typ}, nil); err == nil {
			t.Errorf("expected error for type %q", typ)
		}
	}
}

func TestFromWireListReportsIndex(t *testing.T) {
	_, err := FromWireList([]WireAction{
		{Type: KindEmailSubscription},
		{Type: "PAGER"},
	}, nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if got := err.Error(); got != `action 1: unknown action type "PAGER"` {
		t.Errorf("err = %q", got)
	}
}

func TestCloneActionsIsDeep(t *testing.T) {
	orig := []Action{
		{Kind: KindEmailSubscription, Recipients: []string{"a"}},
		{Kind: KindIntegration, Integration: &IntegrationRef{ID: "i-1"}},
	}
	c := CloneActions(orig)
	c[0].Recipients[0] = "changed"
	c[1].Integration.ID = "changed"

	if orig[0].Recipients[0] != "a" || orig[1].Integration.ID != "i-1" {
		t.Errorf("original mutated: %+v", orig)
	}
	if CloneActions(nil) == nil {
		t.Error("CloneActions(nil) = nil, want empty slice")
	}
}
