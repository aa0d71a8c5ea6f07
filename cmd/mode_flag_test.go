package cmd

import (
	"strings"
	"testing"

	"github.com/marcus/notif/internal/selection"
)

func TestModeValue(t *testing.T) {
	tests := []struct {
		in   string
		want selection.Mode
	}{
		{"mute", selection.ModeMute},
		{"default", selection.ModeUseDefault},
		{"use-default", selection.ModeUseDefault},
		{" Custom ", selection.ModeCustom},
	}
	for _, tt := range tests {
		var v modeValue
		if err := v.Set(tt.in); err != nil {
			t.Errorf("Set(%q) failed: %v", tt.in, err)
			continue
		}
		if !v.set || v.mode != tt.want {
			t.Errorf("Set(%q) = %v (set=%v), want %v", tt.in, v.mode, v.set, tt.want)
		}
	}
}

func TestModeValueUnset(t *testing.T) {
	var v modeValue
	if v.String() != "" {
		t.Errorf("unset String() = %q, want empty", v.String())
	}
	if v.Type() != "mode" {
		t.Errorf("Type() = %q", v.Type())
	}
	if err := v.Set("custom"); err != nil {
		t.Fatal(err)
	}
	if v.String() != "custom" {
		t.Errorf("String() = %q, want custom", v.String())
	}
}

func TestModeValueSuggests(t *testing.T) {
	var v modeValue
	err := v.Set("mutee")
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "did you mean mute") {
		t.Errorf("err = %v, want a suggestion", err)
	}
	if v.set {
		t.Error("a failed Set should leave the flag unset")
	}
}
