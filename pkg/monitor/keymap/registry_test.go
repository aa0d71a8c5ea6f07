package keymap

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// newClockedRegistry returns a registry whose clock the test controls
func newClockedRegistry(t *testing.T) (*Registry, *time.Time) {
	t.Helper()
	now := time.Date(2026, 2, 18, 12, 0, 0, 0, time.UTC)
	r := NewRegistry()
	r.now = func() time.Time { return now }
	return r, &now
}

func TestRegisterDefaults(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	for _, ctx := range []Context{ContextGlobal, ContextMain, ContextModal, ContextInput, ContextHelp} {
		if len(r.bindings[ctx]) == 0 {
			t.Errorf("no %s bindings registered", ctx)
		}
	}
	for ctx, bindings := range r.bindings {
		for _, b := range bindings {
			if b.Context != ctx {
				t.Errorf("%s binding filed under %s", b.Key, ctx)
			}
		}
	}
}

func TestLookup(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)

	tests := []struct {
		name    string
		key     tea.KeyMsg
		context Context
		want    Command
		found   bool
	}{
		{"quit with q in main", runeKey('q'), ContextMain, CmdQuit, true},
		{"cursor down with j in main", runeKey('j'), ContextMain, CmdCursorDown, true},
		{"close with esc in modal", tea.KeyMsg{Type: tea.KeyEsc}, ContextModal, CmdClose, true},
		{"next action with j in modal", runeKey('j'), ContextModal, CmdCursorDown, true},
		{"save with ctrl+s in modal", tea.KeyMsg{Type: tea.KeyCtrlS}, ContextModal, CmdSave, true},
		{"r enters a recipient in modal", runeKey('r'), ContextModal, CmdEnterRecipient, true},
		{"r refreshes in main", runeKey('r'), ContextMain, CmdRefresh, true},
		{"enter confirms in input", tea.KeyMsg{Type: tea.KeyEnter}, ContextInput, CmdInputConfirm, true},
		{"esc closes help", tea.KeyMsg{Type: tea.KeyEsc}, ContextHelp, CmdToggleHelp, true},
		{"unknown key", runeKey('z'), ContextMain, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := r.Lookup(tt.key, tt.context)
			if found != tt.found || got != tt.want {
				t.Errorf("Lookup() = %q, %v; want %q, %v", got, found, tt.want, tt.found)
			}
		})
	}
}

func TestSequence(t *testing.T) {
	r, now := newClockedRegistry(t)
	r.RegisterBinding(Binding{Key: "g g", Command: CmdCursorTop, Context: ContextMain})
	r.RegisterBinding(Binding{Key: "j", Command: CmdCursorDown, Context: ContextMain})

	if cmd, found := r.Lookup(runeKey('g'), ContextMain); found {
		t.Fatalf("first g resolved to %s", cmd)
	}
	if r.PendingKey() != "g" {
		t.Fatalf("PendingKey = %q, want g", r.PendingKey())
	}
	*now = now.Add(100 * time.Millisecond)
	if cmd, _ := r.Lookup(runeKey('g'), ContextMain); cmd != CmdCursorTop {
		t.Errorf("g g = %q, want %s", cmd, CmdCursorTop)
	}
	if r.PendingKey() != "" {
		t.Error("sequence should be consumed")
	}

	// A key that does not finish the sequence is looked up on its own
	r.Lookup(runeKey('g'), ContextMain)
	if cmd, _ := r.Lookup(runeKey('j'), ContextMain); cmd != CmdCursorDown {
		t.Errorf("g j = %q, want %s", cmd, CmdCursorDown)
	}
}

func TestSequenceTimeout(t *testing.T) {
	r, now := newClockedRegistry(t)
	r.RegisterBinding(Binding{Key: "g g", Command: CmdCursorTop, Context: ContextMain})

	r.Lookup(runeKey('g'), ContextMain)
	*now = now.Add(sequenceTimeout)
	if r.PendingKey() != "" {
		t.Error("pending key should expire")
	}
	if cmd, found := r.Lookup(runeKey('g'), ContextMain); found {
		t.Errorf("late g resolved to %s", cmd)
	}
	// The late g starts a new sequence
	if r.PendingKey() != "g" {
		t.Errorf("PendingKey = %q, want g", r.PendingKey())
	}
}

func TestPrecedence(t *testing.T) {
	r := NewRegistry()
	r.RegisterBinding(Binding{Key: "r", Command: CmdRefresh, Context: ContextGlobal})
	r.RegisterBinding(Binding{Key: "r", Command: CmdEditNotification, Context: ContextMain})
	r.RegisterBinding(Binding{Key: "r", Command: CmdQuit, Context: ContextMain})
	r.RegisterBinding(Binding{Key: "?", Command: CmdToggleHelp, Context: ContextGlobal})

	if cmd, _ := r.Lookup(runeKey('r'), ContextMain); cmd != CmdEditNotification {
		t.Errorf("context binding should beat global and the first binding wins, got %s", cmd)
	}
	if cmd, _ := r.Lookup(runeKey('r'), ContextModal); cmd != CmdRefresh {
		t.Errorf("modal should fall back to global, got %s", cmd)
	}
	if cmd, _ := r.Lookup(runeKey('?'), ContextModal); cmd != CmdToggleHelp {
		t.Errorf("global ? in modal = %s", cmd)
	}

	r.SetUserOverride(ContextGlobal, "r", CmdSave)
	if cmd, _ := r.Lookup(runeKey('r'), ContextMain); cmd != CmdSave {
		t.Errorf("global override should beat context binding, got %s", cmd)
	}
	r.SetUserOverride(ContextMain, "r", CmdEditDefault)
	if cmd, _ := r.Lookup(runeKey('r'), ContextMain); cmd != CmdEditDefault {
		t.Errorf("context override should win, got %s", cmd)
	}
}

func TestOverrideUnbinds(t *testing.T) {
	r := NewRegistry()
	RegisterDefaults(r)
	r.SetUserOverride(ContextMain, "q", CmdNone)

	if cmd, found := r.Lookup(runeKey('q'), ContextMain); found {
		t.Errorf("q should be unbound in main, got %s", cmd)
	}
	if cmd, _ := r.Lookup(runeKey('q'), ContextModal); cmd != CmdQuit {
		t.Errorf("q still quits in modal, got %s", cmd)
	}
}

func TestOverrideSequence(t *testing.T) {
	r := NewRegistry()
	r.SetUserOverride(ContextMain, "d d", CmdRemoveAction)

	r.Lookup(runeKey('d'), ContextMain)
	if cmd, _ := r.Lookup(runeKey('d'), ContextMain); cmd != CmdRemoveAction {
		t.Errorf("d d = %q, want %s", cmd, CmdRemoveAction)
	}
}

func TestKeyToString(t *testing.T) {
	tests := []struct {
		key  tea.KeyMsg
		want string
	}{
		{tea.KeyMsg{Type: tea.KeyTab}, "tab"},
		{tea.KeyMsg{Type: tea.KeyEsc}, "esc"},
		{tea.KeyMsg{Type: tea.KeyEnter}, "enter"},
		{tea.KeyMsg{Type: tea.KeyUp}, "up"},
		{tea.KeyMsg{Type: tea.KeyPgDown}, "pgdown"},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, "ctrl+c"},
		{tea.KeyMsg{Type: tea.KeyCtrlS}, "ctrl+s"},
		{tea.KeyMsg{Type: tea.KeyShiftTab}, "shift+tab"},
		{tea.KeyMsg{Type: tea.KeySpace}, "space"},
		{runeKey('j'), "j"},
		{runeKey('G'), "G"},
		{tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'x'}, Alt: true}, "alt+x"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := KeyToString(tt.key); got != tt.want {
				t.Errorf("KeyToString() = %s, want %s", got, tt.want)
			}
		})
	}
}
