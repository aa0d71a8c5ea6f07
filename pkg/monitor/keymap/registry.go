package keymap

import (
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// sequenceTimeout is how long the first key of a sequence like "g g" waits
const sequenceTimeout = 500 * time.Millisecond

// Context represents a UI context for keybindings
type Context string

const (
	ContextGlobal Context = "global"
	ContextMain   Context = "main"  // notification list, no modal open
	ContextModal  Context = "modal" // edit modal open
	ContextInput  Context = "input" // recipient text input focused
	ContextHelp   Context = "help"  // help overlay open
)

// Contexts lists every context a binding may name
var Contexts = []Context{ContextGlobal, ContextMain, ContextModal, ContextInput, ContextHelp}

// Command represents a named command that can be triggered by key bindings
type Command string

const (
	// CmdNone in an override unbinds the key
	CmdNone Command = "none"

	// Global commands
	CmdQuit       Command = "quit"
	CmdToggleHelp Command = "toggle-help"
	CmdRefresh    Command = "refresh"

	// Navigation commands
	CmdCursorDown   Command = "cursor-down"
	CmdCursorUp     Command = "cursor-up"
	CmdCursorTop    Command = "cursor-top"
	CmdCursorBottom Command = "cursor-bottom"

	// Page commands
	CmdEditNotification Command = "edit-notification"
	CmdEditDefault      Command = "edit-default"

	// Modal commands
	CmdModeMute         Command = "mode-mute"
	CmdModeDefault      Command = "mode-default"
	CmdModeCustom       Command = "mode-custom"
	CmdAddAction        Command = "add-action"
	CmdRemoveAction     Command = "remove-action"
	CmdCycleKind        Command = "cycle-kind"
	CmdEnterRecipient   Command = "enter-recipient"
	CmdCycleIntegration Command = "cycle-integration"
	CmdClearRecipients  Command = "clear-recipients"
	CmdSave             Command = "save"
	CmdClose            Command = "close"

	// Recipient input commands
	CmdInputConfirm Command = "input-confirm"
	CmdInputCancel  Command = "input-cancel"
)

// Binding maps a key or a two key sequence to a command in a context
type Binding struct {
	Key         string  // "j", "ctrl+s", "g g"
	Command     Command
	Context     Context
	Description string // shown in help
}

// Registry resolves keys to commands. Lookup order for the active context:
// user override, then global user override, then context binding, then
// global binding.
type Registry struct {
	mu        sync.RWMutex
	bindings  map[Context][]Binding // registration order, for help
	index     map[Context]map[string]Command
	overrides map[Context]map[string]Command
	prefixes  map[Context]map[string]bool // first keys of sequences
	now       func() time.Time

	pendingKey  string
	pendingTime time.Time
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		bindings:  make(map[Context][]Binding),
		index:     make(map[Context]map[string]Command),
		overrides: make(map[Context]map[string]Command),
		prefixes:  make(map[Context]map[string]bool),
		now:       time.Now,
	}
}

// notePrefix records key's first token when key is a sequence. Caller holds mu.
func (r *Registry) notePrefix(ctx Context, key string) {
	first, _, ok := strings.Cut(key, " ")
	if !ok {
		return
	}
	if r.prefixes[ctx] == nil {
		r.prefixes[ctx] = make(map[string]bool)
	}
	r.prefixes[ctx][first] = true
}

// RegisterBinding adds a binding. The first binding for a key in a context wins.
func (r *Registry) RegisterBinding(b Binding) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bindings[b.Context] = append(r.bindings[b.Context], b)
	keys := r.index[b.Context]
	if keys == nil {
		keys = make(map[string]Command)
		r.index[b.Context] = keys
	}
	if _, taken := keys[b.Key]; !taken {
		keys[b.Key] = b.Command
	}
	r.notePrefix(b.Context, b.Key)
}

// RegisterBindings adds multiple key bindings
func (r *Registry) RegisterBindings(bindings []Binding) {
	for _, b := range bindings {
		r.RegisterBinding(b)
	}
}

// SetUserOverride binds key to cmd in ctx ahead of the defaults.
// Binding CmdNone disables the key there.
func (r *Registry) SetUserOverride(ctx Context, key string, cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keys := r.overrides[ctx]
	if keys == nil {
		keys = make(map[string]Command)
		r.overrides[ctx] = keys
	}
	keys[key] = cmd
	r.notePrefix(ctx, key)
}

// Lookup resolves a key press in the active context. The first key of a
// sequence is held as pending and reports no command.
func (r *Registry) Lookup(key tea.KeyMsg, active Context) (Command, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	keyStr := KeyToString(key)
	now := r.now()

	if r.pendingKey != "" {
		pending, fresh := r.pendingKey, now.Sub(r.pendingTime) < sequenceTimeout
		r.pendingKey = ""
		if fresh {
			if cmd, ok := r.resolve(pending+" "+keyStr, active); ok {
				return cmd, true
			}
		}
	}

	if r.prefixes[active][keyStr] || r.prefixes[ContextGlobal][keyStr] {
		r.pendingKey, r.pendingTime = keyStr, now
		return "", false
	}
	return r.resolve(keyStr, active)
}

// resolve applies the lookup order. Caller holds mu.
func (r *Registry) resolve(key string, active Context) (Command, bool) {
	for _, table := range []map[string]Command{
		r.overrides[active],
		r.overrides[ContextGlobal],
		r.index[active],
		r.index[ContextGlobal],
	} {
		if cmd, ok := table[key]; ok {
			if cmd == CmdNone {
				return "", false
			}
			return cmd, true
		}
	}
	return "", false
}

// PendingKey returns the first key of an unfinished sequence, for the footer
func (r *Registry) PendingKey() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pendingKey != "" && r.now().Sub(r.pendingTime) < sequenceTimeout {
		return r.pendingKey
	}
	return ""
}

// KeyToString names a key press the way bindings spell it: bubbletea's key
// names, "space" for the space bar, and the typed text for runes.
func KeyToString(key tea.KeyMsg) string {
	switch key.Type {
	case tea.KeySpace:
		return "space"
	case tea.KeyRunes:
		s := string(key.Runes)
		if key.Alt {
			s = "alt+" + s
		}
		return s
	default:
		return key.String()
	}
}
