package keymap

import (
	"fmt"
	"sort"
	"strings"
)

// HelpSection represents a group of bindings in help text
type HelpSection struct {
	Title    string
	Bindings []HelpBinding
}

// HelpBinding represents a single binding for display
type HelpBinding struct {
	Keys        string // Combined keys like "j / k" or "↑ / ↓"
	Description string
}

var helpSections = []struct {
	title   string
	context Context
}{
	{"NOTIFICATIONS", ContextMain},
	{"EDIT MODAL", ContextModal},
	{"RECIPIENT INPUT", ContextInput},
	{"GENERAL", ContextGlobal},
}

// Sections returns the help sections built from the registered bindings.
// Keys bound to the same command are joined in registration order.
func (r *Registry) Sections() []HelpSection {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sections := make([]HelpSection, 0, len(helpSections))
	for _, hs := range helpSections {
		var order []Command
		keys := make(map[Command][]string)
		desc := make(map[Command]string)
		for _, b := range r.bindings[hs.context] {
			if _, seen := keys[b.Command]; !seen {
				order = append(order, b.Command)
				desc[b.Command] = b.Description
			}
			keys[b.Command] = append(keys[b.Command], formatKey(b.Key))
		}
		if len(order) == 0 {
			continue
		}
		section := HelpSection{Title: hs.title}
		for _, cmd := range order {
			d := desc[cmd]
			if d == "" {
				d = CommandHelp(cmd)
			}
			section.Bindings = append(section.Bindings, HelpBinding{
				Keys:        strings.Join(keys[cmd], " / "),
				Description: d,
			})
		}
		sections = append(sections, section)
	}
	return sections
}

// GenerateHelp generates help text from the registry bindings
func (r *Registry) GenerateHelp() string {
	var sb strings.Builder
	sb.WriteString("\nNOTIFICATION BEHAVIORS - Key Bindings\n")

	for _, s := range r.Sections() {
		sb.WriteString("\n" + s.Title + ":\n")
		for _, b := range s.Bindings {
			sb.WriteString(fmt.Sprintf("  %-20s %s\n", b.Keys, b.Description))
		}
	}

	sb.WriteString("\nPress ? to close help\n")
	return sb.String()
}

// FooterHelp generates a compact help string for the footer
func (r *Registry) FooterHelp() string {
	return "j/k:move  e:edit  D:default  r:refresh  ?:help  q:quit"
}

// ModalFooterHelp generates help text for the edit modal footer
func (r *Registry) ModalFooterHelp() string {
	return "m/u/c:mode  a:add  x:remove  t:type  r:recipient  i:integration  e/D:switch  ctrl+s:save  esc:close"
}

// InputFooterHelp generates help text while a recipient is being typed
func (r *Registry) InputFooterHelp() string {
	return "enter:toggle recipient  esc:cancel"
}

// CommandHelp returns help info for a specific command
func CommandHelp(cmd Command) string {
	switch cmd {
	case CmdQuit:
		return "Exit the bundle page"
	case CmdToggleHelp:
		return "Show/hide keyboard shortcuts"
	case CmdRefresh:
		return "Reload notifications from the database"
	case CmdCursorDown:
		return "Move cursor down one row"
	case CmdCursorUp:
		return "Move cursor up one row"
	case CmdCursorTop:
		return "Jump to first row"
	case CmdCursorBottom:
		return "Jump to last row"
	case CmdEditNotification:
		return "Edit the selected notification's behavior"
	case CmdEditDefault:
		return "Edit the bundle default behavior"
	case CmdModeMute:
		return "Mute the notification"
	case CmdModeDefault:
		return "Use the bundle default actions"
	case CmdModeCustom:
		return "Use custom actions"
	case CmdAddAction:
		return "Append an action"
	case CmdRemoveAction:
		return "Remove the selected action"
	case CmdCycleKind:
		return "Switch between email and integration"
	case CmdEnterRecipient:
		return "Type a recipient to add or remove"
	case CmdCycleIntegration:
		return "Select the next integration"
	case CmdClearRecipients:
		return "Remove every recipient"
	case CmdSave:
		return "Save the behavior"
	case CmdClose:
		return "Close without saving"
	case CmdInputConfirm:
		return "Toggle the typed recipient"
	case CmdInputCancel:
		return "Cancel recipient input"
	default:
		return string(cmd)
	}
}

var keyReplacer = strings.NewReplacer(
	"shift+tab", "Shift+Tab",
	"ctrl+", "Ctrl+",
	"up", "↑",
	"down", "↓",
	"left", "←",
	"right", "→",
	"enter", "Enter",
	"esc", "Esc",
	"tab", "Tab",
	"space", "Space",
	"backspace", "Backspace",
	"home", "Home",
	"end", "End",
	"pgup", "PgUp",
	"pgdown", "PgDn",
)

// formatKey formats a key string for display
func formatKey(key string) string {
	return keyReplacer.Replace(key)
}

// AllCommands returns all defined commands sorted alphabetically
func AllCommands() []Command {
	cmds := []Command{
		CmdQuit, CmdToggleHelp, CmdRefresh,
		CmdCursorDown, CmdCursorUp, CmdCursorTop, CmdCursorBottom,
		CmdEditNotification, CmdEditDefault,
		CmdModeMute, CmdModeDefault, CmdModeCustom,
		CmdAddAction, CmdRemoveAction, CmdCycleKind,
		CmdEnterRecipient, CmdCycleIntegration, CmdClearRecipients,
		CmdSave, CmdClose, CmdInputConfirm, CmdInputCancel,
	}

	sort.Slice(cmds, func(i, j int) bool {
		return cmds[i] < cmds[j]
	})

	return cmds
}
