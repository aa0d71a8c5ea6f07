package keymap

// DefaultBindings returns the default key bindings for the bundle page.
// Bindings are organized by context and follow vim conventions where applicable.
func DefaultBindings() []Binding {
	return []Binding{
		// ============================================================
		// GLOBAL BINDINGS
		// These work in all contexts unless overridden
		// ============================================================
		{Key: "q", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "ctrl+c", Command: CmdQuit, Context: ContextGlobal, Description: "Quit"},
		{Key: "?", Command: CmdToggleHelp, Context: ContextGlobal, Description: "Toggle help"},

		// ============================================================
		// MAIN BINDINGS
		// Active when no modal is open
		// ============================================================
		{Key: "j", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "down", Command: CmdCursorDown, Context: ContextMain, Description: "Move down"},
		{Key: "k", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "up", Command: CmdCursorUp, Context: ContextMain, Description: "Move up"},
		{Key: "G", Command: CmdCursorBottom, Context: ContextMain, Description: "Go to bottom"},
		{Key: "g g", Command: CmdCursorTop, Context: ContextMain, Description: "Go to top"},
		{Key: "home", Command: CmdCursorTop, Context: ContextMain, Description: "Go to top"},
		{Key: "end", Command: CmdCursorBottom, Context: ContextMain, Description: "Go to bottom"},

		{Key: "e", Command: CmdEditNotification, Context: ContextMain, Description: "Edit notification"},
		{Key: "enter", Command: CmdEditNotification, Context: ContextMain, Description: "Edit notification"},
		{Key: "D", Command: CmdEditDefault, Context: ContextMain, Description: "Edit default behavior"},
		{Key: "r", Command: CmdRefresh, Context: ContextMain, Description: "Refresh"},

		// ============================================================
		// MODAL BINDINGS
		// Active while the edit modal is open
		// ============================================================
		{Key: "esc", Command: CmdClose, Context: ContextModal, Description: "Close without saving"},
		{Key: "ctrl+s", Command: CmdSave, Context: ContextModal, Description: "Save"},

		{Key: "m", Command: CmdModeMute, Context: ContextModal, Description: "Mute"},
		{Key: "u", Command: CmdModeDefault, Context: ContextModal, Description: "Use default actions"},
		{Key: "c", Command: CmdModeCustom, Context: ContextModal, Description: "Use custom actions"},

		{Key: "j", Command: CmdCursorDown, Context: ContextModal, Description: "Next action"},
		{Key: "down", Command: CmdCursorDown, Context: ContextModal, Description: "Next action"},
		{Key: "k", Command: CmdCursorUp, Context: ContextModal, Description: "Previous action"},
		{Key: "up", Command: CmdCursorUp, Context: ContextModal, Description: "Previous action"},

		{Key: "a", Command: CmdAddAction, Context: ContextModal, Description: "Add action"},
		{Key: "x", Command: CmdRemoveAction, Context: ContextModal, Description: "Remove action"},
		{Key: "t", Command: CmdCycleKind, Context: ContextModal, Description: "Change action type"},
		{Key: "r", Command: CmdEnterRecipient, Context: ContextModal, Description: "Toggle a recipient"},
		{Key: "R", Command: CmdClearRecipients, Context: ContextModal, Description: "Clear recipients"},
		{Key: "i", Command: CmdCycleIntegration, Context: ContextModal, Description: "Next integration"},

		// Opening another target replaces the open one without saving
		{Key: "e", Command: CmdEditNotification, Context: ContextModal, Description: "Edit selected notification instead"},
		{Key: "D", Command: CmdEditDefault, Context: ContextModal, Description: "Edit default behavior instead"},

		// ============================================================
		// INPUT BINDINGS
		// Active while typing a recipient; other keys go to the input
		// ============================================================
		{Key: "enter", Command: CmdInputConfirm, Context: ContextInput, Description: "Toggle recipient"},
		{Key: "esc", Command: CmdInputCancel, Context: ContextInput, Description: "Cancel"},

		// ============================================================
		// HELP BINDINGS
		// ============================================================
		{Key: "esc", Command: CmdToggleHelp, Context: ContextHelp, Description: "Close help"},
	}
}

// RegisterDefaults registers all default bindings with the registry.
func RegisterDefaults(r *Registry) {
	r.RegisterBindings(DefaultBindings())
}
