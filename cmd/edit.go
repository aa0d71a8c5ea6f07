package cmd

import (
	"fmt"
	"io"
	"sort"

	"github.com/marcus/notif/internal/actions"
	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/input"
	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/selection"
	"github.com/spf13/pflag"
)

// editOptions are the behavior edit flags shared by notification, defaults
// and group commands
type editOptions struct {
	mode         modeValue
	emails       []string
	integrations []string
	remove       []int
	interactive  bool
}

func (o *editOptions) bind(fs *pflag.FlagSet, withMode bool) {
	if withMode {
		fs.Var(&o.mode, "mode", "Behavior mode: mute, default or custom")
	}
	fs.StringArrayVar(&o.emails, "email", nil, "Add an email action for these recipients (comma separated, - for stdin, @file)")
	fs.StringArrayVar(&o.integrations, "integration", nil, "Add an integration action (id or name, repeatable)")
	fs.IntSliceVar(&o.remove, "remove", nil, "Remove the custom action at this index (repeatable)")
	fs.BoolVarP(&o.interactive, "interactive", "i", false, "Edit with interactive forms")
}

// edits resolves flag values into the recipients and integrations to add
type edits struct {
	mode         selection.Mode
	modeSet      bool
	recipients   []string
	integrations []models.IntegrationRef
	remove       []int
}

func (e edits) empty() bool {
	return !e.modeSet && len(e.recipients) == 0 && len(e.integrations) == 0 && len(e.remove) == 0
}

func (e edits) additions() bool {
	return len(e.recipients) > 0 || len(e.integrations) > 0
}

// resolveEdits expands --email values and looks up --integration values
func resolveEdits(database *db.DB, o editOptions, stdin io.Reader) (edits, error) {
	e := edits{mode: o.mode.mode, modeSet: o.mode.set, remove: o.remove}

	recipients, err := input.ExpandList(o.emails, stdin)
	if err != nil {
		return e, err
	}
	seen := make(map[string]bool, len(recipients))
	for _, r := range recipients {
		if !seen[r] {
			seen[r] = true
			e.recipients = append(e.recipients, r)
		}
	}

	for _, idOrName := range o.integrations {
		i, err := database.GetIntegration(idOrName)
		if err != nil {
			return e, err
		}
		e.integrations = append(e.integrations, i.Ref())
	}
	return e, nil
}

// applyEdits drives state through e the way the edit form would. Without
// --mode any action edit implies custom mode. When custom mode was entered
// with no stored actions, the seeded blank action gives way to the added ones
// and --remove has nothing to address.
func applyEdits(state selection.State, e edits) (selection.State, error) {
	if e.empty() {
		return state, fmt.Errorf("nothing to change: pass --mode, --email, --integration, --remove or --interactive")
	}
	mode := selection.ModeCustom
	if e.modeSet {
		mode = e.mode
	}
	if mode != selection.ModeCustom && (e.additions() || len(e.remove) > 0) {
		return state, fmt.Errorf("--email, --integration and --remove need custom mode: %w", actions.ErrInvalidState)
	}

	seeded := len(state.CustomActions()) == 0
	if seeded && len(e.remove) > 0 {
		return state, fmt.Errorf("--remove: no stored actions to remove: %w", actions.ErrIndexOutOfRange)
	}
	state, err := state.Select(mode)
	if err != nil {
		return state, err
	}
	if mode != selection.ModeCustom {
		return state, nil
	}
	if seeded && e.additions() {
		if state, err = state.RemoveAction(0); err != nil {
			return state, err
		}
	}

	// Highest index first so earlier indices stay valid
	remove := append([]int(nil), e.remove...)
	sort.Sort(sort.Reverse(sort.IntSlice(remove)))
	for i, idx := range remove {
		if i > 0 && remove[i-1] == idx {
			continue
		}
		if state, err = state.RemoveAction(idx); err != nil {
			return state, err
		}
	}

	if len(e.recipients) > 0 {
		if state, err = state.AppendAction(); err != nil {
			return state, err
		}
		idx := len(state.CustomActions()) - 1
		for _, r := range e.recipients {
			if state, err = state.ToggleRecipient(idx, r); err != nil {
				return state, err
			}
		}
	}

	for _, ref := range e.integrations {
		if state, err = state.AppendAction(); err != nil {
			return state, err
		}
		idx := len(state.CustomActions()) - 1
		if state, err = state.SetActionKind(idx, models.KindIntegration, ref.Type); err != nil {
			return state, err
		}
		if state, err = state.SetIntegration(idx, ref); err != nil {
			return state, err
		}
	}
	return state, nil
}

// checkSubmittable rejects states the store would refuse
func checkSubmittable(database *db.DB, state selection.State) error {
	lookup, err := database.IntegrationLookup()
	if err != nil {
		return err
	}
	return state.Validate(lookup)
}
