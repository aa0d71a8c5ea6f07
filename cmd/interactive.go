package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/output"
	"github.com/marcus/notif/internal/selection"
	"golang.org/x/term"
)

const (
	choiceAdd  = "add"
	choiceDone = "done"
)

// runInteractive edits state through huh forms: mode first, then the
// custom action list until the user picks done
func runInteractive(database *db.DB, state selection.State) (selection.State, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return state, fmt.Errorf("--interactive needs a terminal")
	}

	mode := state.Mode()
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[selection.Mode]().
			Title("Behavior").
			Options(modeOptions(state.Template())...).
			Value(&mode),
	)).Run()
	if err != nil {
		return state, err
	}
	if state, err = state.Select(mode); err != nil {
		return state, err
	}

	for state.Mode() == selection.ModeCustom {
		choice := choiceDone
		err := huh.NewForm(huh.NewGroup(
			huh.NewSelect[string]().
				Title("Custom actions").
				Options(menuOptions(state.CustomActions())...).
				Value(&choice),
		)).Run()
		if err != nil {
			return state, err
		}

		op, idx, err := parseMenuChoice(choice)
		if err != nil {
			return state, err
		}
		switch op {
		case choiceDone:
			return state, nil
		case choiceAdd:
			state, err = state.AppendAction()
		case "remove":
			state, err = state.RemoveAction(idx)
		case "edit":
			state, err = editActionForm(database, state, idx)
		}
		if err != nil {
			return state, err
		}
	}
	return state, nil
}

// editActionForm asks for the kind of action idx, then its recipients or integration
func editActionForm(database *db.DB, state selection.State, idx int) (selection.State, error) {
	current := state.CustomActions()[idx]
	kind := current.Kind
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[models.ActionKind]().
			Title(fmt.Sprintf("Action #%d", idx)).
			Options(
				huh.NewOption("Send an email", models.KindEmailSubscription),
				huh.NewOption("Integration: Webhook", models.KindIntegration),
			).
			Value(&kind),
	)).Run()
	if err != nil {
		return state, err
	}
	if kind != current.Kind {
		if state, err = state.SetActionKind(idx, kind, models.DefaultIntegrationType); err != nil {
			return state, err
		}
	}

	if kind == models.KindEmailSubscription {
		known, err := database.SearchRecipients("")
		if err != nil {
			return state, err
		}
		selected := append([]string(nil), state.CustomActions()[idx].Recipients...)
		err = huh.NewForm(huh.NewGroup(
			huh.NewMultiSelect[string]().
				Title("Recipients").
				Options(recipientOptions(known, selected)...).
				Value(&selected),
		)).Run()
		if err != nil {
			return state, err
		}
		return setRecipients(state, idx, selected)
	}

	integrations, err := database.ListIntegrations(models.DefaultIntegrationType)
	if err != nil {
		return state, err
	}
	if len(integrations) == 0 {
		output.Warning("no integrations configured: add one with 'notif integration add'")
		return state, nil
	}
	var id string
	if ref := state.CustomActions()[idx].Integration; ref != nil {
		id = ref.ID
	}
	opts := make([]huh.Option[string], len(integrations))
	for i, in := range integrations {
		opts[i] = huh.NewOption(in.Name+"  "+output.ShortID(in.ID), in.ID)
	}
	err = huh.NewForm(huh.NewGroup(
		huh.NewSelect[string]().Title("Integration").Options(opts...).Value(&id),
	)).Run()
	if err != nil {
		return state, err
	}
	for _, in := range integrations {
		if in.ID == id {
			return state.SetIntegration(idx, in.Ref())
		}
	}
	return state, nil
}

// modeOptions lists the modes a template may select
func modeOptions(t models.TemplateType) []huh.Option[selection.Mode] {
	modes := selection.Modes(t)
	opts := make([]huh.Option[selection.Mode], len(modes))
	for i, m := range modes {
		opts[i] = huh.NewOption(m.Label(), m)
	}
	return opts
}

// menuOptions offers edit and remove for every action, then add and done
func menuOptions(list []models.Action) []huh.Option[string] {
	var opts []huh.Option[string]
	for i, a := range list {
		label := output.FormatAction(a)
		opts = append(opts,
			huh.NewOption(fmt.Sprintf("Edit #%d  %s", i, label), "edit:"+strconv.Itoa(i)),
			huh.NewOption(fmt.Sprintf("Remove #%d", i), "remove:"+strconv.Itoa(i)),
		)
	}
	return append(opts,
		huh.NewOption("Add action", choiceAdd),
		huh.NewOption("Done", choiceDone),
	)
}

// parseMenuChoice splits an "op:index" menu value
func parseMenuChoice(choice string) (string, int, error) {
	op, idx, found := strings.Cut(choice, ":")
	if !found {
		return op, -1, nil
	}
	n, err := strconv.Atoi(idx)
	if err != nil {
		return op, -1, fmt.Errorf("bad menu choice %q", choice)
	}
	return op, n, nil
}

// recipientOptions offers known recipients plus any already selected that
// the store does not list, with the selected ones checked
func recipientOptions(known, selected []string) []huh.Option[string] {
	isSelected := make(map[string]bool, len(selected))
	for _, r := range selected {
		isSelected[r] = true
	}
	var opts []huh.Option[string]
	listed := make(map[string]bool, len(known))
	for _, r := range known {
		listed[r] = true
		opts = append(opts, huh.NewOption(r, r).Selected(isSelected[r]))
	}
	for _, r := range selected {
		if !listed[r] {
			opts = append(opts, huh.NewOption(r, r).Selected(true))
		}
	}
	return opts
}

// setRecipients makes the recipients of action idx exactly selected
func setRecipients(state selection.State, idx int, selected []string) (selection.State, error) {
	state, err := state.ClearRecipients(idx)
	if err != nil {
		return state, err
	}
	seen := make(map[string]bool, len(selected))
	for _, r := range selected {
		if seen[r] {
			continue
		}
		seen[r] = true
		if state, err = state.ToggleRecipient(idx, r); err != nil {
			return state, err
		}
	}
	return state, nil
}
