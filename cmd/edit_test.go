package cmd

import (
	"errors"
	"strings"
	"testing"

	"github.com/marcus/notif/internal/actions"
	"github.com/marcus/notif/internal/db"
	"github.com/marcus/notif/internal/models"
	"github.com/marcus/notif/internal/selection"
)

// newTestProject initializes and seeds a project in a temp dir
func newTestProject(t *testing.T) *db.DB {
	t.Helper()
	t.Setenv("NOTIF_BUNDLE", "")
	dir := t.TempDir()
	database, err := initProject(dir, "")
	if err != nil {
		t.Fatalf("initProject failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func firstNotification(t *testing.T, database *db.DB) models.Notification {
	t.Helper()
	bundle, err := database.GetBundle("rhel")
	if err != nil {
		t.Fatalf("GetBundle failed: %v", err)
	}
	list, err := database.ListNotifications(bundle.ID, "")
	if err != nil || len(list) == 0 {
		t.Fatalf("ListNotifications: %v (%d)", err, len(list))
	}
	return list[0]
}

func emailAction(recipients ...string) models.Action {
	return models.Action{Kind: models.KindEmailSubscription, Recipients: recipients}
}

func TestApplyEdits(t *testing.T) {
	hook := models.IntegrationRef{Type: models.IntegrationWebhook, ID: "hook-1", Name: "hook"}
	stored := []models.Action{emailAction("Admins"), emailAction("Ops")}

	tests := []struct {
		name       string
		stored     []models.Action
		edits      edits
		wantMode   selection.Mode
		wantErr    error
		wantErrSub string
		check      func(t *testing.T, got []models.Action)
	}{
		{
			name:       "nothing to change",
			edits:      edits{},
			wantErrSub: "nothing to change",
		},
		{
			name:     "mode mute",
			stored:   stored,
			edits:    edits{mode: selection.ModeMute, modeSet: true},
			wantMode: selection.ModeMute,
		},
		{
			name:     "mode default",
			edits:    edits{mode: selection.ModeUseDefault, modeSet: true},
			wantMode: selection.ModeUseDefault,
		},
		{
			name:     "custom from empty seeds one action",
			edits:    edits{mode: selection.ModeCustom, modeSet: true},
			wantMode: selection.ModeCustom,
			check: func(t *testing.T, got []models.Action) {
				if len(got) != 1 || got[0].Kind != models.KindEmailSubscription || len(got[0].Recipients) != 0 {
					t.Errorf("got %+v, want one blank email action", got)
				}
			},
		},
		{
			name:     "email implies custom and replaces seeded action",
			edits:    edits{recipients: []string{"Admins", "Ops"}},
			wantMode: selection.ModeCustom,
			check: func(t *testing.T, got []models.Action) {
				if len(got) != 1 || strings.Join(got[0].Recipients, ",") != "Admins,Ops" {
					t.Errorf("got %+v, want one email action for Admins,Ops", got)
				}
			},
		},
		{
			name:     "email appends to stored actions",
			stored:   stored,
			edits:    edits{recipients: []string{"Root"}},
			wantMode: selection.ModeCustom,
			check: func(t *testing.T, got []models.Action) {
				if len(got) != 3 || got[2].Recipients[0] != "Root" {
					t.Errorf("got %+v, want Root appended", got)
				}
			},
		},
		{
			name:     "integration action",
			edits:    edits{integrations: []models.IntegrationRef{hook}},
			wantMode: selection.ModeCustom,
			check: func(t *testing.T, got []models.Action) {
				if len(got) != 1 || got[0].Kind != models.KindIntegration || got[0].Integration.ID != "hook-1" {
					t.Errorf("got %+v, want one integration action", got)
				}
			},
		},
		{
			name:     "remove highest first and dedupe",
			stored:   []models.Action{emailAction("a"), emailAction("b"), emailAction("c")},
			edits:    edits{remove: []int{0, 2, 0}},
			wantMode: selection.ModeCustom,
			check: func(t *testing.T, got []models.Action) {
				if len(got) != 1 || got[0].Recipients[0] != "b" {
					t.Errorf("got %+v, want only b", got)
				}
			},
		},
		{
			name:    "remove out of range",
			stored:  stored,
			edits:   edits{remove: []int{5}},
			wantErr: actions.ErrIndexOutOfRange,
		},
		{
			name:       "remove with email and nothing stored",
			edits:      edits{recipients: []string{"Admins"}, remove: []int{0}},
			wantErrSub: "no stored actions to remove",
		},
		{
			name:       "remove alone with nothing stored",
			edits:      edits{remove: []int{0}},
			wantErrSub: "no stored actions to remove",
		},
		{
			name:    "additions need custom mode",
			edits:   edits{mode: selection.ModeMute, modeSet: true, recipients: []string{"Admins"}},
			wantErr: actions.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := selection.NewForNotification(models.Notification{Actions: tt.stored}, nil)
			got, err := applyEdits(state, tt.edits)
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.wantErrSub != "":
				if err == nil || !strings.Contains(err.Error(), tt.wantErrSub) {
					t.Fatalf("err = %v, want %q", err, tt.wantErrSub)
				}
				return
			case err != nil:
				t.Fatalf("applyEdits failed: %v", err)
			}
			if got.Mode() != tt.wantMode {
				t.Errorf("mode = %s, want %s", got.Mode(), tt.wantMode)
			}
			if tt.check != nil {
				tt.check(t, got.CustomActions())
			}
		})
	}
}

func TestApplyEditsUseDefaultOnDefaultTemplate(t *testing.T) {
	state := selection.NewForDefault(models.DefaultBehavior{})
	_, err := applyEdits(state, edits{mode: selection.ModeUseDefault, modeSet: true})
	if !errors.Is(err, actions.ErrInvalidState) {
		t.Errorf("err = %v, want ErrInvalidState", err)
	}
}

func TestResolveEdits(t *testing.T) {
	database := newTestProject(t)
	hook, err := database.CreateIntegration("pager", models.IntegrationWebhook, "https://hooks.example.com/p", "")
	if err != nil {
		t.Fatalf("CreateIntegration failed: %v", err)
	}

	var o editOptions
	o.emails = []string{"Admins, Ops", "-", "Admins"}
	o.integrations = []string{"pager"}
	o.remove = []int{1}

	e, err := resolveEdits(database, o, strings.NewReader("Root\nOps\n"))
	if err != nil {
		t.Fatalf("resolveEdits failed: %v", err)
	}
	if got := strings.Join(e.recipients, ","); got != "Admins,Ops,Root" {
		t.Errorf("recipients = %s, want Admins,Ops,Root", got)
	}
	if len(e.integrations) != 1 || e.integrations[0].ID != hook.ID || e.integrations[0].Name != "pager" {
		t.Errorf("integrations = %+v", e.integrations)
	}
	if len(e.remove) != 1 || e.remove[0] != 1 {
		t.Errorf("remove = %v", e.remove)
	}
}

func TestResolveEditsUnknownIntegration(t *testing.T) {
	database := newTestProject(t)
	var o editOptions
	o.integrations = []string{"missing"}

	if _, err := resolveEdits(database, o, strings.NewReader("")); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestEditNotification(t *testing.T) {
	database := newTestProject(t)
	n := firstNotification(t, database)

	var o editOptions
	o.emails = []string{"Admins,Ops"}
	got, err := editNotification(database, n.ID[:8], o, strings.NewReader(""))
	if err != nil {
		t.Fatalf("editNotification failed: %v", err)
	}
	if got.UseDefault || len(got.Actions) != 1 {
		t.Fatalf("got useDefault=%v actions=%+v", got.UseDefault, got.Actions)
	}
	if strings.Join(got.Actions[0].Recipients, ",") != "Admins,Ops" {
		t.Errorf("recipients = %v", got.Actions[0].Recipients)
	}

	// A second edit starts from the stored custom actions
	o = editOptions{}
	o.emails = []string{"Root"}
	got, err = editNotification(database, n.ID, o, strings.NewReader(""))
	if err != nil {
		t.Fatalf("second edit failed: %v", err)
	}
	if len(got.Actions) != 2 {
		t.Errorf("expected 2 actions, got %+v", got.Actions)
	}

	o = editOptions{}
	if err := o.mode.Set("default"); err != nil {
		t.Fatal(err)
	}
	got, err = editNotification(database, n.ID, o, strings.NewReader(""))
	if err != nil {
		t.Fatalf("default edit failed: %v", err)
	}
	if !got.UseDefault || len(got.Actions) != 0 {
		t.Errorf("got useDefault=%v actions=%+v, want true and none", got.UseDefault, got.Actions)
	}
}

func TestEditNotificationRejectsBlankIntegration(t *testing.T) {
	database := newTestProject(t)
	n := firstNotification(t, database)

	// Custom mode keeps the seeded blank email action, which is valid
	var o editOptions
	if err := o.mode.Set("custom"); err != nil {
		t.Fatal(err)
	}
	if _, err := editNotification(database, n.ID, o, strings.NewReader("")); err != nil {
		t.Fatalf("custom with blank email should save: %v", err)
	}

	var missing editOptions
	if _, err := editNotification(database, "zzzz", missing, strings.NewReader("")); err == nil {
		t.Error("expected an error for an unknown notification")
	}
}

func TestEditDefaults(t *testing.T) {
	database := newTestProject(t)

	var o editOptions
	o.emails = []string{"Admins"}
	d, err := editDefaults(database, "rhel", o, strings.NewReader(""))
	if err != nil {
		t.Fatalf("editDefaults failed: %v", err)
	}
	if len(d.Actions) != 1 || d.Actions[0].Recipients[0] != "Admins" {
		t.Errorf("default actions = %+v", d.Actions)
	}

	o = editOptions{}
	if err := o.mode.Set("mute"); err != nil {
		t.Fatal(err)
	}
	d, err = editDefaults(database, "rhel", o, strings.NewReader(""))
	if err != nil {
		t.Fatalf("mute failed: %v", err)
	}
	if len(d.Actions) != 0 {
		t.Errorf("muted default should have no actions, got %+v", d.Actions)
	}
}

func TestCreateGroup(t *testing.T) {
	database := newTestProject(t)
	hook, err := database.CreateIntegration("pager", models.IntegrationWebhook, "https://hooks.example.com/p", "")
	if err != nil {
		t.Fatalf("CreateIntegration failed: %v", err)
	}

	var o editOptions
	o.emails = []string{"Admins"}
	o.integrations = []string{hook.ID}
	g, err := createGroup(database, "rhel", "On call", o, strings.NewReader(""))
	if err != nil {
		t.Fatalf("createGroup failed: %v", err)
	}
	if g.DisplayName != "On call" || len(g.Actions) != 2 {
		t.Errorf("group = %+v", g)
	}

	if _, err := createGroup(database, "rhel", "Empty", editOptions{}, strings.NewReader("")); err == nil {
		t.Error("a group with no edits should fail")
	}
	if _, err := createGroup(database, "nope", "x", o, strings.NewReader("")); err == nil {
		t.Error("an unknown bundle should fail")
	}
}
