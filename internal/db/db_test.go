package db

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/marcus/notif/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Initialize(t.TempDir())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seededDB(t *testing.T) (*DB, *models.Facet) {
	t.Helper()
	db := newTestDB(t)
	bundle, err := db.Seed()
	if err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	return db, bundle
}

func TestInitialize(t *testing.T) {
	dir := t.TempDir()

	db, err := Initialize(dir)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer db.Close()

	if _, err := os.Stat(filepath.Join(dir, ".notif", "notif.db")); os.IsNotExist(err) {
		t.Error("Database file not created")
	}

	v, err := db.GetSchemaVersion()
	if err != nil {
		t.Fatalf("GetSchemaVersion failed: %v", err)
	}
	if v != SchemaVersion {
		t.Errorf("schema version = %d, want %d", v, SchemaVersion)
	}
}

func TestOpenChecksSchemaVersion(t *testing.T) {
	dir := t.TempDir()
	db, err := Initialize(dir)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := db.conn.Exec("DELETE FROM schema_info WHERE key = 'version'"); err != nil {
		t.Fatal(err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("Open of an unversioned database failed: %v", err)
	}
	if v, _ := db.GetSchemaVersion(); v != SchemaVersion {
		t.Errorf("schema version after open = %d, want %d", v, SchemaVersion)
	}
	if err := db.setSchemaVersion(SchemaVersion + 1); err != nil {
		t.Fatal(err)
	}
	db.Close()

	if _, err := Open(dir); err == nil || !strings.Contains(err.Error(), "newer") {
		t.Errorf("Open of a newer database: err = %v", err)
	}
}

func TestOpenRequiresInit(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("expected error opening missing database")
	}
}

func TestOpenExisting(t *testing.T) {
	dir := t.TempDir()
	db, err := Initialize(dir)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if _, err := db.Seed(); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	db.Close()

	db, err = Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	bundles, err := db.ListBundles()
	if err != nil {
		t.Fatalf("ListBundles failed: %v", err)
	}
	if len(bundles) != 1 || bundles[0].Name != "rhel" {
		t.Errorf("bundles = %+v, want rhel", bundles)
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	db, first := seededDB(t)

	second, err := db.Seed()
	if err != nil {
		t.Fatalf("second Seed failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("second Seed created a new bundle: %s != %s", second.ID, first.ID)
	}

	apps, err := db.ListApplications(first.ID)
	if err != nil {
		t.Fatalf("ListApplications failed: %v", err)
	}
	if len(apps) != 2 {
		t.Fatalf("applications = %d, want 2", len(apps))
	}
	if apps[0].Name != "advisor" || apps[1].Name != "policies" {
		t.Errorf("applications not ordered by display name: %+v", apps)
	}
}

func TestGetBundle(t *testing.T) {
	db, bundle := seededDB(t)

	byName, err := db.GetBundle("rhel")
	if err != nil {
		t.Fatalf("GetBundle by name failed: %v", err)
	}
	byID, err := db.GetBundle(bundle.ID)
	if err != nil {
		t.Fatalf("GetBundle by id failed: %v", err)
	}
	if byName.ID != byID.ID {
		t.Errorf("lookups disagree: %s vs %s", byName.ID, byID.ID)
	}

	if _, err := db.GetBundle("openshift"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing bundle error = %v, want ErrNotFound", err)
	}
}

func TestListNotifications(t *testing.T) {
	db, bundle := seededDB(t)

	all, err := db.ListNotifications(bundle.ID, "")
	if err != nil {
		t.Fatalf("ListNotifications failed: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("notifications = %d, want 4", len(all))
	}
	for _, n := range all {
		if !n.UseDefault {
			t.Errorf("%s: new event types should use the default", n.EventTypeName)
		}
		if n.Actions == nil || len(n.Actions) != 0 {
			t.Errorf("%s: actions = %v, want empty", n.EventTypeName, n.Actions)
		}
		if n.BundleID != bundle.ID {
			t.Errorf("%s: bundle = %s", n.EventTypeName, n.BundleID)
		}
	}

	policies, err := db.ListNotifications(bundle.ID, "policies")
	if err != nil {
		t.Fatalf("ListNotifications(policies) failed: %v", err)
	}
	if len(policies) != 1 || policies[0].EventTypeName != "policy-triggered" {
		t.Errorf("policies filter = %+v", policies)
	}
}

func TestSaveNotificationBehavior(t *testing.T) {
	db, bundle := seededDB(t)
	hook, err := db.CreateIntegration("ops hook", models.IntegrationWebhook, "https://example.com/hook", "s3cret")
	if err != nil {
		t.Fatalf("CreateIntegration failed: %v", err)
	}

	list, _ := db.ListNotifications(bundle.ID, "policies")
	id := list[0].ID

	behavior := models.Behavior{
		UseDefault: false,
		Actions: []models.WireAction{
			{Type: models.KindEmailSubscription, Recipient: []string{"Admins", "Admins", "Security"}},
			{Type: models.KindIntegration, Recipient: []string{}, IntegrationID: hook.ID},
		},
	}
	if err := db.SaveNotificationBehavior(id, behavior); err != nil {
		t.Fatalf("SaveNotificationBehavior failed: %v", err)
	}

	got, err := db.GetNotification(id)
	if err != nil {
		t.Fatalf("GetNotification failed: %v", err)
	}
	if got.UseDefault {
		t.Error("UseDefault should be false")
	}
	if len(got.Actions) != 2 {
		t.Fatalf("actions = %d, want 2", len(got.Actions))
	}
	if !reflect.DeepEqual(got.Actions[0].Recipients, []string{"Admins", "Security"}) {
		t.Errorf("recipients = %v", got.Actions[0].Recipients)
	}
	ref := got.Actions[1].Integration
	if ref == nil || ref.ID != hook.ID || ref.Name != "ops hook" || ref.Type != models.IntegrationWebhook {
		t.Errorf("integration ref = %+v", ref)
	}
}

func TestSaveNotificationBehaviorRejectsUnknownType(t *testing.T) {
	db, bundle := seededDB(t)
	list, _ := db.ListNotifications(bundle.ID, "")

	err := db.SaveNotificationBehavior(list[0].ID, models.Behavior{
		Actions: []models.WireAction{{Type: "SMS"}},
	})
	if err == nil {
		t.Fatal("expected error for unknown action type")
	}

	got, _ := db.GetNotification(list[0].ID)
	if !got.UseDefault {
		t.Error("rejected save must not change the stored behavior")
	}
}

func TestGetNotificationByPrefix(t *testing.T) {
	db, bundle := seededDB(t)
	list, _ := db.ListNotifications(bundle.ID, "")
	want := list[0]

	got, err := db.GetNotification(want.ID[:13])
	if err != nil {
		t.Fatalf("GetNotification by prefix failed: %v", err)
	}
	if got.ID != want.ID {
		t.Errorf("prefix resolved to %s, want %s", got.ID, want.ID)
	}

	if _, err := db.GetNotification("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing notification error = %v, want ErrNotFound", err)
	}
}

func TestDefaultBehavior(t *testing.T) {
	db, bundle := seededDB(t)

	d, err := db.GetDefaultBehavior(bundle.ID)
	if err != nil {
		t.Fatalf("GetDefaultBehavior failed: %v", err)
	}
	if d.Actions == nil || len(d.Actions) != 0 {
		t.Errorf("fresh default = %v, want empty", d.Actions)
	}

	actions := []models.WireAction{{Type: models.KindEmailSubscription, Recipient: []string{"All users"}}}
	if err := db.SaveDefaultBehavior(bundle.ID, actions); err != nil {
		t.Fatalf("SaveDefaultBehavior failed: %v", err)
	}
	// Saving twice replaces rather than appends
	if err := db.SaveDefaultBehavior(bundle.ID, actions); err != nil {
		t.Fatalf("second SaveDefaultBehavior failed: %v", err)
	}

	d, err = db.GetDefaultBehavior(bundle.ID)
	if err != nil {
		t.Fatalf("GetDefaultBehavior failed: %v", err)
	}
	if len(d.Actions) != 1 || d.Actions[0].Recipients[0] != "All users" {
		t.Errorf("default actions = %+v", d.Actions)
	}
	if d.UpdatedAt.IsZero() {
		t.Error("UpdatedAt not set")
	}
}

func TestBehaviorGroups(t *testing.T) {
	db, bundle := seededDB(t)

	if _, err := db.CreateBehaviorGroup(bundle.ID, "  ", nil); err == nil {
		t.Error("expected error for blank group name")
	}

	g, err := db.CreateBehaviorGroup(bundle.ID, "Escalation", []models.WireAction{
		{Type: models.KindEmailSubscription, Recipient: []string{"Admins"}},
	})
	if err != nil {
		t.Fatalf("CreateBehaviorGroup failed: %v", err)
	}
	if len(g.ID) != 36 {
		t.Errorf("group id %q is not a uuid", g.ID)
	}

	groups, err := db.ListBehaviorGroups(bundle.ID)
	if err != nil {
		t.Fatalf("ListBehaviorGroups failed: %v", err)
	}
	if len(groups) != 1 || groups[0].DisplayName != "Escalation" || len(groups[0].Actions) != 1 {
		t.Fatalf("groups = %+v", groups)
	}

	if err := db.DeleteBehaviorGroup(g.ID); err != nil {
		t.Fatalf("DeleteBehaviorGroup failed: %v", err)
	}
	if err := db.DeleteBehaviorGroup(g.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete error = %v, want ErrNotFound", err)
	}
}

func TestCreateIntegrationValidation(t *testing.T) {
	db := newTestDB(t)

	tests := []struct {
		name    string
		iname   string
		typ     models.IntegrationType
		url     string
		wantErr bool
	}{
		{"valid", "hook", models.IntegrationWebhook, "https://example.com/a", false},
		{"default type", "hook2", "", "http://localhost:9000/a", false},
		{"blank name", " ", models.IntegrationWebhook, "https://example.com", true},
		{"bad type", "hook3", "slack", "https://example.com", true},
		{"bad scheme", "hook4", models.IntegrationWebhook, "ftp://example.com", true},
		{"no host", "hook5", models.IntegrationWebhook, "https://", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, err := db.CreateIntegration(tt.iname, tt.typ, tt.url, "")
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil && (!i.Enabled || i.Type != models.IntegrationWebhook) {
				t.Errorf("integration = %+v", i)
			}
		})
	}
}

func TestSearchIntegrations(t *testing.T) {
	db := newTestDB(t)
	for _, name := range []string{"Ops Pager", "ops chat", "Billing"} {
		if _, err := db.CreateIntegration(name, models.IntegrationWebhook, "https://example.com/"+name, ""); err != nil {
			t.Fatalf("CreateIntegration %s: %v", name, err)
		}
	}

	got, err := db.SearchIntegrations(models.IntegrationWebhook, "OPS")
	if err != nil {
		t.Fatalf("SearchIntegrations failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("search OPS = %d results, want 2", len(got))
	}

	all, err := db.ListIntegrations("")
	if err != nil {
		t.Fatalf("ListIntegrations failed: %v", err)
	}
	if len(all) != 3 || all[0].Name != "Billing" {
		t.Errorf("list = %+v", all)
	}

	byName, err := db.GetIntegration("Billing")
	if err != nil {
		t.Fatalf("GetIntegration by name failed: %v", err)
	}
	if byName.URL != "https://example.com/Billing" {
		t.Errorf("url = %s", byName.URL)
	}
}

func TestSetIntegrationEnabled(t *testing.T) {
	db := newTestDB(t)
	i, _ := db.CreateIntegration("hook", models.IntegrationWebhook, "https://example.com", "")

	if err := db.SetIntegrationEnabled(i.ID, false); err != nil {
		t.Fatalf("SetIntegrationEnabled failed: %v", err)
	}
	got, _ := db.GetIntegration(i.ID)
	if got.Enabled {
		t.Error("integration should be disabled")
	}
	if err := db.SetIntegrationEnabled("missing", true); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing integration error = %v, want ErrNotFound", err)
	}
}

func TestDeleteIntegrationStripsActions(t *testing.T) {
	db, bundle := seededDB(t)
	keep, _ := db.CreateIntegration("keep", models.IntegrationWebhook, "https://example.com/keep", "")
	drop, _ := db.CreateIntegration("drop", models.IntegrationWebhook, "https://example.com/drop", "")

	actions := []models.WireAction{
		{Type: models.KindIntegration, Recipient: []string{}, IntegrationID: drop.ID},
		{Type: models.KindEmailSubscription, Recipient: []string{"Admins"}},
		{Type: models.KindIntegration, Recipient: []string{}, IntegrationID: keep.ID},
	}
	list, _ := db.ListNotifications(bundle.ID, "")
	if err := db.SaveNotificationBehavior(list[0].ID, models.Behavior{Actions: actions}); err != nil {
		t.Fatalf("SaveNotificationBehavior failed: %v", err)
	}
	if err := db.SaveDefaultBehavior(bundle.ID, actions); err != nil {
		t.Fatalf("SaveDefaultBehavior failed: %v", err)
	}
	if _, err := db.CreateBehaviorGroup(bundle.ID, "group", actions); err != nil {
		t.Fatalf("CreateBehaviorGroup failed: %v", err)
	}
	if _, err := db.RecordConnectionAttempt(drop.ID, models.AttemptFailed, "boom"); err != nil {
		t.Fatalf("RecordConnectionAttempt failed: %v", err)
	}

	if err := db.DeleteIntegration(drop.ID); err != nil {
		t.Fatalf("DeleteIntegration failed: %v", err)
	}

	check := func(where string, got []models.Action) {
		t.Helper()
		if len(got) != 2 {
			t.Fatalf("%s: actions = %d, want 2", where, len(got))
		}
		if got[0].Kind != models.KindEmailSubscription || got[1].Integration.ID != keep.ID {
			t.Errorf("%s: wrong survivors %+v", where, got)
		}
	}
	n, _ := db.GetNotification(list[0].ID)
	check("notification", n.Actions)
	d, _ := db.GetDefaultBehavior(bundle.ID)
	check("default", d.Actions)
	groups, _ := db.ListBehaviorGroups(bundle.ID)
	check("group", groups[0].Actions)

	attempts, err := db.ListConnectionAttempts(drop.ID, 0)
	if err != nil {
		t.Fatalf("ListConnectionAttempts failed: %v", err)
	}
	if len(attempts) != 0 {
		t.Errorf("attempts survived delete: %d", len(attempts))
	}
	if _, err := db.GetIntegration(drop.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleted integration error = %v, want ErrNotFound", err)
	}
}

func TestConnectionAttempts(t *testing.T) {
	db := newTestDB(t)
	i, _ := db.CreateIntegration("hook", models.IntegrationWebhook, "https://example.com", "")

	if _, err := db.RecordConnectionAttempt(i.ID, "maybe", ""); err == nil {
		t.Error("expected error for invalid attempt type")
	}
	for _, typ := range []models.AttemptType{models.AttemptFailed, models.AttemptSuccess, models.AttemptSuccess} {
		if _, err := db.RecordConnectionAttempt(i.ID, typ, ""); err != nil {
			t.Fatalf("RecordConnectionAttempt failed: %v", err)
		}
	}

	attempts, err := db.ListConnectionAttempts(i.ID, 2)
	if err != nil {
		t.Fatalf("ListConnectionAttempts failed: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("attempts = %d, want 2", len(attempts))
	}
	if attempts[0].ID < attempts[1].ID {
		t.Error("attempts should be newest first")
	}
	if attempts[0].Timestamp.IsZero() {
		t.Error("timestamp not read back")
	}
}

func TestRecipients(t *testing.T) {
	db, bundle := seededDB(t)

	if err := db.AddRecipient("Admins"); err != nil {
		t.Fatalf("re-adding recipient failed: %v", err)
	}
	if err := db.AddRecipient(""); err == nil {
		t.Error("expected error for empty recipient")
	}
	if err := db.SaveDefaultBehavior(bundle.ID, []models.WireAction{
		{Type: models.KindEmailSubscription, Recipient: []string{"Security admins"}},
	}); err != nil {
		t.Fatalf("SaveDefaultBehavior failed: %v", err)
	}

	got, err := db.SearchRecipients("")
	if err != nil {
		t.Fatalf("SearchRecipients failed: %v", err)
	}
	want := []string{"Admins", "All users", "Security admins"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recipients = %v, want %v", got, want)
	}

	got, _ = db.SearchRecipients("ADMIN")
	want = []string{"Admins", "Security admins"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("search ADMIN = %v, want %v", got, want)
	}
}
