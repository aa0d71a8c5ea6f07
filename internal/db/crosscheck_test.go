package db

import (
	"database/sql"
	"encoding/json"
	"strings"
	"testing"

	"github.com/marcus/notif/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// openReadOnly opens the database file through the cgo driver so the
// stored format is checked independently of the driver that wrote it
func openReadOnly(t *testing.T, db *DB) *sql.DB {
	t.Helper()
	conn, err := sql.Open("sqlite3", Path(db.baseDir)+"?mode=ro")
	if err != nil {
		t.Fatalf("open read-only: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	if err := conn.Ping(); err != nil {
		if strings.Contains(err.Error(), "CGO_ENABLED") {
			t.Skip("go-sqlite3 requires cgo")
		}
		t.Fatalf("ping read-only: %v", err)
	}
	return conn
}

func TestStoredBehaviorIsWireJSON(t *testing.T) {
	db, bundle := seededDB(t)
	list, _ := db.ListNotifications(bundle.ID, "advisor")
	id := list[0].ID

	behavior := models.Behavior{
		UseDefault: false,
		Actions: []models.WireAction{
			{Type: models.KindEmailSubscription, Recipient: []string{"Admins"}},
		},
	}
	if err := db.SaveNotificationBehavior(id, behavior); err != nil {
		t.Fatalf("SaveNotificationBehavior failed: %v", err)
	}

	conn := openReadOnly(t, db)
	var useDefault int
	var raw string
	err := conn.QueryRow(`SELECT use_default, actions FROM event_type_behaviors WHERE event_type_id = ?`, id).
		Scan(&useDefault, &raw)
	if err != nil {
		t.Fatalf("query behavior: %v", err)
	}
	if useDefault != 0 {
		t.Errorf("use_default = %d, want 0", useDefault)
	}
	if raw != `[{"type":"EMAIL_SUBSCRIPTION","recipient":["Admins"],"integrationId":""}]` {
		t.Errorf("stored actions = %s", raw)
	}

	var ws []models.WireAction
	if err := json.Unmarshal([]byte(raw), &ws); err != nil {
		t.Fatalf("stored actions are not JSON: %v", err)
	}
}

func TestSchemaVersionVisibleToOtherDriver(t *testing.T) {
	db := newTestDB(t)
	conn := openReadOnly(t, db)

	var v string
	if err := conn.QueryRow(`SELECT value FROM schema_info WHERE key = 'version'`).Scan(&v); err != nil {
		t.Fatalf("query schema_info: %v", err)
	}
	if v != "1" {
		t.Errorf("version = %s, want 1", v)
	}
}
