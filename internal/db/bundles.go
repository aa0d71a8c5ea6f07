package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/marcus/notif/internal/models"
)

// CreateBundle inserts a bundle and returns it with its generated id
func (db *DB) CreateBundle(name, displayName string) (*models.Facet, error) {
	f := &models.Facet{ID: uuid.NewString(), Name: name, DisplayName: displayName}
	err := db.withWriteLock("create bundle", func() error {
		_, err := db.conn.Exec(`INSERT INTO bundles (id, name, display_name) VALUES (?, ?, ?)`,
			f.ID, f.Name, f.DisplayName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create bundle %s: %w", name, err)
	}
	return f, nil
}

// CreateApplication inserts an application under bundleID
func (db *DB) CreateApplication(bundleID, name, displayName string) (*models.Facet, error) {
	f := &models.Facet{ID: uuid.NewString(), Name: name, DisplayName: displayName}
	err := db.withWriteLock("create application", func() error {
		_, err := db.conn.Exec(`INSERT INTO applications (id, bundle_id, name, display_name) VALUES (?, ?, ?, ?)`,
			f.ID, bundleID, f.Name, f.DisplayName)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create application %s: %w", name, err)
	}
	return f, nil
}

// CreateEventType inserts an event type. New event types use the bundle default.
func (db *DB) CreateEventType(applicationID, name, displayName, description string) (string, error) {
	id := uuid.NewString()
	err := db.withWriteLock("create event type", func() error {
		tx, err := db.conn.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.Exec(`INSERT INTO event_types (id, application_id, name, display_name, description) VALUES (?, ?, ?, ?, ?)`,
			id, applicationID, name, displayName, description); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO event_type_behaviors (event_type_id, use_default, actions, updated_at) VALUES (?, 1, '[]', CURRENT_TIMESTAMP)`,
			id); err != nil {
			return err
		}
		return tx.Commit()
	})
	if err != nil {
		return "", fmt.Errorf("create event type %s: %w", name, err)
	}
	return id, nil
}

// ListBundles returns all bundles ordered by display name
func (db *DB) ListBundles() ([]models.Facet, error) {
	rows, err := db.conn.Query(`SELECT id, name, display_name FROM bundles ORDER BY display_name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFacets(rows)
}

// GetBundle finds a bundle by id or name
func (db *DB) GetBundle(idOrName string) (*models.Facet, error) {
	var f models.Facet
	err := db.conn.QueryRow(`SELECT id, name, display_name FROM bundles WHERE id = ? OR name = ?`,
		idOrName, idOrName).Scan(&f.ID, &f.Name, &f.DisplayName)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("bundle %s: %w", idOrName, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// ListApplications returns the applications of a bundle
func (db *DB) ListApplications(bundleID string) ([]models.Facet, error) {
	rows, err := db.conn.Query(`SELECT id, name, display_name FROM applications WHERE bundle_id = ? ORDER BY display_name`, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanFacets(rows)
}

func scanFacets(rows *sql.Rows) ([]models.Facet, error) {
	var out []models.Facet
	for rows.Next() {
		var f models.Facet
		if err := rows.Scan(&f.ID, &f.Name, &f.DisplayName); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

// seedEventType describes an event type created by Seed
type seedEventType struct {
	name, display, description string
}

// seedData is the catalog installed by Seed
var seedData = []struct {
	name, display string
	events        []seedEventType
}{
	{"policies", "Policies", []seedEventType{
		{"policy-triggered", "Policy triggered", "A custom policy matched a system."},
	}},
	{"advisor", "Advisor", []seedEventType{
		{"new-recommendation", "New recommendation", "A new recommendation applies to one of your systems."},
		{"resolved-recommendation", "Resolved recommendation", "A recommendation no longer applies."},
		{"deactivated-recommendation", "Deactivated recommendation", "A recommendation was deactivated."},
	}},
}

// Seed installs the "rhel" bundle with its applications and event types.
// It is a no-op when the bundle already exists.
func (db *DB) Seed() (*models.Facet, error) {
	if b, err := db.GetBundle("rhel"); err == nil {
		return b, nil
	}

	bundle, err := db.CreateBundle("rhel", "Red Hat Enterprise Linux")
	if err != nil {
		return nil, err
	}
	for _, app := range seedData {
		a, err := db.CreateApplication(bundle.ID, app.name, app.display)
		if err != nil {
			return nil, err
		}
		for _, ev := range app.events {
			if _, err := db.CreateEventType(a.ID, ev.name, ev.display, ev.description); err != nil {
				return nil, err
			}
		}
	}
	for _, r := range []string{"Admins", "All users"} {
		if err := db.AddRecipient(r); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}
