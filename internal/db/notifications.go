package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/marcus/notif/internal/models"
)

const notificationColumns = `
	e.id, a.bundle_id, a.id, a.display_name, e.name, e.display_name, e.description,
	COALESCE(b.use_default, 1), COALESCE(b.actions, '[]'), b.updated_at`

const notificationFrom = `
	FROM event_types e
	JOIN applications a ON a.id = e.application_id
	LEFT JOIN event_type_behaviors b ON b.event_type_id = e.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(row rowScanner, lookup func(string) (models.IntegrationRef, bool)) (*models.Notification, error) {
	var n models.Notification
	var raw string
	var updatedAt sql.NullTime
	if err := row.Scan(&n.ID, &n.BundleID, &n.ApplicationID, &n.ApplicationDisplayName,
		&n.EventTypeName, &n.EventTypeDisplayName, &n.Description,
		&n.UseDefault, &raw, &updatedAt); err != nil {
		return nil, err
	}
	actions, err := decodeActions(raw, lookup)
	if err != nil {
		return nil, fmt.Errorf("notification %s: %w", n.ID, err)
	}
	n.Actions = actions
	if updatedAt.Valid {
		n.UpdatedAt = updatedAt.Time
	}
	return &n, nil
}

// ListNotifications returns the event types of a bundle. application
// filters by application id or name when non-empty.
func (db *DB) ListNotifications(bundleID, application string) ([]models.Notification, error) {
	lookup, err := db.IntegrationLookup()
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + notificationColumns + notificationFrom + ` WHERE a.bundle_id = ?`
	args := []any{bundleID}
	if application != "" {
		query += ` AND (a.id = ? OR a.name = ?)`
		args = append(args, application, application)
	}
	query += ` ORDER BY a.display_name, e.display_name`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Notification
	for rows.Next() {
		n, err := scanNotification(rows, lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	return out, rows.Err()
}

// GetNotification returns one event type by id or unique id prefix
func (db *DB) GetNotification(id string) (*models.Notification, error) {
	fullID, err := db.resolveEventTypeID(id)
	if err != nil {
		return nil, err
	}
	lookup, err := db.IntegrationLookup()
	if err != nil {
		return nil, err
	}
	row := db.conn.QueryRow(`SELECT `+notificationColumns+notificationFrom+` WHERE e.id = ?`, fullID)
	n, err := scanNotification(row, lookup)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("notification %s: %w", id, ErrNotFound)
	}
	return n, err
}

func (db *DB) resolveEventTypeID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("notification id is empty: %w", ErrNotFound)
	}
	rows, err := db.conn.Query(`SELECT id FROM event_types WHERE id = ? OR id LIKE ? LIMIT 2`, id, id+"%")
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var found string
		if err := rows.Scan(&found); err != nil {
			return "", err
		}
		if found == id {
			return found, nil
		}
		ids = append(ids, found)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("notification %s: %w", id, ErrNotFound)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("notification id prefix %s is ambiguous", id)
	}
}

// SaveNotificationBehavior stores the submitted behavior for an event type
func (db *DB) SaveNotificationBehavior(id string, b models.Behavior) error {
	fullID, err := db.resolveEventTypeID(id)
	if err != nil {
		return err
	}
	if _, err := models.FromWireList(b.Actions, nil); err != nil {
		return err
	}
	raw, err := encodeActions(b.Actions)
	if err != nil {
		return err
	}
	return db.withWriteLock("save notification behavior", func() error {
		_, err := db.conn.Exec(`INSERT INTO event_type_behaviors (event_type_id, use_default, actions, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(event_type_id) DO UPDATE SET use_default = excluded.use_default,
				actions = excluded.actions, updated_at = excluded.updated_at`,
			fullID, b.UseDefault, raw, time.Now().UTC())
		return err
	})
}

// GetDefaultBehavior returns the bundle default; a bundle without a stored
// default has no actions
func (db *DB) GetDefaultBehavior(bundleID string) (*models.DefaultBehavior, error) {
	lookup, err := db.IntegrationLookup()
	if err != nil {
		return nil, err
	}

	d := &models.DefaultBehavior{BundleID: bundleID, Actions: []models.Action{}}
	var raw string
	var updatedAt sql.NullTime
	err = db.conn.QueryRow(`SELECT actions, updated_at FROM default_behaviors WHERE bundle_id = ?`, bundleID).
		Scan(&raw, &updatedAt)
	if err == sql.ErrNoRows {
		return d, nil
	}
	if err != nil {
		return nil, err
	}
	if d.Actions, err = decodeActions(raw, lookup); err != nil {
		return nil, fmt.Errorf("default behavior %s: %w", bundleID, err)
	}
	if updatedAt.Valid {
		d.UpdatedAt = updatedAt.Time
	}
	return d, nil
}

// SaveDefaultBehavior replaces the bundle default actions
func (db *DB) SaveDefaultBehavior(bundleID string, actions []models.WireAction) error {
	if _, err := models.FromWireList(actions, nil); err != nil {
		return err
	}
	raw, err := encodeActions(actions)
	if err != nil {
		return err
	}
	return db.withWriteLock("save default behavior", func() error {
		_, err := db.conn.Exec(`INSERT INTO default_behaviors (bundle_id, actions, updated_at) VALUES (?, ?, ?)
			ON CONFLICT(bundle_id) DO UPDATE SET actions = excluded.actions, updated_at = excluded.updated_at`,
			bundleID, raw, time.Now().UTC())
		return err
	})
}
