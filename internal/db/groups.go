package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/notif/internal/models"
)

// CreateBehaviorGroup stores a named action list under a bundle
func (db *DB) CreateBehaviorGroup(bundleID, displayName string, actions []models.WireAction) (*models.BehaviorGroup, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, fmt.Errorf("behavior group name is required")
	}
	lookup, err := db.IntegrationLookup()
	if err != nil {
		return nil, err
	}
	decoded, err := models.FromWireList(actions, lookup)
	if err != nil {
		return nil, err
	}
	raw, err := encodeActions(actions)
	if err != nil {
		return nil, err
	}

	g := &models.BehaviorGroup{
		ID:          uuid.NewString(),
		BundleID:    bundleID,
		DisplayName: displayName,
		Actions:     decoded,
		CreatedAt:   time.Now().UTC(),
	}
	err = db.withWriteLock("create behavior group", func() error {
		_, err := db.conn.Exec(`INSERT INTO behavior_groups (id, bundle_id, display_name, actions, created_at) VALUES (?, ?, ?, ?, ?)`,
			g.ID, g.BundleID, g.DisplayName, raw, g.CreatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create behavior group: %w", err)
	}
	return g, nil
}

// ListBehaviorGroups returns the behavior groups of a bundle, oldest first
func (db *DB) ListBehaviorGroups(bundleID string) ([]models.BehaviorGroup, error) {
	lookup, err := db.IntegrationLookup()
	if err != nil {
		return nil, err
	}
	rows, err := db.conn.Query(`SELECT id, bundle_id, display_name, actions, created_at
		FROM behavior_groups WHERE bundle_id = ? ORDER BY created_at, display_name`, bundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.BehaviorGroup
	for rows.Next() {
		var g models.BehaviorGroup
		var raw string
		var createdAt sql.NullTime
		if err := rows.Scan(&g.ID, &g.BundleID, &g.DisplayName, &raw, &createdAt); err != nil {
			return nil, err
		}
		if g.Actions, err = decodeActions(raw, lookup); err != nil {
			return nil, fmt.Errorf("behavior group %s: %w", g.ID, err)
		}
		if createdAt.Valid {
			g.CreatedAt = createdAt.Time
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteBehaviorGroup removes a behavior group
func (db *DB) DeleteBehaviorGroup(id string) error {
	return db.withWriteLock("delete behavior group", func() error {
		res, err := db.conn.Exec(`DELETE FROM behavior_groups WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("behavior group %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
