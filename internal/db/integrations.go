package db

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcus/notif/internal/models"
)

const integrationColumns = `id, name, type, url, secret, enabled, created_at`

func scanIntegration(row rowScanner) (*models.Integration, error) {
	var i models.Integration
	var secret sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&i.ID, &i.Name, &i.Type, &i.URL, &secret, &i.Enabled, &createdAt); err != nil {
		return nil, err
	}
	i.Secret = secret.String
	if createdAt.Valid {
		i.CreatedAt = createdAt.Time
	}
	return &i, nil
}

// CreateIntegration registers an enabled integration endpoint
func (db *DB) CreateIntegration(name string, typ models.IntegrationType, endpoint, secret string) (*models.Integration, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("integration name is required")
	}
	if typ == "" {
		typ = models.DefaultIntegrationType
	}
	if !models.IsValidIntegrationType(typ) {
		return nil, fmt.Errorf("invalid integration type: %s", typ)
	}
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid integration url: %q", endpoint)
	}

	i := &models.Integration{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      typ,
		URL:       endpoint,
		Secret:    secret,
		Enabled:   true,
		CreatedAt: time.Now().UTC(),
	}
	err = db.withWriteLock("create integration", func() error {
		_, err := db.conn.Exec(`INSERT INTO integrations (`+integrationColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			i.ID, i.Name, i.Type, i.URL, i.Secret, i.Enabled, i.CreatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create integration: %w", err)
	}
	return i, nil
}

// GetIntegration finds an integration by id or name
func (db *DB) GetIntegration(idOrName string) (*models.Integration, error) {
	row := db.conn.QueryRow(`SELECT `+integrationColumns+` FROM integrations WHERE id = ? OR name = ?
		ORDER BY id = ? DESC LIMIT 1`, idOrName, idOrName, idOrName)
	i, err := scanIntegration(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("integration %s: %w", idOrName, ErrNotFound)
	}
	return i, err
}

// ListIntegrations returns integrations ordered by name; typ filters when non-empty
func (db *DB) ListIntegrations(typ models.IntegrationType) ([]models.Integration, error) {
	return db.SearchIntegrations(typ, "")
}

// SearchIntegrations returns integrations of typ whose name contains search,
// case-insensitively. Empty arguments match everything.
func (db *DB) SearchIntegrations(typ models.IntegrationType, search string) ([]models.Integration, error) {
	query := `SELECT ` + integrationColumns + ` FROM integrations WHERE 1=1`
	var args []any
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, typ)
	}
	if search != "" {
		query += ` AND LOWER(name) LIKE ?`
		args = append(args, "%"+strings.ToLower(search)+"%")
	}
	query += ` ORDER BY name, id`

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Integration
	for rows.Next() {
		i, err := scanIntegration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

// SetIntegrationEnabled toggles delivery to an integration
func (db *DB) SetIntegrationEnabled(id string, enabled bool) error {
	return db.withWriteLock("set integration enabled", func() error {
		res, err := db.conn.Exec(`UPDATE integrations SET enabled = ? WHERE id = ?`, enabled, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("integration %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// DeleteIntegration removes an integration, its connection attempts and
// every stored action that points at it
func (db *DB) DeleteIntegration(id string) error {
	return db.withWriteLock("delete integration", func() error {
		lists, err := db.storedActionLists()
		if err != nil {
			return err
		}

		tx, err := db.conn.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.Exec(`DELETE FROM integrations WHERE id = ?`, id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("integration %s: %w", id, ErrNotFound)
		}
		if _, err := tx.Exec(`DELETE FROM connection_attempts WHERE integration_id = ?`, id); err != nil {
			return err
		}

		for _, list := range lists {
			kept, changed := stripIntegration(list.actions, id)
			if !changed {
				continue
			}
			raw, err := encodeActions(kept)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(fmt.Sprintf(`UPDATE %s SET actions = ? WHERE %s = ?`, list.table, list.keyCol),
				raw, list.key); err != nil {
				return fmt.Errorf("strip integration from %s: %w", list.table, err)
			}
		}
		return tx.Commit()
	})
}

func stripIntegration(ws []models.WireAction, id string) ([]models.WireAction, bool) {
	kept := make([]models.WireAction, 0, len(ws))
	for _, w := range ws {
		if w.Type == models.KindIntegration && w.IntegrationID == id {
			continue
		}
		kept = append(kept, w)
	}
	return kept, len(kept) != len(ws)
}

// RecordConnectionAttempt appends a delivery outcome for an integration
func (db *DB) RecordConnectionAttempt(integrationID string, typ models.AttemptType, detail string) (*models.ConnectionAttempt, error) {
	if !models.IsValidAttemptType(typ) {
		return nil, fmt.Errorf("invalid attempt type: %s", typ)
	}
	a := &models.ConnectionAttempt{
		IntegrationID: integrationID,
		Type:          typ,
		Detail:        detail,
		Timestamp:     time.Now().UTC(),
	}
	err := db.withWriteLock("record connection attempt", func() error {
		res, err := db.conn.Exec(`INSERT INTO connection_attempts (integration_id, type, detail, timestamp) VALUES (?, ?, ?, ?)`,
			a.IntegrationID, a.Type, a.Detail, a.Timestamp)
		if err != nil {
			return err
		}
		a.ID, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("record connection attempt: %w", err)
	}
	return a, nil
}

// ListConnectionAttempts returns the newest attempts first. limit <= 0 returns all.
func (db *DB) ListConnectionAttempts(integrationID string, limit int) ([]models.ConnectionAttempt, error) {
	query := `SELECT id, integration_id, type, detail, timestamp FROM connection_attempts
		WHERE integration_id = ? ORDER BY timestamp DESC, id DESC`
	args := []any{integrationID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConnectionAttempt
	for rows.Next() {
		var a models.ConnectionAttempt
		var detail sql.NullString
		if err := rows.Scan(&a.ID, &a.IntegrationID, &a.Type, &detail, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Detail = detail.String
		out = append(out, a)
	}
	return out, rows.Err()
}
