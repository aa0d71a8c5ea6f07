package db

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/marcus/notif/internal/models"
)

// AddRecipient registers a known recipient. Adding an existing name is a no-op.
func (db *DB) AddRecipient(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("recipient name is required")
	}
	return db.withWriteLock("add recipient", func() error {
		_, err := db.conn.Exec(`INSERT OR IGNORE INTO recipients (name) VALUES (?)`, name)
		return err
	})
}

// SearchRecipients returns known recipients and recipients already used by
// stored action lists whose name contains search, case-insensitively
func (db *DB) SearchRecipients(search string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		if search != "" && !strings.Contains(strings.ToLower(name), strings.ToLower(search)) {
			return
		}
		seen[name] = true
		out = append(out, name)
	}

	rows, err := db.conn.Query(`SELECT name FROM recipients`)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		add(name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	used, err := db.storedActionLists()
	if err != nil {
		return nil, err
	}
	for _, list := range used {
		for _, w := range list.actions {
			if w.Type != models.KindEmailSubscription {
				continue
			}
			for _, r := range w.Recipient {
				add(r)
			}
		}
	}

	sort.Strings(out)
	return out, nil
}

// storedList is one persisted action list and the row it came from
type storedList struct {
	table   string
	key     string
	keyCol  string
	actions []models.WireAction
}

var actionTables = []struct {
	table, keyCol string
}{
	{"event_type_behaviors", "event_type_id"},
	{"default_behaviors", "bundle_id"},
	{"behavior_groups", "id"},
}

// storedActionLists reads every persisted action list in wire form
func (db *DB) storedActionLists() ([]storedList, error) {
	var out []storedList
	for _, t := range actionTables {
		rows, err := db.conn.Query(fmt.Sprintf(`SELECT %s, actions FROM %s`, t.keyCol, t.table))
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var key, raw string
			if err := rows.Scan(&key, &raw); err != nil {
				rows.Close()
				return nil, err
			}
			var ws []models.WireAction
			if raw != "" {
				if err := json.Unmarshal([]byte(raw), &ws); err != nil {
					rows.Close()
					return nil, fmt.Errorf("%s %s: decode actions: %w", t.table, key, err)
				}
			}
			out = append(out, storedList{table: t.table, key: key, keyCol: t.keyCol, actions: ws})
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}
	return out, nil
}
