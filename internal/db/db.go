package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/marcus/notif/internal/models"
	_ "modernc.org/sqlite"
)

const (
	dataDir = ".notif"
	dbFile  = ".notif/notif.db"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// DB wraps the database connection
type DB struct {
	conn    *sql.DB
	baseDir string
}

// Path returns the database file location for baseDir
func Path(baseDir string) string {
	return filepath.Join(baseDir, dbFile)
}

// Open opens an existing database
func Open(baseDir string) (*DB, error) {
	dbPath := Path(baseDir)
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database not found: run 'notif init' first")
	}

	conn, err := openConn(dbPath)
	if err != nil {
		return nil, err
	}
	db := &DB{conn: conn, baseDir: baseDir}

	// Older files may predate a table added to the schema
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	v, err := db.GetSchemaVersion()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("read schema version: %w", err)
	}
	if v > SchemaVersion {
		conn.Close()
		return nil, fmt.Errorf("database schema v%d is newer than this notif supports (v%d)", v, SchemaVersion)
	}
	if v < SchemaVersion {
		if err := db.setSchemaVersion(SchemaVersion); err != nil {
			conn.Close()
			return nil, err
		}
	}
	return db, nil
}

// Initialize creates the database and schema
func Initialize(baseDir string) (*DB, error) {
	dbPath := Path(baseDir)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	conn, err := openConn(dbPath)
	if err != nil {
		return nil, err
	}
	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	db := &DB{conn: conn, baseDir: baseDir}
	if err := db.setSchemaVersion(SchemaVersion); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func openConn(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL lets readers proceed while a write holds the lock
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=500"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")
	return conn, nil
}

// Close closes the database
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the connection
func (db *DB) Ping() error {
	return db.conn.Ping()
}

// GetSchemaVersion returns the stored schema version
func (db *DB) GetSchemaVersion() (int, error) {
	var v string
	err := db.conn.QueryRow("SELECT value FROM schema_info WHERE key = 'version'").Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

func (db *DB) setSchemaVersion(v int) error {
	_, err := db.conn.Exec(`INSERT INTO schema_info (key, value) VALUES ('version', ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value`, strconv.Itoa(v))
	if err != nil {
		return fmt.Errorf("set schema version: %w", err)
	}
	return nil
}

// IntegrationLookup returns a resolver for integration refs stored by id
func (db *DB) IntegrationLookup() (func(id string) (models.IntegrationRef, bool), error) {
	rows, err := db.conn.Query("SELECT id, name, type FROM integrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make(map[string]models.IntegrationRef)
	for rows.Next() {
		var ref models.IntegrationRef
		if err := rows.Scan(&ref.ID, &ref.Name, &ref.Type); err != nil {
			return nil, err
		}
		refs[ref.ID] = ref
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return func(id string) (models.IntegrationRef, bool) {
		ref, ok := refs[id]
		return ref, ok
	}, nil
}

func encodeActions(ws []models.WireAction) (string, error) {
	if ws == nil {
		ws = []models.WireAction{}
	}
	data, err := json.Marshal(ws)
	if err != nil {
		return "", fmt.Errorf("encode actions: %w", err)
	}
	return string(data), nil
}

func decodeActions(raw string, lookup func(string) (models.IntegrationRef, bool)) ([]models.Action, error) {
	var ws []models.WireAction
	if raw != "" {
		if err := json.Unmarshal([]byte(raw), &ws); err != nil {
			return nil, fmt.Errorf("decode actions: %w", err)
		}
	}
	return models.FromWireList(ws, lookup)
}
