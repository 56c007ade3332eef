package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"cutui/model"
)

// AuditStore mirrors the in-memory response and tool-output archives
// into sqlite so an exchange can be inspected after the session ends.
// Nothing in the rendering path reads it back.
type AuditStore struct {
	db *sql.DB
}

// OpenAuditStore opens (creating if needed) <dataDir>/audit.db.
func OpenAuditStore(dataDir string) (*AuditStore, error) {
	dbPath := filepath.Join(dataDir, "audit.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping audit database: %w", err)
	}

	store := &AuditStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize audit database: %w", err)
	}
	return store, nil
}

func (a *AuditStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS responses (
		id TEXT PRIMARY KEY,
		body TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);
	CREATE TABLE IF NOT EXISTS tool_outputs (
		tool_use_id TEXT PRIMARY KEY,
		output TEXT,
		error TEXT,
		has_image INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME NOT NULL
	);
	`
	_, err := a.db.Exec(schema)
	return err
}

// RecordResponse stores one raw provider response under the archive id.
func (a *AuditStore) RecordResponse(id string, raw json.RawMessage) error {
	_, err := a.db.Exec(
		`INSERT OR REPLACE INTO responses (id, body, created_at) VALUES (?, ?, ?)`,
		id, string(raw), time.Now(),
	)
	return err
}

// RecordToolOutput stores a tool result keyed by its invocation id,
// last write wins. The image payload itself is not persisted here;
// only its presence is, since images already land in the image store.
func (a *AuditStore) RecordToolOutput(toolUseID string, result model.ToolResultBlock) error {
	hasImage := 0
	if result.Base64Image != "" {
		hasImage = 1
	}
	_, err := a.db.Exec(
		`INSERT OR REPLACE INTO tool_outputs (tool_use_id, output, error, has_image, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		toolUseID, result.Output, result.Error, hasImage, time.Now(),
	)
	return err
}

// ResponseCount reports how many responses have been recorded.
func (a *AuditStore) ResponseCount() (int, error) {
	var n int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM responses`).Scan(&n)
	return n, err
}

// Close releases the database handle.
func (a *AuditStore) Close() error {
	return a.db.Close()
}
