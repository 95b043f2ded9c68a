package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

const MemoryPath = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS discussions (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    title           TEXT NOT NULL,
    status          TEXT NOT NULL DEFAULT 'in-discussion' CHECK (status IN ('proposed', 'in-discussion', 'approved', 'rejected')),
    current_prompt  TEXT NOT NULL DEFAULT '',
    answers         TEXT NOT NULL DEFAULT '{}',
    created_at      TEXT NOT NULL,
    updated_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS discussion_contexts (
    discussion_id          INTEGER PRIMARY KEY REFERENCES discussions(id),
    previous_decisions     TEXT NOT NULL DEFAULT '[]',
    related_features       TEXT NOT NULL DEFAULT '[]',
    technical_constraints  TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS exchanges (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    discussion_id  INTEGER NOT NULL REFERENCES discussions(id),
    prompt         TEXT NOT NULL,
    response       TEXT NOT NULL,
    created_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_exchanges_discussion ON exchanges(discussion_id);
`

// Open opens (or creates) the database at dbPath and applies the schema.
// MemoryPath gives a private in-memory database that lives as long as the
// returned handle.
func Open(dbPath string) (*sql.DB, error) {
	if dbPath == "" {
		dbPath = MemoryPath
	}
	// write transactions take the lock at BEGIN and wait for it up to 5s
	dsn := dbPath + "?_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)&_txlock=immediate"
	memory := strings.Contains(dbPath, ":memory:") || strings.Contains(dbPath, "mode=memory")
	if !memory {
		dsn += "&_pragma=journal_mode(wal)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if memory {
		// every new connection to :memory: would see an empty database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("running schema migration: %w", err)
	}
	return db, nil
}
