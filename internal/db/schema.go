package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete schema for a fresh session database.
// This schema reflects the current state after all migrations.
//
// Tests load it through GetSchemaSQL() instead of declaring their own
// tables, so a column used by a repository but missing here fails at
// test time with "no such column".
const SchemaSQL = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	participant TEXT NOT NULL,
	age_group TEXT,
	age INTEGER NOT NULL DEFAULT 0,
	date TEXT NOT NULL,
	blocks_reversed INTEGER NOT NULL CHECK(blocks_reversed IN (0, 1)),
	prime_list_name TEXT NOT NULL,
	n_back_task INTEGER NOT NULL DEFAULT 1 CHECK(n_back_task IN (0, 1)),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_participant ON sessions(participant);

CREATE TABLE IF NOT EXISTS trials (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	prime_name TEXT NOT NULL,
	n_back INTEGER NOT NULL CHECK(n_back BETWEEN 1 AND 3),
	order_set INTEGER NOT NULL,
	position INTEGER NOT NULL,
	image_id INTEGER NOT NULL,
	n_back_image_id INTEGER,
	lure INTEGER NOT NULL CHECK(lure IN (0, 1)),
	lure_kind TEXT,
	expected_response INTEGER NOT NULL CHECK(expected_response IN (0, 1)),
	user_response INTEGER NOT NULL CHECK(user_response IN (0, 1)),
	reaction_time REAL,
	correct INTEGER NOT NULL CHECK(correct IN (0, 1)),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE,
	UNIQUE (session_id, order_set, position)
);

CREATE TABLE IF NOT EXISTS prime_responses (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	session_id TEXT NOT NULL,
	image_name TEXT NOT NULL,
	position INTEGER NOT NULL,
	level INTEGER NOT NULL,
	answer TEXT,
	reaction_time REAL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE,
	UNIQUE (session_id, position)
);
`

// InitSchema creates the schema on a fresh database, or runs pending
// migrations on an existing one.
func InitSchema(conn *sql.DB) error {
	var tableCount int
	err := conn.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return err
	}
	if tableCount > 0 {
		return RunMigrations(conn)
	}

	if _, err := conn.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := createVersionTable(conn); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := conn.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return err
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
