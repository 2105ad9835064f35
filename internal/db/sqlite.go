package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer; avoids SQLITE_BUSY between the TUI and a CLI subcommand.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	if _, err := conn.Exec(createSessionTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create session schema: %w", err)
	}

	if _, err := conn.Exec(createSessionEventsTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create session events schema: %w", err)
	}

	return &DB{conn: conn}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// DefaultPath returns the database location under the user's config dir
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "adminboard.db"
	}
	return filepath.Join(dir, "adminboard", "adminboard.db")
}
