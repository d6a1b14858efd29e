// Package store persists observations, model snapshots, feedback, and
// adaptation history in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

type DB struct {
	*sql.DB
}

func Open() (*DB, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("finding home directory: %w", err)
	}

	dir := filepath.Join(home, ".config", "springa")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	return OpenPath(filepath.Join(dir, "springa.db"))
}

// OpenPath opens the database at an explicit path. Used by tests.
func OpenPath(dbPath string) (*DB, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	store := &DB{db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return store, nil
}

func (db *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS observations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			activity_id TEXT NOT NULL,
			category TEXT NOT NULL,
			start_band TEXT NOT NULL,
			entry_slope TEXT NOT NULL,
			hr_zone INTEGER NOT NULL,
			rate_per_10min REAL NOT NULL,
			fuel_rate REAL NOT NULL,
			elapsed_min INTEGER NOT NULL,
			observed_at DATETIME NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_observations_activity
			ON observations(activity_id)`,
		`CREATE TABLE IF NOT EXISTS model_snapshots (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			built_at DATETIME NOT NULL,
			activities INTEGER NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date DATETIME NOT NULL,
			category TEXT NOT NULL,
			effort INTEGER NOT NULL,
			felt TEXT NOT NULL,
			note TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS changes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			event_id TEXT NOT NULL,
			reason TEXT NOT NULL,
			detail TEXT NOT NULL,
			before_value TEXT,
			after_value TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS state (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	return nil
}

func (db *DB) GetState(key string) (string, error) {
	var value string
	err := db.QueryRow("SELECT value FROM state WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (db *DB) SetState(key, value string) error {
	_, err := db.Exec(
		"INSERT INTO state (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
