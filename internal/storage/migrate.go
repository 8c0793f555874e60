package storage

import (
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version of the local database
const SchemaVersion = 1

// Migrate ensures the schema exists and is at SchemaVersion
func Migrate(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("migrate: db is nil")
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (version INTEGER PRIMARY KEY);`); err != nil {
		return fmt.Errorf("migrate: create schema_migrations: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations;`).Scan(&current); err != nil {
		return fmt.Errorf("migrate: read current version: %w", err)
	}
	if current >= SchemaVersion {
		return nil
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migrate: begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	steps := []struct {
		name string
		sql  string
	}{
		{"drafts table", `
			CREATE TABLE IF NOT EXISTS drafts (
				tool TEXT PRIMARY KEY,
				brief TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);`},
		{"configs table", `
			CREATE TABLE IF NOT EXISTS configs (
				tool TEXT NOT NULL,
				name TEXT NOT NULL,
				brief TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				PRIMARY KEY (tool, name)
			);`},
		{"histories table", `
			CREATE TABLE IF NOT EXISTS histories (
				tool TEXT PRIMARY KEY,
				active_id TEXT NOT NULL DEFAULT '',
				snapshot TEXT NOT NULL,
				updated_at TEXT NOT NULL
			);`},
	}
	for _, step := range steps {
		if _, err := tx.Exec(step.sql); err != nil {
			return fmt.Errorf("migrate: create %s: %w", step.name, err)
		}
	}

	if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?);`, SchemaVersion); err != nil {
		return fmt.Errorf("migrate: record schema version: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("migrate: commit transaction: %w", err)
	}
	return nil
}
