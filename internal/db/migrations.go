package db

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.Tx) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "add_remind_at_to_reminder_instances",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_escalation_calls_table",
		Up:      migrationV2,
	},
}

func ensureVersionTable(database *sql.DB) error {
	_, err := database.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}
	return nil
}

// RunMigrations executes all pending migrations
func RunMigrations(database *sql.DB) error {
	if err := ensureVersionTable(database); err != nil {
		return err
	}

	var currentVersion int
	err := database.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		slog.Info("running migration", "version", migration.Version, "name", migration.Name)

		tx, err := database.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction for migration %d: %w", migration.Version, err)
		}

		if err := migration.Up(tx); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, err)
		}

		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// migrationV1 adds remind_at so snooze re-delivery survives restarts.
// Existing rows take their scheduled instant.
func migrationV1(tx *sql.Tx) error {
	var count int
	err := tx.QueryRow("SELECT COUNT(*) FROM pragma_table_info('reminder_instances') WHERE name = 'remind_at'").Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to inspect reminder_instances: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := tx.Exec("ALTER TABLE reminder_instances ADD COLUMN remind_at DATETIME"); err != nil {
		return fmt.Errorf("failed to add remind_at column: %w", err)
	}
	if _, err := tx.Exec("UPDATE reminder_instances SET remind_at = scheduled_at WHERE remind_at IS NULL"); err != nil {
		return fmt.Errorf("failed to backfill remind_at: %w", err)
	}
	return nil
}

// migrationV2 adds the escalation call queue.
func migrationV2(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS escalation_calls (
			id TEXT PRIMARY KEY,
			instance_id TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			phone_number TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('queued', 'notified', 'failed')) DEFAULT 'queued',
			error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (instance_id) REFERENCES reminder_instances(id)
		);
		CREATE INDEX IF NOT EXISTS idx_escalation_calls_status ON escalation_calls(status);
	`)
	if err != nil {
		return fmt.Errorf("failed to create escalation_calls table: %w", err)
	}
	return nil
}
