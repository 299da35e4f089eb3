package db

import (
	"database/sql"
	"fmt"
)

// SchemaSQL is the complete modern schema for fresh installs.
// This schema reflects the current state after all migrations.
//
// This is the single source of truth for the database schema. Tests use it
// via GetSchemaSQL() so repository code referencing a missing column fails
// immediately with "no such column".
//
// When adding new columns or tables:
//  1. Add a migration in migrations.go
//  2. Update SchemaSQL here
const SchemaSQL = `
-- Recipients (one per Telegram chat)
CREATE TABLE IF NOT EXISTS recipients (
	id TEXT PRIMARY KEY,
	phone_number TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Medications (daily schedules)
CREATE TABLE IF NOT EXISTS medications (
	id TEXT PRIMARY KEY,
	recipient_id TEXT NOT NULL,
	name TEXT NOT NULL,
	dosage TEXT NOT NULL DEFAULT '',
	times_of_day TEXT NOT NULL,
	is_active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (recipient_id) REFERENCES recipients(id)
);

CREATE INDEX IF NOT EXISTS idx_medications_recipient ON medications(recipient_id);
CREATE INDEX IF NOT EXISTS idx_medications_active ON medications(is_active);

-- Reminder instances (due-instance ledger, never deleted)
CREATE TABLE IF NOT EXISTS reminder_instances (
	id TEXT PRIMARY KEY,
	schedule_id TEXT NOT NULL,
	recipient_id TEXT NOT NULL,
	scheduled_at DATETIME NOT NULL,
	status TEXT NOT NULL CHECK(status IN ('pending', 'sent', 'acknowledged', 'missed', 'call_triggered', 'send_failed')) DEFAULT 'pending',
	snooze_count INTEGER NOT NULL DEFAULT 0,
	remind_at DATETIME NOT NULL,
	acknowledged_at DATETIME,
	escalated_at DATETIME,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL,
	FOREIGN KEY (schedule_id) REFERENCES medications(id),
	UNIQUE (schedule_id, scheduled_at)
);

CREATE INDEX IF NOT EXISTS idx_reminder_instances_status ON reminder_instances(status);
CREATE INDEX IF NOT EXISTS idx_reminder_instances_recipient ON reminder_instances(recipient_id);

-- Escalation calls (one per escalation channel invocation)
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
`

// InitSchema creates the schema on a fresh database, or migrates an existing one.
func InitSchema(database *sql.DB) error {
	var tableCount int
	err := database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&tableCount)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}

	if tableCount > 0 {
		return RunMigrations(database)
	}

	var legacyCount int
	err = database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='reminder_instances'").Scan(&legacyCount)
	if err != nil {
		return fmt.Errorf("failed to inspect schema: %w", err)
	}
	if legacyCount > 0 {
		// Pre-versioning database: start from version 0.
		return RunMigrations(database)
	}

	if _, err := database.Exec(SchemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if err := ensureVersionTable(database); err != nil {
		return err
	}
	for _, m := range migrations {
		if _, err := database.Exec("INSERT INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("failed to record migration %d: %w", m.Version, err)
		}
	}
	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
func GetSchemaSQL() string {
	return SchemaSQL
}
