package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpen_FreshInstallMarksAllMigrations(t *testing.T) {
	database, err := Open(":memory:")
	require.NoError(t, err)
	defer database.Close()

	var version int
	require.NoError(t, database.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version))
	assert.Equal(t, migrations[len(migrations)-1].Version, version)

	for _, table := range []string{"recipients", "medications", "reminder_instances", "escalation_calls"} {
		var n int
		require.NoError(t, database.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&n))
		assert.Equal(t, 1, n, "table %s", table)
	}
}

func TestOpen_ReopenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "mediminder.db")

	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, SeedFixtures(first))
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	defer second.Close()

	var count int
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count))
	assert.Equal(t, len(migrations), count)

	// Seeding twice must not fail.
	require.NoError(t, SeedFixtures(second))
	require.NoError(t, second.QueryRow("SELECT COUNT(*) FROM medications").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestRunMigrations_UpgradesUnversionedLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legacy.db")
	raw, err := Open(path)
	require.NoError(t, err)

	// Rebuild an unversioned ledger without remind_at or escalation_calls.
	_, err = raw.Exec(`
		DROP TABLE schema_version;
		DROP TABLE escalation_calls;
		DROP TABLE reminder_instances;
		CREATE TABLE reminder_instances (
			id TEXT PRIMARY KEY,
			schedule_id TEXT NOT NULL,
			recipient_id TEXT NOT NULL,
			scheduled_at DATETIME NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			snooze_count INTEGER NOT NULL DEFAULT 0,
			acknowledged_at DATETIME,
			escalated_at DATETIME,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL,
			UNIQUE (schedule_id, scheduled_at)
		);
		INSERT INTO reminder_instances (id, schedule_id, recipient_id, scheduled_at, created_at, updated_at)
		VALUES ('inst-1', 'MED-001', '100001', '2026-01-01 08:00:00', '2026-01-01 08:00:00', '2026-01-01 08:00:00');
	`)
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	upgraded, err := Open(path)
	require.NoError(t, err)
	defer upgraded.Close()

	var remindAt string
	require.NoError(t, upgraded.QueryRow("SELECT CAST(remind_at AS TEXT) FROM reminder_instances WHERE id = 'inst-1'").Scan(&remindAt))
	assert.Equal(t, "2026-01-01 08:00:00", remindAt)

	var n int
	require.NoError(t, upgraded.QueryRow("SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='escalation_calls'").Scan(&n))
	assert.Equal(t, 1, n)
}
