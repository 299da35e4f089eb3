// Package sqlite_test contains integration tests for SQLite repositories.
//
// This file is the single point where the database schema is loaded for tests.
// All setup goes through db.GetSchemaSQL() so tests run against the
// authoritative schema. Do not hardcode CREATE TABLE statements in test files;
// use setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/mediminder/internal/db"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	// Every pooled connection to :memory: is a separate database.
	testDB.SetMaxOpenConns(1)

	_, err = testDB.Exec(db.GetSchemaSQL())
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedRecipient inserts a test recipient and returns its ID.
func seedRecipient(t *testing.T, db *sql.DB, id, phone string) string {
	t.Helper()
	if id == "" {
		id = "100001"
	}
	var phoneArg any
	if phone != "" {
		phoneArg = phone
	}
	_, err := db.Exec("INSERT INTO recipients (id, phone_number) VALUES (?, ?)", id, phoneArg)
	if err != nil {
		t.Fatalf("failed to seed recipient: %v", err)
	}
	return id
}

// seedMedication inserts a test medication and returns its ID.
func seedMedication(t *testing.T, db *sql.DB, id, recipientID, name, times string, active bool) string {
	t.Helper()
	if id == "" {
		id = "MED-001"
	}
	if name == "" {
		name = "Aspirin"
	}
	if times == "" {
		times = "08:00"
	}
	_, err := db.Exec(
		"INSERT INTO medications (id, recipient_id, name, dosage, times_of_day, is_active) VALUES (?, ?, ?, '100mg', ?, ?)",
		id, recipientID, name, times, active,
	)
	if err != nil {
		t.Fatalf("failed to seed medication: %v", err)
	}
	return id
}
