package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures: two
// recipients and a handful of daily schedules.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(TimeFormat)

	recipients := []struct{ id, phone string }{
		{"100001", "+15550100001"},
		{"100002", ""},
	}
	for _, r := range recipients {
		var phone any
		if r.phone != "" {
			phone = r.phone
		}
		if _, err := database.Exec(
			"INSERT OR IGNORE INTO recipients (id, phone_number, created_at) VALUES (?, ?, ?)",
			r.id, phone, now,
		); err != nil {
			return fmt.Errorf("seed recipients: %w", err)
		}
	}

	meds := []struct{ id, recipientID, name, dosage, times string }{
		{"MED-001", "100001", "Aspirin", "100mg", "08:00,20:00"},
		{"MED-002", "100001", "Vitamin D", "1000IU", "09:00"},
		{"MED-003", "100002", "Metformin", "500mg", "07:30,12:30,19:30"},
	}
	for _, m := range meds {
		if _, err := database.Exec(
			"INSERT OR IGNORE INTO medications (id, recipient_id, name, dosage, times_of_day, is_active, created_at) VALUES (?, ?, ?, ?, ?, 1, ?)",
			m.id, m.recipientID, m.name, m.dosage, m.times, now,
		); err != nil {
			return fmt.Errorf("seed medications: %w", err)
		}
	}

	return nil
}
