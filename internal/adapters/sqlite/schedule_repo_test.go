package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/mediminder/internal/adapters/sqlite"
	"github.com/example/mediminder/internal/ports/secondary"
)

func TestScheduleRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewScheduleRepository(db)
	ctx := context.Background()
	seedRecipient(t, db, "100001", "")

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "MED-001" {
		t.Errorf("GetNextID = %q, want %q", id, "MED-001")
	}

	err = repo.Create(ctx, &secondary.ScheduleRecord{
		ID:          id,
		RecipientID: "100001",
		Name:        "Aspirin",
		Dosage:      "100mg",
		TimesOfDay:  "08:00,20:00",
		Active:      true,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Name != "Aspirin" || got.Dosage != "100mg" || got.TimesOfDay != "08:00,20:00" {
		t.Errorf("unexpected schedule: %+v", got)
	}
	if !got.Active {
		t.Error("expected schedule to be active")
	}

	_, err = repo.GetByID(ctx, "MED-999")
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduleRepository_ListAndDeactivate(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewScheduleRepository(db)
	ctx := context.Background()

	seedRecipient(t, db, "100001", "")
	seedRecipient(t, db, "100002", "")
	seedMedication(t, db, "MED-001", "100001", "Aspirin", "08:00", true)
	seedMedication(t, db, "MED-002", "100001", "Vitamin D", "09:00", true)
	seedMedication(t, db, "MED-003", "100002", "Metformin", "07:30", true)
	seedMedication(t, db, "MED-004", "100002", "Old", "10:00", false)

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 3 {
		t.Errorf("expected 3 active schedules, got %d", len(active))
	}

	all, _ := repo.ListByRecipient(ctx, "100002", false)
	if len(all) != 2 {
		t.Errorf("expected 2 schedules for 100002, got %d", len(all))
	}
	onlyActive, _ := repo.ListByRecipient(ctx, "100002", true)
	if len(onlyActive) != 1 {
		t.Errorf("expected 1 active schedule for 100002, got %d", len(onlyActive))
	}

	n, err := repo.DeactivateRecipient(ctx, "100001")
	if err != nil {
		t.Fatalf("DeactivateRecipient failed: %v", err)
	}
	if n != 2 {
		t.Errorf("DeactivateRecipient changed %d rows, want 2", n)
	}

	if err := repo.Deactivate(ctx, "MED-003"); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	active, _ = repo.ListActive(ctx)
	if len(active) != 0 {
		t.Errorf("expected no active schedules, got %d", len(active))
	}

	if err := repo.Deactivate(ctx, "MED-999"); !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
