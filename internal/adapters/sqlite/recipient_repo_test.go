package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/example/mediminder/internal/adapters/sqlite"
	"github.com/example/mediminder/internal/ports/secondary"
)

func TestRecipientRepository_Register(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRecipientRepository(db)
	ctx := context.Background()

	if err := repo.Register(ctx, "100001"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	// Registering again is a no-op.
	if err := repo.Register(ctx, "100001"); err != nil {
		t.Fatalf("second Register failed: %v", err)
	}

	exists, err := repo.Exists(ctx, "100001")
	if err != nil {
		t.Fatalf("Exists failed: %v", err)
	}
	if !exists {
		t.Error("expected recipient to exist")
	}

	got, err := repo.GetByID(ctx, "100001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.PhoneNumber != "" {
		t.Errorf("PhoneNumber = %q, want empty", got.PhoneNumber)
	}
	if got.CreatedAt == "" {
		t.Error("expected CreatedAt to be set")
	}
}

func TestRecipientRepository_SetPhone(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRecipientRepository(db)
	ctx := context.Background()
	seedRecipient(t, db, "100001", "")

	if err := repo.SetPhone(ctx, "100001", "+15550100001"); err != nil {
		t.Fatalf("SetPhone failed: %v", err)
	}
	got, _ := repo.GetByID(ctx, "100001")
	if got.PhoneNumber != "+15550100001" {
		t.Errorf("PhoneNumber = %q, want %q", got.PhoneNumber, "+15550100001")
	}

	err := repo.SetPhone(ctx, "999999", "+15550100001")
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown recipient, got %v", err)
	}

	_, err = repo.GetByID(ctx, "999999")
	if !errors.Is(err, secondary.ErrNotFound) {
		t.Errorf("expected ErrNotFound from GetByID, got %v", err)
	}
}
