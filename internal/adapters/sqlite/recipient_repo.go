package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/mediminder/internal/ports/secondary"
)

// RecipientRepository implements secondary.RecipientRepository with SQLite.
type RecipientRepository struct {
	db *sql.DB
}

// NewRecipientRepository creates a new SQLite recipient repository.
func NewRecipientRepository(db *sql.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// Register creates the recipient if it does not exist yet.
func (r *RecipientRepository) Register(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO recipients (id, created_at) VALUES (?, ?)",
		id, formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to register recipient: %w", err)
	}
	return nil
}

// GetByID retrieves a recipient by its ID.
func (r *RecipientRepository) GetByID(ctx context.Context, id string) (*secondary.RecipientRecord, error) {
	var (
		phone     sql.NullString
		createdAt time.Time
	)

	record := &secondary.RecipientRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, phone_number, created_at FROM recipients WHERE id = ?",
		id,
	).Scan(&record.ID, &phone, &createdAt)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("recipient %s %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipient: %w", err)
	}
	record.PhoneNumber = phone.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// SetPhone sets the contact number used for call escalation.
func (r *RecipientRepository) SetPhone(ctx context.Context, id, phone string) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE recipients SET phone_number = ? WHERE id = ?",
		phone, id,
	)
	if err != nil {
		return fmt.Errorf("failed to set phone number: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("recipient %s %w", id, secondary.ErrNotFound)
	}

	return nil
}

// Exists checks whether a recipient is registered.
func (r *RecipientRepository) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM recipients WHERE id = ?", id).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recipient existence: %w", err)
	}
	return count > 0, nil
}

// Ensure RecipientRepository implements the interface
var _ secondary.RecipientRepository = (*RecipientRepository)(nil)
