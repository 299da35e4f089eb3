package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/mediminder/internal/ports/secondary"
)

// EscalationCallRepository implements secondary.EscalationCallRepository with SQLite.
type EscalationCallRepository struct {
	db *sql.DB
}

// NewEscalationCallRepository creates a new SQLite escalation call repository.
func NewEscalationCallRepository(db *sql.DB) *EscalationCallRepository {
	return &EscalationCallRepository{db: db}
}

// Create persists a new escalation call.
func (r *EscalationCallRepository) Create(ctx context.Context, call *secondary.EscalationCallRecord) error {
	var errMsg sql.NullString
	if call.Error != "" {
		errMsg = sql.NullString{String: call.Error, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO escalation_calls (id, instance_id, recipient_id, phone_number, status, error, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		call.ID,
		call.InstanceID,
		call.RecipientID,
		call.PhoneNumber,
		call.Status,
		errMsg,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to create escalation call: %w", err)
	}

	return nil
}

// List retrieves escalation calls matching the given filters.
func (r *EscalationCallRepository) List(ctx context.Context, filters secondary.EscalationCallFilters) ([]*secondary.EscalationCallRecord, error) {
	query := `SELECT id, instance_id, recipient_id, phone_number, status, error, created_at FROM escalation_calls WHERE 1=1`
	args := []any{}

	if filters.Status != "" {
		query += " AND status = ?"
		args = append(args, filters.Status)
	}

	if filters.RecipientID != "" {
		query += " AND recipient_id = ?"
		args = append(args, filters.RecipientID)
	}

	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list escalation calls: %w", err)
	}
	defer rows.Close()

	var calls []*secondary.EscalationCallRecord
	for rows.Next() {
		var (
			errMsg    sql.NullString
			createdAt time.Time
		)

		record := &secondary.EscalationCallRecord{}
		err := rows.Scan(&record.ID, &record.InstanceID, &record.RecipientID, &record.PhoneNumber, &record.Status, &errMsg, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan escalation call: %w", err)
		}
		record.Error = errMsg.String
		record.CreatedAt = createdAt.Format(time.RFC3339)

		calls = append(calls, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate escalation calls: %w", err)
	}

	return calls, nil
}

// GetNextID returns the next available escalation call ID.
func (r *EscalationCallRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("ESC-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM escalation_calls", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next escalation call ID: %w", err)
	}

	return fmt.Sprintf("ESC-%03d", maxID+1), nil
}

// UpdateStatus records the outcome of a call.
func (r *EscalationCallRepository) UpdateStatus(ctx context.Context, id, status, errMsg string) error {
	var msg sql.NullString
	if errMsg != "" {
		msg = sql.NullString{String: errMsg, Valid: true}
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE escalation_calls SET status = ?, error = ? WHERE id = ?",
		status, msg, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update escalation call status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("escalation call %s %w", id, secondary.ErrNotFound)
	}

	return nil
}

// Ensure EscalationCallRepository implements the interface
var _ secondary.EscalationCallRepository = (*EscalationCallRepository)(nil)
