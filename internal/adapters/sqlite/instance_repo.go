package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/mediminder/internal/ports/secondary"
)

// InstanceRepository implements secondary.InstanceRepository with SQLite.
type InstanceRepository struct {
	db *sql.DB
}

// NewInstanceRepository creates a new SQLite due-instance repository.
func NewInstanceRepository(db *sql.DB) *InstanceRepository {
	return &InstanceRepository{db: db}
}

const instanceColumns = "i.id, i.schedule_id, i.recipient_id, i.scheduled_at, i.remind_at, i.status, i.snooze_count, i.acknowledged_at, i.escalated_at, i.created_at, i.updated_at"

// Find returns the most recent instance for (schedule, scheduled instant), or nil.
func (r *InstanceRepository) Find(ctx context.Context, scheduleID string, scheduledAt time.Time) (*secondary.InstanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+instanceColumns+" FROM reminder_instances i WHERE i.schedule_id = ? AND i.scheduled_at = ? ORDER BY i.created_at DESC LIMIT 1",
		scheduleID, formatTime(scheduledAt),
	)
	record, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find reminder instance: %w", err)
	}
	return record, nil
}

// Create persists a new instance.
func (r *InstanceRepository) Create(ctx context.Context, instance *secondary.InstanceRecord) error {
	remindAt := instance.RemindAt
	if remindAt.IsZero() {
		remindAt = instance.ScheduledAt
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO reminder_instances (id, schedule_id, recipient_id, scheduled_at, remind_at, status, snooze_count, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		instance.ID,
		instance.ScheduleID,
		instance.RecipientID,
		formatTime(instance.ScheduledAt),
		formatTime(remindAt),
		instance.Status,
		instance.SnoozeCount,
		formatTime(instance.CreatedAt),
		formatTime(instance.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("reminder instance for %s at %s %w", instance.ScheduleID, formatTime(instance.ScheduledAt), secondary.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create reminder instance: %w", err)
	}

	return nil
}

// GetByID retrieves an instance by its ID.
func (r *InstanceRepository) GetByID(ctx context.Context, id string) (*secondary.InstanceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+instanceColumns+" FROM reminder_instances i WHERE i.id = ?",
		id,
	)
	record, err := scanInstance(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("reminder %s %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder instance: %w", err)
	}
	return record, nil
}

// UpdateStatus applies update only if the row is still in status from.
func (r *InstanceRepository) UpdateStatus(ctx context.Context, id string, from string, update secondary.StatusUpdate) (bool, error) {
	setClauses := []string{"status = ?", "updated_at = ?"}
	args := []any{update.Status, formatTime(update.At)}

	if update.AcknowledgedAt != nil {
		setClauses = append(setClauses, "acknowledged_at = ?")
		args = append(args, nullableTime(update.AcknowledgedAt))
	}
	if update.EscalatedAt != nil {
		setClauses = append(setClauses, "escalated_at = ?")
		args = append(args, nullableTime(update.EscalatedAt))
	}
	if update.RemindAt != nil {
		setClauses = append(setClauses, "remind_at = ?")
		args = append(args, formatTime(*update.RemindAt))
	}
	if update.SnoozeIncrement {
		setClauses = append(setClauses, "snooze_count = snooze_count + 1")
	}

	query := "UPDATE reminder_instances SET " + strings.Join(setClauses, ", ") + " WHERE id = ? AND status = ?"
	args = append(args, id, from)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update reminder instance status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected == 1, nil
}

// ListSentOlderThan returns sent instances scheduled before cutoff.
func (r *InstanceRepository) ListSentOlderThan(ctx context.Context, cutoff time.Time) ([]*secondary.EscalationCandidate, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+instanceColumns+", m.name, r.phone_number FROM reminder_instances i "+
			"JOIN medications m ON m.id = i.schedule_id "+
			"LEFT JOIN recipients r ON r.id = i.recipient_id "+
			"WHERE i.status = 'sent' AND i.scheduled_at < ? ORDER BY i.scheduled_at",
		formatTime(cutoff),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue reminders: %w", err)
	}
	defer rows.Close()

	var candidates []*secondary.EscalationCandidate
	for rows.Next() {
		var (
			name  string
			phone sql.NullString
		)
		record, err := scanInstance(rows, &name, &phone)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overdue reminder: %w", err)
		}
		candidates = append(candidates, &secondary.EscalationCandidate{
			Instance:       record,
			MedicationName: name,
			PhoneNumber:    phone.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate overdue reminders: %w", err)
	}

	return candidates, nil
}

// ListDuePending returns pending instances of active schedules whose
// remind_at is at or before now, snoozed or not.
func (r *InstanceRepository) ListDuePending(ctx context.Context, now time.Time) ([]*secondary.InstanceRecord, error) {
	return r.query(ctx,
		"SELECT "+instanceColumns+" FROM reminder_instances i "+
			"JOIN medications m ON m.id = i.schedule_id "+
			"WHERE i.status = 'pending' AND i.remind_at <= ? AND m.is_active = 1 "+
			"ORDER BY i.remind_at",
		formatTime(now),
	)
}

// List retrieves instances matching the given filters.
func (r *InstanceRepository) List(ctx context.Context, filters secondary.InstanceFilters) ([]*secondary.InstanceRecord, error) {
	query := "SELECT " + instanceColumns + " FROM reminder_instances i WHERE 1=1"
	args := []any{}

	if filters.ScheduleID != "" {
		query += " AND i.schedule_id = ?"
		args = append(args, filters.ScheduleID)
	}

	if filters.RecipientID != "" {
		query += " AND i.recipient_id = ?"
		args = append(args, filters.RecipientID)
	}

	if filters.Status != "" {
		query += " AND i.status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY i.scheduled_at DESC, i.created_at DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	return r.query(ctx, query, args...)
}

func (r *InstanceRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.InstanceRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder instances: %w", err)
	}
	defer rows.Close()

	var instances []*secondary.InstanceRecord
	for rows.Next() {
		record, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder instance: %w", err)
		}
		instances = append(instances, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder instances: %w", err)
	}

	return instances, nil
}

// scanInstance scans instanceColumns followed by any extra destinations.
func scanInstance(s rowScanner, extra ...any) (*secondary.InstanceRecord, error) {
	var acknowledgedAt, escalatedAt sql.NullTime

	record := &secondary.InstanceRecord{}
	dest := []any{
		&record.ID, &record.ScheduleID, &record.RecipientID,
		&record.ScheduledAt, &record.RemindAt, &record.Status, &record.SnoozeCount,
		&acknowledgedAt, &escalatedAt, &record.CreatedAt, &record.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	record.ScheduledAt = record.ScheduledAt.UTC()
	record.RemindAt = record.RemindAt.UTC()
	record.AcknowledgedAt = timePtr(acknowledgedAt)
	record.EscalatedAt = timePtr(escalatedAt)
	return record, nil
}

// Ensure InstanceRepository implements the interface
var _ secondary.InstanceRepository = (*InstanceRepository)(nil)
