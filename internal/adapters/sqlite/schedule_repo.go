package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/mediminder/internal/ports/secondary"
)

// ScheduleRepository implements secondary.ScheduleRepository with SQLite.
// Schedules live in the medications table.
type ScheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates a new SQLite schedule repository.
func NewScheduleRepository(db *sql.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

const scheduleColumns = "id, recipient_id, name, dosage, times_of_day, is_active, created_at"

// Create persists a new schedule.
func (r *ScheduleRepository) Create(ctx context.Context, schedule *secondary.ScheduleRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO medications (id, recipient_id, name, dosage, times_of_day, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		schedule.ID,
		schedule.RecipientID,
		schedule.Name,
		schedule.Dosage,
		schedule.TimesOfDay,
		schedule.Active,
		formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("failed to create medication: %w", err)
	}

	return nil
}

// GetByID retrieves a schedule by its ID.
func (r *ScheduleRepository) GetByID(ctx context.Context, id string) (*secondary.ScheduleRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+scheduleColumns+" FROM medications WHERE id = ?",
		id,
	)
	record, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("medication %s %w", id, secondary.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get medication: %w", err)
	}
	return record, nil
}

// ListActive returns every active schedule.
func (r *ScheduleRepository) ListActive(ctx context.Context) ([]*secondary.ScheduleRecord, error) {
	return r.query(ctx, "SELECT "+scheduleColumns+" FROM medications WHERE is_active = 1 ORDER BY id")
}

// ListByRecipient returns a recipient's schedules, optionally only active ones.
func (r *ScheduleRepository) ListByRecipient(ctx context.Context, recipientID string, activeOnly bool) ([]*secondary.ScheduleRecord, error) {
	query := "SELECT " + scheduleColumns + " FROM medications WHERE recipient_id = ?"
	if activeOnly {
		query += " AND is_active = 1"
	}
	query += " ORDER BY id"
	return r.query(ctx, query, recipientID)
}

func (r *ScheduleRepository) query(ctx context.Context, query string, args ...any) ([]*secondary.ScheduleRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}
	defer rows.Close()

	var schedules []*secondary.ScheduleRecord
	for rows.Next() {
		record, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan medication: %w", err)
		}
		schedules = append(schedules, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate medications: %w", err)
	}

	return schedules, nil
}

// Deactivate marks a single schedule inactive.
func (r *ScheduleRepository) Deactivate(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE medications SET is_active = 0 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to deactivate medication: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("medication %s %w", id, secondary.ErrNotFound)
	}

	return nil
}

// DeactivateRecipient marks all schedules of a recipient inactive.
func (r *ScheduleRepository) DeactivateRecipient(ctx context.Context, recipientID string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE medications SET is_active = 0 WHERE recipient_id = ? AND is_active = 1",
		recipientID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate medications for recipient %s: %w", recipientID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rowsAffected), nil
}

// GetNextID returns the next available schedule ID.
func (r *ScheduleRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	prefixLen := len("MED-") + 1
	err := r.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT COALESCE(MAX(CAST(SUBSTR(id, %d) AS INTEGER)), 0) FROM medications", prefixLen),
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next medication ID: %w", err)
	}

	return fmt.Sprintf("MED-%03d", maxID+1), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(s rowScanner) (*secondary.ScheduleRecord, error) {
	var createdAt time.Time
	record := &secondary.ScheduleRecord{}
	err := s.Scan(&record.ID, &record.RecipientID, &record.Name, &record.Dosage, &record.TimesOfDay, &record.Active, &createdAt)
	if err != nil {
		return nil, err
	}
	record.CreatedAt = createdAt.Format(time.RFC3339)
	return record, nil
}

// Ensure ScheduleRepository implements the interface
var _ secondary.ScheduleRepository = (*ScheduleRepository)(nil)
