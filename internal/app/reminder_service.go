package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/ports/secondary"
)

// ReminderServiceImpl implements the ReminderService interface.
type ReminderServiceImpl struct {
	instances secondary.InstanceRepository
}

// NewReminderService creates a new ReminderService with injected dependencies.
func NewReminderService(instances secondary.InstanceRepository) *ReminderServiceImpl {
	return &ReminderServiceImpl{instances: instances}
}

// GetReminder retrieves a due instance by ID.
func (s *ReminderServiceImpl) GetReminder(ctx context.Context, id string) (*primary.Reminder, error) {
	record, err := s.instances.GetByID(ctx, id)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", primary.ErrInstanceNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return recordToReminder(record), nil
}

// ListReminders lists due instances with optional filters.
func (s *ReminderServiceImpl) ListReminders(ctx context.Context, filters primary.ReminderFilters) ([]*primary.Reminder, error) {
	records, err := s.instances.List(ctx, secondary.InstanceFilters{
		ScheduleID:  filters.ScheduleID,
		RecipientID: filters.RecipientID,
		Status:      filters.Status,
		Limit:       filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}

	reminders := make([]*primary.Reminder, len(records))
	for i, r := range records {
		reminders[i] = recordToReminder(r)
	}
	return reminders, nil
}

func recordToReminder(r *secondary.InstanceRecord) *primary.Reminder {
	return &primary.Reminder{
		ID:             r.ID,
		ScheduleID:     r.ScheduleID,
		RecipientID:    r.RecipientID,
		ScheduledAt:    r.ScheduledAt,
		RemindAt:       r.RemindAt,
		Status:         r.Status,
		SnoozeCount:    r.SnoozeCount,
		AcknowledgedAt: r.AcknowledgedAt,
		EscalatedAt:    r.EscalatedAt,
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

// Ensure ReminderServiceImpl implements the interface
var _ primary.ReminderService = (*ReminderServiceImpl)(nil)
