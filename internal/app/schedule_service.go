package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/example/mediminder/internal/core/reminder"
	"github.com/example/mediminder/internal/core/schedule"
	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/ports/secondary"
)

// ScheduleServiceImpl implements the ScheduleService interface.
type ScheduleServiceImpl struct {
	schedules  secondary.ScheduleRepository
	recipients secondary.RecipientRepository
}

// NewScheduleService creates a new ScheduleService with injected dependencies.
func NewScheduleService(schedules secondary.ScheduleRepository, recipients secondary.RecipientRepository) *ScheduleServiceImpl {
	return &ScheduleServiceImpl{
		schedules:  schedules,
		recipients: recipients,
	}
}

// AddSchedule creates a daily medication schedule for a recipient.
func (s *ScheduleServiceImpl) AddSchedule(ctx context.Context, req primary.AddScheduleRequest) (*primary.Schedule, error) {
	exists, err := s.recipients.Exists(ctx, req.RecipientID)
	if err != nil {
		return nil, fmt.Errorf("failed to check recipient: %w", err)
	}

	guardCtx := schedule.CreateScheduleContext{
		RecipientID:     req.RecipientID,
		RecipientExists: exists,
		Name:            req.Name,
		TimesOfDay:      req.TimesOfDay,
	}
	if result := schedule.CanCreateSchedule(guardCtx); !result.Allowed {
		return nil, result.Error()
	}

	// Guard already validated the list.
	times, _ := reminder.ParseTimesOfDay(req.TimesOfDay)

	id, err := s.schedules.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to generate medication ID: %w", err)
	}

	record := &secondary.ScheduleRecord{
		ID:          id,
		RecipientID: req.RecipientID,
		Name:        strings.TrimSpace(req.Name),
		Dosage:      strings.TrimSpace(req.Dosage),
		TimesOfDay:  reminder.FormatTimesOfDay(times),
		Active:      true,
	}
	if err := s.schedules.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create medication: %w", err)
	}

	created, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch created medication: %w", err)
	}
	return recordToSchedule(created), nil
}

// ListSchedules lists a recipient's active schedules.
func (s *ScheduleServiceImpl) ListSchedules(ctx context.Context, recipientID string) ([]*primary.Schedule, error) {
	records, err := s.schedules.ListByRecipient(ctx, recipientID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to list medications: %w", err)
	}

	schedules := make([]*primary.Schedule, len(records))
	for i, r := range records {
		schedules[i] = recordToSchedule(r)
	}
	return schedules, nil
}

// DeactivateSchedule stops future reminders for one schedule.
func (s *ScheduleServiceImpl) DeactivateSchedule(ctx context.Context, scheduleID string) error {
	return s.schedules.Deactivate(ctx, scheduleID)
}

func recordToSchedule(r *secondary.ScheduleRecord) *primary.Schedule {
	var times []string
	if r.TimesOfDay != "" {
		times = strings.Split(r.TimesOfDay, ",")
	}
	return &primary.Schedule{
		ID:          r.ID,
		RecipientID: r.RecipientID,
		Name:        r.Name,
		Dosage:      r.Dosage,
		TimesOfDay:  times,
		Active:      r.Active,
		CreatedAt:   r.CreatedAt,
	}
}

// Ensure ScheduleServiceImpl implements the interface
var _ primary.ScheduleService = (*ScheduleServiceImpl)(nil)
