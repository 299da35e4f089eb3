package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/mediminder/internal/core/reminder"
	"github.com/example/mediminder/internal/ctxutil"
	"github.com/example/mediminder/internal/lock"
	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/ports/secondary"
)

// SnoozeScheduler arms a prompt re-delivery of a snoozed instance.
type SnoozeScheduler interface {
	Arm(instanceID string, at time.Time)
}

// ResponseServiceImpl implements the ResponseService interface.
type ResponseServiceImpl struct {
	instances secondary.InstanceRepository
	locks     *lock.KeyedMutex
	timers    SnoozeScheduler
	cfg       EngineConfig
	clock     Clock
	logger    *slog.Logger
}

// NewResponseService creates a new ResponseService with injected dependencies.
// timers may be nil; the detector's snooze recovery then re-delivers.
func NewResponseService(
	instances secondary.InstanceRepository,
	locks *lock.KeyedMutex,
	timers SnoozeScheduler,
	cfg EngineConfig,
	clock Clock,
	logger *slog.Logger,
) *ResponseServiceImpl {
	return &ResponseServiceImpl{
		instances: instances,
		locks:     locks,
		timers:    timers,
		cfg:       cfg,
		clock:     clock,
		logger:    logger,
	}
}

// HandleAction applies an acknowledge or snooze to an instance.
func (s *ResponseServiceImpl) HandleAction(ctx context.Context, instanceID string, action string) (*primary.ActionResult, error) {
	act, err := reminder.ParseAction(action)
	if err != nil {
		return nil, err
	}

	s.locks.Lock(instanceID)
	defer s.locks.Unlock(instanceID)

	inst, err := s.instances.GetByID(ctx, instanceID)
	if errors.Is(err, secondary.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", primary.ErrInstanceNotFound, instanceID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load reminder: %w", err)
	}

	status, err := reminder.ParseStatus(inst.Status)
	if err != nil {
		return nil, err
	}
	rctx := reminder.ResponseContext{
		InstanceID:  inst.ID,
		Status:      status,
		SnoozeCount: inst.SnoozeCount,
		MaxSnoozes:  s.cfg.MaxSnoozes,
	}
	now := s.clock()
	log := s.logger.With("instance_id", inst.ID, "recipient_id", inst.RecipientID, "action", string(act), "actor", ctxutil.ActorFromContext(ctx))

	result := &primary.ActionResult{
		Outcome:       primary.OutcomeAlreadyResolved,
		Action:        string(act),
		Status:        inst.Status,
		SnoozeCount:   inst.SnoozeCount,
		SnoozeMinutes: s.cfg.snoozeMinutes(),
		At:            now,
	}

	var (
		target  reminder.Status
		outcome primary.ActionOutcome
	)
	switch act {
	case reminder.ActionAcknowledge:
		if guard := reminder.CanAcknowledge(rctx); !guard.Allowed {
			log.Info("acknowledge ignored", "reason", guard.Reason)
			return result, nil
		}
		target, outcome = reminder.StatusAcknowledged, primary.OutcomeResolved

	case reminder.ActionSnooze:
		decision, guard := reminder.DecideSnooze(rctx)
		switch decision {
		case reminder.SnoozeRejected:
			log.Info("snooze ignored", "reason", guard.Reason)
			return result, nil
		case reminder.SnoozeCapReached:
			log.Info("snooze cap reached", "snooze_count", inst.SnoozeCount)
			target, outcome = reminder.StatusMissed, primary.OutcomeMaxSnoozesReached
		default:
			target, outcome = reminder.StatusPending, primary.OutcomeResolved
		}
	}

	tr, err := reminder.ApplyTransition(status, target, now, s.cfg.Snooze)
	if err != nil {
		return nil, err
	}
	ok, err := s.instances.UpdateStatus(ctx, inst.ID, string(tr.From), secondary.StatusUpdate{
		Status:          string(tr.NewStatus),
		At:              now,
		AcknowledgedAt:  tr.AcknowledgedAt,
		RemindAt:        tr.RemindAt,
		SnoozeIncrement: tr.SnoozeIncrement,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update reminder: %w", err)
	}
	if !ok {
		// The row moved under us (another process); report it as handled.
		log.Info("reminder changed concurrently, action ignored")
		return result, nil
	}

	result.Outcome = outcome
	result.Status = string(tr.NewStatus)
	if tr.SnoozeIncrement {
		result.SnoozeCount++
		if s.timers != nil {
			s.timers.Arm(inst.ID, *tr.RemindAt)
		}
	}
	log.Info("reminder action applied", "status", result.Status, "snooze_count", result.SnoozeCount)
	return result, nil
}

// Ensure ResponseServiceImpl implements the interface
var _ primary.ResponseService = (*ResponseServiceImpl)(nil)
