package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/mediminder/internal/core/reminder"
	"github.com/example/mediminder/internal/lock"
	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/ports/secondary"
)

// EscalationSweeper escalates sent reminders nobody responded to.
type EscalationSweeper struct {
	instances secondary.InstanceRepository
	channel   secondary.EscalationChannel
	transport secondary.NotificationTransport
	operator  secondary.OperatorNotifier
	locks     *lock.KeyedMutex
	cfg       EngineConfig
	clock     Clock
	logger    *slog.Logger
}

// NewEscalationSweeper creates an EscalationSweeper. operator may be nil.
func NewEscalationSweeper(
	instances secondary.InstanceRepository,
	channel secondary.EscalationChannel,
	transport secondary.NotificationTransport,
	operator secondary.OperatorNotifier,
	locks *lock.KeyedMutex,
	cfg EngineConfig,
	clock Clock,
	logger *slog.Logger,
) *EscalationSweeper {
	return &EscalationSweeper{
		instances: instances,
		channel:   channel,
		transport: transport,
		operator:  operator,
		locks:     locks,
		cfg:       cfg,
		clock:     clock,
		logger:    logger,
	}
}

// Sweep escalates every sent instance scheduled before now - EscalationDelay.
// Rows with a contact number move to call_triggered and the escalation
// channel is invoked once; rows without one move to missed and the recipient
// is told to configure a number.
func (s *EscalationSweeper) Sweep(ctx context.Context) (*primary.TickReport, error) {
	now := s.clock()
	cutoff := reminder.EscalationCutoff(now, s.cfg.EscalationDelay)

	candidates, err := s.instances.ListSentOlderThan(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue reminders: %w", err)
	}

	t := &tally{}
	for _, c := range candidates {
		t.add(func(r *primary.TickReport) { r.Examined++ })
		if err := s.escalate(ctx, c, now, t); err != nil {
			s.logger.Error("escalation failed", "instance_id", c.Instance.ID, "recipient_id", c.Instance.RecipientID, "error", err)
			t.add(func(r *primary.TickReport) { r.Failed++ })
		}
	}
	return t.snapshot(), nil
}

func (s *EscalationSweeper) escalate(ctx context.Context, c *secondary.EscalationCandidate, now time.Time, t *tally) error {
	inst := c.Instance
	s.locks.Lock(inst.ID)
	defer s.locks.Unlock(inst.ID)

	log := s.logger.With("instance_id", inst.ID, "recipient_id", inst.RecipientID, "schedule_id", inst.ScheduleID)

	target := reminder.StatusCallTriggered
	if c.PhoneNumber == "" {
		target = reminder.StatusMissed
	}
	tr, err := reminder.ApplyTransition(reminder.StatusSent, target, now, 0)
	if err != nil {
		return err
	}
	ok, err := s.instances.UpdateStatus(ctx, inst.ID, string(tr.From), secondary.StatusUpdate{
		Status:      string(tr.NewStatus),
		At:          now,
		EscalatedAt: tr.EscalatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if !ok {
		log.Info("reminder answered before escalation")
		return nil
	}

	if target == reminder.StatusMissed {
		t.add(func(r *primary.TickReport) { r.Missed++ })
		log.Info("reminder missed, no contact number")
		if err := s.transport.SendText(ctx, inst.RecipientID, missedNoPhoneText(c.MedicationName)); err != nil {
			log.Warn("missed-dose notice not delivered", "error", err)
		}
		return nil
	}

	t.add(func(r *primary.TickReport) { r.Escalated++ })
	err = s.channel.Escalate(ctx, secondary.EscalationRequest{
		InstanceID:     inst.ID,
		RecipientID:    inst.RecipientID,
		PhoneNumber:    c.PhoneNumber,
		MedicationName: c.MedicationName,
	})
	if err != nil {
		// The row stays call_triggered; the failure is on the call record.
		if s.operator != nil {
			if nerr := s.operator.NotifyOperator(ctx, escalationFailedOperatorText(inst.ID, inst.RecipientID, err)); nerr != nil {
				log.Warn("operator alert failed", "error", nerr)
			}
		}
		return fmt.Errorf("escalation channel: %w", err)
	}
	log.Info("reminder escalated", "phone_number", c.PhoneNumber)
	return nil
}
