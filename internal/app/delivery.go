package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/example/mediminder/internal/core/reminder"
	"github.com/example/mediminder/internal/lock"
	"github.com/example/mediminder/internal/ports/secondary"
)

// DeliveryOutcome is what a single Deliver call did.
type DeliveryOutcome string

const (
	DeliverySent        DeliveryOutcome = "sent"
	DeliverySkipped     DeliveryOutcome = "skipped"
	DeliveryUnreachable DeliveryOutcome = "unreachable"
	DeliveryFailed      DeliveryOutcome = "send_failed"
)

// DeliveryWorker sends the reminder for one pending instance.
type DeliveryWorker struct {
	instances secondary.InstanceRepository
	schedules secondary.ScheduleRepository
	transport secondary.NotificationTransport
	operator  secondary.OperatorNotifier
	locks     *lock.KeyedMutex
	retry     reminder.RetryPolicy
	cfg       EngineConfig
	sleep     Sleeper
	clock     Clock
	logger    *slog.Logger
}

// NewDeliveryWorker creates a DeliveryWorker. operator may be nil.
func NewDeliveryWorker(
	instances secondary.InstanceRepository,
	schedules secondary.ScheduleRepository,
	transport secondary.NotificationTransport,
	operator secondary.OperatorNotifier,
	locks *lock.KeyedMutex,
	retry reminder.RetryPolicy,
	cfg EngineConfig,
	sleep Sleeper,
	clock Clock,
	logger *slog.Logger,
) *DeliveryWorker {
	return &DeliveryWorker{
		instances: instances,
		schedules: schedules,
		transport: transport,
		operator:  operator,
		locks:     locks,
		retry:     retry,
		cfg:       cfg,
		sleep:     sleep,
		clock:     clock,
		logger:    logger,
	}
}

// Deliver sends the reminder for instanceID if it is still pending and its
// schedule is active. It holds the instance lock for the whole attempt, so a
// timer-driven and a tick-driven delivery of the same row cannot both send.
func (w *DeliveryWorker) Deliver(ctx context.Context, instanceID string) (DeliveryOutcome, error) {
	w.locks.Lock(instanceID)
	defer w.locks.Unlock(instanceID)

	inst, err := w.instances.GetByID(ctx, instanceID)
	if err != nil {
		return DeliverySkipped, fmt.Errorf("failed to load reminder: %w", err)
	}
	schedule, err := w.schedules.GetByID(ctx, inst.ScheduleID)
	if err != nil {
		return DeliverySkipped, fmt.Errorf("failed to load medication %s: %w", inst.ScheduleID, err)
	}

	status, err := reminder.ParseStatus(inst.Status)
	if err != nil {
		return DeliverySkipped, err
	}
	guard := reminder.CanDeliver(reminder.DeliveryContext{
		InstanceID:     inst.ID,
		Status:         status,
		ScheduleActive: schedule.Active,
	})
	if !guard.Allowed {
		w.logger.Debug("delivery skipped", "instance_id", inst.ID, "reason", guard.Reason)
		return DeliverySkipped, nil
	}

	log := w.logger.With("instance_id", inst.ID, "schedule_id", inst.ScheduleID, "recipient_id", inst.RecipientID)
	msg := secondary.ReminderMessage{
		InstanceID:    inst.ID,
		RecipientID:   inst.RecipientID,
		Text:          reminderText(schedule.Name, schedule.Dosage),
		SnoozeMinutes: w.cfg.snoozeMinutes(),
	}

	var sendErr error
	for attempt := 1; ; attempt++ {
		sendErr = w.transport.SendReminder(ctx, msg)
		if sendErr == nil {
			break
		}

		if errors.Is(sendErr, secondary.ErrRecipientUnreachable) {
			return w.handleUnreachable(ctx, log, inst.RecipientID, sendErr)
		}

		if !w.retry.ShouldRetry(attempt) {
			break
		}
		delay := w.retry.Delay(attempt)
		log.Warn("reminder send failed, retrying", "attempt", attempt, "delay", delay, "error", sendErr)
		if err := w.sleep(ctx, delay); err != nil {
			// Shutdown: the row stays pending and the next tick picks it up.
			return DeliverySkipped, err
		}
	}

	if sendErr != nil {
		return w.markSendFailed(ctx, log, inst, sendErr)
	}

	now := w.clock()
	result, err := reminder.ApplyTransition(reminder.StatusPending, reminder.StatusSent, now, 0)
	if err != nil {
		return DeliverySkipped, err
	}
	ok, err := w.instances.UpdateStatus(ctx, inst.ID, string(result.From), secondary.StatusUpdate{
		Status: string(result.NewStatus),
		At:     now,
	})
	if err != nil {
		return DeliverySent, fmt.Errorf("reminder sent but status not recorded: %w", err)
	}
	if !ok {
		log.Warn("reminder sent but row left pending state concurrently")
	}
	log.Info("reminder sent", "snooze_count", inst.SnoozeCount)
	return DeliverySent, nil
}

func (w *DeliveryWorker) handleUnreachable(ctx context.Context, log *slog.Logger, recipientID string, sendErr error) (DeliveryOutcome, error) {
	n, err := w.schedules.DeactivateRecipient(ctx, recipientID)
	if err != nil {
		return DeliveryUnreachable, fmt.Errorf("failed to deactivate unreachable recipient: %w", err)
	}
	log.Warn("recipient unreachable, schedules deactivated", "deactivated", n, "error", sendErr)
	w.alert(ctx, unreachableOperatorText(recipientID, n))
	return DeliveryUnreachable, nil
}

func (w *DeliveryWorker) markSendFailed(ctx context.Context, log *slog.Logger, inst *secondary.InstanceRecord, sendErr error) (DeliveryOutcome, error) {
	now := w.clock()
	result, err := reminder.ApplyTransition(reminder.StatusPending, reminder.StatusSendFailed, now, 0)
	if err != nil {
		return DeliveryFailed, err
	}
	if _, err := w.instances.UpdateStatus(ctx, inst.ID, string(result.From), secondary.StatusUpdate{
		Status: string(result.NewStatus),
		At:     now,
	}); err != nil {
		return DeliveryFailed, fmt.Errorf("failed to record send failure: %w", err)
	}
	log.Error("reminder delivery failed after retries", "attempts", w.retry.MaxAttempts, "error", sendErr)
	w.alert(ctx, sendFailedOperatorText(inst.ID, inst.RecipientID, sendErr))
	return DeliveryFailed, nil
}

func (w *DeliveryWorker) alert(ctx context.Context, text string) {
	if w.operator == nil {
		return
	}
	if err := w.operator.NotifyOperator(ctx, text); err != nil {
		w.logger.Warn("operator alert failed", "error", err)
	}
}
