package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// SnoozeTimers keeps one pending re-delivery per snoozed instance. Timers are
// an accelerator only: if the process restarts, the detector re-delivers
// snoozed rows from remind_at.
type SnoozeTimers struct {
	scheduler *Scheduler
	deliver   func(ctx context.Context, instanceID string) (DeliveryOutcome, error)
	logger    *slog.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

// NewSnoozeTimers creates SnoozeTimers that call deliver when a timer fires.
func NewSnoozeTimers(scheduler *Scheduler, deliver func(ctx context.Context, instanceID string) (DeliveryOutcome, error), logger *slog.Logger) *SnoozeTimers {
	return &SnoozeTimers{
		scheduler: scheduler,
		deliver:   deliver,
		logger:    logger,
		entries:   make(map[string]cron.EntryID),
	}
}

// Arm schedules re-delivery of instanceID at at, replacing any earlier timer.
func (t *SnoozeTimers) Arm(instanceID string, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if old, ok := t.entries[instanceID]; ok {
		t.scheduler.Remove(old)
	}

	var id cron.EntryID
	id = t.scheduler.At(at, func(ctx context.Context) {
		t.release(instanceID, &id)
		outcome, err := t.deliver(ctx, instanceID)
		if err != nil {
			t.logger.Error("snoozed reminder delivery failed", "instance_id", instanceID, "error", err)
			return
		}
		t.logger.Debug("snooze timer fired", "instance_id", instanceID, "outcome", string(outcome))
	})
	t.entries[instanceID] = id
}

// Cancel drops the timer for instanceID, if any.
func (t *SnoozeTimers) Cancel(instanceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id, ok := t.entries[instanceID]; ok {
		t.scheduler.Remove(id)
		delete(t.entries, instanceID)
	}
}

// Pending returns the number of armed timers.
func (t *SnoozeTimers) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// release forgets a fired timer. id is read under mu because Arm assigns it
// after scheduling.
func (t *SnoozeTimers) release(instanceID string, id *cron.EntryID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if current, ok := t.entries[instanceID]; ok && current == *id {
		delete(t.entries, instanceID)
	}
	t.scheduler.Remove(*id)
}

// Ensure SnoozeTimers implements the interface
var _ SnoozeScheduler = (*SnoozeTimers)(nil)
