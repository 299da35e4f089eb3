package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/example/mediminder/internal/core/reminder"
	"github.com/example/mediminder/internal/lock"
	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/ports/secondary"
)

// Detector turns active schedules into due instances and hands them to the
// delivery worker.
type Detector struct {
	schedules secondary.ScheduleRepository
	instances secondary.InstanceRepository
	worker    *DeliveryWorker
	locks     *lock.KeyedMutex
	creations singleflight.Group
	cfg       EngineConfig
	clock     Clock
	newID     func() string
	logger    *slog.Logger
}

// NewDetector creates a Detector. newID generates instance identifiers.
func NewDetector(
	schedules secondary.ScheduleRepository,
	instances secondary.InstanceRepository,
	worker *DeliveryWorker,
	locks *lock.KeyedMutex,
	cfg EngineConfig,
	clock Clock,
	newID func() string,
	logger *slog.Logger,
) *Detector {
	return &Detector{
		schedules: schedules,
		instances: instances,
		worker:    worker,
		locks:     locks,
		cfg:       cfg,
		clock:     clock,
		newID:     newID,
		logger:    logger,
	}
}

// Tick runs one detection pass: every (schedule, time of day) whose instant
// falls inside the trigger window is looked up or created and delivered, then
// pending rows whose remind_at has passed (snoozed, or left behind by a
// stopped process) are re-delivered. Failures on one row are logged and do
// not stop the others.
func (d *Detector) Tick(ctx context.Context) (*primary.TickReport, error) {
	schedules, err := d.schedules.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active medications: %w", err)
	}

	now := d.clock()
	t := &tally{}

	g := new(errgroup.Group)
	g.SetLimit(d.concurrency())
	for _, schedule := range schedules {
		schedule := schedule
		g.Go(func() error {
			d.processSchedule(ctx, schedule, now, t)
			return nil
		})
	}
	g.Wait()

	due, err := d.instances.ListDuePending(ctx, now)
	if err != nil {
		d.logger.Error("failed to list due pending reminders", "error", err)
		return t.snapshot(), nil
	}
	g = new(errgroup.Group)
	g.SetLimit(d.concurrency())
	for _, inst := range due {
		inst := inst
		g.Go(func() error {
			t.add(func(r *primary.TickReport) { r.Examined++ })
			outcome, err := d.worker.Deliver(ctx, inst.ID)
			if err != nil {
				d.logger.Error("pending reminder delivery failed", "instance_id", inst.ID, "error", err)
			}
			t.delivered(outcome, err)
			return nil
		})
	}
	g.Wait()

	return t.snapshot(), nil
}

func (d *Detector) concurrency() int {
	if d.cfg.DeliveryConcurrency < 1 {
		return 1
	}
	return d.cfg.DeliveryConcurrency
}

func (d *Detector) processSchedule(ctx context.Context, schedule *secondary.ScheduleRecord, now time.Time, t *tally) {
	log := d.logger.With("schedule_id", schedule.ID, "recipient_id", schedule.RecipientID)

	times, err := reminder.ParseTimesOfDay(schedule.TimesOfDay)
	if err != nil {
		log.Error("medication has invalid times", "times_of_day", schedule.TimesOfDay, "error", err)
		return
	}

	for _, tod := range times {
		instant := reminder.ScheduledInstant(now, tod, d.cfg.location())
		if !reminder.InTriggerWindow(now, instant, d.cfg.TriggerWindow) {
			continue
		}
		t.add(func(r *primary.TickReport) { r.Examined++ })

		id, created, err := d.ensureInstance(ctx, schedule, instant, now)
		if err != nil {
			log.Error("failed to record due reminder", "scheduled_at", instant, "error", err)
			t.add(func(r *primary.TickReport) { r.Failed++ })
			continue
		}
		if created {
			t.add(func(r *primary.TickReport) { r.Created++ })
		}
		if id == "" {
			continue
		}

		// Delivery completes before the next time of day is considered.
		outcome, err := d.worker.Deliver(ctx, id)
		if err != nil {
			log.Error("reminder delivery failed", "instance_id", id, "error", err)
		}
		t.delivered(outcome, err)
	}
}

type ensureResult struct {
	id      string
	created bool
}

// ensureInstance returns the id of the pending instance for (schedule,
// instant), creating it if none exists. It returns an empty id when the
// instance is already sent, terminal, or snoozed to a later time.
func (d *Detector) ensureInstance(ctx context.Context, schedule *secondary.ScheduleRecord, instant, now time.Time) (string, bool, error) {
	key := schedule.ID + "@" + instant.UTC().Format(time.RFC3339)

	v, err, _ := d.creations.Do(key, func() (any, error) {
		d.locks.Lock(key)
		defer d.locks.Unlock(key)

		existing, err := d.instances.Find(ctx, schedule.ID, instant)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return ensureResult{id: d.deliverable(existing, now)}, nil
		}

		record := &secondary.InstanceRecord{
			ID:          d.newID(),
			ScheduleID:  schedule.ID,
			RecipientID: schedule.RecipientID,
			ScheduledAt: instant,
			RemindAt:    instant,
			Status:      string(reminder.InitialStatus()),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		err = d.instances.Create(ctx, record)
		if errors.Is(err, secondary.ErrAlreadyExists) {
			// Another process won the insert; use its row.
			existing, err = d.instances.Find(ctx, schedule.ID, instant)
			if err != nil {
				return nil, err
			}
			if existing == nil {
				return nil, fmt.Errorf("reminder for %s vanished after conflict", key)
			}
			return ensureResult{id: d.deliverable(existing, now)}, nil
		}
		if err != nil {
			return nil, err
		}
		d.logger.Info("due reminder recorded", "instance_id", record.ID, "schedule_id", schedule.ID, "scheduled_at", instant)
		return ensureResult{id: record.ID, created: true}, nil
	})
	if err != nil {
		return "", false, err
	}
	res := v.(ensureResult)
	return res.id, res.created, nil
}

func (d *Detector) deliverable(inst *secondary.InstanceRecord, now time.Time) string {
	status, err := reminder.ParseStatus(inst.Status)
	if err != nil || status.IsHandled() {
		return ""
	}
	if inst.SnoozeCount > 0 && inst.RemindAt.After(now) {
		return ""
	}
	return inst.ID
}
