package app

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// PeriodicTask is a handler run every Interval.
type PeriodicTask struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs periodic tasks and one-shot jobs on a single cron instance.
// A task still running when its next tick arrives is skipped, and a panic in
// one run is recovered and logged.
type Scheduler struct {
	cron   *cron.Cron
	logger *slog.Logger

	mu  sync.RWMutex
	ctx context.Context
}

// NewScheduler creates a stopped Scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	l := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
			cron.WithLogger(l),
		),
		logger: logger,
		ctx:    context.Background(),
	}
}

// Every registers a periodic task.
func (s *Scheduler) Every(task PeriodicTask) (cron.EntryID, error) {
	if task.Interval <= 0 {
		return 0, fmt.Errorf("task %s: interval must be positive, got %s", task.Name, task.Interval)
	}
	id := s.cron.Schedule(cron.Every(task.Interval), cron.FuncJob(func() {
		start := time.Now()
		if err := task.Run(s.context()); err != nil {
			s.logger.Error("periodic task failed", "task", task.Name, "error", err)
			return
		}
		s.logger.Debug("periodic task finished", "task", task.Name, "duration", time.Since(start))
	}))
	return id, nil
}

// At registers fn to run once at (or as soon as possible after) at.
func (s *Scheduler) At(at time.Time, fn func(ctx context.Context)) cron.EntryID {
	return s.cron.Schedule(&onceAt{at: at}, cron.FuncJob(func() {
		fn(s.context())
	}))
}

// Remove drops an entry. Unknown ids are ignored.
func (s *Scheduler) Remove(id cron.EntryID) {
	s.cron.Remove(id)
}

// Start begins running jobs; ctx is passed to every run and its
// cancellation is the caller's shutdown signal.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()
	s.cron.Start()
}

// Stop stops scheduling and waits for running jobs or ctx, whichever is first.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop().Done()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("scheduler stop timed out with jobs still running")
	}
}

func (s *Scheduler) context() context.Context {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ctx
}

// onceAt is a cron.Schedule that fires a single time. cron calls Next once
// when the entry is scheduled and once after each run.
type onceAt struct {
	at        time.Time
	scheduled bool
}

func (o *onceAt) Next(now time.Time) time.Time {
	if o.scheduled {
		return time.Time{}
	}
	o.scheduled = true
	if o.at.Before(now) {
		return now
	}
	return o.at
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
