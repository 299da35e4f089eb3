package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/mediminder/internal/ports/primary"
)

// Engine wires the detector and the escalation sweeper onto the scheduler.
type Engine struct {
	detector  *Detector
	sweeper   *EscalationSweeper
	scheduler *Scheduler
	cfg       EngineConfig
	logger    *slog.Logger
}

// NewEngine creates an Engine.
func NewEngine(detector *Detector, sweeper *EscalationSweeper, scheduler *Scheduler, cfg EngineConfig, logger *slog.Logger) *Engine {
	return &Engine{
		detector:  detector,
		sweeper:   sweeper,
		scheduler: scheduler,
		cfg:       cfg,
		logger:    logger,
	}
}

// RunDetection runs one detector tick.
func (e *Engine) RunDetection(ctx context.Context) (*primary.TickReport, error) {
	return e.detector.Tick(ctx)
}

// RunEscalation runs one escalation sweep.
func (e *Engine) RunEscalation(ctx context.Context) (*primary.TickReport, error) {
	return e.sweeper.Sweep(ctx)
}

// Start registers both periodic tasks and starts the scheduler. A detection
// pass runs immediately so instances due during downtime are not skipped
// when the process restarts inside their trigger window.
func (e *Engine) Start(ctx context.Context) error {
	tasks := []PeriodicTask{
		{Name: "detect", Interval: e.cfg.DetectorInterval, Run: e.logged("detect", e.RunDetection)},
		{Name: "escalate", Interval: e.cfg.EscalationInterval, Run: e.logged("escalate", e.RunEscalation)},
	}
	for _, task := range tasks {
		if _, err := e.scheduler.Every(task); err != nil {
			return fmt.Errorf("failed to register %s task: %w", task.Name, err)
		}
	}
	e.scheduler.Start(ctx)
	if err := e.logged("detect", e.RunDetection)(ctx); err != nil {
		e.logger.Error("initial detection failed", "error", err)
	}
	e.logger.Info("engine started",
		"detector_interval", e.cfg.DetectorInterval,
		"escalation_interval", e.cfg.EscalationInterval,
		"trigger_window", e.cfg.TriggerWindow,
		"escalation_delay", e.cfg.EscalationDelay,
	)
	return nil
}

// Stop stops the scheduler, waiting for in-flight runs or ctx.
func (e *Engine) Stop(ctx context.Context) {
	e.scheduler.Stop(ctx)
	e.logger.Info("engine stopped")
}

func (e *Engine) logged(name string, run func(context.Context) (*primary.TickReport, error)) func(context.Context) error {
	return func(ctx context.Context) error {
		report, err := run(ctx)
		if err != nil {
			return err
		}
		if report.Examined > 0 {
			e.logger.Info("tick complete", "task", name,
				"examined", report.Examined,
				"created", report.Created,
				"delivered", report.Delivered,
				"escalated", report.Escalated,
				"missed", report.Missed,
				"failed", report.Failed,
			)
		}
		return nil
	}
}

// Ensure Engine implements the interface
var _ primary.EngineService = (*Engine)(nil)
