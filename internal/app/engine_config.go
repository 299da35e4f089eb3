// Package app contains the application services: the reminder engine's
// periodic handlers plus the use cases behind the primary ports.
package app

import (
	"context"
	"time"
)

// Clock returns the current instant. Production uses time.Now.
type Clock func() time.Time

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the production Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// EngineConfig holds the engine's tunables. All values are fixed at start.
type EngineConfig struct {
	DetectorInterval    time.Duration
	TriggerWindow       time.Duration
	EscalationInterval  time.Duration
	EscalationDelay     time.Duration
	Snooze              time.Duration
	MaxSnoozes          int
	MaxSendRetries      int
	DeliveryConcurrency int
	Location            *time.Location // reference clock for times of day
}

// DefaultEngineConfig returns the engine defaults.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		DetectorInterval:    30 * time.Second,
		TriggerWindow:       time.Minute,
		EscalationInterval:  time.Minute,
		EscalationDelay:     30 * time.Minute,
		Snooze:              5 * time.Minute,
		MaxSnoozes:          3,
		MaxSendRetries:      3,
		DeliveryConcurrency: 4,
		Location:            time.Local,
	}
}

func (c EngineConfig) location() *time.Location {
	if c.Location == nil {
		return time.Local
	}
	return c.Location
}

func (c EngineConfig) snoozeMinutes() int {
	return int(c.Snooze / time.Minute)
}
