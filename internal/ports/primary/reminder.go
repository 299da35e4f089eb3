// Package primary defines the primary ports (driving adapters) for the application.
// These are the use cases offered to the Telegram bot and the CLI.
package primary

import (
	"context"
	"errors"
	"time"
)

// ErrInstanceNotFound is returned when an action targets an unknown reminder.
var ErrInstanceNotFound = errors.New("reminder not found")

// ResponseService defines the primary port for recipient actions on delivered reminders.
type ResponseService interface {
	// HandleAction applies "ack" or "snooze" to an instance. Duplicate or late
	// actions are reported as OutcomeAlreadyResolved, never as errors.
	HandleAction(ctx context.Context, instanceID string, action string) (*ActionResult, error)
}

// ActionOutcome is the result reported back to the inbound collaborator.
type ActionOutcome string

const (
	OutcomeResolved          ActionOutcome = "resolved"
	OutcomeAlreadyResolved   ActionOutcome = "already_resolved"
	OutcomeMaxSnoozesReached ActionOutcome = "max_snoozes_reached"
)

// ActionResult carries the outcome plus what the caller needs to render it.
type ActionResult struct {
	Outcome       ActionOutcome
	Action        string
	Status        string // status after handling
	SnoozeCount   int
	SnoozeMinutes int
	At            time.Time
}

// ReminderService defines the primary port for reading the ledger.
type ReminderService interface {
	// GetReminder retrieves a due instance by ID.
	GetReminder(ctx context.Context, id string) (*Reminder, error)

	// ListReminders lists due instances with optional filters.
	ListReminders(ctx context.Context, filters ReminderFilters) ([]*Reminder, error)
}

// Reminder represents a due instance at the port boundary.
type Reminder struct {
	ID             string
	ScheduleID     string
	RecipientID    string
	ScheduledAt    time.Time
	RemindAt       time.Time
	Status         string
	SnoozeCount    int
	AcknowledgedAt *time.Time
	EscalatedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ReminderFilters contains filter options for listing reminders.
type ReminderFilters struct {
	ScheduleID  string
	RecipientID string
	Status      string
	Limit       int
}

// EngineService exposes the periodic handlers so they can be run on demand.
type EngineService interface {
	// RunDetection runs one detector tick.
	RunDetection(ctx context.Context) (*TickReport, error)

	// RunEscalation runs one escalation sweep.
	RunEscalation(ctx context.Context) (*TickReport, error)
}

// TickReport summarizes one run of a periodic handler.
type TickReport struct {
	Examined  int
	Created   int
	Delivered int
	Escalated int
	Missed    int
	Failed    int
}
