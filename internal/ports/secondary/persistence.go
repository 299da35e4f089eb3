// Package secondary defines the secondary ports (driven adapters) for the application.
// These are the interfaces through which the application drives external systems.
package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned (wrapped) by repositories when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned (wrapped) when an insert hits a uniqueness constraint.
var ErrAlreadyExists = errors.New("already exists")

// ScheduleRepository defines the secondary port for medication schedule persistence.
// The reminder engine only reads schedules and deactivates them; creation is
// driven by the schedule service.
type ScheduleRepository interface {
	// Create persists a new schedule.
	Create(ctx context.Context, schedule *ScheduleRecord) error

	// GetByID retrieves a schedule by its ID.
	GetByID(ctx context.Context, id string) (*ScheduleRecord, error)

	// ListActive returns every active schedule.
	ListActive(ctx context.Context) ([]*ScheduleRecord, error)

	// ListByRecipient returns a recipient's schedules, optionally only active ones.
	ListByRecipient(ctx context.Context, recipientID string, activeOnly bool) ([]*ScheduleRecord, error)

	// Deactivate marks a single schedule inactive.
	Deactivate(ctx context.Context, id string) error

	// DeactivateRecipient marks all schedules of a recipient inactive.
	// Returns the number of schedules changed.
	DeactivateRecipient(ctx context.Context, recipientID string) (int, error)

	// GetNextID returns the next available schedule ID.
	GetNextID(ctx context.Context) (string, error)
}

// ScheduleRecord represents a medication schedule as stored in persistence.
type ScheduleRecord struct {
	ID          string
	RecipientID string
	Name        string
	Dosage      string
	TimesOfDay  string // comma-separated HH:MM, sorted and distinct
	Active      bool
	CreatedAt   string
}

// InstanceRepository defines the secondary port for the due-instance ledger.
// Rows are never deleted.
type InstanceRepository interface {
	// Find returns the most recent instance for (schedule, scheduled instant), or nil.
	Find(ctx context.Context, scheduleID string, scheduledAt time.Time) (*InstanceRecord, error)

	// Create persists a new pending instance. ID must be set by the caller.
	// Wraps ErrAlreadyExists when (schedule, scheduled instant) is taken.
	Create(ctx context.Context, instance *InstanceRecord) error

	// GetByID retrieves an instance by its ID. Wraps ErrNotFound when missing.
	GetByID(ctx context.Context, id string) (*InstanceRecord, error)

	// UpdateStatus applies update only if the row is still in status from.
	// Returns false when the row was not in that status (no mutation).
	UpdateStatus(ctx context.Context, id string, from string, update StatusUpdate) (bool, error)

	// ListSentOlderThan returns sent instances scheduled before cutoff, joined
	// with medication name and the recipient's phone number.
	ListSentOlderThan(ctx context.Context, cutoff time.Time) ([]*EscalationCandidate, error)

	// ListDuePending returns pending instances of active schedules whose
	// remind_at is at or before now. This covers snoozed rows and rows left
	// pending by a process that stopped mid-delivery.
	ListDuePending(ctx context.Context, now time.Time) ([]*InstanceRecord, error)

	// List retrieves instances matching the given filters, newest first.
	List(ctx context.Context, filters InstanceFilters) ([]*InstanceRecord, error)
}

// InstanceRecord represents a due instance as stored in persistence.
type InstanceRecord struct {
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

// StatusUpdate describes a single status write on a ledger row.
type StatusUpdate struct {
	Status          string
	At              time.Time  // updated_at
	AcknowledgedAt  *time.Time // written when non-nil
	EscalatedAt     *time.Time // written when non-nil
	RemindAt        *time.Time // written when non-nil
	SnoozeIncrement bool
}

// EscalationCandidate is a stale sent instance plus what the sweeper needs to escalate it.
type EscalationCandidate struct {
	Instance       *InstanceRecord
	MedicationName string
	PhoneNumber    string // empty when the recipient has no contact number
}

// InstanceFilters contains filter options for querying instances.
type InstanceFilters struct {
	ScheduleID  string
	RecipientID string
	Status      string
	Limit       int
}

// RecipientRepository defines the secondary port for recipient (user) persistence.
type RecipientRepository interface {
	// Register creates the recipient if it does not exist yet.
	Register(ctx context.Context, id string) error

	// GetByID retrieves a recipient. Wraps ErrNotFound when missing.
	GetByID(ctx context.Context, id string) (*RecipientRecord, error)

	// SetPhone sets the contact number used for call escalation.
	SetPhone(ctx context.Context, id, phone string) error

	// Exists checks whether a recipient is registered.
	Exists(ctx context.Context, id string) (bool, error)
}

// RecipientRecord represents a recipient as stored in persistence.
type RecipientRecord struct {
	ID          string
	PhoneNumber string // Empty string means null
	CreatedAt   string
}

// EscalationCallRepository defines the secondary port for queued escalation calls.
type EscalationCallRepository interface {
	// Create persists a new call record.
	Create(ctx context.Context, call *EscalationCallRecord) error

	// GetNextID returns the next available call ID.
	GetNextID(ctx context.Context) (string, error)

	// UpdateStatus records the outcome of a call.
	UpdateStatus(ctx context.Context, id, status, errMsg string) error

	// List retrieves calls matching the given filters, newest first.
	List(ctx context.Context, filters EscalationCallFilters) ([]*EscalationCallRecord, error)
}

// EscalationCallRecord represents an escalation call as stored in persistence.
type EscalationCallRecord struct {
	ID          string
	InstanceID  string
	RecipientID string
	PhoneNumber string
	Status      string // 'queued', 'notified', 'failed'
	Error       string // Empty string means null
	CreatedAt   string
}

// EscalationCallFilters contains filter options for querying calls.
type EscalationCallFilters struct {
	Status      string
	RecipientID string
}
