package primary

import (
	"context"
	"errors"
)

// ErrInvalidPhone is returned (wrapped) when a contact number is rejected.
var ErrInvalidPhone = errors.New("invalid phone number")

// ScheduleService defines the primary port for medication schedule management.
type ScheduleService interface {
	// AddSchedule creates a daily medication schedule for a recipient.
	AddSchedule(ctx context.Context, req AddScheduleRequest) (*Schedule, error)

	// ListSchedules lists a recipient's active schedules.
	ListSchedules(ctx context.Context, recipientID string) ([]*Schedule, error)

	// DeactivateSchedule stops future reminders for one schedule.
	DeactivateSchedule(ctx context.Context, scheduleID string) error
}

// AddScheduleRequest is the short-lived input gathered by a chat or CLI dialog.
type AddScheduleRequest struct {
	RecipientID string
	Name        string
	Dosage      string
	TimesOfDay  string // comma-separated HH:MM
}

// Schedule represents a medication schedule at the port boundary.
type Schedule struct {
	ID          string
	RecipientID string
	Name        string
	Dosage      string
	TimesOfDay  []string
	Active      bool
	CreatedAt   string
}

// RecipientService defines the primary port for recipient registration.
type RecipientService interface {
	// Register creates the recipient if needed.
	Register(ctx context.Context, recipientID string) error

	// SetPhone validates and stores the escalation contact number.
	SetPhone(ctx context.Context, recipientID, phone string) error

	// GetRecipient retrieves a recipient.
	GetRecipient(ctx context.Context, recipientID string) (*Recipient, error)
}

// Recipient represents a recipient at the port boundary.
type Recipient struct {
	ID          string
	PhoneNumber string // May be empty
	CreatedAt   string
}

// EscalationCallService defines the primary port for reviewing escalation calls.
type EscalationCallService interface {
	// ListCalls lists escalation calls with optional filters.
	ListCalls(ctx context.Context, filters EscalationCallFilters) ([]*EscalationCall, error)
}

// EscalationCall represents a queued escalation call at the port boundary.
type EscalationCall struct {
	ID          string
	InstanceID  string
	RecipientID string
	PhoneNumber string
	Status      string // 'queued', 'notified', 'failed'
	Error       string // May be empty
	CreatedAt   string
}

// EscalationCallFilters contains filter options for listing calls.
type EscalationCallFilters struct {
	Status      string
	RecipientID string
}

// Escalation call status constants
const (
	CallStatusQueued   = "queued"
	CallStatusNotified = "notified"
	CallStatusFailed   = "failed"
)
