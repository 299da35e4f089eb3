// Package reminder contains the pure business logic for due-instance reminders.
// This is part of the Functional Core - no I/O, only pure functions.
package reminder

import "fmt"

// Status represents the possible states of a due instance.
type Status string

const (
	StatusPending       Status = "pending"
	StatusSent          Status = "sent"
	StatusAcknowledged  Status = "acknowledged"
	StatusMissed        Status = "missed"
	StatusCallTriggered Status = "call_triggered"
	StatusSendFailed    Status = "send_failed"
)

// AllStatuses lists every status in lifecycle order.
var AllStatuses = []Status{
	StatusPending,
	StatusSent,
	StatusAcknowledged,
	StatusMissed,
	StatusCallTriggered,
	StatusSendFailed,
}

// ParseStatus converts a stored status string into a Status.
func ParseStatus(s string) (Status, error) {
	for _, st := range AllStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown reminder status %q", s)
}

// IsTerminal reports whether no further transition may leave this status.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusAcknowledged, StatusMissed, StatusCallTriggered, StatusSendFailed:
		return true
	}
	return false
}

// IsHandled reports whether the detector should leave an instance alone.
// Sent rows are awaiting a response; terminal rows are done.
func (s Status) IsHandled() bool {
	return s == StatusSent || s.IsTerminal()
}

func (s Status) String() string { return string(s) }

// InitialStatus returns the status of a freshly detected instance.
func InitialStatus() Status {
	return StatusPending
}

// Action is a recipient response to a delivered reminder.
type Action string

const (
	ActionAcknowledge Action = "ack"
	ActionSnooze      Action = "snooze"
)

// ParseAction accepts both the callback form ("ack") and the long form ("acknowledge").
func ParseAction(s string) (Action, error) {
	switch s {
	case "ack", "acknowledge":
		return ActionAcknowledge, nil
	case "snooze":
		return ActionSnooze, nil
	}
	return "", fmt.Errorf("unknown action %q (must be 'ack' or 'snooze')", s)
}
