package reminder

import (
	"fmt"
	"time"
)

// TransitionError is returned when a status change is not allowed by the state machine.
type TransitionError struct {
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("cannot move %s instance to %s: status is terminal", e.From, e.To)
	}
	return fmt.Sprintf("illegal transition %s -> %s", e.From, e.To)
}

// legalTransitions is the complete state machine. Terminal statuses have no entry.
var legalTransitions = map[Status][]Status{
	StatusPending: {StatusSent, StatusSendFailed, StatusMissed},
	StatusSent:    {StatusAcknowledged, StatusPending, StatusMissed, StatusCallTriggered},
}

// ValidateTransition is the single authority on which status changes are legal.
func ValidateTransition(from, to Status) error {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return nil
		}
	}
	return &TransitionError{From: from, To: to}
}

// TransitionResult captures the new status plus the fields the transition sets.
type TransitionResult struct {
	From            Status
	NewStatus       Status
	AcknowledgedAt  *time.Time // set only when moving to acknowledged
	EscalatedAt     *time.Time // set only when moving to call_triggered
	SnoozeIncrement bool       // set only when a snooze sends the row back to pending
	RemindAt        *time.Time // next delivery target after a snooze
}

// ApplyTransition validates a transition and computes the side fields it carries.
// The caller passes the current time to enable testing; snoozeFor is only
// consulted for sent -> pending.
func ApplyTransition(from, to Status, now time.Time, snoozeFor time.Duration) (TransitionResult, error) {
	if err := ValidateTransition(from, to); err != nil {
		return TransitionResult{}, err
	}

	result := TransitionResult{From: from, NewStatus: to}
	switch {
	case to == StatusAcknowledged:
		result.AcknowledgedAt = &now
	case to == StatusCallTriggered:
		result.EscalatedAt = &now
	case from == StatusSent && to == StatusPending:
		remindAt := now.Add(snoozeFor)
		result.SnoozeIncrement = true
		result.RemindAt = &remindAt
	}
	return result, nil
}
