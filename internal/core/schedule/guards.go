// Package schedule contains the pure business logic for medication schedules and recipients.
// Guards are pure functions that evaluate preconditions without side effects.
package schedule

import (
	"fmt"
	"strings"

	"github.com/example/mediminder/internal/core/reminder"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// CreateScheduleContext provides context for schedule creation guards.
type CreateScheduleContext struct {
	RecipientID     string
	RecipientExists bool
	Name            string
	TimesOfDay      string // raw comma-separated HH:MM list
}

// CanCreateSchedule evaluates whether a medication schedule can be created.
// Rules:
// - Recipient must exist
// - Name must not be empty
// - Times must parse to a non-empty set of valid HH:MM values
func CanCreateSchedule(ctx CreateScheduleContext) GuardResult {
	if !ctx.RecipientExists {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("recipient %s not found. Register first with /start", ctx.RecipientID),
		}
	}

	if strings.TrimSpace(ctx.Name) == "" {
		return GuardResult{
			Allowed: false,
			Reason:  "medication name cannot be empty",
		}
	}

	if _, err := reminder.ParseTimesOfDay(ctx.TimesOfDay); err != nil {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("invalid times %q: %v. Use HH:MM, comma-separated (e.g. 08:30,19:00)", ctx.TimesOfDay, err),
		}
	}

	return GuardResult{Allowed: true}
}

// CanSetPhone evaluates whether a contact number is acceptable for call escalation.
// Rules:
// - Must start with "+"
// - Remaining characters must be digits, more than six of them
func CanSetPhone(phone string) GuardResult {
	digits := strings.TrimPrefix(phone, "+")
	valid := strings.HasPrefix(phone, "+") && len(phone) > 7
	for _, r := range digits {
		if r < '0' || r > '9' {
			valid = false
			break
		}
	}
	if !valid {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("%q doesn't look like a valid phone number (e.g. +1234567890)", phone),
		}
	}
	return GuardResult{Allowed: true}
}
