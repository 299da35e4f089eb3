package reminder

import "fmt"

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

// ResponseContext provides context for recipient action guards.
type ResponseContext struct {
	InstanceID  string
	Status      Status
	SnoozeCount int
	MaxSnoozes  int
}

// DeliveryContext provides context for delivery guards.
type DeliveryContext struct {
	InstanceID     string
	Status         Status
	ScheduleActive bool
}

// SnoozeDecision is what a snooze request resolves to.
type SnoozeDecision int

const (
	// SnoozeRejected means the row is not awaiting a response.
	SnoozeRejected SnoozeDecision = iota
	// SnoozeAllowed means the row goes back to pending with snooze_count+1.
	SnoozeAllowed
	// SnoozeCapReached means the row is redirected to missed.
	SnoozeCapReached
)

// CanAcknowledge evaluates whether an acknowledge action applies.
// Rules:
// - Status must be "sent"
func CanAcknowledge(ctx ResponseContext) GuardResult {
	if ctx.Status != StatusSent {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("reminder %s already resolved (status: %s)", ctx.InstanceID, ctx.Status),
		}
	}
	return GuardResult{Allowed: true}
}

// DecideSnooze evaluates a snooze action.
// Rules:
// - At the cap, a sent or pending row is redirected to missed
// - Otherwise status must be "sent"
func DecideSnooze(ctx ResponseContext) (SnoozeDecision, GuardResult) {
	if ctx.SnoozeCount >= ctx.MaxSnoozes && (ctx.Status == StatusSent || ctx.Status == StatusPending) {
		return SnoozeCapReached, GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("reminder %s reached the maximum of %d snoozes", ctx.InstanceID, ctx.MaxSnoozes),
		}
	}
	if ctx.Status != StatusSent {
		return SnoozeRejected, GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("reminder %s already resolved (status: %s)", ctx.InstanceID, ctx.Status),
		}
	}
	return SnoozeAllowed, GuardResult{Allowed: true}
}

// CanDeliver evaluates whether a delivery attempt may start.
// Rules:
// - Status must be "pending"
// - Owning schedule must still be active
func CanDeliver(ctx DeliveryContext) GuardResult {
	if ctx.Status != StatusPending {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("reminder %s is not pending (current status: %s)", ctx.InstanceID, ctx.Status),
		}
	}
	if !ctx.ScheduleActive {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("schedule for reminder %s is inactive", ctx.InstanceID),
		}
	}
	return GuardResult{Allowed: true}
}
