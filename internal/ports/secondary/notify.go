package secondary

import (
	"context"
	"errors"
)

// ErrRecipientUnreachable marks a delivery failure that retrying cannot fix:
// the chat does not exist or the recipient blocked the bot.
var ErrRecipientUnreachable = errors.New("recipient unreachable")

// ReminderMessage is a reminder notification with acknowledge/snooze affordances.
type ReminderMessage struct {
	InstanceID    string
	RecipientID   string
	Text          string
	SnoozeMinutes int
}

// NotificationTransport defines the port for sending messages to recipients.
// Implementations must wrap ErrRecipientUnreachable for permanent failures;
// any other error is treated as transient.
type NotificationTransport interface {
	// SendReminder sends a reminder carrying "ack:<id>" and "snooze:<id>" actions.
	SendReminder(ctx context.Context, msg ReminderMessage) error

	// SendText sends a plain message.
	SendText(ctx context.Context, recipientID, text string) error
}

// EscalationRequest describes one escalation of a missed dose.
type EscalationRequest struct {
	InstanceID     string
	RecipientID    string
	PhoneNumber    string
	MedicationName string
}

// EscalationChannel defines the port for the fallback path of an unanswered reminder.
type EscalationChannel interface {
	// Escalate places or queues a call (or urgent message) for the request.
	Escalate(ctx context.Context, req EscalationRequest) error
}

// OperatorNotifier receives alerts about terminal failures a human should see.
type OperatorNotifier interface {
	NotifyOperator(ctx context.Context, text string) error
}
