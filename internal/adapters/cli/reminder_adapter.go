// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/example/mediminder/internal/ports/primary"
)

const timeLayout = "2006-01-02 15:04"

// ReminderAdapter translates CLI operations to ReminderService and ResponseService calls.
type ReminderAdapter struct {
	reminders primary.ReminderService
	responses primary.ResponseService
	loc       *time.Location
	out       io.Writer
}

// NewReminderAdapter creates a new ReminderAdapter.
func NewReminderAdapter(reminders primary.ReminderService, responses primary.ResponseService, loc *time.Location, out io.Writer) *ReminderAdapter {
	if loc == nil {
		loc = time.Local
	}
	return &ReminderAdapter{
		reminders: reminders,
		responses: responses,
		loc:       loc,
		out:       out,
	}
}

// List lists due instances.
func (a *ReminderAdapter) List(ctx context.Context, filters primary.ReminderFilters) error {
	reminders, err := a.reminders.ListReminders(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list reminders: %w", err)
	}

	if len(reminders) == 0 {
		fmt.Fprintln(a.out, "No reminders found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-38s %-9s %-12s %-17s %-16s %s\n", "ID", "MED", "RECIPIENT", "SCHEDULED", "STATUS", "SNOOZES")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────────────────────────────────────────")
	for _, r := range reminders {
		fmt.Fprintf(a.out, "%-38s %-9s %-12s %-17s %s %d\n",
			r.ID, r.ScheduleID, r.RecipientID, r.ScheduledAt.In(a.loc).Format(timeLayout),
			colorStatus(r.Status, 16), r.SnoozeCount)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Show displays one due instance.
func (a *ReminderAdapter) Show(ctx context.Context, id string) error {
	r, err := a.reminders.GetReminder(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get reminder: %w", err)
	}

	fmt.Fprintf(a.out, "\nReminder:  %s\n", r.ID)
	fmt.Fprintf(a.out, "Schedule:  %s\n", r.ScheduleID)
	fmt.Fprintf(a.out, "Recipient: %s\n", r.RecipientID)
	fmt.Fprintf(a.out, "Status:    %s\n", colorStatus(r.Status, 0))
	fmt.Fprintf(a.out, "Scheduled: %s\n", r.ScheduledAt.In(a.loc).Format(timeLayout))
	if !r.RemindAt.Equal(r.ScheduledAt) {
		fmt.Fprintf(a.out, "Remind at: %s\n", r.RemindAt.In(a.loc).Format(timeLayout))
	}
	fmt.Fprintf(a.out, "Snoozes:   %d\n", r.SnoozeCount)
	if r.AcknowledgedAt != nil {
		fmt.Fprintf(a.out, "Taken:     %s\n", r.AcknowledgedAt.In(a.loc).Format(timeLayout))
	}
	if r.EscalatedAt != nil {
		fmt.Fprintf(a.out, "Escalated: %s\n", r.EscalatedAt.In(a.loc).Format(timeLayout))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Respond applies ack or snooze on behalf of the recipient.
func (a *ReminderAdapter) Respond(ctx context.Context, id, action string) error {
	res, err := a.responses.HandleAction(ctx, id, action)
	if err != nil {
		return err
	}

	switch res.Outcome {
	case primary.OutcomeAlreadyResolved:
		fmt.Fprintf(a.out, "Reminder %s already handled (status: %s)\n", id, res.Status)
	case primary.OutcomeMaxSnoozesReached:
		fmt.Fprintf(a.out, "✓ Reminder %s reached the snooze limit and is now %s\n", id, colorStatus(res.Status, 0))
	default:
		if res.Status == "pending" {
			fmt.Fprintf(a.out, "✓ Reminder %s snoozed for %d minutes (%d so far)\n", id, res.SnoozeMinutes, res.SnoozeCount)
		} else {
			fmt.Fprintf(a.out, "✓ Reminder %s marked as taken\n", id)
		}
	}
	return nil
}

// colorStatus pads before colouring so escape codes don't break column alignment.
func colorStatus(status string, width int) string {
	s := fmt.Sprintf("%-*s", width, status)
	switch status {
	case "acknowledged":
		return color.New(color.FgGreen).Sprint(s)
	case "sent", "pending":
		return color.New(color.FgCyan).Sprint(s)
	case "call_triggered":
		return color.New(color.FgYellow).Sprint(s)
	case "missed", "send_failed":
		return color.New(color.FgRed).Sprint(s)
	}
	return s
}
