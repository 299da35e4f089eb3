package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/example/mediminder/internal/ports/primary"
)

// ScheduleAdapter translates CLI operations to the schedule and recipient services.
type ScheduleAdapter struct {
	schedules  primary.ScheduleService
	recipients primary.RecipientService
	out        io.Writer
}

func NewScheduleAdapter(schedules primary.ScheduleService, recipients primary.RecipientService, out io.Writer) *ScheduleAdapter {
	return &ScheduleAdapter{
		schedules:  schedules,
		recipients: recipients,
		out:        out,
	}
}

// Add creates a schedule.
func (a *ScheduleAdapter) Add(ctx context.Context, req primary.AddScheduleRequest) error {
	s, err := a.schedules.AddSchedule(ctx, req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Created schedule %s: %s (%s) at %s\n", s.ID, s.Name, s.Dosage, strings.Join(s.TimesOfDay, ", "))
	return nil
}

// List lists a recipient's active schedules.
func (a *ScheduleAdapter) List(ctx context.Context, recipientID string) error {
	scheds, err := a.schedules.ListSchedules(ctx, recipientID)
	if err != nil {
		return fmt.Errorf("failed to list schedules: %w", err)
	}

	if len(scheds) == 0 {
		fmt.Fprintf(a.out, "No active medications for %s\n", recipientID)
		return nil
	}

	fmt.Fprintf(a.out, "\n%-9s %-20s %-15s %s\n", "ID", "NAME", "DOSAGE", "TIMES")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, s := range scheds {
		fmt.Fprintf(a.out, "%-9s %-20s %-15s %s\n", s.ID, s.Name, s.Dosage, strings.Join(s.TimesOfDay, ","))
	}
	fmt.Fprintln(a.out)
	return nil
}

// Deactivate stops a schedule.
func (a *ScheduleAdapter) Deactivate(ctx context.Context, scheduleID string) error {
	if err := a.schedules.DeactivateSchedule(ctx, scheduleID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Schedule %s deactivated\n", scheduleID)
	return nil
}

// Register adds a recipient.
func (a *ScheduleAdapter) Register(ctx context.Context, recipientID string) error {
	if err := a.recipients.Register(ctx, recipientID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Recipient %s registered\n", recipientID)
	return nil
}

// SetPhone stores a recipient's escalation number.
func (a *ScheduleAdapter) SetPhone(ctx context.Context, recipientID, phone string) error {
	if err := a.recipients.SetPhone(ctx, recipientID, phone); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "✓ Phone number %s saved for %s\n", phone, recipientID)
	return nil
}

// CallAdapter prints the escalation call queue.
type CallAdapter struct {
	calls primary.EscalationCallService
	out   io.Writer
}

func NewCallAdapter(calls primary.EscalationCallService, out io.Writer) *CallAdapter {
	return &CallAdapter{calls: calls, out: out}
}

func (a *CallAdapter) List(ctx context.Context, filters primary.EscalationCallFilters) error {
	calls, err := a.calls.ListCalls(ctx, filters)
	if err != nil {
		return fmt.Errorf("failed to list calls: %w", err)
	}

	if len(calls) == 0 {
		fmt.Fprintln(a.out, "No escalation calls found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-9s %-12s %-16s %-9s %s\n", "ID", "RECIPIENT", "PHONE", "STATUS", "CREATED")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, c := range calls {
		status := fmt.Sprintf("%-9s", c.Status)
		if c.Status == primary.CallStatusFailed {
			status = color.New(color.FgRed).Sprint(status)
		}
		fmt.Fprintf(a.out, "%-9s %-12s %-16s %s %s\n", c.ID, c.RecipientID, c.PhoneNumber, status, c.CreatedAt)
		if c.Error != "" {
			fmt.Fprintf(a.out, "          error: %s\n", c.Error)
		}
	}
	fmt.Fprintln(a.out)
	return nil
}

// EngineAdapter runs the periodic handlers once from the command line.
type EngineAdapter struct {
	engine primary.EngineService
	out    io.Writer
}

func NewEngineAdapter(engine primary.EngineService, out io.Writer) *EngineAdapter {
	return &EngineAdapter{engine: engine, out: out}
}

func (a *EngineAdapter) Detect(ctx context.Context) error {
	r, err := a.engine.RunDetection(ctx)
	if err != nil {
		return fmt.Errorf("detector tick failed: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Detector: %d schedules examined, %d created, %d delivered, %d failed\n",
		r.Examined, r.Created, r.Delivered, r.Failed)
	return nil
}

func (a *EngineAdapter) Escalate(ctx context.Context) error {
	r, err := a.engine.RunEscalation(ctx)
	if err != nil {
		return fmt.Errorf("escalation sweep failed: %w", err)
	}
	fmt.Fprintf(a.out, "✓ Escalation: %d examined, %d escalated, %d missed, %d failed\n",
		r.Examined, r.Escalated, r.Missed, r.Failed)
	return nil
}
