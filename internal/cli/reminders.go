package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/mediminder/internal/ctxutil"
	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/wire"
)

// RemindersCmd returns the reminders command group
func RemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reminders",
		Short: "Inspect and answer due reminders",
	}
	cmd.AddCommand(remindersListCmd())
	cmd.AddCommand(remindersShowCmd())
	cmd.AddCommand(remindersActionCmd("ack", "Mark a reminder as taken"))
	cmd.AddCommand(remindersActionCmd("snooze", "Snooze a reminder"))
	return cmd
}

func remindersListCmd() *cobra.Command {
	var filters primary.ReminderFilters

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List due reminders, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ReminderAdapter().List(cmd.Context(), filters)
		},
	}

	cmd.Flags().StringVar(&filters.Status, "status", "", "Filter by status (pending, sent, acknowledged, missed, call_triggered, send_failed)")
	cmd.Flags().StringVar(&filters.RecipientID, "recipient", "", "Filter by recipient")
	cmd.Flags().StringVar(&filters.ScheduleID, "schedule", "", "Filter by schedule")
	cmd.Flags().IntVarP(&filters.Limit, "limit", "n", 50, "Maximum rows (0 for all)")
	return cmd
}

func remindersShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [reminder-id]",
		Short: "Show reminder details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ReminderAdapter().Show(cmd.Context(), args[0])
		},
	}
}

func remindersActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " [reminder-id]",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := ctxutil.WithActor(cmd.Context(), "cli")
			return wire.ReminderAdapter().Respond(ctx, args[0], action)
		},
	}
}
