package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/wire"
)

// MedCmd returns the med command group
func MedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "med",
		Short: "Manage medication schedules",
	}
	cmd.AddCommand(medAddCmd())
	cmd.AddCommand(medListCmd())
	cmd.AddCommand(medDeactivateCmd())
	return cmd
}

func medAddCmd() *cobra.Command {
	var dosage, times string

	cmd := &cobra.Command{
		Use:   "add [recipient-id] [name]",
		Short: "Add a daily medication schedule",
		Long: `Add a daily medication schedule for a registered recipient.

Examples:
  mediminder med add 100001 Aspirin --dosage "1 tablet" --times 08:00,20:00`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ScheduleAdapter().Add(cmd.Context(), primary.AddScheduleRequest{
				RecipientID: args[0],
				Name:        strings.Join(args[1:], " "),
				Dosage:      dosage,
				TimesOfDay:  times,
			})
		},
	}

	cmd.Flags().StringVarP(&dosage, "dosage", "d", "", "Dosage (e.g. 50mg)")
	cmd.Flags().StringVarP(&times, "times", "t", "", "Comma-separated HH:MM times")
	cmd.MarkFlagRequired("times")
	return cmd
}

func medListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [recipient-id]",
		Short: "List a recipient's active medications",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ScheduleAdapter().List(cmd.Context(), args[0])
		},
	}
}

func medDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate [schedule-id]",
		Short: "Stop reminders for a medication",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ScheduleAdapter().Deactivate(cmd.Context(), args[0])
		},
	}
}
