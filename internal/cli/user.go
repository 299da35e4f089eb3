package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/mediminder/internal/wire"
)

// UserCmd returns the user command group
func UserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage recipients",
		Long:  "Register recipients (Telegram chat IDs) and set their escalation phone numbers.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [recipient-id]",
		Short: "Register a recipient",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ScheduleAdapter().Register(cmd.Context(), args[0])
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "phone [recipient-id] [+number]",
		Short: "Set the number used for call escalations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.ScheduleAdapter().SetPhone(cmd.Context(), args[0], args[1])
		},
	})

	return cmd
}
