package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/mediminder/internal/ports/primary"
	"github.com/example/mediminder/internal/wire"
)

// CallsCmd returns the calls command group
func CallsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "calls",
		Short: "Review escalation calls",
	}

	var filters primary.EscalationCallFilters
	list := &cobra.Command{
		Use:   "list",
		Short: "List queued escalation calls",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.CallAdapter().List(cmd.Context(), filters)
		},
	}
	list.Flags().StringVar(&filters.Status, "status", "", "Filter by status (queued, notified, failed)")
	list.Flags().StringVar(&filters.RecipientID, "recipient", "", "Filter by recipient")

	cmd.AddCommand(list)
	return cmd
}
