package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/mediminder/internal/wire"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load fixture recipients and medications",
		Long: `Insert two fixture recipients and three medication schedules. Existing
rows are left untouched, so the command can be run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := wire.SeedFixtures(); err != nil {
				return err
			}
			fmt.Printf("✓ Seeded fixtures into %s\n", wire.Config().Database.Path)
			return nil
		},
	})

	return cmd
}
