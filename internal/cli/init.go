package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/mediminder/internal/config"
	"github.com/example/mediminder/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config and initialize the database",
		Long: `Write a default configuration file (unless one exists) and create the
mediminder database with the required schema.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := wire.ConfigPath()

			_, statErr := os.Stat(path)
			if statErr == nil && !force {
				fmt.Printf("Config already exists at %s (use --force to overwrite)\n", path)
			} else {
				if err := config.SaveConfig(path, config.DefaultConfig()); err != nil {
					return err
				}
				fmt.Printf("✓ Wrote default config to %s\n", path)
			}

			cfg := wire.Config()
			wire.DB()
			fmt.Printf("✓ Database initialized at %s\n", cfg.Database.Path)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Printf("  set telegram.token in %s (or export %s)\n", path, config.EnvTelegramToken)
			fmt.Println("  mediminder serve")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}
