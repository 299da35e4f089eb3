package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/mediminder/internal/wire"
)

// processLock is the single-daemon lock shared by serve and tick.
type processLock interface {
	TryLock() error
	Unlock() error
}

// withProcessLock runs fn only when no other engine process holds fl. The
// per-reminder locks are in-process, so two engines on one database could
// deliver the same pending row twice.
func withProcessLock(fl processLock, fn func() error) error {
	if err := fl.TryLock(); err != nil {
		return fmt.Errorf("daemon running: another mediminder engine holds this database: %w", err)
	}
	defer fl.Unlock()
	return fn()
}

// TickCmd returns the tick command group, which runs one pass of a periodic handler.
func TickCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run one detector tick or escalation sweep",
		Long: `Run a periodic handler once, outside the serve loop. Useful from cron
or for debugging a schedule. Requires a Telegram token. Refuses to run while
mediminder serve holds the database.`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "detect",
		Short: "Create and deliver due reminders once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessLock(wire.ServeLock(), func() error {
				rt, err := wire.NewRuntime()
				if err != nil {
					return err
				}
				return wire.EngineAdapter(rt.Engine).Detect(cmd.Context())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "escalate",
		Short: "Escalate unanswered reminders once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withProcessLock(wire.ServeLock(), func() error {
				rt, err := wire.NewRuntime()
				if err != nil {
					return err
				}
				return wire.EngineAdapter(rt.Engine).Escalate(cmd.Context())
			})
		},
	})

	return cmd
}
