package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/mediminder/internal/wire"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the reminder engine and the Telegram bot",
		Long: `Run the reminder engine in the foreground: the detector and escalation
sweeper run on their configured intervals while the Telegram bot handles
commands and reminder responses. Stops on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.Close()
			return withProcessLock(wire.ServeLock(), func() error {
				return serve(cmd.Context())
			})
		},
	}
}

func serve(parent context.Context) error {
	rt, err := wire.NewRuntime()
	if err != nil {
		return err
	}
	logger := wire.Logger()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rt.Engine.Start(ctx); err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	fmt.Println("✓ mediminder running (Ctrl-C to stop)")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return rt.Bot.Run(gctx) })
	err = g.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	rt.Engine.Stop(shutdownCtx)
	logger.Info("shutdown complete", "pending_snooze_timers", rt.Timers.Pending())
	return err
}
