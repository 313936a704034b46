package main

import (
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"specsync/internal/model"
)

func newSyncCmd(root *rootFlags) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run one synchronization pass over all configured services",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildAppContext(root)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			report, err := app.orch.Run(ctx, force)
			if err != nil {
				return err
			}

			printReport(cmd.OutOrStdout(), report)

			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d services failed", len(failed), report.Attempted)
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Regenerate artifacts even when descriptors are unchanged")

	return cmd
}

func printReport(w io.Writer, report *model.RunReport) {
	fmt.Fprintf(w, "run %s: %d services in %s\n", report.RunID, report.Attempted, report.Duration.Round(time.Millisecond))
	for _, out := range report.Outcomes {
		switch {
		case out.Err != nil:
			fmt.Fprintf(w, "  %-20s %-12s %v\n", out.Service, out.State, out.Err)
		case out.State == model.StateDone:
			fmt.Fprintf(w, "  %-20s %-12s %d artifact(s)\n", out.Service, out.State, len(out.Artifacts))
		default:
			fmt.Fprintf(w, "  %-20s %-12s\n", out.Service, out.State)
		}
	}
}
