package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newWatchCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Synchronize continuously on the configured interval",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildAppContext(root)
			if err != nil {
				return err
			}
			defer app.Close()

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			return app.orch.Watch(ctx, false)
		},
	}

	return cmd
}
