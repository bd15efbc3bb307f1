package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"turnstile/internal/ipc"
)

func newResetCommand(ctx *commandContext) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset all queues, counters, and the persisted snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !force {
				return fmt.Errorf("reset discards all queue state; rerun with --force to confirm")
			}
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Reset(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "All queues reset")
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Confirm the reset")
	return cmd
}

func newStopCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the turnstile daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				if _, err := client.Stop(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon stopped")
				return nil
			})
		},
	}
}
