package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"turnstile/internal/ipc"
)

func newTakeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "take <station>",
		Short: "Take a ticket for a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Take(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Your number is %s\n", resp.Number)
				return nil
			})
		},
	}
}

func newCallCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "call <station>",
		Short: "Call the next waiting ticket at a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Call(args[0])
				if err != nil {
					return err
				}
				stdout := cmd.OutOrStdout()
				if resp.Current == nil {
					fmt.Fprintf(stdout, "No one waiting at %s\n", args[0])
					return nil
				}
				fmt.Fprintf(stdout, "Now serving %s at %s\n", *resp.Current, args[0])
				return nil
			})
		},
	}
}

func newRecallCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recall <station>",
		Short: "Re-announce the last served ticket at a station",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Recall(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Now serving %s at %s\n", resp.LastNumber, args[0])
				return nil
			})
		},
	}
}
