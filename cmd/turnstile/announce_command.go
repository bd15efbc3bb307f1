package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"turnstile/internal/ipc"
)

func newAnnounceCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "announce [text...]",
		Short: "Show or set the announcement",
		Long:  "Without arguments prints the current announcement. With arguments joins them into the new announcement text.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()
				if len(args) == 0 {
					resp, err := client.GetAnnouncement()
					if err != nil {
						return err
					}
					if resp.Announcement == "" {
						fmt.Fprintln(stdout, "No announcement set")
						return nil
					}
					fmt.Fprintln(stdout, resp.Announcement)
					return nil
				}

				text := strings.Join(args, " ")
				resp, err := client.SetAnnouncement(text)
				if err != nil {
					return err
				}
				fmt.Fprintf(stdout, "Announcement set: %s\n", resp.Announcement)
				return nil
			})
		},
	}
}
