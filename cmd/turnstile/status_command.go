package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"turnstile/internal/ipc"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon and queue status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				status, err := client.Status()
				if err != nil {
					return err
				}
				if jsonOut {
					return writeJSON(cmd, status)
				}

				stdout := cmd.OutOrStdout()
				colorize := isTerminal(stdout)

				for _, line := range renderSectionHeader("Daemon", colorize) {
					fmt.Fprintln(stdout, line)
				}
				fmt.Fprintln(stdout, renderStatusLine("Running", yesNo(status.Running)))
				fmt.Fprintln(stdout, renderStatusLine("PID", fmt.Sprintf("%d", status.PID)))
				fmt.Fprintln(stdout, renderStatusLine("Snapshot", status.SnapshotPath))
				fmt.Fprintln(stdout, renderStatusLine("Lock", status.LockPath))
				if status.APIAddr != "" {
					fmt.Fprintln(stdout, renderStatusLine("API", status.APIAddr))
				}
				fmt.Fprintln(stdout, renderStatusLine("Observers", fmt.Sprintf("%d", status.Subscribers)))
				fmt.Fprintln(stdout)

				for _, line := range renderSectionHeader("Queues", colorize) {
					fmt.Fprintln(stdout, line)
				}
				rows := make([][]string, 0, len(status.Stations))
				for _, station := range status.Stations {
					serving := "-"
					if station.Current != nil {
						serving = *station.Current
					}
					waiting := "-"
					if len(station.Waiting) > 0 {
						waiting = strings.Join(station.Waiting, " ")
					}
					rows = append(rows, []string{
						station.Station,
						serving,
						waiting,
						fmt.Sprintf("%d min", station.EstimatedWaitMinutes),
					})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Station", "Serving", "Waiting", "Est. Wait"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight},
				))

				fmt.Fprintln(stdout)
				fmt.Fprintln(stdout, renderStatusLine("Served", fmt.Sprintf("%d", status.TotalServed)))
				fmt.Fprintln(stdout, renderStatusLine("Waiting", fmt.Sprintf("%d", status.TotalWaiting)))
				if status.Announcement != "" {
					fmt.Fprintln(stdout, renderStatusLine("Announcement", status.Announcement))
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit status as JSON")
	return cmd
}
