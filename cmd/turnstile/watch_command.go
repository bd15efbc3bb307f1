package main

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/spf13/cobra"

	"turnstile/internal/ipc"
)

func newWatchCommand(ctx *commandContext) *cobra.Command {
	var tailCount int
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Follow the broadcast stream",
		Long:  "Prints recent broadcast lines and then follows new ones until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				stdout := cmd.OutOrStdout()

				resp, err := client.Events(ipc.EventsRequest{Tail: true, Limit: tailCount})
				if err != nil {
					return err
				}
				printEvents(stdout, resp.Events)
				cursor := resp.Next

				for {
					if err := cmd.Context().Err(); err != nil {
						return err
					}
					resp, err := client.Events(ipc.EventsRequest{
						Since:      cursor,
						Limit:      200,
						Follow:     true,
						WaitMillis: 2000,
					})
					if err != nil {
						if isConnectionClosed(err) {
							fmt.Fprintln(stdout, "Daemon connection closed")
							return nil
						}
						return err
					}
					printEvents(stdout, resp.Events)
					if resp.Next > cursor {
						cursor = resp.Next
					}
				}
			})
		},
	}
	cmd.Flags().IntVar(&tailCount, "tail", 10, "Number of recent lines to print before following")
	return cmd
}

func printEvents(w io.Writer, events []ipc.Event) {
	for _, event := range events {
		fmt.Fprintf(w, "%s  %s\n", event.Timestamp, event.Text)
	}
}

func isConnectionClosed(err error) bool {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, net.ErrClosed) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
