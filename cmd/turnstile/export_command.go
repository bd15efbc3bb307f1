package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"turnstile/internal/config"
	"turnstile/internal/ipc"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var asCSV bool
	var outputPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "List every waiting ticket across stations",
		Long:  "Renders a table on a terminal and CSV otherwise. Use --csv to force CSV or --output to write a file.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Export()
				if err != nil {
					return err
				}

				if outputPath != "" {
					expanded, err := config.ExpandPath(outputPath)
					if err != nil {
						return err
					}
					file, err := os.Create(expanded)
					if err != nil {
						return fmt.Errorf("create export file: %w", err)
					}
					defer file.Close()
					if err := writeExportCSV(file, resp); err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d rows to %s\n", len(resp.Rows), expanded)
					return nil
				}

				stdout := cmd.OutOrStdout()
				if asCSV || !isTerminal(stdout) {
					return writeExportCSV(stdout, resp)
				}

				rows := make([][]string, 0, len(resp.Rows))
				for _, row := range resp.Rows {
					rows = append(rows, []string{row.Service, row.Number})
				}
				fmt.Fprintln(stdout, renderTable(
					[]string{"Service", "Number"},
					rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&asCSV, "csv", false, "Emit CSV even on a terminal")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Write CSV to a file instead of stdout")
	return cmd
}

func writeExportCSV(w io.Writer, resp *ipc.ExportResponse) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"Service", "Number"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range resp.Rows {
		if err := writer.Write([]string{row.Service, row.Number}); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}
