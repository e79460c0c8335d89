package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fundtrack/transfers/internal/source"
)

func newExportCommand() *cobra.Command {
	var inputFormat string
	var output string

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Convert a transfer ledger to the CSV ledger format",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return runExport(cmd.Context(), cmd.OutOrStdout(), args[0], inputFormat)
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("creating %s: %w", output, err)
			}
			if err := runExport(cmd.Context(), f, args[0], inputFormat); err != nil {
				f.Close()
				return err
			}
			return f.Close()
		},
	}

	cmd.Flags().StringVar(&inputFormat, "input-format", "", "ledger format (csv, json); default by extension")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to this file instead of stdout")

	return cmd
}

func runExport(ctx context.Context, out io.Writer, path, inputFormat string) error {
	records, err := source.NewFileSource(inputFormat).Load(ctx, path)
	if err != nil {
		return fmt.Errorf("could not load transfers: %w", err)
	}
	if err := source.WriteRecords(out, records); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}
	return nil
}
