package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/fundtrack/transfers/internal/config"
	"github.com/fundtrack/transfers/internal/runlog"
)

func newHistoryCommand() *cobra.Command {
	var configPath string
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show previous reconcile runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			return runHistory(cmd.OutOrStdout(), cfg.History.Dir, limit)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", config.FileName, "path to config file")
	cmd.Flags().IntVar(&limit, "limit", 0, "show only the most recent N runs")

	return cmd
}

func runHistory(out io.Writer, dir string, limit int) error {
	entries, err := runlog.Read(dir)
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Fprintln(out, "No reconcile runs recorded.")
		return nil
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIMESTAMP\tINPUT\tAS OF\tROWS\tSERIES\tFAILED")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n",
			e.Timestamp.Format(time.RFC3339),
			e.Input,
			e.AsOf.Format(time.DateOnly),
			e.Rows,
			e.Series,
			e.FailedOccurrences,
		)
	}
	return tw.Flush()
}
