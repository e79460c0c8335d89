package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fundtrack/transfers/internal/config"
	"github.com/fundtrack/transfers/internal/logging"
	"github.com/fundtrack/transfers/internal/report"
	"github.com/fundtrack/transfers/internal/runlog"
	"github.com/fundtrack/transfers/internal/source"
)

// now is the wall clock; tests pin it.
var now = time.Now

type reconcileOptions struct {
	configPath  string
	format      string
	today       string
	inputFormat string
	noHistory   bool
}

func newReconcileCommand() *cobra.Command {
	var opts reconcileOptions

	cmd := &cobra.Command{
		Use:   "reconcile <file>",
		Short: "Reconcile a transfer ledger and report missed recurring occurrences",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts.configPath, cmd.Flags().Changed("config"))
			if err != nil {
				return err
			}
			applyOverrides(cfg, opts)
			return runReconcile(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, args[0], !opts.noHistory)
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", config.FileName, "path to config file")
	cmd.Flags().StringVar(&opts.format, "format", "", "report format (table, json, csv)")
	cmd.Flags().StringVar(&opts.today, "today", "", "reconcile as of this date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&opts.inputFormat, "input-format", "", "ledger format (csv, json); default by extension")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "do not append to the run history")

	return cmd
}

// loadConfig reads the config at path. A missing file is only an error
// when the path was given explicitly.
func loadConfig(path string, explicit bool) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return config.Default(), nil
	}
	return nil, err
}

func applyOverrides(cfg *config.Config, opts reconcileOptions) {
	if opts.format != "" {
		cfg.Report.Format = opts.format
	}
	if opts.today != "" {
		cfg.Clock.Today = opts.today
	}
	if opts.inputFormat != "" {
		cfg.Input.Format = opts.inputFormat
	}
}

func checkFormat(format string) error {
	if !slices.Contains(report.Formats, strings.ToLower(format)) {
		return fmt.Errorf("%w: %q (want one of %s)", report.ErrUnknownFormat, format, strings.Join(report.Formats, ", "))
	}
	return nil
}

func runReconcile(ctx context.Context, out, errOut io.Writer, cfg *config.Config, path string, history bool) error {
	if err := checkFormat(cfg.Report.Format); err != nil {
		return err
	}

	today, err := cfg.Today(now())
	if err != nil {
		return err
	}

	log := logging.New(cfg.Logging.Level, cfg.Logging.Format, errOut)
	svc := report.NewService(source.NewFileSource(cfg.Input.Format), func() time.Time { return today }, log)

	rep, err := svc.Build(ctx, path)
	if err != nil {
		return err
	}

	if err := report.Write(out, rep, cfg.Report.Format, cfg.Report.Currency); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if !history || !cfg.History.Enabled {
		return nil
	}

	entry := runlog.Entry{
		Timestamp:         now().UTC().Truncate(time.Second),
		Input:             path,
		AsOf:              rep.AsOf,
		Rows:              len(rep.Transfers),
		Series:            rep.Summary.Series,
		FailedOccurrences: rep.Summary.FailedOccurrences,
	}
	if err := runlog.Append(cfg.History.Dir, []runlog.Entry{entry}); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	log.WithFields(logrus.Fields{"path": runlog.Path(cfg.History.Dir)}).Debug("recorded run")

	return nil
}
