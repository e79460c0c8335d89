package report

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fundtrack/transfers/internal/model"
)

// ErrUnknownFormat is returned by Write for unsupported output formats.
var ErrUnknownFormat = errors.New("unknown report format")

// Formats lists the supported output formats.
var Formats = []string{"table", "json", "csv"}

// CSVHeader is the header row of CSV reports.
const CSVHeader = "kind,series_id,transaction_id,transacted_at,source_fund,destination_fund,amount,failed_count,missing_months"

// Write renders r to w in the named format.
func Write(w io.Writer, r *Report, format, currency string) error {
	switch strings.ToLower(format) {
	case "table", "":
		return WriteTable(w, r, currency)
	case "json":
		return WriteJSON(w, r)
	case "csv":
		return WriteCSV(w, r)
	default:
		return fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, format, strings.Join(Formats, ", "))
	}
}

// WriteJSON writes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	return nil
}

// WriteCSV writes one row per reconciled and upcoming transfer.
func WriteCSV(w io.Writer, r *Report) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(CSVHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, row := range r.Transfers {
		if err := cw.Write(csvRow(kindOf(row), row)); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	for _, row := range r.Upcoming {
		if err := cw.Write(csvRow("upcoming", row)); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func csvRow(kind string, row model.TransferRecord) []string {
	failed := ""
	if row.Analyzed {
		failed = strconv.Itoa(row.FailedCount)
	}
	return []string{
		kind,
		row.SeriesID(),
		row.TransactionID(),
		transactedAt(row),
		row.Transfer.SourceFundTypeName,
		row.Transfer.DestinationFundTypeName,
		row.Amount.StringFixed(2),
		failed,
		joinMonths(row.MissingMonths, ";"),
	}
}

// WriteTable writes an aligned plain-text report.
func WriteTable(w io.Writer, r *Report, currency string) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Transfers as of %s\n\n", r.AsOf.Format(time.DateOnly))
	fmt.Fprintf(tw, "KIND\tDATE\tFROM\tTO\tAMOUNT (%s)\tFAILED\tMISSING\n", currency)
	for _, row := range r.Transfers {
		failed := "-"
		if row.Analyzed {
			failed = strconv.Itoa(row.FailedCount)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			kindOf(row),
			transactedAt(row),
			row.Transfer.SourceFundTypeName,
			row.Transfer.DestinationFundTypeName,
			row.Amount.StringFixed(2),
			failed,
			joinMonths(row.MissingMonths, ", "),
		)
	}

	if len(r.Upcoming) > 0 {
		fmt.Fprintf(tw, "\nUPCOMING\tSTARTS\tFROM\tTO\tAMOUNT (%s)\t\t\n", currency)
		for _, row := range r.Upcoming {
			fmt.Fprintf(tw, "series %s\t%s\t%s\t%s\t%s\t\t\n",
				row.SeriesID(),
				startOf(row),
				row.Transfer.SourceFundTypeName,
				row.Transfer.DestinationFundTypeName,
				row.Amount.StringFixed(2),
			)
		}
	}

	s := r.Summary
	fmt.Fprintf(tw, "\nTotal in: %s %s (%d one-time, %d recurring)\n", s.TotalIn.StringFixed(2), currency, s.OneTime, s.Series)
	fmt.Fprintf(tw, "Missed occurrences: %d\n", s.FailedOccurrences)
	for _, issue := range r.Issues {
		fmt.Fprintf(tw, "warning: %s\n", issue)
	}

	return tw.Flush()
}

func kindOf(row model.TransferRecord) string {
	if row.IsRecurring() {
		return "recurring"
	}
	return "one-time"
}

func transactedAt(row model.TransferRecord) string {
	if row.Transaction == nil {
		return ""
	}
	return row.Transaction.TransactedAt.Format(time.DateOnly)
}

func startOf(row model.TransferRecord) string {
	if row.RecurringTransfer == nil || row.RecurringTransfer.RecurringStart == nil {
		return ""
	}
	return row.RecurringTransfer.RecurringStart.Format(time.DateOnly)
}

func joinMonths(months []time.Time, sep string) string {
	parts := make([]string, len(months))
	for i, m := range months {
		parts[i] = m.Format(time.DateOnly)
	}
	return strings.Join(parts, sep)
}
