package runlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Entry records one reconcile run.
type Entry struct {
	Timestamp         time.Time
	Input             string
	AsOf              time.Time
	Rows              int
	Series            int
	FailedOccurrences int
}

// Header is the CSV header for reconcile-log.csv.
const Header = "timestamp,input,as_of,rows,series,failed_occurrences"

const (
	numFields    = 6
	logDir       = "logs"
	logFile      = "reconcile-log.csv"
	colTimestamp = 0
	colInput     = 1
	colAsOf      = 2
	colRows      = 3
	colSeries    = 4
	colFailed    = 5
)

// Path returns the log location under dir.
func Path(dir string) string {
	return filepath.Join(dir, logDir, logFile)
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colInput] = e.Input
	row[colAsOf] = e.AsOf.Format(time.DateOnly)
	row[colRows] = strconv.Itoa(e.Rows)
	row[colSeries] = strconv.Itoa(e.Series)
	row[colFailed] = strconv.Itoa(e.FailedOccurrences)
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}

	asOf, err := time.Parse(time.DateOnly, record[colAsOf])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing as_of %q: %w", record[colAsOf], err)
	}

	counts := make([]int, 3)
	for i, col := range []int{colRows, colSeries, colFailed} {
		counts[i], err = strconv.Atoi(record[col])
		if err != nil {
			return Entry{}, fmt.Errorf("parsing count %q: %w", record[col], err)
		}
	}

	return Entry{
		Timestamp:         ts,
		Input:             record[colInput],
		AsOf:              asOf,
		Rows:              counts[0],
		Series:            counts[1],
		FailedOccurrences: counts[2],
	}, nil
}

// Append writes entries to <dir>/logs/reconcile-log.csv, creating the file
// and header if needed.
func Append(dir string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Join(dir, logDir), 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := Path(dir)
	needsHeader := false
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}

	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <dir>/logs/reconcile-log.csv.
// Returns nil if the file does not exist.
func Read(dir string) ([]Entry, error) {
	f, err := os.Open(Path(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
