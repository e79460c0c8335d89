package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fundtrack/transfers/internal/model"
)

// Header is the CSV header for transfer ledgers.
const Header = "transaction_id,transacted_at,amount,description,source_fund,destination_fund,sub_category,recurring_id,recurring_amount,recurring_start,recurring_end,recurring_active,base_amount"

const (
	numFields     = 13
	dateFormat    = "2006-01-02"
	colTxID       = 0
	colTxAt       = 1
	colAmount     = 2
	colDesc       = 3
	colSource     = 4
	colDest       = 5
	colSubCat     = 6
	colRecID      = 7
	colRecAmount  = 8
	colRecStart   = 9
	colRecEnd     = 10
	colRecActive  = 11
	colBaseAmount = 12
)

// CSVParser parses transfer ledgers exported as CSV.
type CSVParser struct{}

// Format returns the parser name.
func (p *CSVParser) Format() string { return "csv" }

// Parse reads a ledger CSV, header first.
func (p *CSVParser) Parse(r io.Reader) ([]model.TransferRecord, error) {
	return ReadRecords(r)
}

// ReadRecords reads all records from a ledger CSV reader.
func ReadRecords(r io.Reader) ([]model.TransferRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	var out []model.TransferRecord
	for i, rec := range records[1:] {
		tr, err := UnmarshalRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		out = append(out, tr)
	}
	return out, nil
}

// WriteRecords writes records to a ledger CSV writer (including header).
func WriteRecords(w io.Writer, records []model.TransferRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, rec := range records {
		if err := cw.Write(MarshalRecord(rec)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalRecord converts a TransferRecord to a CSV row.
func MarshalRecord(rec model.TransferRecord) []string {
	row := make([]string, numFields)

	if tx := rec.Transaction; tx != nil {
		row[colTxID] = tx.ID
		row[colTxAt] = tx.TransactedAt.Format(dateFormat)
		row[colAmount] = tx.Amount.StringFixed(2)
		row[colDesc] = tx.Description
	}

	row[colSource] = rec.Transfer.SourceFundTypeName
	row[colDest] = rec.Transfer.DestinationFundTypeName
	if rec.SubCategory != nil {
		row[colSubCat] = rec.SubCategory.Name
	}

	if rt := rec.RecurringTransfer; rt != nil {
		row[colRecID] = rt.ID
		row[colRecAmount] = rt.Amount.StringFixed(2)
		row[colRecStart] = formatOptionalDate(rt.RecurringStart)
		row[colRecEnd] = formatOptionalDate(rt.RecurringEnd)
		row[colRecActive] = strconv.FormatBool(rt.Active)
	}

	if !rec.BaseAmount.IsZero() {
		row[colBaseAmount] = rec.BaseAmount.StringFixed(2)
	}
	return row
}

// UnmarshalRecord converts a CSV row to a TransferRecord. A row with empty
// transaction columns is a projected occurrence and gets no Transaction.
func UnmarshalRecord(record []string) (model.TransferRecord, error) {
	if len(record) != numFields {
		return model.TransferRecord{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	rec := model.TransferRecord{
		Transfer: model.Transfer{
			SourceFundTypeName:      record[colSource],
			DestinationFundTypeName: record[colDest],
		},
	}

	if record[colTxID] != "" || record[colTxAt] != "" || record[colAmount] != "" {
		tx, err := unmarshalTransaction(record)
		if err != nil {
			return model.TransferRecord{}, err
		}
		rec.Transaction = tx
	}

	if record[colSubCat] != "" {
		rec.SubCategory = &model.SubCategory{Name: record[colSubCat]}
	}

	if record[colRecID] != "" {
		rt, err := unmarshalRecurring(record)
		if err != nil {
			return model.TransferRecord{}, err
		}
		rec.RecurringTransfer = rt
	}

	if record[colBaseAmount] != "" {
		base, err := decimal.NewFromString(record[colBaseAmount])
		if err != nil {
			return model.TransferRecord{}, fmt.Errorf("parsing base_amount %q: %w", record[colBaseAmount], err)
		}
		rec.BaseAmount = base
	}

	return rec, nil
}

func unmarshalTransaction(record []string) (*model.Transaction, error) {
	at, err := parseDate(record[colTxAt])
	if err != nil {
		return nil, fmt.Errorf("parsing transacted_at %q: %w", record[colTxAt], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return nil, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return &model.Transaction{
		ID:           record[colTxID],
		Amount:       amount,
		Description:  record[colDesc],
		TransactedAt: at,
	}, nil
}

func unmarshalRecurring(record []string) (*model.RecurringTransfer, error) {
	rt := &model.RecurringTransfer{ID: record[colRecID]}

	if record[colRecAmount] != "" {
		amount, err := decimal.NewFromString(record[colRecAmount])
		if err != nil {
			return nil, fmt.Errorf("parsing recurring_amount %q: %w", record[colRecAmount], err)
		}
		rt.Amount = amount
	}

	var err error
	if rt.RecurringStart, err = parseOptionalDate(record[colRecStart]); err != nil {
		return nil, fmt.Errorf("parsing recurring_start %q: %w", record[colRecStart], err)
	}
	if rt.RecurringEnd, err = parseOptionalDate(record[colRecEnd]); err != nil {
		return nil, fmt.Errorf("parsing recurring_end %q: %w", record[colRecEnd], err)
	}

	if record[colRecActive] != "" {
		rt.Active, err = strconv.ParseBool(record[colRecActive])
		if err != nil {
			return nil, fmt.Errorf("parsing recurring_active %q: %w", record[colRecActive], err)
		}
	}
	return rt, nil
}

// parseDate accepts a plain date or an RFC 3339 timestamp.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateFormat, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func parseOptionalDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := parseDate(s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFormat)
}
