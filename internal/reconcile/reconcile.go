package reconcile

import (
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fundtrack/transfers/internal/model"
	"github.com/fundtrack/transfers/internal/month"
)

// Reconciler collapses recurring transfer series and reports missed months.
type Reconciler struct {
	Now func() time.Time
	Log logrus.FieldLogger
}

// New returns a Reconciler using the wall clock and a discarding logger.
func New() *Reconciler {
	return &Reconciler{Now: time.Now, Log: discard()}
}

// Reconcile is shorthand for a Reconciler pinned to today.
func Reconcile(records []model.TransferRecord, today time.Time) []model.TransferRecord {
	r := &Reconciler{Now: func() time.Time { return today }, Log: discard()}
	return r.Reconcile(records)
}

// series tracks one recurring series while scanning.
type series struct {
	index        int
	seen         map[month.YearMonth]bool
	transactions map[string]model.TransferRecord
}

// Reconcile returns one row per positive one-time transfer and one aggregate
// row per recurring series, in first-occurrence order. Input records are
// never modified.
func (r *Reconciler) Reconcile(records []model.TransferRecord) []model.TransferRecord {
	out := make([]model.TransferRecord, 0, len(records))
	byID := make(map[string]*series)
	var order []string

	for _, rec := range records {
		if rec.Transaction != nil && !rec.Transaction.Amount.IsPositive() {
			continue
		}

		if !rec.IsRecurring() {
			row := rec.Clone()
			row.Amount = rec.TransactionAmount()
			out = append(out, row)
			continue
		}

		id := rec.SeriesID()
		s, ok := byID[id]
		if !ok {
			row := rec.Clone()
			row.Amount = rec.TransactionAmount()
			s = &series{
				index:        len(out),
				seen:         make(map[month.YearMonth]bool),
				transactions: make(map[string]model.TransferRecord),
			}
			out = append(out, row)
			byID[id] = s
			order = append(order, id)
		} else {
			out[s.index].Amount = out[s.index].Amount.Add(rec.TransactionAmount())
		}

		if rec.Transaction != nil {
			s.seen[month.Of(rec.Transaction.TransactedAt)] = true
			s.transactions[rec.Transaction.ID] = rec.Clone()
		}
	}

	today := month.TruncateDay(r.Now())
	for _, id := range order {
		s := byID[id]
		row := &out[s.index]
		row.SummarizedTransfers = s.transactions
		r.analyze(row, s.seen, today)
	}

	return out
}

// analyze fills FailedCount and MissingMonths on a series row. Rows without a
// start date or base amount are left unanalyzed.
func (r *Reconciler) analyze(row *model.TransferRecord, seen map[month.YearMonth]bool, today time.Time) {
	rt := row.RecurringTransfer
	log := r.Log.WithField("series", rt.ID)

	if rt.RecurringStart == nil {
		log.Debug("skipping gap analysis: series has no start date")
		return
	}
	if row.BaseAmount.IsZero() {
		log.Debug("skipping gap analysis: series has no base amount")
		return
	}

	start := month.TruncateDay(*rt.RecurringStart)
	end := today
	if rt.RecurringEnd != nil {
		if last := month.TruncateDay(*rt.RecurringEnd); last.Before(today) {
			end = last
		}
	}

	observed := occurrences(row.Amount, row.BaseAmount)
	expected := max(0, month.WholeBetween(start, end)+1)

	row.Analyzed = true
	if observed >= int64(expected) {
		row.FailedCount = 0
		row.MissingMonths = []time.Time{}
		return
	}

	row.FailedCount = expected - int(observed)
	row.MissingMonths = []time.Time{}
	var missing []string
	for i := 0; ; i++ {
		current := month.AddClamped(start, i)
		if current.After(end) {
			break
		}
		if ym := month.Of(current); !seen[ym] {
			row.MissingMonths = append(row.MissingMonths, current)
			missing = append(missing, ym.String())
		}
	}

	log.WithFields(logrus.Fields{
		"expected": expected,
		"observed": observed,
		"missing":  strings.Join(missing, ","),
	}).Debug("series has missed occurrences")
}

// occurrences infers how many occurrences a total represents, truncated
// toward zero.
func occurrences(total, base decimal.Decimal) int64 {
	return total.DivRound(base, 8).IntPart()
}

func discard() logrus.FieldLogger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}
