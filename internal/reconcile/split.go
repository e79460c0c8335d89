package reconcile

import (
	"time"

	"github.com/fundtrack/transfers/internal/model"
	"github.com/fundtrack/transfers/internal/month"
)

// Split separates projected occurrences of series that have not started yet
// from the records that should be reconciled. Records carrying a ledger
// transaction always stay current. Upcoming holds one cloned row per future
// series, in first-occurrence order.
func Split(records []model.TransferRecord, today time.Time) (current, upcoming []model.TransferRecord) {
	today = month.TruncateDay(today)
	seen := make(map[string]bool)

	for _, rec := range records {
		if rec.Transaction != nil || !startsAfter(rec, today) {
			current = append(current, rec)
			continue
		}
		id := rec.SeriesID()
		if seen[id] {
			continue
		}
		seen[id] = true

		row := rec.Clone()
		row.Amount = rec.RecurringTransfer.Amount
		upcoming = append(upcoming, row)
	}
	return current, upcoming
}

func startsAfter(rec model.TransferRecord, today time.Time) bool {
	if rec.RecurringTransfer == nil || rec.RecurringTransfer.RecurringStart == nil {
		return false
	}
	return month.TruncateDay(*rec.RecurringTransfer.RecurringStart).After(today)
}
