package source

import (
	"fmt"

	"github.com/fundtrack/transfers/internal/model"
)

// Check names a data-quality rule.
type Check string

const (
	CheckMissingStart    Check = "missing-start"
	CheckZeroBaseAmount  Check = "zero-base-amount"
	CheckEndBeforeStart  Check = "end-before-start"
	CheckFractionalCount Check = "fractional-count"
	CheckDuplicateTxID   Check = "duplicate-transaction"
)

// Issue describes a single data-quality problem. Issues never stop a run;
// affected series are reported without gap information.
type Issue struct {
	Check       Check
	Row         int // 1-based input position
	Ref         string
	Description string
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s [row %d, %s]: %s", i.Check, i.Row, i.Ref, i.Description)
}

// Validate inspects records for problems that degrade reconciliation.
// Series-level checks are reported once per series.
func Validate(records []model.TransferRecord) []Issue {
	var issues []Issue

	seriesSeen := make(map[string]bool)
	txSeen := make(map[string]int)

	for i, rec := range records {
		row := i + 1

		if id := rec.TransactionID(); id != "" {
			if first, dup := txSeen[id]; dup {
				issues = append(issues, Issue{
					Check:       CheckDuplicateTxID,
					Row:         row,
					Ref:         id,
					Description: fmt.Sprintf("transaction also appears on row %d", first),
				})
			} else {
				txSeen[id] = row
			}
		}

		rt := rec.RecurringTransfer
		if rt == nil {
			continue
		}
		ref := "series " + rt.ID

		if !seriesSeen[rt.ID] {
			seriesSeen[rt.ID] = true

			if rt.RecurringStart == nil {
				issues = append(issues, Issue{
					Check:       CheckMissingStart,
					Row:         row,
					Ref:         ref,
					Description: "recurring transfer has no start date",
				})
			}
			if rt.RecurringStart != nil && rt.RecurringEnd != nil && rt.RecurringEnd.Before(*rt.RecurringStart) {
				issues = append(issues, Issue{
					Check:       CheckEndBeforeStart,
					Row:         row,
					Ref:         ref,
					Description: fmt.Sprintf("ends %s before it starts %s", rt.RecurringEnd.Format(dateFormat), rt.RecurringStart.Format(dateFormat)),
				})
			}
			if rec.BaseAmount.IsZero() {
				issues = append(issues, Issue{
					Check:       CheckZeroBaseAmount,
					Row:         row,
					Ref:         ref,
					Description: "base amount is zero; occurrence count cannot be inferred",
				})
			}
		}

		amount := rec.TransactionAmount()
		if amount.IsPositive() && !rec.BaseAmount.IsZero() && !amount.Mod(rec.BaseAmount).IsZero() {
			issues = append(issues, Issue{
				Check:       CheckFractionalCount,
				Row:         row,
				Ref:         ref,
				Description: fmt.Sprintf("amount %s is not a multiple of base amount %s", amount.StringFixed(2), rec.BaseAmount.StringFixed(2)),
			})
		}
	}

	return issues
}
