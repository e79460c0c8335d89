package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is the ledger entry behind a transfer occurrence.
type Transaction struct {
	ID           string          `json:"id"`
	Amount       decimal.Decimal `json:"amount"` // negative = transfer-out leg
	Description  string          `json:"description,omitempty"`
	TransactedAt time.Time       `json:"transactedAt"`
}

// SubCategory is classification metadata carried through untouched.
type SubCategory struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

// Transfer names the funds a transfer moves between.
type Transfer struct {
	SourceFundTypeName      string `json:"sourceFundTypeName"`
	DestinationFundTypeName string `json:"destinationFundTypeName"`
}

// RecurringTransfer describes the schedule a series of occurrences belongs to.
type RecurringTransfer struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	RecurringStart *time.Time      `json:"recurringStart,omitempty"`
	RecurringEnd   *time.Time      `json:"recurringEnd,omitempty"` // nil = open-ended
	Active         bool            `json:"active"`
}

// TransferRecord is one row of a fund's transfer history.
//
// Transaction is nil for a projected occurrence that has no ledger entry yet.
// RecurringTransfer is nil for one-time transfers.
type TransferRecord struct {
	Transaction       *Transaction       `json:"transaction,omitempty"`
	SubCategory       *SubCategory       `json:"subCategory,omitempty"`
	Transfer          Transfer           `json:"transfer"`
	RecurringTransfer *RecurringTransfer `json:"recurringTransfer,omitempty"`
	BaseAmount        decimal.Decimal    `json:"baseAmount"`

	// Populated by reconciliation.
	Amount              decimal.Decimal           `json:"amount"`
	Analyzed            bool                      `json:"analyzed"`
	FailedCount         int                       `json:"failedCount"`
	MissingMonths       []time.Time               `json:"missingMonths"`
	SummarizedTransfers map[string]TransferRecord `json:"summarizedTransfers,omitempty"`
}

// IsRecurring reports whether the record belongs to a recurring series.
func (r TransferRecord) IsRecurring() bool {
	return r.RecurringTransfer != nil
}

// SeriesID returns the recurring series id, or "" for one-time transfers.
func (r TransferRecord) SeriesID() string {
	if r.RecurringTransfer == nil {
		return ""
	}
	return r.RecurringTransfer.ID
}

// TransactionID returns the ledger transaction id, or "" when there is none.
func (r TransferRecord) TransactionID() string {
	if r.Transaction == nil {
		return ""
	}
	return r.Transaction.ID
}

// TransactionAmount returns the ledger amount, zero when there is no transaction.
func (r TransferRecord) TransactionAmount() decimal.Decimal {
	if r.Transaction == nil {
		return decimal.Zero
	}
	return r.Transaction.Amount
}

// Clone returns a copy that shares no pointers, slices or maps with r.
func (r TransferRecord) Clone() TransferRecord {
	c := r
	if r.Transaction != nil {
		tx := *r.Transaction
		c.Transaction = &tx
	}
	if r.SubCategory != nil {
		sc := *r.SubCategory
		c.SubCategory = &sc
	}
	if r.RecurringTransfer != nil {
		rt := *r.RecurringTransfer
		rt.RecurringStart = cloneTime(r.RecurringTransfer.RecurringStart)
		rt.RecurringEnd = cloneTime(r.RecurringTransfer.RecurringEnd)
		c.RecurringTransfer = &rt
	}
	if r.MissingMonths != nil {
		c.MissingMonths = append([]time.Time(nil), r.MissingMonths...)
	}
	if r.SummarizedTransfers != nil {
		c.SummarizedTransfers = make(map[string]TransferRecord, len(r.SummarizedTransfers))
		for k, v := range r.SummarizedTransfers {
			c.SummarizedTransfers[k] = v.Clone()
		}
	}
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
