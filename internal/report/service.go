package report

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/fundtrack/transfers/internal/model"
	"github.com/fundtrack/transfers/internal/month"
	"github.com/fundtrack/transfers/internal/reconcile"
	"github.com/fundtrack/transfers/internal/source"
)

// Source defines how the service obtains transfer records.
//
//go:generate mockgen -destination=mocks/mock_source.go -package=mocks -source=service.go Source
type Source interface {
	Load(ctx context.Context, path string) ([]model.TransferRecord, error)
}

// Report is the reconciled view of one ledger.
type Report struct {
	AsOf      time.Time              `json:"asOf"`
	Transfers []model.TransferRecord `json:"transfers"`
	Upcoming  []model.TransferRecord `json:"upcoming"`
	Summary   Summary                `json:"summary"`
	Issues    []string               `json:"issues,omitempty"`
}

// Summary totals a report.
type Summary struct {
	TotalIn           decimal.Decimal `json:"totalIn"`
	OneTime           int             `json:"oneTime"`
	Series            int             `json:"series"`
	FailedOccurrences int             `json:"failedOccurrences"`
	MissingMonths     int             `json:"missingMonths"`
}

// Service builds reports from a Source.
type Service struct {
	source Source
	now    func() time.Time
	log    logrus.FieldLogger
}

// NewService creates a report Service.
func NewService(src Source, now func() time.Time, log logrus.FieldLogger) *Service {
	return &Service{source: src, now: now, log: log}
}

// Build loads the ledger at path and reconciles it as of today.
func (s *Service) Build(ctx context.Context, path string) (*Report, error) {
	records, err := s.source.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("could not load transfers: %w", err)
	}

	today := month.TruncateDay(s.now())
	log := s.log.WithFields(logrus.Fields{"input": path, "as_of": today.Format(time.DateOnly)})

	var issues []string
	for _, issue := range source.Validate(records) {
		log.WithField("check", issue.Check).Warn(issue.Error())
		issues = append(issues, issue.Error())
	}

	current, upcoming := reconcile.Split(records, today)
	r := &reconcile.Reconciler{Now: func() time.Time { return today }, Log: log}
	transfers := r.Reconcile(current)

	if upcoming == nil {
		upcoming = []model.TransferRecord{}
	}
	rep := &Report{
		AsOf:      today,
		Transfers: transfers,
		Upcoming:  upcoming,
		Summary:   summarize(transfers),
		Issues:    issues,
	}

	log.WithFields(logrus.Fields{
		"records":  len(records),
		"rows":     len(rep.Transfers),
		"upcoming": len(rep.Upcoming),
		"failed":   rep.Summary.FailedOccurrences,
	}).Info("reconciled transfers")

	return rep, nil
}

func summarize(rows []model.TransferRecord) Summary {
	sum := Summary{TotalIn: decimal.Zero}
	for _, row := range rows {
		sum.TotalIn = sum.TotalIn.Add(row.Amount)
		if row.IsRecurring() {
			sum.Series++
		} else {
			sum.OneTime++
		}
		sum.FailedOccurrences += row.FailedCount
		sum.MissingMonths += len(row.MissingMonths)
	}
	return sum
}
