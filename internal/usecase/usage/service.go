// Package usage reports language model token consumption per provider.
package usage

import (
	"context"
	"math"
	"sort"
	"time"

	domusage "github.com/giuliontini/SoDiVino/internal/domain/usage"
)

// Source is one provider budget with its price per million tokens.
type Source struct {
	Budget               BudgetReader
	CostPerMillionTokens float64
}

// Service handles usage reporting.
type Service struct {
	sources []Source
	now     func() time.Time
}

// New creates a Service. No sources means unlimited mode with empty reports.
func New(sources ...Source) *Service {
	valid := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.Budget != nil {
			valid = append(valid, s)
		}
	}
	sort.Slice(valid, func(i, j int) bool {
		return valid[i].Budget.Provider() < valid[j].Budget.Provider()
	})
	return &Service{sources: valid, now: time.Now}
}

// GetReports builds one usage report per provider for the given period.
func (s *Service) GetReports(_ context.Context, period domusage.Period) []domusage.Report {
	start, end := bounds(period, s.now().UTC())

	reports := make([]domusage.Report, 0, len(s.sources))
	for _, src := range s.sources {
		reports = append(reports, report(period, start, end, src))
	}
	return reports
}

func bounds(period domusage.Period, now time.Time) (start, end int64) {
	switch period {
	case domusage.PeriodDay:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return dayStart.UnixMilli(), dayStart.Add(24 * time.Hour).UnixMilli()
	case domusage.PeriodMonth:
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return monthStart.UnixMilli(), monthStart.AddDate(0, 1, 0).UnixMilli()
	default:
		// total: no period boundaries
		return 0, 0
	}
}

func report(period domusage.Period, start, end int64, src Source) domusage.Report {
	br := src.Budget

	var limit, used, remaining int64
	if period == domusage.PeriodDay {
		limit, used, remaining = br.DailyLimit(), br.DailyUsed(), br.RemainingDaily()
	} else {
		limit, used, remaining = br.MonthlyLimit(), br.MonthlyUsed(), br.RemainingMonthly()
	}

	exhausted := limit > 0 && remaining <= 0
	cost := int64(math.Round(float64(used) * src.CostPerMillionTokens / 1000))

	return domusage.NewReport(period, start, end, br.Provider(),
		domusage.NewMetrics(used, cost),
		domusage.NewBudget(limit, remaining, exhausted, end),
	)
}
