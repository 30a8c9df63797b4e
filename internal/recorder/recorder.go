package recorder

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"GapScout/internal/model"
)

// Recorder receives screening output.
type Recorder interface {
	RecordDate(res *model.AnalysisResult) error
	RecordBacktest(start, end time.Time, records []model.CombinedRecord, summary model.BacktestSummary) error
	Close() error
}

// Multi fans out to several recorders. Every recorder is called even if
// an earlier one fails.
type Multi []Recorder

func (m Multi) RecordDate(res *model.AnalysisResult) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordDate(res))
	}
	return errors.Join(errs...)
}

func (m Multi) RecordBacktest(start, end time.Time, records []model.CombinedRecord, summary model.BacktestSummary) error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.RecordBacktest(start, end, records, summary))
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		errs = append(errs, r.Close())
	}
	return errors.Join(errs...)
}

// formatPercent renders v with two decimals, "inf" for +Inf and "n/a" for
// a missing value.
func formatPercent(v *float64) string {
	switch {
	case v == nil:
		return "n/a"
	case math.IsInf(*v, 1):
		return "inf"
	case math.IsInf(*v, -1):
		return "-inf"
	case math.IsNaN(*v):
		return "n/a"
	}
	return decimal.NewFromFloat(*v).StringFixed(2)
}

// round2 rounds half away from zero to two decimals.
func round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
