package notifier

import (
	"context"
	"time"

	"GapScout/internal/model"
)

// Reporter adapts a TelegramNotifier to the recorder interface.
type Reporter struct {
	ctx        context.Context
	notifier   *TelegramNotifier
	maxRetries int
}

// NewReporter sends through n, stopping retries when ctx ends.
func NewReporter(ctx context.Context, n *TelegramNotifier, maxRetries int) *Reporter {
	return &Reporter{ctx: ctx, notifier: n, maxRetries: maxRetries}
}

func (r *Reporter) RecordDate(res *model.AnalysisResult) error {
	return r.notifier.SendWithRetry(r.ctx, FormatDateReport(res), r.maxRetries)
}

func (r *Reporter) RecordBacktest(start, end time.Time, _ []model.CombinedRecord, summary model.BacktestSummary) error {
	return r.notifier.SendWithRetry(r.ctx, FormatBacktestReport(start, end, summary), r.maxRetries)
}

func (r *Reporter) Close() error { return nil }
