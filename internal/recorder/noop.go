package recorder

import (
	"time"

	"GapScout/internal/model"
)

// NoopRecorder discards everything.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordDate(_ *model.AnalysisResult) error { return nil }
func (n *NoopRecorder) RecordBacktest(_, _ time.Time, _ []model.CombinedRecord, _ model.BacktestSummary) error {
	return nil
}
func (n *NoopRecorder) Close() error { return nil }
