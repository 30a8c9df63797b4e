package screener

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"GapScout/internal/calculator"
	"GapScout/internal/calendar"
	"GapScout/internal/collector"
	"GapScout/internal/model"
)

// lookbackDays is how far before the target date the trends window starts.
const lookbackDays = 6

// TrendsAnalyzer measures early-morning search-interest change.
type TrendsAnalyzer struct {
	fetcher collector.TrendsFetcher
	cal     *calendar.Calendar
	opts    Options
	logger  *zap.Logger
}

// NewTrendsAnalyzer creates a TrendsAnalyzer.
func NewTrendsAnalyzer(f collector.TrendsFetcher, cal *calendar.Calendar, logger *zap.Logger, opts Options) *TrendsAnalyzer {
	return &TrendsAnalyzer{
		fetcher: f,
		cal:     cal,
		opts:    opts.withDefaults(),
		logger:  logger.With(zap.String("stage", "trends")),
	}
}

// Keyword is the search term used for a ticker.
func Keyword(ticker string) string { return ticker + " Stock" }

// Analyze returns the ticker's trend metrics, or false when no data could
// be obtained.
func (a *TrendsAnalyzer) Analyze(ctx context.Context, ticker string, day time.Time) (model.TrendMetrics, bool) {
	m, err := a.Evaluate(ctx, ticker, day)
	log := a.logger.With(zap.String("ticker", ticker), zap.String("date", calendar.Format(day)))
	switch {
	case err == nil:
		log.Debug("trend computed", zap.Float64("change", m.TotalChangePercent))
		return m, true
	case errors.Is(err, ErrNotTradingDay), collector.IsNotFound(err):
		log.Warn("no trends data", zap.Error(err))
	default:
		log.Error("trends analysis failed", zap.Error(err))
	}
	return model.TrendMetrics{}, false
}

// Evaluate fetches the 7-day hourly window ending on day and compares the
// hours of interest against the previous trading day.
func (a *TrendsAnalyzer) Evaluate(ctx context.Context, ticker string, day time.Time) (model.TrendMetrics, error) {
	day = calendar.Day(day)
	if !a.cal.IsTradingDay(day) {
		return model.TrendMetrics{}, fmt.Errorf("%s: %w", calendar.Format(day), ErrNotTradingDay)
	}
	prevDay, err := a.cal.LastTradingDay(day)
	if err != nil {
		return model.TrendMetrics{}, err
	}

	loc := a.opts.TrendsLocation
	y, mo, d := day.Date()
	from := time.Date(y, mo, d-lookbackDays, 0, 0, 0, 0, loc)
	to := time.Date(y, mo, d, 23, 0, 0, 0, loc)

	cctx, cancel := a.opts.callContext(ctx)
	points, err := a.fetcher.InterestOverTime(cctx, Keyword(ticker), from, to)
	cancel()
	if err != nil {
		return model.TrendMetrics{}, err
	}

	current := calculator.HourlyInterest(points, day, a.opts.Hours, loc)
	previous := calculator.HourlyInterest(points, prevDay, a.opts.Hours, loc)
	m := model.TrendMetrics{
		Ticker:             ticker,
		Date:               day,
		TotalChangePercent: calculator.TrendChange(current, previous),
		Series:             points,
	}
	// Hour changes are only reported when the two days are comparable.
	if len(calculator.MatchingHours(current, previous)) == 0 {
		a.logger.Warn("no matching hours between days",
			zap.String("ticker", ticker),
			zap.String("date", calendar.Format(day)),
			zap.String("previous", calendar.Format(prevDay)))
		return m, nil
	}
	m.Hour4To5Percent = calculator.HourChange(current, 4, 5)
	m.Hour5To6Percent = calculator.HourChange(current, 5, 6)
	return m, nil
}

// AnalyzeMany runs Analyze over tickers in fixed-size concurrent batches
// with a pause between batches. Results under minChange are dropped and
// the rest sorted by change, highest first. A ticker whose analysis
// panics is logged and dropped. The error is non-nil only when ctx ends.
func (a *TrendsAnalyzer) AnalyzeMany(ctx context.Context, tickers []string, day time.Time, minChange float64, batchSize int) ([]model.TrendMetrics, error) {
	if batchSize <= 0 {
		batchSize = 1
	}
	slots := make([]*model.TrendMetrics, len(tickers))
	for start := 0; start < len(tickers); start += batchSize {
		if start > 0 {
			if err := a.opts.Sleep(ctx, a.opts.BatchPause); err != nil {
				return nil, err
			}
		}
		end := min(start+batchSize, len(tickers))
		a.logger.Debug("trends batch", zap.Int("from", start), zap.Int("to", end), zap.Int("total", len(tickers)))

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				defer func() {
					if r := recover(); r != nil {
						a.logger.Error("trends analysis panicked",
							zap.String("ticker", tickers[i]),
							zap.String("date", calendar.Format(day)),
							zap.Any("panic", r))
					}
				}()
				if m, ok := a.Analyze(ctx, tickers[i], day); ok {
					slots[i] = &m
				}
				return nil
			})
		}
		_ = g.Wait()
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	var out []model.TrendMetrics
	for _, m := range slots {
		if m != nil && calculator.MeetsThreshold(m.TotalChangePercent, minChange) {
			out = append(out, *m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].TotalChangePercent > out[j].TotalChangePercent
	})
	return out, nil
}
