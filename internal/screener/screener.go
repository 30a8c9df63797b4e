// Package screener combines search-interest and premarket gap-up screening.
package screener

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"GapScout/internal/calendar"
	"GapScout/internal/collector"
	"GapScout/internal/model"
	"GapScout/internal/trace"
)

// Screener orchestrates the trends and market stages for one or more dates.
type Screener struct {
	cal    *calendar.Calendar
	market *MarketAnalyzer
	trends *TrendsAnalyzer
	opts   Options
	logger *zap.Logger
}

// New creates a Screener. Either fetcher may be nil when the matching
// stage is never requested.
func New(cal *calendar.Calendar, market collector.MarketFetcher, trends collector.TrendsFetcher, logger *zap.Logger, opts Options) *Screener {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.withDefaults()
	s := &Screener{cal: cal, opts: opts, logger: logger}
	if market != nil {
		s.market = NewMarketAnalyzer(market, cal, logger, opts)
	}
	if trends != nil {
		s.trends = NewTrendsAnalyzer(trends, cal, logger, opts)
	}
	return s
}

// Calendar exposes the trading calendar the screener uses.
func (s *Screener) Calendar() *calendar.Calendar { return s.cal }

// AnalyzeDate screens tickers for one date. A non-trading date yields an
// empty result. The error is reserved for invalid input and ctx ending.
func (s *Screener) AnalyzeDate(ctx context.Context, tickers []string, day time.Time, c model.ScreeningCriteria, mode model.Mode) (*model.AnalysisResult, error) {
	day = calendar.Day(day)
	ctx, span := trace.StartSpan(ctx, "screener.AnalyzeDate")
	defer span.End()
	span.SetAttributes(
		attribute.String("date", calendar.Format(day)),
		attribute.String("mode", string(mode)),
		attribute.Int("tickers", len(tickers)),
	)

	mode, err := model.ParseMode(string(mode))
	if err != nil {
		return nil, err
	}
	if mode.RunsTrends() && s.trends == nil {
		return nil, errors.New("trends stage requested but no trends fetcher configured")
	}
	if mode.RunsMarket() && s.market == nil {
		return nil, errors.New("market stage requested but no market fetcher configured")
	}

	log := s.logger.With(zap.String("date", calendar.Format(day)), zap.String("mode", string(mode)))
	result := &model.AnalysisResult{Date: day}
	if !s.cal.IsTradingDay(day) {
		log.Warn("not a trading day, skipping")
		return result, nil
	}

	candidates := tickers
	if mode.RunsTrends() {
		trends, err := s.trends.AnalyzeMany(ctx, tickers, day, c.MinTrendsChangePercent, c.BatchSize)
		if err != nil {
			return nil, err
		}
		result.TrendResults = trends
		log.Info("trends stage done", zap.Int("passed", len(trends)), zap.Int("of", len(tickers)))
		if mode == model.ModeTrendsOnly {
			return result, nil
		}
		if len(trends) == 0 {
			log.Info("no trend signal, skipping market stage")
			return result, nil
		}
		candidates = make([]string, len(trends))
		for i, t := range trends {
			candidates[i] = t.Ticker
		}
	}

	for _, ticker := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if m, ok := s.market.Analyze(ctx, ticker, day, c); ok {
			result.MarketResults = append(result.MarketResults, m)
		}
	}
	sort.SliceStable(result.MarketResults, func(i, j int) bool {
		return result.MarketResults[i].GapUpPercent > result.MarketResults[j].GapUpPercent
	})
	log.Info("market stage done", zap.Int("passed", len(result.MarketResults)), zap.Int("of", len(candidates)))

	if mode == model.ModeBoth {
		result.CombinedResults = Join(day, result.MarketResults, result.TrendResults)
	}
	span.SetAttributes(attribute.Int("combined", len(result.CombinedResults)))
	return result, nil
}

// Join pairs each market record with the first trend record of the same
// ticker, keeping market order. Unmatched market records are dropped.
func Join(day time.Time, market []model.MarketMetrics, trends []model.TrendMetrics) []model.CombinedRecord {
	byTicker := make(map[string]model.TrendMetrics, len(trends))
	for _, t := range trends {
		if _, seen := byTicker[t.Ticker]; !seen {
			byTicker[t.Ticker] = t
		}
	}
	var out []model.CombinedRecord
	for _, m := range market {
		t, ok := byTicker[m.Ticker]
		if !ok {
			continue
		}
		out = append(out, model.CombinedRecord{
			Date:                day,
			MarketMetrics:       m,
			TrendsChangePercent: t.TotalChangePercent,
			Hour4To5Percent:     t.Hour4To5Percent,
			Hour5To6Percent:     t.Hour5To6Percent,
		})
	}
	return out
}

// AnalyzeDates runs AnalyzeDate for every day with at most
// c.MaxParallelDates in flight. A failing date gets a nil Result and its
// error; other dates are unaffected. Output order follows days.
func (s *Screener) AnalyzeDates(ctx context.Context, tickers []string, days []time.Time, c model.ScreeningCriteria, mode model.Mode) []model.DateResult {
	limit := int64(c.MaxParallelDates)
	if limit <= 0 {
		limit = 1
	}
	sem := semaphore.NewWeighted(limit)
	results := make([]model.DateResult, len(days))
	var wg sync.WaitGroup
	for i, d := range days {
		i, d := i, d
		results[i].Date = calendar.Day(d)
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i].Err = err
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)
			res, err := s.analyzeDateSafe(ctx, tickers, d, c, mode)
			if err != nil {
				s.logger.Error("date analysis failed", zap.String("date", calendar.Format(d)), zap.Error(err))
				results[i].Err = err
				return
			}
			results[i].Result = res
		}()
	}
	wg.Wait()
	return results
}

func (s *Screener) analyzeDateSafe(ctx context.Context, tickers []string, day time.Time, c model.ScreeningCriteria, mode model.Mode) (res *model.AnalysisResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("panic analysing %s: %v", calendar.Format(day), r)
		}
	}()
	return s.AnalyzeDate(ctx, tickers, day, c, mode)
}
