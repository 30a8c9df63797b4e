package screener

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"GapScout/internal/calendar"
	"GapScout/internal/model"
)

// Backtest screens every trading day in [start, end] in combined mode and
// returns all combined records in date order. Days are analysed one at a
// time with one pause between consecutive analysed days. A failing day is
// logged and skipped; only ctx ending aborts the loop.
func (s *Screener) Backtest(ctx context.Context, tickers []string, start, end time.Time, c model.ScreeningCriteria) ([]model.CombinedRecord, error) {
	var all []model.CombinedRecord
	analysed := 0
	for d := calendar.Day(start); !d.After(calendar.Day(end)); d = d.AddDate(0, 0, 1) {
		log := s.logger.With(zap.String("date", calendar.Format(d)))
		if !s.cal.IsTradingDay(d) {
			log.Info("backtest: skipping non-trading day")
			continue
		}
		if analysed > 0 {
			if err := s.opts.Sleep(ctx, s.opts.DayPause); err != nil {
				return all, err
			}
		}
		analysed++

		res, err := s.AnalyzeDate(ctx, tickers, d, c, model.ModeBoth)
		if err != nil {
			if ctx.Err() != nil {
				return all, ctx.Err()
			}
			log.Error("backtest: day failed", zap.Error(err))
			continue
		}
		log.Info("backtest: day done", zap.Int("combined", len(res.CombinedResults)))
		all = append(all, res.CombinedResults...)
	}
	s.logger.Info("backtest complete", zap.Int("days", analysed), zap.Int("records", len(all)))
	return all, nil
}

// Summarize aggregates backtest records. Best is the record with the
// highest open-to-close change.
func Summarize(records []model.CombinedRecord) model.BacktestSummary {
	sum := model.BacktestSummary{Records: len(records)}
	if len(records) == 0 {
		return sum
	}
	days := make(map[string]struct{})
	var gap, vol, trends float64
	var finite, wins int
	for i := range records {
		r := &records[i]
		days[calendar.Format(r.Date)] = struct{}{}
		gap += r.GapUpPercent
		vol += r.PremarketVolume
		if math.IsInf(r.TrendsChangePercent, 0) || math.IsNaN(r.TrendsChangePercent) {
			sum.InfiniteTrends++
		} else {
			trends += r.TrendsChangePercent
			finite++
		}
		if r.OpenToClosePercent > 0 {
			wins++
		}
		if sum.Best == nil || r.OpenToClosePercent > sum.Best.OpenToClosePercent {
			sum.Best = r
		}
	}
	n := float64(len(records))
	sum.Days = len(days)
	sum.AvgGapUpPercent = gap / n
	sum.AvgPremarketVolume = vol / n
	if finite > 0 {
		sum.AvgTrendsChange = trends / float64(finite)
	}
	sum.SuccessRate = float64(wins) / n * 100
	return sum
}
