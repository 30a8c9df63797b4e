package screener

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"GapScout/internal/calendar"
	"GapScout/internal/collector"
	"GapScout/internal/model"
)

var (
	ny       = mustLoad("America/New_York")
	thursday = time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	prevDay  = time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
)

func mustLoad(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(err)
	}
	return loc
}

func testCalendar() *calendar.Calendar {
	return calendar.New([]time.Time{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}, nil)
}

type sleepRecorder struct {
	mu    sync.Mutex
	calls []time.Duration
}

func (r *sleepRecorder) Sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.calls = append(r.calls, d)
	r.mu.Unlock()
	return ctx.Err()
}

func (r *sleepRecorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func testOptions(sr *sleepRecorder) Options {
	return Options{MarketLocation: ny, Sleep: sr.Sleep}
}

func observedLogger() (*zap.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	return zap.New(core), logs
}

// addMarket registers a ticker whose session on day opens at open after a
// previous close of prevClose, with the given premarket volume.
func addMarket(m *collector.MockMarketFetcher, ticker string, day, prev time.Time, volume, open, prevClose, shares float64) {
	if m.Details == nil {
		m.Details = map[string]model.TickerDetails{}
		m.Daily = map[string]model.DailyBar{}
		m.Minutes = map[string][]model.OHLCV{}
	}
	m.Details[ticker] = model.TickerDetails{Ticker: ticker, Name: ticker + " Corp", WeightedSharesOutstanding: shares}
	m.Daily[collector.MockKey(ticker, prev)] = model.DailyBar{Symbol: ticker, Day: prev, Open: prevClose, Close: prevClose}
	m.Daily[collector.MockKey(ticker, day)] = model.DailyBar{Symbol: ticker, Day: day, Open: open, High: open * 1.05, Close: open * 1.02}
	y, mo, d := day.Date()
	m.Minutes[collector.MockKey(ticker, day)] = []model.OHLCV{
		{Time: time.Date(y, mo, d, 7, 0, 0, 0, ny), Volume: volume},
		{Time: time.Date(y, mo, d, 10, 0, 0, 0, ny), Volume: 1e6}, // regular session, ignored
	}
}

// hourlySeries builds samples at hours 4, 5 and 6 (UTC-8) for the given days.
func hourlySeries(values map[time.Time][3]float64) []model.TrendPoint {
	var pts []model.TrendPoint
	for day, v := range values {
		y, mo, d := day.Date()
		for i, h := range []int{4, 5, 6} {
			pts = append(pts, model.TrendPoint{Time: time.Date(y, mo, d, h, 0, 0, 0, TrendsLocation), Value: v[i]})
		}
	}
	return pts
}
