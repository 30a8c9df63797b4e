package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"GapScout/internal/model"
)

// MockMarketFetcher returns controllable fixed data for development and
// testing. Missing entries yield ErrNotFound unless Price is set, in which
// case synthetic data is generated.
type MockMarketFetcher struct {
	Price   float64
	Details map[string]model.TickerDetails
	Daily   map[string]model.DailyBar // key: MockKey(ticker, day)
	Minutes map[string][]model.OHLCV  // key: MockKey(ticker, day)
	Errs    map[string]error          // per ticker, returned by every call

	mu    sync.Mutex
	calls int
}

// MockKey builds the map key for per-day mock data.
func MockKey(ticker string, day time.Time) string {
	return ticker + "|" + day.Format("2006-01-02")
}

func (m *MockMarketFetcher) Name() string { return "mock" }

// Calls returns how many fetches have been made.
func (m *MockMarketFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockMarketFetcher) enter(ctx context.Context, ticker string) error {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Errs[ticker]
}

func (m *MockMarketFetcher) TickerDetails(ctx context.Context, ticker string) (model.TickerDetails, error) {
	if err := m.enter(ctx, ticker); err != nil {
		return model.TickerDetails{}, err
	}
	if d, ok := m.Details[ticker]; ok {
		return d, nil
	}
	if m.Price > 0 {
		return model.TickerDetails{Ticker: ticker, Name: ticker + " Inc.", WeightedSharesOutstanding: 1e9}, nil
	}
	return model.TickerDetails{}, fmt.Errorf("ticker details %s: %w", ticker, ErrNotFound)
}

func (m *MockMarketFetcher) DailyOpenClose(ctx context.Context, ticker string, day time.Time) (model.DailyBar, error) {
	if err := m.enter(ctx, ticker); err != nil {
		return model.DailyBar{}, err
	}
	if b, ok := m.Daily[MockKey(ticker, day)]; ok {
		return b, nil
	}
	if m.Price > 0 {
		p := m.Price
		return model.DailyBar{Symbol: ticker, Day: day, Open: p * 1.03, High: p * 1.06, Low: p * 0.99, Close: p, Volume: 5e6}, nil
	}
	return model.DailyBar{}, fmt.Errorf("open-close %s: %w", MockKey(ticker, day), ErrNotFound)
}

func (m *MockMarketFetcher) MinuteBars(ctx context.Context, ticker string, day time.Time) ([]model.OHLCV, error) {
	if err := m.enter(ctx, ticker); err != nil {
		return nil, err
	}
	if bars, ok := m.Minutes[MockKey(ticker, day)]; ok {
		return bars, nil
	}
	if m.Price > 0 {
		return generateMockMinutes(m.Price, day), nil
	}
	return nil, fmt.Errorf("minute bars %s: %w", MockKey(ticker, day), ErrNotFound)
}

// generateMockMinutes emits one bar per minute from 04:00 to 16:00 New York
// time (approximated as UTC-5).
func generateMockMinutes(price float64, day time.Time) []model.OHLCV {
	start := time.Date(day.Year(), day.Month(), day.Day(), 9, 0, 0, 0, time.UTC)
	bars := make([]model.OHLCV, 0, 12*60)
	for i := 0; i < 12*60; i++ {
		p := price * (1 + float64(i)*0.00005)
		bars = append(bars, model.OHLCV{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   p * 0.999,
			High:   p * 1.001,
			Low:    p * 0.998,
			Close:  p,
			Volume: 1000,
		})
	}
	return bars
}

// MockTrendsFetcher serves fixed search-interest series keyed by keyword.
// It records the peak number of concurrent calls. With Synthetic set,
// unknown keywords get an hourly series that doubles every day.
type MockTrendsFetcher struct {
	Series    map[string][]model.TrendPoint
	Errs      map[string]error
	Delay     time.Duration
	Synthetic bool

	mu          sync.Mutex
	calls       int
	inFlight    int
	maxInFlight int
}

func (m *MockTrendsFetcher) Name() string { return "mock" }

func (m *MockTrendsFetcher) InterestOverTime(ctx context.Context, keyword string, from, to time.Time) ([]model.TrendPoint, error) {
	m.mu.Lock()
	m.calls++
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.Delay):
		}
	}
	if err := m.Errs[keyword]; err != nil {
		return nil, err
	}
	points, ok := m.Series[keyword]
	if !ok && m.Synthetic {
		return generateMockTrends(from, to), nil
	}
	if !ok {
		return nil, fmt.Errorf("trends %q: %w", keyword, ErrNotFound)
	}
	return points, nil
}

func generateMockTrends(from, to time.Time) []model.TrendPoint {
	var points []model.TrendPoint
	for t := from; !t.After(to); t = t.Add(time.Hour) {
		day := int(t.Sub(from).Hours() / 24)
		points = append(points, model.TrendPoint{Time: t, Value: float64(int(1) << day)})
	}
	return points
}

// Calls returns how many requests have been made.
func (m *MockTrendsFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MaxInFlight returns the highest observed concurrency.
func (m *MockTrendsFetcher) MaxInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxInFlight
}
