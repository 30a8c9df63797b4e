package screener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"GapScout/internal/calculator"
	"GapScout/internal/calendar"
	"GapScout/internal/collector"
	"GapScout/internal/model"
)

var (
	// ErrNotTradingDay is returned for weekends and market holidays.
	ErrNotTradingDay = errors.New("not a trading day")
	// ErrCriteriaNotMet is returned when metrics miss a threshold.
	ErrCriteriaNotMet = errors.New("screening criteria not met")
)

// MarketAnalyzer computes premarket gap-up metrics for one ticker and date.
type MarketAnalyzer struct {
	fetcher collector.MarketFetcher
	cal     *calendar.Calendar
	opts    Options
	logger  *zap.Logger
}

// NewMarketAnalyzer creates a MarketAnalyzer.
func NewMarketAnalyzer(f collector.MarketFetcher, cal *calendar.Calendar, logger *zap.Logger, opts Options) *MarketAnalyzer {
	return &MarketAnalyzer{
		fetcher: f,
		cal:     cal,
		opts:    opts.withDefaults(),
		logger:  logger.With(zap.String("stage", "market")),
	}
}

// Analyze returns the ticker's metrics and true when every threshold is
// met. Absence and fetch failures are logged and reported as false.
func (a *MarketAnalyzer) Analyze(ctx context.Context, ticker string, day time.Time, c model.ScreeningCriteria) (model.MarketMetrics, bool) {
	m, err := a.Evaluate(ctx, ticker, day)
	if err == nil {
		err = checkMarket(m, c)
	}
	log := a.logger.With(zap.String("ticker", ticker), zap.String("date", calendar.Format(day)))
	switch {
	case err == nil:
		log.Info("market criteria met",
			zap.Float64("gap_up", m.GapUpPercent),
			zap.Float64("premarket_volume", m.PremarketVolume))
		return m, true
	case errors.Is(err, ErrCriteriaNotMet):
		log.Debug("filtered out", zap.Error(err))
	case errors.Is(err, ErrNotTradingDay), collector.IsNotFound(err):
		log.Warn("no market data", zap.Error(err))
	default:
		log.Error("market analysis failed", zap.Error(err))
	}
	return model.MarketMetrics{}, false
}

// Evaluate computes metrics without applying thresholds.
func (a *MarketAnalyzer) Evaluate(ctx context.Context, ticker string, day time.Time) (model.MarketMetrics, error) {
	day = calendar.Day(day)
	if !a.cal.IsTradingDay(day) {
		return model.MarketMetrics{}, fmt.Errorf("%s: %w", calendar.Format(day), ErrNotTradingDay)
	}

	var details model.TickerDetails
	if err := a.call(ctx, func(ctx context.Context) (err error) {
		details, err = a.fetcher.TickerDetails(ctx, ticker)
		return err
	}); err != nil {
		return model.MarketMetrics{}, err
	}

	prevDay, err := a.cal.LastTradingDay(day)
	if err != nil {
		return model.MarketMetrics{}, err
	}
	var prev, cur model.DailyBar
	if err := a.call(ctx, func(ctx context.Context) (err error) {
		prev, err = a.fetcher.DailyOpenClose(ctx, ticker, prevDay)
		return err
	}); err != nil {
		return model.MarketMetrics{}, fmt.Errorf("previous close: %w", err)
	}
	if err := a.call(ctx, func(ctx context.Context) (err error) {
		cur, err = a.fetcher.DailyOpenClose(ctx, ticker, day)
		return err
	}); err != nil {
		return model.MarketMetrics{}, fmt.Errorf("current session: %w", err)
	}
	var bars []model.OHLCV
	if err := a.call(ctx, func(ctx context.Context) (err error) {
		bars, err = a.fetcher.MinuteBars(ctx, ticker, day)
		return err
	}); err != nil {
		return model.MarketMetrics{}, fmt.Errorf("minute bars: %w", err)
	}

	return model.NewMarketMetrics(model.MarketMetrics{
		Ticker:             ticker,
		CompanyName:        details.Name,
		PremarketVolume:    calculator.PremarketVolume(bars, a.opts.MarketLocation),
		GapUpPercent:       calculator.GapUpPercent(prev.Close, cur.Open),
		MarketCap:          calculator.MarketCap(details.WeightedSharesOutstanding, cur.Open),
		OpenPrice:          cur.Open,
		HighPrice:          cur.High,
		ClosePrice:         cur.Close,
		OpenToHighPercent:  calculator.PercentChange(cur.Open, cur.High),
		OpenToClosePercent: calculator.PercentChange(cur.Open, cur.Close),
	})
}

func (a *MarketAnalyzer) call(ctx context.Context, fn func(context.Context) error) error {
	cctx, cancel := a.opts.callContext(ctx)
	defer cancel()
	return fn(cctx)
}

// checkMarket applies the inclusive market thresholds.
func checkMarket(m model.MarketMetrics, c model.ScreeningCriteria) error {
	switch {
	case m.PremarketVolume < c.MinPremarketVolume:
		return fmt.Errorf("%w: premarket volume %.0f < %.0f", ErrCriteriaNotMet, m.PremarketVolume, c.MinPremarketVolume)
	case m.OpenPrice < c.MinPrice:
		return fmt.Errorf("%w: price %.2f < %.2f", ErrCriteriaNotMet, m.OpenPrice, c.MinPrice)
	case m.GapUpPercent < c.MinGapUpPercent:
		return fmt.Errorf("%w: gap up %.2f%% < %.2f%%", ErrCriteriaNotMet, m.GapUpPercent, c.MinGapUpPercent)
	case m.MarketCap < c.MinMarketCap:
		return fmt.Errorf("%w: market cap %.0f < %.0f", ErrCriteriaNotMet, m.MarketCap, c.MinMarketCap)
	}
	return nil
}
