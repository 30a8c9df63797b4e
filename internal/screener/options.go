package screener

import (
	"context"
	"time"
)

// Defaults applied by withDefaults.
const (
	DefaultBatchPause = time.Second
	DefaultDayPause   = time.Second
	DefaultMarketTZ   = "America/New_York"
)

// DefaultHours are the early-morning hours compared by the trends stage.
var DefaultHours = []int{4, 5, 6}

// TrendsLocation is the fixed UTC-8 zone search-interest samples are read in.
var TrendsLocation = time.FixedZone("UTC-8", -8*60*60)

// Options tunes the analyzers. Zero values take defaults.
type Options struct {
	// MarketLocation is the exchange timezone for the premarket window.
	MarketLocation *time.Location
	// TrendsLocation interprets search-interest timestamps.
	TrendsLocation *time.Location
	// Hours of interest for the trends comparison.
	Hours []int
	// RequestTimeout bounds every external call. Zero means no bound.
	RequestTimeout time.Duration
	// BatchPause separates trends batches.
	BatchPause time.Duration
	// DayPause separates consecutive backtest days.
	DayPause time.Duration
	// Sleep waits for d or until ctx is done. Tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

func (o Options) withDefaults() Options {
	if o.MarketLocation == nil {
		loc, err := time.LoadLocation(DefaultMarketTZ)
		if err != nil {
			loc = time.FixedZone("EST", -5*60*60)
		}
		o.MarketLocation = loc
	}
	if o.TrendsLocation == nil {
		o.TrendsLocation = TrendsLocation
	}
	if len(o.Hours) == 0 {
		o.Hours = DefaultHours
	}
	if o.BatchPause == 0 {
		o.BatchPause = DefaultBatchPause
	}
	if o.DayPause == 0 {
		o.DayPause = DefaultDayPause
	}
	if o.Sleep == nil {
		o.Sleep = sleep
	}
	return o
}

func (o Options) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.RequestTimeout > 0 {
		return context.WithTimeout(ctx, o.RequestTimeout)
	}
	return context.WithCancel(ctx)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
