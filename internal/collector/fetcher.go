package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"GapScout/internal/model"
)

// ErrNotFound signals that the provider has no data for the request.
var ErrNotFound = errors.New("data not found")

// MarketFetcher provides reference data and price aggregates.
type MarketFetcher interface {
	TickerDetails(ctx context.Context, ticker string) (model.TickerDetails, error)
	DailyOpenClose(ctx context.Context, ticker string, day time.Time) (model.DailyBar, error)
	MinuteBars(ctx context.Context, ticker string, day time.Time) ([]model.OHLCV, error)
	Name() string
}

// TrendsFetcher provides hourly search-interest samples for a keyword.
type TrendsFetcher interface {
	InterestOverTime(ctx context.Context, keyword string, from, to time.Time) ([]model.TrendPoint, error)
	Name() string
}

// APIError is a non-success HTTP response from a provider.
type APIError struct {
	Provider   string
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %s (status: %d, endpoint: %s)", e.Provider, e.Message, e.StatusCode, e.Endpoint)
}

// IsNotFound reports whether err means "no data" rather than a failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
