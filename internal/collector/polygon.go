package collector

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"GapScout/internal/model"
)

const (
	// PolygonBaseURL is the production Polygon.io endpoint.
	PolygonBaseURL = "https://api.polygon.io"
	// PolygonRateLimit is the default request pace (requests per second).
	PolygonRateLimit = 5
)

// PolygonFetcher implements MarketFetcher against the Polygon.io REST API.
type PolygonFetcher struct {
	apiKey string
	*client
}

// NewPolygonFetcher creates a Polygon client.
func NewPolygonFetcher(apiKey string, opts ...Option) *PolygonFetcher {
	return &PolygonFetcher{
		apiKey: apiKey,
		client: newClient("polygon", PolygonBaseURL, PolygonRateLimit, opts...),
	}
}

func (f *PolygonFetcher) Name() string { return "polygon" }

type polygonTickerResponse struct {
	Status  string `json:"status"`
	Results *struct {
		Ticker                    string  `json:"ticker"`
		Name                      string  `json:"name"`
		WeightedSharesOutstanding float64 `json:"weighted_shares_outstanding"`
		MarketCap                 float64 `json:"market_cap"`
	} `json:"results"`
}

type polygonOpenCloseResponse struct {
	Status     string  `json:"status"`
	From       string  `json:"from"`
	Symbol     string  `json:"symbol"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	Volume     float64 `json:"volume"`
	PreMarket  float64 `json:"preMarket"`
	AfterHours float64 `json:"afterHours"`
}

type polygonAggsResponse struct {
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []struct {
		Open   float64 `json:"o"`
		High   float64 `json:"h"`
		Low    float64 `json:"l"`
		Close  float64 `json:"c"`
		Volume float64 `json:"v"`
		VWAP   float64 `json:"vw"`
		Millis int64   `json:"t"`
	} `json:"results"`
}

func (f *PolygonFetcher) params(extra map[string]string) url.Values {
	v := url.Values{}
	for k, val := range extra {
		v.Set(k, val)
	}
	v.Set("apiKey", f.apiKey)
	return v
}

// TickerDetails fetches company name and weighted shares outstanding.
func (f *PolygonFetcher) TickerDetails(ctx context.Context, ticker string) (model.TickerDetails, error) {
	var resp polygonTickerResponse
	path := "/v3/reference/tickers/" + url.PathEscape(ticker)
	if err := f.getJSON(ctx, path, f.params(nil), &resp); err != nil {
		return model.TickerDetails{}, fmt.Errorf("ticker details %s: %w", ticker, err)
	}
	if resp.Results == nil {
		return model.TickerDetails{}, fmt.Errorf("ticker details %s: %w", ticker, ErrNotFound)
	}
	return model.TickerDetails{
		Ticker:                    ticker,
		Name:                      resp.Results.Name,
		WeightedSharesOutstanding: resp.Results.WeightedSharesOutstanding,
		MarketCap:                 resp.Results.MarketCap,
	}, nil
}

// DailyOpenClose fetches the day-level summary for one session.
func (f *PolygonFetcher) DailyOpenClose(ctx context.Context, ticker string, day time.Time) (model.DailyBar, error) {
	var resp polygonOpenCloseResponse
	d := day.Format("2006-01-02")
	path := fmt.Sprintf("/v1/open-close/%s/%s", url.PathEscape(ticker), d)
	if err := f.getJSON(ctx, path, f.params(map[string]string{"adjusted": "true"}), &resp); err != nil {
		return model.DailyBar{}, fmt.Errorf("open-close %s %s: %w", ticker, d, err)
	}
	if resp.Status != "OK" {
		return model.DailyBar{}, fmt.Errorf("open-close %s %s: status %q: %w", ticker, d, resp.Status, ErrNotFound)
	}
	return model.DailyBar{
		Symbol:     ticker,
		Day:        day,
		Open:       resp.Open,
		High:       resp.High,
		Low:        resp.Low,
		Close:      resp.Close,
		Volume:     resp.Volume,
		PreMarket:  resp.PreMarket,
		AfterHours: resp.AfterHours,
	}, nil
}

// MinuteBars fetches all one-minute aggregates of day, oldest first. A day
// without trades yields an empty slice.
func (f *PolygonFetcher) MinuteBars(ctx context.Context, ticker string, day time.Time) ([]model.OHLCV, error) {
	var resp polygonAggsResponse
	d := day.Format("2006-01-02")
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/minute/%s/%s", url.PathEscape(ticker), d, d)
	params := f.params(map[string]string{"adjusted": "true", "sort": "asc", "limit": "50000"})
	if err := f.getJSON(ctx, path, params, &resp); err != nil {
		return nil, fmt.Errorf("minute bars %s %s: %w", ticker, d, err)
	}
	bars := make([]model.OHLCV, len(resp.Results))
	for i, r := range resp.Results {
		bars[i] = model.OHLCV{
			Time:   time.UnixMilli(r.Millis).UTC(),
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: r.Volume,
			VWAP:   r.VWAP,
		}
	}
	return bars, nil
}
