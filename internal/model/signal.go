package model

import (
	"errors"
	"time"
)

// MarketMetrics is one ticker's market-data screening record for a date.
type MarketMetrics struct {
	Ticker             string
	CompanyName        string
	PremarketVolume    float64
	GapUpPercent       float64
	MarketCap          float64
	OpenPrice          float64
	HighPrice          float64
	ClosePrice         float64
	OpenToHighPercent  float64
	OpenToClosePercent float64
}

// NewMarketMetrics validates and returns m. Volume, open price and market
// cap must not be negative.
func NewMarketMetrics(m MarketMetrics) (MarketMetrics, error) {
	if m.PremarketVolume < 0 {
		return MarketMetrics{}, errors.New("premarket volume is negative")
	}
	if m.OpenPrice < 0 {
		return MarketMetrics{}, errors.New("open price is negative")
	}
	if m.MarketCap < 0 {
		return MarketMetrics{}, errors.New("market cap is negative")
	}
	return m, nil
}

// TrendMetrics is one ticker's search-interest record for a date.
// TotalChangePercent may be +Inf when the previous day had zero interest.
type TrendMetrics struct {
	Ticker             string
	Date               time.Time
	TotalChangePercent float64
	Hour4To5Percent    *float64
	Hour5To6Percent    *float64
	Series             []TrendPoint
}

// CombinedRecord joins market and trend metrics for the same ticker and date.
type CombinedRecord struct {
	Date time.Time
	MarketMetrics
	TrendsChangePercent float64
	Hour4To5Percent     *float64
	Hour5To6Percent     *float64
}

// AnalysisResult holds the three ordered result sets for a date.
type AnalysisResult struct {
	Date            time.Time
	TrendResults    []TrendMetrics
	MarketResults   []MarketMetrics
	CombinedResults []CombinedRecord
}

// Empty reports whether no stage produced anything.
func (r *AnalysisResult) Empty() bool {
	return r == nil || len(r.TrendResults) == 0 && len(r.MarketResults) == 0 && len(r.CombinedResults) == 0
}

// DateResult is the outcome of one date in a multi-date run. Result is nil
// when Err is set.
type DateResult struct {
	Date   time.Time
	Result *AnalysisResult
	Err    error
}
