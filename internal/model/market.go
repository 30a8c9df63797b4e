package model

import "time"

// OHLCV represents a single candlestick bar.
type OHLCV struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
	VWAP   float64
}

// DailyBar is the day-level open/close summary for one ticker.
type DailyBar struct {
	Symbol     string
	Day        time.Time
	Open       float64
	High       float64
	Low        float64
	Close      float64
	Volume     float64
	PreMarket  float64
	AfterHours float64
}

// TickerDetails holds the reference data needed for screening.
type TickerDetails struct {
	Ticker                    string
	Name                      string
	WeightedSharesOutstanding float64
	MarketCap                 float64
}

// TrendPoint is one hourly search-interest sample.
type TrendPoint struct {
	Time  time.Time
	Value float64
}
