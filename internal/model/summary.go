package model

// BacktestSummary aggregates the combined records of a backtest.
type BacktestSummary struct {
	Records            int
	Days               int
	AvgGapUpPercent    float64
	AvgTrendsChange    float64 // over finite values only
	InfiniteTrends     int
	AvgPremarketVolume float64
	SuccessRate        float64 // percent of records closing above the open
	Best               *CombinedRecord
}
