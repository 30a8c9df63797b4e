package calculator

import (
	"time"

	"GapScout/internal/model"
)

// Premarket session bounds in exchange-local time, [open, close).
const (
	premarketOpenMinute  = 4 * 60
	premarketCloseMinute = 9*60 + 30
)

// PercentChange returns (to-from)/from*100, or 0 when from is 0.
func PercentChange(from, to float64) float64 {
	if from == 0 {
		return 0
	}
	return (to - from) / from * 100
}

// GapUpPercent is the open's change over the previous close.
func GapUpPercent(prevClose, open float64) float64 {
	return PercentChange(prevClose, open)
}

// InPremarket reports whether t falls in [04:00, 09:30) in loc.
func InPremarket(t time.Time, loc *time.Location) bool {
	lt := t.In(loc)
	m := lt.Hour()*60 + lt.Minute()
	return m >= premarketOpenMinute && m < premarketCloseMinute
}

// PremarketVolume sums bar volume inside the premarket window.
func PremarketVolume(bars []model.OHLCV, loc *time.Location) float64 {
	var total float64
	for _, b := range bars {
		if InPremarket(b.Time, loc) {
			total += b.Volume
		}
	}
	return total
}

// MarketCap approximates capitalisation from weighted shares and the open.
func MarketCap(weightedShares, open float64) float64 {
	return weightedShares * open
}
