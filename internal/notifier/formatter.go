package notifier

import (
	"fmt"
	"html"
	"math"
	"strings"
	"time"

	"GapScout/internal/model"
)

// FormatDateReport formats one date's combined signals as a Telegram message.
func FormatDateReport(res *model.AnalysisResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📈 <b>GapScout</b> | %s\n\n", res.Date.Format("2006-01-02")))

	if len(res.CombinedResults) == 0 {
		b.WriteString(fmt.Sprintf("No combined signals (%d trending, %d gapping).\n",
			len(res.TrendResults), len(res.MarketResults)))
		return b.String()
	}
	for _, r := range res.CombinedResults {
		b.WriteString(fmt.Sprintf("<b>%s</b> %s\n", html.EscapeString(r.Ticker), html.EscapeString(r.CompanyName)))
		b.WriteString(fmt.Sprintf("  gap %+.2f%% | trends %s | pre-mkt vol %.0f\n",
			r.GapUpPercent, trendText(r.TrendsChangePercent), r.PremarketVolume))
		b.WriteString(fmt.Sprintf("  open %.2f | O→H %+.2f%% | O→C %+.2f%%\n",
			r.OpenPrice, r.OpenToHighPercent, r.OpenToClosePercent))
	}
	return b.String()
}

// FormatBacktestReport formats backtest statistics.
func FormatBacktestReport(start, end time.Time, s model.BacktestSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("🧪 <b>Backtest</b> | %s → %s\n\n", start.Format("2006-01-02"), end.Format("2006-01-02")))
	if s.Records == 0 {
		b.WriteString("No combined signals.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Signals: %d over %d days\n", s.Records, s.Days))
	b.WriteString(fmt.Sprintf("Avg gap: %+.2f%%\n", s.AvgGapUpPercent))
	b.WriteString(fmt.Sprintf("Avg trends: %+.2f%%\n", s.AvgTrendsChange))
	b.WriteString(fmt.Sprintf("Success rate: %.1f%%\n", s.SuccessRate))
	if s.Best != nil {
		b.WriteString(fmt.Sprintf("Best: <b>%s</b> %s (%+.2f%%)\n",
			html.EscapeString(s.Best.Ticker), s.Best.Date.Format("2006-01-02"), s.Best.OpenToClosePercent))
	}
	return b.String()
}

func trendText(v float64) string {
	if math.IsInf(v, 1) {
		return "new interest"
	}
	return fmt.Sprintf("%+.0f%%", v)
}
