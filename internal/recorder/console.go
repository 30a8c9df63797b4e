package recorder

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"GapScout/internal/model"
)

// ConsoleRecorder prints results as plain text.
type ConsoleRecorder struct {
	w io.Writer
}

func NewConsoleRecorder(w io.Writer) *ConsoleRecorder { return &ConsoleRecorder{w: w} }

func (c *ConsoleRecorder) RecordDate(res *model.AnalysisResult) error {
	_, err := io.WriteString(c.w, FormatDate(res))
	return err
}

func (c *ConsoleRecorder) RecordBacktest(start, end time.Time, records []model.CombinedRecord, summary model.BacktestSummary) error {
	_, err := io.WriteString(c.w, FormatBacktest(start, end, records, summary))
	return err
}

func (c *ConsoleRecorder) Close() error { return nil }

// FormatDate renders one date's market, trends and combined results.
func FormatDate(res *model.AnalysisResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n=== Analysis for %s ===\n", res.Date.Format("2006-01-02")))
	if res.Empty() {
		b.WriteString("No stocks met the criteria.\n")
		return b.String()
	}

	if len(res.MarketResults) > 0 {
		b.WriteString("\nMarket data results:\n")
		for _, m := range res.MarketResults {
			writeMarket(&b, m)
		}
	}
	if len(res.TrendResults) > 0 {
		b.WriteString("\nTrends results:\n")
		for _, t := range res.TrendResults {
			b.WriteString(fmt.Sprintf("  %-6s trends %s%% | 4-5 AM %s%% | 5-6 AM %s%%\n",
				t.Ticker, formatPercent(&t.TotalChangePercent), formatPercent(t.Hour4To5Percent), formatPercent(t.Hour5To6Percent)))
		}
	}
	if len(res.CombinedResults) > 0 {
		b.WriteString("\nCombined results:\n")
		for _, r := range res.CombinedResults {
			b.WriteString(fmt.Sprintf("  %-6s gap %s%% | trends %s%% | volume %s\n",
				r.Ticker, pct(r.GapUpPercent), formatPercent(&r.TrendsChangePercent), humanize.Comma(int64(r.PremarketVolume))))
		}
	}
	b.WriteString(fmt.Sprintf("\nSummary: %d trends, %d market, %d combined\n",
		len(res.TrendResults), len(res.MarketResults), len(res.CombinedResults)))
	return b.String()
}

// FormatBacktest renders backtest statistics.
func FormatBacktest(start, end time.Time, records []model.CombinedRecord, s model.BacktestSummary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("\n=== Backtest %s to %s ===\n", start.Format("2006-01-02"), end.Format("2006-01-02")))
	if s.Records == 0 {
		b.WriteString("No combined signals found.\n")
		return b.String()
	}
	b.WriteString(fmt.Sprintf("Signals: %d over %d days\n", s.Records, s.Days))
	b.WriteString(fmt.Sprintf("Average gap up: %s%%\n", pct(s.AvgGapUpPercent)))
	b.WriteString(fmt.Sprintf("Average trends change: %s%%", pct(s.AvgTrendsChange)))
	if s.InfiniteTrends > 0 {
		b.WriteString(fmt.Sprintf(" (+%d from zero interest)", s.InfiniteTrends))
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("Average premarket volume: %s\n", humanize.Comma(int64(s.AvgPremarketVolume))))
	b.WriteString(fmt.Sprintf("Success rate (close > open): %s%%\n", pct(s.SuccessRate)))
	if s.Best != nil {
		b.WriteString(fmt.Sprintf("Best: %s on %s, open to close %s%%\n",
			s.Best.Ticker, s.Best.Date.Format("2006-01-02"), pct(s.Best.OpenToClosePercent)))
	}
	b.WriteString("\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf("  %s %-6s gap %s%% | trends %s%% | O→C %s%%\n",
			r.Date.Format("2006-01-02"), r.Ticker, pct(r.GapUpPercent), formatPercent(&r.TrendsChangePercent), pct(r.OpenToClosePercent)))
	}
	return b.String()
}

func writeMarket(b *strings.Builder, m model.MarketMetrics) {
	b.WriteString(fmt.Sprintf("  %-6s %s\n", m.Ticker, m.CompanyName))
	b.WriteString(fmt.Sprintf("         premarket volume %s | gap up %s%% | market cap $%s\n",
		humanize.Comma(int64(m.PremarketVolume)), pct(m.GapUpPercent), humanize.Comma(int64(m.MarketCap))))
	b.WriteString(fmt.Sprintf("         open %s high %s close %s | O→H %s%% | O→C %s%%\n",
		money(m.OpenPrice), money(m.HighPrice), money(m.ClosePrice), pct(m.OpenToHighPercent), pct(m.OpenToClosePercent)))
}

func pct(v float64) string { return formatPercent(&v) }

func money(v float64) string { return "$" + decimal.NewFromFloat(v).StringFixed(2) }
