package recorder

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"GapScout/internal/model"
)

const (
	headerFill = "366092"
	gainColor  = "006100"
	lossColor  = "920000"
	colWidth   = 15
)

var (
	marketHeaders = []string{
		"Date", "Ticker", "Company Name", "Pre-market Volume", "Gap Up %", "Market Cap",
		"Open Price", "High Price", "Close Price", "Open to High %", "Open to Close %",
	}
	combinedHeaders = append(append([]string{}, marketHeaders...), "Trends Change %", "4-5 AM %", "5-6 AM %")
	trendHeaders    = []string{"Date", "Ticker", "Trends Change %", "4-5 AM %", "5-6 AM %"}
)

// ExcelRecorder writes one workbook per analysed date or backtest.
type ExcelRecorder struct {
	dir    string
	logger *zap.Logger
}

// NewExcelRecorder creates the output directory if needed.
func NewExcelRecorder(dir string, logger *zap.Logger) (*ExcelRecorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &ExcelRecorder{dir: dir, logger: logger}, nil
}

// DatePath is where RecordDate writes the workbook for day.
func (r *ExcelRecorder) DatePath(day time.Time) string {
	d := day.Format("2006-01-02")
	return filepath.Join(r.dir, "analysis_"+d, "stock_analysis_"+d+".xlsx")
}

// BacktestPath is where RecordBacktest writes its workbook.
func (r *ExcelRecorder) BacktestPath(start, end time.Time) string {
	return filepath.Join(r.dir, fmt.Sprintf("backtest_%s_%s.xlsx", start.Format("2006-01-02"), end.Format("2006-01-02")))
}

// RecordDate writes Combined, Market and Trends sheets. Empty results are
// skipped.
func (r *ExcelRecorder) RecordDate(res *model.AnalysisResult) error {
	if res.Empty() {
		r.logger.Info("no results to export", zap.String("date", res.Date.Format("2006-01-02")))
		return nil
	}
	path := r.DatePath(res.Date)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create analysis dir: %w", err)
	}

	w, err := newWorkbook()
	if err != nil {
		return err
	}
	defer w.f.Close()

	if err := w.combinedSheet("Combined", res.CombinedResults); err != nil {
		return err
	}
	market := make([][]any, 0, len(res.MarketResults))
	pctCols := []int{5, 10, 11}
	for _, m := range res.MarketResults {
		market = append(market, marketRow(res.Date, m))
	}
	if err := w.sheet("Market", marketHeaders, market, pctCols); err != nil {
		return err
	}
	trends := make([][]any, 0, len(res.TrendResults))
	for _, t := range res.TrendResults {
		trends = append(trends, []any{
			res.Date.Format("2006-01-02"), t.Ticker,
			pctCell(&t.TotalChangePercent), pctCell(t.Hour4To5Percent), pctCell(t.Hour5To6Percent),
		})
	}
	if err := w.sheet("Trends", trendHeaders, trends, []int{3, 4, 5}); err != nil {
		return err
	}
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	r.logger.Info("results exported", zap.String("path", path))
	return nil
}

// RecordBacktest writes all combined records of a backtest to one sheet.
func (r *ExcelRecorder) RecordBacktest(start, end time.Time, records []model.CombinedRecord, _ model.BacktestSummary) error {
	if len(records) == 0 {
		return nil
	}
	w, err := newWorkbook()
	if err != nil {
		return err
	}
	defer w.f.Close()
	if err := w.combinedSheet("Combined", records); err != nil {
		return err
	}
	path := r.BacktestPath(start, end)
	if err := w.f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	r.logger.Info("backtest exported", zap.String("path", path), zap.Int("records", len(records)))
	return nil
}

func (r *ExcelRecorder) Close() error { return nil }

type workbook struct {
	f      *excelize.File
	header int
	gain   int
	loss   int
	first  bool
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{headerFill}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	gain, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: gainColor}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("gain style: %w", err)
	}
	loss, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: lossColor}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("loss style: %w", err)
	}
	return &workbook{f: f, header: header, gain: gain, loss: loss, first: true}, nil
}

func (w *workbook) combinedSheet(name string, records []model.CombinedRecord) error {
	rows := make([][]any, 0, len(records))
	for _, c := range records {
		row := marketRow(c.Date, c.MarketMetrics)
		row = append(row, pctCell(&c.TrendsChangePercent), pctCell(c.Hour4To5Percent), pctCell(c.Hour5To6Percent))
		rows = append(rows, row)
	}
	return w.sheet(name, combinedHeaders, rows, []int{5, 10, 11, 12, 13, 14})
}

// sheet writes headers and rows. pctCols are 1-based columns coloured by sign.
func (w *workbook) sheet(name string, headers []string, rows [][]any, pctCols []int) error {
	if w.first {
		if err := w.f.SetSheetName("Sheet1", name); err != nil {
			return fmt.Errorf("rename sheet: %w", err)
		}
		w.first = false
	} else if _, err := w.f.NewSheet(name); err != nil {
		return fmt.Errorf("new sheet %s: %w", name, err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := w.f.SetCellValue(name, cell, h); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, 1)
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	if err := w.f.SetCellStyle(name, first, last, w.header); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(headers))
	if err := w.f.SetColWidth(name, "A", lastCol, colWidth); err != nil {
		return err
	}

	isPct := make(map[int]bool, len(pctCols))
	for _, c := range pctCols {
		isPct[c] = true
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := w.f.SetCellValue(name, cell, v); err != nil {
				return err
			}
			if !isPct[c+1] {
				continue
			}
			if style, ok := w.signStyle(v); ok {
				if err := w.f.SetCellStyle(name, cell, cell, style); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func (w *workbook) signStyle(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		if x > 0 {
			return w.gain, true
		}
		if x < 0 {
			return w.loss, true
		}
	case string:
		if x == "inf" {
			return w.gain, true
		}
	}
	return 0, false
}

func marketRow(day time.Time, m model.MarketMetrics) []any {
	return []any{
		day.Format("2006-01-02"),
		m.Ticker,
		m.CompanyName,
		int64(m.PremarketVolume),
		round2(m.GapUpPercent),
		int64(m.MarketCap),
		round2(m.OpenPrice),
		round2(m.HighPrice),
		round2(m.ClosePrice),
		round2(m.OpenToHighPercent),
		round2(m.OpenToClosePercent),
	}
}

// pctCell returns a rounded number, or a string where a spreadsheet
// cannot hold the value.
func pctCell(v *float64) any {
	if v == nil || math.IsInf(*v, 0) || math.IsNaN(*v) {
		return formatPercent(v)
	}
	return round2(*v)
}
