package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"GapScout/internal/calendar"
	"GapScout/internal/config"
	"GapScout/internal/model"
)

// verbosity counts repeated -v flags.
type verbosity int

func (v *verbosity) String() string { return strconv.Itoa(int(*v)) }

func (v *verbosity) Set(s string) error {
	if s == "true" {
		*v++
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("verbosity must be a number: %w", err)
	}
	*v = verbosity(n)
	return nil
}

func (v *verbosity) IsBoolFlag() bool { return true }

// commonFlags are shared by every subcommand.
type commonFlags struct {
	tickers      string
	tickerFile   string
	minVolume    float64
	minPrice     float64
	minGap       float64
	minMarketCap string
	minTrends    float64
	batchSize    int
	maxParallel  int
	trendsOnly   bool
	marketOnly   bool
	outputDir    string
	noExcel      bool
	verbose      verbosity
}

// register binds the flags with defaults taken from cfg.
func (f *commonFlags) register(fs *flag.FlagSet, cfg *config.Config) {
	c := cfg.Screening
	fs.StringVar(&f.tickers, "ticker", "", "comma-separated ticker symbols")
	fs.StringVar(&f.tickerFile, "ticker-file", cfg.TickerFile, "JSON ticker file")
	fs.Float64Var(&f.minVolume, "min-volume", c.MinPremarketVolume, "minimum premarket volume")
	fs.Float64Var(&f.minPrice, "min-price", c.MinPrice, "minimum open price")
	fs.Float64Var(&f.minGap, "min-gap", c.MinGapUpPercent, "minimum gap-up percent")
	fs.StringVar(&f.minMarketCap, "min-market-cap", strconv.FormatFloat(c.MinMarketCap, 'f', -1, 64), `minimum market cap, e.g. "100M" or "1.5B"`)
	fs.Float64Var(&f.minTrends, "min-trends-change", c.MinTrendsChangePercent, "minimum search-interest change percent")
	fs.IntVar(&f.batchSize, "batch-size", c.BatchSize, "search-interest requests per batch")
	fs.IntVar(&f.maxParallel, "max-parallel", c.MaxParallelDates, "dates analysed concurrently")
	fs.BoolVar(&f.trendsOnly, "trends-only", false, "run only the search-interest stage")
	fs.BoolVar(&f.marketOnly, "market-only", false, "run only the market-data stage")
	fs.StringVar(&f.outputDir, "output-dir", cfg.Output.Dir, "directory for Excel reports")
	fs.BoolVar(&f.noExcel, "no-excel", !cfg.Output.Excel, "skip Excel reports")
	f.verbose = verbosity(cfg.Log.Verbosity)
	fs.Var(&f.verbose, "v", "verbose output; repeat for debug")
}

// criteria builds the screening thresholds.
func (f *commonFlags) criteria() (model.ScreeningCriteria, error) {
	capValue, err := config.ParseMarketCap(f.minMarketCap)
	if err != nil {
		return model.ScreeningCriteria{}, err
	}
	c := model.ScreeningCriteria{
		MinPremarketVolume:     f.minVolume,
		MinPrice:               f.minPrice,
		MinGapUpPercent:        f.minGap,
		MinMarketCap:           capValue,
		MinTrendsChangePercent: f.minTrends,
		BatchSize:              f.batchSize,
		MaxParallelDates:       f.maxParallel,
	}
	return c, c.Validate()
}

// mode resolves the stage flags against the configured mode.
func (f *commonFlags) mode(configured string) (model.Mode, error) {
	switch {
	case f.trendsOnly && f.marketOnly:
		return "", fmt.Errorf("--trends-only and --market-only are mutually exclusive")
	case f.trendsOnly:
		return model.ModeTrendsOnly, nil
	case f.marketOnly:
		return model.ModeMarketOnly, nil
	}
	return model.ParseMode(configured)
}

// backtestMode is always ModeBoth; the stage flags are rejected.
func (f *commonFlags) backtestMode() (model.Mode, error) {
	if f.trendsOnly || f.marketOnly {
		return "", fmt.Errorf("backtest runs both stages; --trends-only and --market-only are not supported")
	}
	return model.ModeBoth, nil
}

// tickerList resolves --ticker, then --ticker-file, then the config list.
func (f *commonFlags) tickerList(cfg *config.Config) ([]string, error) {
	if f.tickers != "" {
		if t := config.NormalizeTickers([]string{f.tickers}); len(t) > 0 {
			return t, nil
		}
	}
	if f.tickerFile != "" {
		return config.LoadTickerFile(f.tickerFile)
	}
	if t := config.NormalizeTickers(cfg.Tickers); len(t) > 0 {
		return t, nil
	}
	return nil, fmt.Errorf("no tickers: pass --ticker or --ticker-file")
}

// dateFlag parses an optional YYYY-MM-DD flag value.
func dateFlag(name, v string) (time.Time, bool, error) {
	if v == "" {
		return time.Time{}, false, nil
	}
	d, err := calendar.ParseDay(v)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("--%s: %w", name, err)
	}
	return d, true, nil
}

func newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	return fs
}
