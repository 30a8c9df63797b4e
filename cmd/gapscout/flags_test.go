package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"GapScout/internal/config"
	"GapScout/internal/model"
)

func parseFlags(t *testing.T, cfg *config.Config, args ...string) *commonFlags {
	t.Helper()
	var f commonFlags
	fs := newFlagSet("test")
	f.register(fs, cfg)
	require.NoError(t, fs.Parse(args))
	return &f
}

func testConfig() *config.Config {
	cfg := &config.Config{Screening: model.DefaultCriteria(), Mode: string(model.ModeBoth)}
	cfg.Output.Excel = true
	return cfg
}

func TestFlags_Defaults(t *testing.T) {
	f := parseFlags(t, testConfig())
	c, err := f.criteria()
	require.NoError(t, err)
	assert.Equal(t, model.DefaultCriteria(), c)
	mode, err := f.mode("both")
	require.NoError(t, err)
	assert.Equal(t, model.ModeBoth, mode)
	assert.Equal(t, verbosity(0), f.verbose)
	assert.False(t, f.noExcel)
}

func TestFlags_Overrides(t *testing.T) {
	f := parseFlags(t, testConfig(),
		"-v", "-v", "--min-market-cap", "1.5B", "--min-gap", "4", "--batch-size", "2", "--market-only", "--ticker", "aapl, tsla")
	c, err := f.criteria()
	require.NoError(t, err)
	assert.Equal(t, 1.5e9, c.MinMarketCap)
	assert.Equal(t, 4.0, c.MinGapUpPercent)
	assert.Equal(t, 2, c.BatchSize)
	assert.Equal(t, verbosity(2), f.verbose)

	mode, err := f.mode("both")
	require.NoError(t, err)
	assert.Equal(t, model.ModeMarketOnly, mode)

	tickers, err := f.tickerList(testConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"AAPL", "TSLA"}, tickers)
}

func TestFlags_Errors(t *testing.T) {
	f := parseFlags(t, testConfig(), "--trends-only", "--market-only", "--min-market-cap", "lots")
	_, err := f.mode("both")
	assert.Error(t, err)
	_, err = f.criteria()
	assert.Error(t, err)
	_, err = f.tickerList(testConfig())
	assert.Error(t, err)

	_, _, err = dateFlag("date", "2024-13-01")
	assert.Error(t, err)
	_, ok, err := dateFlag("date", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFlags_BacktestMode(t *testing.T) {
	mode, err := parseFlags(t, testConfig()).backtestMode()
	require.NoError(t, err)
	assert.Equal(t, model.ModeBoth, mode)

	_, err = parseFlags(t, testConfig(), "--trends-only").backtestMode()
	assert.Error(t, err)
	_, err = parseFlags(t, testConfig(), "--market-only").backtestMode()
	assert.Error(t, err)
}

func TestBacktestRequiresBothKeys(t *testing.T) {
	cfg := testConfig()
	cfg.DataSource = config.SourceLive
	cfg.SerpAPI.APIKey = "serp"
	mode, err := parseFlags(t, cfg).backtestMode()
	require.NoError(t, err)
	assert.Error(t, cfg.RequireKeys(mode), "polygon key is needed for the market stage")
}
