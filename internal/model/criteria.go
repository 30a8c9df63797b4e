package model

import (
	"errors"
	"fmt"
)

// Mode selects which screening stages run for a date.
type Mode string

const (
	ModeBoth       Mode = "both"
	ModeTrendsOnly Mode = "trends"
	ModeMarketOnly Mode = "market"
)

// ParseMode maps a CLI/config value to a Mode. Empty means ModeBoth.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeBoth:
		return ModeBoth, nil
	case ModeTrendsOnly, ModeMarketOnly:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// RunsTrends reports whether the search-interest stage is part of the mode.
func (m Mode) RunsTrends() bool { return m != ModeMarketOnly }

// RunsMarket reports whether the market-data stage is part of the mode.
func (m Mode) RunsMarket() bool { return m != ModeTrendsOnly }

// ScreeningCriteria is the threshold set for one invocation.
type ScreeningCriteria struct {
	MinPremarketVolume     float64 `yaml:"min_premarket_volume"`
	MinPrice               float64 `yaml:"min_price"`
	MinGapUpPercent        float64 `yaml:"min_gap_up_percent"`
	MinMarketCap           float64 `yaml:"min_market_cap"`
	MinTrendsChangePercent float64 `yaml:"min_trends_change_percent"`
	BatchSize              int     `yaml:"batch_size"`
	MaxParallelDates       int     `yaml:"max_parallel_dates"`
}

// DefaultCriteria returns the stock thresholds.
func DefaultCriteria() ScreeningCriteria {
	return ScreeningCriteria{
		MinPremarketVolume:     50000,
		MinPrice:               3,
		MinGapUpPercent:        2,
		MinMarketCap:           100_000_000,
		MinTrendsChangePercent: 50,
		BatchSize:              5,
		MaxParallelDates:       5,
	}
}

// Validate rejects thresholds that cannot produce a meaningful run.
func (c ScreeningCriteria) Validate() error {
	if c.MinPremarketVolume < 0 || c.MinPrice < 0 || c.MinMarketCap < 0 {
		return errors.New("volume, price and market cap thresholds must not be negative")
	}
	if c.BatchSize <= 0 {
		return errors.New("batch size must be positive")
	}
	if c.MaxParallelDates <= 0 {
		return errors.New("max parallel dates must be positive")
	}
	return nil
}
