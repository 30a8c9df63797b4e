package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// tickerFile mirrors the exported workflow format:
// [{"json":{"tickers":[{"ticker":"AAPL"}]}}]
type tickerFile []struct {
	JSON struct {
		Tickers []struct {
			Ticker string `json:"ticker"`
		} `json:"tickers"`
	} `json:"json"`
}

// LoadTickerFile reads ticker symbols from a JSON ticker file.
func LoadTickerFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ticker file: %w", err)
	}
	var tf tickerFile
	if err := json.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("parse ticker file: %w", err)
	}
	var raw []string
	for _, entry := range tf {
		for _, t := range entry.JSON.Tickers {
			raw = append(raw, t.Ticker)
		}
	}
	tickers := NormalizeTickers(raw)
	if len(tickers) == 0 {
		return nil, fmt.Errorf("ticker file %s contains no tickers", path)
	}
	return tickers, nil
}

// NormalizeTickers trims, upper-cases and de-duplicates symbols, keeping
// first-seen order. Comma-separated entries are split.
func NormalizeTickers(in []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, item := range in {
		for _, t := range strings.Split(item, ",") {
			t = strings.ToUpper(strings.TrimSpace(t))
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// ParseMarketCap parses "100M", "1.5B" or a plain number into dollars.
func ParseMarketCap(s string) (float64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("empty market cap")
	}
	mult := 1.0
	switch s[len(s)-1] {
	case 'M':
		mult, s = 1e6, s[:len(s)-1]
	case 'B':
		mult, s = 1e9, s[:len(s)-1]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid market cap %q: %w", s, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("market cap must not be negative")
	}
	return v * mult, nil
}
