package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"GapScout/internal/model"
)

// Data sources.
const (
	SourceLive = "live"
	SourceMock = "mock"
)

// Config holds all application configuration.
type Config struct {
	DataSource string `yaml:"data_source"`

	Polygon struct {
		APIKey    string  `yaml:"api_key"`
		BaseURL   string  `yaml:"base_url"`
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"polygon"`
	SerpAPI struct {
		APIKey    string  `yaml:"api_key"`
		BaseURL   string  `yaml:"base_url"`
		RateLimit float64 `yaml:"rate_limit"`
	} `yaml:"serpapi"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Calendar struct {
		HolidaysPath   string `yaml:"holidays_path"`
		MarketTimezone string `yaml:"market_timezone"`
	} `yaml:"calendar"`
	Screening  model.ScreeningCriteria `yaml:"screening"`
	Mode       string                  `yaml:"mode"`
	Tickers    []string                `yaml:"tickers"`
	TickerFile string                  `yaml:"ticker_file"`

	Pacing struct {
		BatchPause     time.Duration `yaml:"batch_pause"`
		DayPause       time.Duration `yaml:"day_pause"`
		RequestTimeout time.Duration `yaml:"request_timeout"`
	} `yaml:"pacing"`
	Output struct {
		Dir   string `yaml:"dir"`
		Excel bool   `yaml:"excel"`
	} `yaml:"output"`
	Log struct {
		Dir       string `yaml:"dir"`
		Verbosity int    `yaml:"verbosity"`
	} `yaml:"log"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Tracing bool   `yaml:"tracing"`
	Proxy   string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Pre-seeded so a file may set a threshold to zero.
	cfg.Screening = model.DefaultCriteria()
	cfg.Output.Excel = true

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		cfg.Polygon.APIKey = v
	}
	if v := os.Getenv("SERPAPI_KEY"); v != "" {
		cfg.SerpAPI.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HOLIDAYS_PATH"); v != "" {
		cfg.Calendar.HolidaysPath = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.Log.Dir = v
	}
	if v := os.Getenv("DATA_SOURCE"); v != "" {
		cfg.DataSource = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_DAILY"); v != "" {
		cfg.Schedule.DailyCron = v
	}
	if v := os.Getenv("TRACING_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Tracing = b
		}
	}

	// Defaults
	if cfg.DataSource == "" {
		cfg.DataSource = SourceLive
	}
	if cfg.Calendar.HolidaysPath == "" {
		cfg.Calendar.HolidaysPath = "configs/holidays.csv"
	}
	if cfg.Calendar.MarketTimezone == "" {
		cfg.Calendar.MarketTimezone = "America/New_York"
	}
	if cfg.Mode == "" {
		cfg.Mode = string(model.ModeBoth)
	}
	if cfg.Pacing.BatchPause == 0 {
		cfg.Pacing.BatchPause = time.Second
	}
	if cfg.Pacing.DayPause == 0 {
		cfg.Pacing.DayPause = time.Second
	}
	if cfg.Pacing.RequestTimeout == 0 {
		cfg.Pacing.RequestTimeout = 45 * time.Second
	}
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "output"
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "logs"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 35 9 * * 1-5"
	}

	return cfg, nil
}

// Validate checks settings independent of which stages run.
func (c *Config) Validate() error {
	if c.DataSource != SourceLive && c.DataSource != SourceMock {
		return fmt.Errorf("data_source must be %q or %q, got %q", SourceLive, SourceMock, c.DataSource)
	}
	if c.Calendar.HolidaysPath == "" {
		return errors.New("calendar.holidays_path is required")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := model.ParseMode(c.Mode); err != nil {
		return fmt.Errorf("mode: %w", err)
	}
	if err := c.Screening.Validate(); err != nil {
		return fmt.Errorf("screening: %w", err)
	}
	if c.Pacing.BatchPause < 0 || c.Pacing.DayPause < 0 || c.Pacing.RequestTimeout < 0 {
		return errors.New("pacing durations must not be negative")
	}
	return nil
}

// RequireKeys checks that the credentials for the stages of mode are set.
func (c *Config) RequireKeys(mode model.Mode) error {
	if c.DataSource == SourceMock {
		return nil
	}
	if mode.RunsMarket() && c.Polygon.APIKey == "" {
		return errors.New("POLYGON_API_KEY is required unless running trends only")
	}
	if mode.RunsTrends() && c.SerpAPI.APIKey == "" {
		return errors.New("SERPAPI_KEY is required unless running market only")
	}
	return nil
}

// TelegramEnabled reports whether both Telegram settings are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// Location resolves the market timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Calendar.MarketTimezone)
	if err != nil {
		return nil, fmt.Errorf("calendar.market_timezone: %w", err)
	}
	return loc, nil
}
