package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"GapScout/internal/calendar"
	"GapScout/internal/collector"
	"GapScout/internal/config"
	"GapScout/internal/logging"
	"GapScout/internal/model"
	"GapScout/internal/notifier"
	"GapScout/internal/recorder"
	"GapScout/internal/screener"
	"GapScout/internal/trace"
)

const telegramRetries = 3

// app holds everything a subcommand needs.
type app struct {
	cfg      *config.Config
	logger   *zap.Logger
	loc      *time.Location
	screener *screener.Screener
	recorder recorder.Recorder
	telegram *notifier.TelegramNotifier
	criteria model.ScreeningCriteria
	mode     model.Mode
	tickers  []string

	closers []func() error
}

func loadConfig() (*config.Config, error) {
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// setup parses flags and builds the application. extra registers
// subcommand-specific flags.
func setup(ctx context.Context, name string, args []string, extra func(*flag.FlagSet)) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	var f commonFlags
	fs := newFlagSet(name)
	f.register(fs, cfg)
	if extra != nil {
		extra(fs)
	}
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	a := &app{cfg: cfg}
	if a.criteria, err = f.criteria(); err != nil {
		return nil, fmt.Errorf("criteria: %w", err)
	}
	if name == "backtest" {
		a.mode, err = f.backtestMode()
	} else {
		a.mode, err = f.mode(cfg.Mode)
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireKeys(a.mode); err != nil {
		return nil, err
	}
	if a.tickers, err = f.tickerList(cfg); err != nil {
		return nil, err
	}
	if a.loc, err = cfg.Location(); err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(logging.Options{Verbosity: int(f.verbose), Dir: cfg.Log.Dir})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	a.logger = logger
	a.closers = append(a.closers, closeLog)

	tp, err := trace.Init(cfg.Tracing, os.Stderr)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init tracing: %w", err)
	}
	a.closers = append(a.closers, func() error { return tp.Shutdown(context.Background()) })

	// The holiday file gates every analyzer.
	cal, err := calendar.Load(cfg.Calendar.HolidaysPath)
	if err != nil {
		a.close()
		return nil, err
	}

	market, trends := a.fetchers()
	a.screener = screener.New(cal, market, trends, logger, screener.Options{
		MarketLocation: a.loc,
		RequestTimeout: cfg.Pacing.RequestTimeout,
		BatchPause:     cfg.Pacing.BatchPause,
		DayPause:       cfg.Pacing.DayPause,
	})

	recs := recorder.Multi{recorder.NewConsoleRecorder(os.Stdout)}
	if !f.noExcel {
		xr, err := recorder.NewExcelRecorder(f.outputDir, logger)
		if err != nil {
			logger.Warn("init excel recorder failed, skipping reports", zap.Error(err))
		} else {
			recs = append(recs, xr)
		}
	}
	if cfg.TelegramEnabled() {
		a.telegram = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy, logger)
		recs = append(recs, notifier.NewReporter(ctx, a.telegram, telegramRetries))
	}
	a.recorder = recs
	a.closers = append(a.closers, recs.Close)

	logger.Info("gapscout ready",
		zap.String("command", name),
		zap.String("mode", string(a.mode)),
		zap.String("data_source", cfg.DataSource),
		zap.Int("tickers", len(a.tickers)),
		zap.Int("sinks", len(recs)),
	)
	return a, nil
}

// fetchers returns nil for stages the mode skips.
func (a *app) fetchers() (collector.MarketFetcher, collector.TrendsFetcher) {
	var (
		market collector.MarketFetcher
		trends collector.TrendsFetcher
	)
	if a.cfg.DataSource == config.SourceMock {
		a.logger.Warn("using mock data source")
		if a.mode.RunsMarket() {
			market = &collector.MockMarketFetcher{Price: 10}
		}
		if a.mode.RunsTrends() {
			trends = &collector.MockTrendsFetcher{Synthetic: true}
		}
		return market, trends
	}
	if a.mode.RunsMarket() {
		market = collector.NewPolygonFetcher(a.cfg.Polygon.APIKey, a.clientOptions(a.cfg.Polygon.BaseURL, a.cfg.Polygon.RateLimit)...)
	}
	if a.mode.RunsTrends() {
		trends = collector.NewSerpAPIFetcher(a.cfg.SerpAPI.APIKey, a.clientOptions(a.cfg.SerpAPI.BaseURL, a.cfg.SerpAPI.RateLimit)...)
	}
	return market, trends
}

// clientOptions keeps provider defaults for unset values.
func (a *app) clientOptions(baseURL string, rps float64) []collector.Option {
	opts := []collector.Option{collector.WithLogger(a.logger.Named("http"))}
	if a.cfg.Proxy != "" {
		opts = append(opts, collector.WithProxy(a.cfg.Proxy))
	}
	if baseURL != "" {
		opts = append(opts, collector.WithBaseURL(baseURL))
	}
	if rps > 0 {
		opts = append(opts, collector.WithRateLimit(rps))
	}
	return opts
}

// today is the current date in the market timezone.
func (a *app) today() time.Time {
	return calendar.Day(time.Now().In(a.loc))
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}
}
