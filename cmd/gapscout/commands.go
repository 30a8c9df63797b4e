package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"GapScout/internal/calendar"
	"GapScout/internal/scheduler"
	"GapScout/internal/screener"
)

func runAnalyze(ctx context.Context, args []string) error {
	var date, startDate, endDate string
	a, err := setup(ctx, "analyze", args, func(fs *flag.FlagSet) {
		fs.StringVar(&date, "date", "", "date to analyse (YYYY-MM-DD, default today)")
		fs.StringVar(&startDate, "start-date", "", "first date of a range")
		fs.StringVar(&endDate, "end-date", "", "last date of a range")
	})
	if err != nil {
		return err
	}
	defer a.close()

	start, hasStart, err := dateFlag("start-date", startDate)
	if err != nil {
		return err
	}
	end, hasEnd, err := dateFlag("end-date", endDate)
	if err != nil {
		return err
	}
	if hasStart != hasEnd {
		return fmt.Errorf("--start-date and --end-date must be given together")
	}

	if hasStart {
		days := a.screener.Calendar().TradingDaysBetween(start, end)
		if len(days) == 0 {
			a.logger.Warn("no trading days in range", zap.String("start", calendar.Format(start)), zap.String("end", calendar.Format(end)))
			return nil
		}
		var failed int
		for _, dr := range a.screener.AnalyzeDates(ctx, a.tickers, days, a.criteria, a.mode) {
			if dr.Err != nil {
				failed++
				continue
			}
			if err := a.recorder.RecordDate(dr.Result); err != nil {
				a.logger.Error("record result", zap.String("date", calendar.Format(dr.Date)), zap.Error(err))
			}
		}
		fmt.Fprintf(os.Stdout, "Analysed %d trading days, %d failed.\n", len(days), failed)
		return ctx.Err()
	}

	day, ok, err := dateFlag("date", date)
	if err != nil {
		return err
	}
	if !ok {
		day = a.today()
	}
	if !a.screener.Calendar().IsTradingDay(day) {
		fmt.Fprintf(os.Stdout, "%s is not a trading day.\n", calendar.Format(day))
		return nil
	}
	res, err := a.screener.AnalyzeDate(ctx, a.tickers, day, a.criteria, a.mode)
	if err != nil {
		return err
	}
	return a.recorder.RecordDate(res)
}

func runBacktest(ctx context.Context, args []string) error {
	var startDate, endDate string
	a, err := setup(ctx, "backtest", args, func(fs *flag.FlagSet) {
		fs.StringVar(&startDate, "start-date", "", "first date (YYYY-MM-DD)")
		fs.StringVar(&endDate, "end-date", "", "last date (YYYY-MM-DD)")
	})
	if err != nil {
		return err
	}
	defer a.close()

	start, hasStart, err := dateFlag("start-date", startDate)
	if err != nil {
		return err
	}
	end, hasEnd, err := dateFlag("end-date", endDate)
	if err != nil {
		return err
	}
	if !hasStart || !hasEnd {
		return fmt.Errorf("backtest needs --start-date and --end-date")
	}

	records, err := a.screener.Backtest(ctx, a.tickers, start, end, a.criteria)
	if err != nil {
		return err
	}
	return a.recorder.RecordBacktest(start, end, records, screener.Summarize(records))
}

func runWatch(ctx context.Context, args []string) error {
	var runOnStart bool
	a, err := setup(ctx, "watch", args, func(fs *flag.FlagSet) {
		fs.BoolVar(&runOnStart, "run-now", os.Getenv("RUN_ON_START") == "true", "run one screen immediately")
	})
	if err != nil {
		return err
	}
	defer a.close()

	sched := scheduler.NewScheduler(ctx, a.screener, a.recorder, scheduler.Settings{
		Tickers:  a.tickers,
		Criteria: a.criteria,
		Mode:     a.mode,
		Location: a.loc,
	}, a.logger)
	if err := sched.Register(a.cfg.Schedule.DailyCron); err != nil {
		return err
	}
	sched.Start()
	defer sched.Stop()

	if a.telegram != nil {
		go a.telegram.StartPolling(ctx, sched.HandleCommand)
		a.logger.Info("telegram polling started")
	}
	if runOnStart {
		go func() {
			if _, err := sched.RunNow(); err != nil {
				a.logger.Error("initial screen failed", zap.Error(err))
			}
		}()
	}

	a.logger.Warn("watching, press Ctrl+C to stop", zap.String("cron", a.cfg.Schedule.DailyCron))
	<-ctx.Done()
	a.logger.Info("shutdown signal received")
	return nil
}
