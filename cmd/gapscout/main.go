package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
)

const usage = `gapscout screens stocks for premarket gap-ups and search-interest spikes.

Usage:
  gapscout analyze  [flags]   screen one date (--date) or a range (--start-date/--end-date)
  gapscout backtest [flags]   run the combined screen over --start-date..--end-date
  gapscout watch    [flags]   screen every trading morning on the configured cron

Run "gapscout <command> -h" for flags.
`

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "analyze":
		err = runAnalyze(ctx, args)
	case "backtest":
		err = runBacktest(ctx, args)
	case "watch":
		err = runWatch(ctx, args)
	case "-h", "--help", "help":
		fmt.Fprint(os.Stdout, usage)
		return
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s", cmd, usage)
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("[FATAL] %s: %v", os.Args[1], err)
	}
}
