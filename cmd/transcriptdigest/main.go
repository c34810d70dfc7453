package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"TranscriptDigest/internal/app"
	"TranscriptDigest/internal/config"
	"TranscriptDigest/internal/domain"
	"TranscriptDigest/internal/logging"
)

const all = "all"

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always happens.
func run() int {
	symbol := flag.String("symbol", "All", "ticker symbol, or All for the configured list")
	quarter := flag.String("quarter", "All", "quarter 1-4, or All for the configured list")
	year := flag.Int("year", 0, "fiscal year (defaults to batch.year, then the current year)")
	file := flag.String("file", "", "summarize a local transcript file instead of fetching (needs a single symbol and quarter)")
	force := flag.Bool("force", false, "reprocess transcripts that already have a summary")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *force {
		cfg.Batch.Force = true
	}

	logger, flush := logging.New(cfg.Logging)
	defer flush()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	symbols, quarters, err := selection(cfg.Batch, *symbol, *quarter)
	if err != nil {
		logger.Error("invalid arguments", "error", err)
		return 2
	}
	runYear := resolveYear(*year, cfg.Batch.Year)

	if *file != "" && (len(symbols) != 1 || len(quarters) != 1) {
		logger.Error("-file needs a single -symbol and -quarter")
		return 2
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("application init failed", "error", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("close application", "error", err)
		}
	}()

	if *file != "" {
		key := domain.TranscriptKey{Symbol: symbols[0], Year: runYear, Quarter: quarters[0]}
		doc, err := application.ProcessFile(ctx, key, *file)
		if err != nil {
			logger.Error("application stopped", "key", key.String(), "error", err)
			return 1
		}
		fmt.Print(doc.Report)
		return 0
	}

	report, err := application.RunBatch(ctx, runYear, symbols, quarters)
	if err != nil {
		logger.Error("application stopped", "error", err)
		return 1
	}
	if err := report.Err(); err != nil {
		logger.Error("batch finished with failures", "failed", len(report.Failed), "error", err)
		return 1
	}
	return 0
}

func selection(batch config.BatchConfig, symbol, quarter string) ([]string, []int, error) {
	symbols := batch.Symbols
	if !strings.EqualFold(symbol, all) {
		symbols = []string{strings.ToUpper(strings.TrimSpace(symbol))}
	}

	quarters := batch.Quarters
	if !strings.EqualFold(quarter, all) {
		q, err := strconv.Atoi(strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(quarter)), "Q"))
		if err != nil || q < 1 || q > 4 {
			return nil, nil, fmt.Errorf("quarter %q: want 1-4 or All", quarter)
		}
		quarters = []int{q}
	}
	return symbols, quarters, nil
}

func resolveYear(flagYear, cfgYear int) int {
	if flagYear > 0 {
		return flagYear
	}
	if cfgYear > 0 {
		return cfgYear
	}
	return time.Now().Year()
}
