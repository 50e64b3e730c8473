package main

import (
	"context"
	"os"

	"go.uber.org/zap"

	"chatsentry/detector"
	"chatsentry/internal/config"
	"chatsentry/internal/ingest"
	"chatsentry/internal/regsource"
	"chatsentry/internal/report"
	"chatsentry/internal/storage"
	"chatsentry/regdate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := config.BuildLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	params, err := cfg.Detector.Params()
	if err != nil {
		logger.Fatal("invalid detector config", zap.Error(err))
	}

	ctx := context.Background()

	var store *storage.Store
	if cfg.DatabasePath != "" {
		store, err = storage.New(cfg.DatabasePath)
		if err != nil {
			logger.Fatal("storage init failed", zap.Error(err))
		}
		defer store.Close()
		if err := store.Migrate(); err != nil {
			logger.Fatal("migrations failed", zap.Error(err))
		}
		if cfg.RetentionDays > 0 {
			if err := store.CleanupReports(ctx, cfg.RetentionDays); err != nil {
				logger.Warn("report cleanup failed", zap.Error(err))
			}
		}
	}
	sink := report.NewSink(store, logger)

	var loader regdate.Loader
	if cfg.RegDateURL != "" {
		loader = regsource.NewHTTPLoader(cfg.RegDateURL, logger)
	} else {
		logger.Warn("no registration date source configured, all authors resolve to the fallback date")
		loader = &regsource.StaticLoader{}
	}
	gate, err := regdate.NewChecker(loader, params.FallbackRegDate, cfg.Detector.CacheSize)
	if err != nil {
		logger.Fatal("age gate init failed", zap.Error(err))
	}

	det, err := detector.New(params, gate, logger)
	if err != nil {
		logger.Fatal("detector init failed", zap.Error(err))
	}
	det.SetSlowMode(cfg.SlowModeDelayMS)

	input := os.Stdin
	if len(os.Args) > 1 {
		file, err := os.Open(os.Args[1])
		if err != nil {
			logger.Fatal("open input", zap.Error(err))
		}
		defer file.Close()
		input = file
	}

	actions, err := ingest.ReadActions(input)
	if err != nil {
		logger.Fatal("read actions", zap.Error(err))
	}

	for start := 0; start < len(actions); start += cfg.BatchSize {
		end := min(start+cfg.BatchSize, len(actions))
		batch := actions[start:end]

		results, err := det.Process(ctx, batch)
		if err != nil {
			logger.Warn("batch failed, retrying once", zap.Error(err))
			results, err = det.Process(ctx, batch)
			if err != nil {
				logger.Fatal("batch failed", zap.Error(err))
			}
		}

		for _, result := range results {
			sink.Record(ctx, result)
		}
		if err := ingest.WriteResults(os.Stdout, results); err != nil {
			logger.Fatal("write results", zap.Error(err))
		}
	}

	flags := det.Flags()
	logger.Info("stream processed",
		zap.Int("events", len(actions)),
		zap.Int("flagged_authors", len(flags)))
	for author, reason := range flags {
		logger.Info("flagged author",
			zap.String("author", author),
			zap.String("reason", string(reason.Kind)))
	}
}
