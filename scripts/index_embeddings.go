package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"kodkariyer/ats-engine/internal/app"
	"kodkariyer/ats-engine/internal/config"
	"kodkariyer/ats-engine/internal/logger"
	"kodkariyer/ats-engine/internal/services"
)

func main() {
	limit := flag.Int("limit", 500, "maximum rows per step")
	skipText := flag.Bool("skip-text", false, "do not extract text from CV PDFs")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.Logging.JSON, cfg.Logging.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to initialize application", zap.Error(err))
	}
	defer container.Close()

	store := config.StorePostgres
	if container.IndexStore() != nil {
		store = config.StoreQdrant
	}
	log.Info("starting embedding backfill", zap.Int("limit", *limit), zap.String("store", store))

	steps := []struct {
		name string
		run  func(context.Context, int) (services.IndexStats, error)
	}{
		{"cv text", container.Indexer.FillCVText},
		{"job embeddings", container.Indexer.IndexJobs},
		{"cv embeddings", container.Indexer.IndexCVs},
	}

	totalFailed := 0
	for _, step := range steps {
		if step.name == "cv text" && *skipText {
			continue
		}

		stats, err := step.run(ctx, *limit)
		if err != nil {
			log.Error("backfill step failed", zap.String("step", step.name), zap.Error(err))
			os.Exit(1)
		}

		log.Info("backfill step completed",
			zap.String("step", step.name),
			zap.Int("indexed", stats.Indexed),
			zap.Int("failed", stats.Failed),
		)
		totalFailed += stats.Failed
	}

	if totalFailed > 0 {
		log.Warn("some rows failed to index, check the logs above", zap.Int("failed", totalFailed))
		os.Exit(1)
	}

	log.Info("embedding backfill finished")
}
