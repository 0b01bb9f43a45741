package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/luxnlp/lb-ner-corpus/internal/backfill"
	"github.com/luxnlp/lb-ner-corpus/internal/config"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/retry"
	"github.com/luxnlp/lb-ner-corpus/internal/wikidata"
)

func main() {
	log := logger.ForRun(logger.New("backfill"), uuid.NewString())
	cfg, err := config.LoadBackfill()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	b := &backfill.Backfiller{
		Fetcher: wikidata.New(wikidata.Options{
			APIURL:    cfg.APIURL,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
		}),
		Language:  cfg.Language,
		BatchSize: cfg.BatchSize,
		Retry:     retry.Policy{MaxAttempts: cfg.MaxAttempts, Backoff: cfg.Cooldown},
		Pause:     cfg.Pause,
		Log:       log,
	}

	res, err := b.Run(ctx, cfg.Input, cfg.Output)
	if mErr := metrics.WriteTextfile(cfg.MetricsDir, "backfill"); mErr != nil {
		log.Warn("write metrics", slog.Any("err", mErr))
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("interrupted before output was written", slog.Int("batches", res.Batches))
			return
		}
		log.Error("backfill failed", slog.Any("err", err))
		os.Exit(1)
	}
}
