package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"github.com/luxnlp/lb-ner-corpus/internal/config"
	"github.com/luxnlp/lb-ner-corpus/internal/jsonl"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/retriever"
	"github.com/luxnlp/lb-ner-corpus/internal/retry"
	"github.com/luxnlp/lb-ner-corpus/internal/tagging"
	"github.com/luxnlp/lb-ner-corpus/internal/wikidata"
)

func main() {
	log := logger.ForRun(logger.New("scrape"), uuid.NewString())
	cfg, err := config.LoadScrape()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	targets, err := buildTargets(cfg)
	if err != nil {
		log.Error("build targets", slog.Any("err", err))
		os.Exit(1)
	}

	out, err := jsonl.Create(cfg.Output)
	if err != nil {
		log.Error("open output", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	r := &retriever.Retriever{
		Fetcher: wikidata.New(wikidata.Options{
			SPARQLURL: cfg.SPARQLURL,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
		}),
		Out:      out,
		Language: cfg.Language,
		PageSize: cfg.PageSize,
		Quality:  cfg.Quality,
		Retry:    retry.Policy{MaxAttempts: cfg.MaxAttempts, Backoff: cfg.Cooldown},
		Pause:    cfg.Pause,
		Log:      log,
	}

	log.Info("scrape started",
		slog.String("profile", cfg.Profile),
		slog.Int("targets", len(targets)),
		slog.String("quality", cfg.Quality.String()),
		slog.String("output", cfg.Output),
	)

	sum, runErr := r.Run(ctx, targets)
	if err := out.Close(); err != nil {
		log.Error("close output", slog.Any("err", err))
		os.Exit(1)
	}
	if err := metrics.WriteTextfile(cfg.MetricsDir, "scrape"); err != nil {
		log.Warn("write metrics", slog.Any("err", err))
	}

	if runErr != nil {
		if errors.Is(runErr, context.Canceled) {
			log.Info("interrupted, partial output kept", slog.Int("accepted", sum.Accepted), slog.String("output", cfg.Output))
			return
		}
		log.Error("scrape failed", slog.Any("err", runErr), slog.Int("accepted", sum.Accepted))
		os.Exit(1)
	}

	log.Info("scrape finished", slog.Int("accepted", sum.Accepted), slog.String("output", cfg.Output))
}

// buildTargets turns the profile into retrieval targets. The quota profile
// walks every class of the class table that carries a quota.
func buildTargets(cfg *config.Scrape) ([]retriever.Target, error) {
	if cfg.Profile == config.ProfileAll {
		return []retriever.Target{{Classes: cfg.AllClasses}}, nil
	}

	classes, err := tagging.LoadClasses(cfg.ClassesFile)
	if err != nil {
		return nil, err
	}

	var targets []retriever.Target
	for _, c := range classes {
		if c.Max == 0 {
			continue
		}
		targets = append(targets, retriever.Target{
			Classes: []string{c.ID},
			Tag:     string(c.Tag),
			Min:     c.Min,
			Max:     c.Max,
		})
	}
	if len(targets) == 0 {
		return nil, errors.New("class table has no class with a quota")
	}
	return targets, nil
}
