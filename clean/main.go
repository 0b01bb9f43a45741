package main

import (
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/luxnlp/lb-ner-corpus/internal/cleaner"
	"github.com/luxnlp/lb-ner-corpus/internal/config"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
)

func main() {
	log := logger.ForRun(logger.New("clean"), uuid.NewString())
	cfg, err := config.LoadClean()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	c := &cleaner.Cleaner{Quality: cfg.Quality, Log: log}
	if _, err := c.Run(cfg.Input, cfg.Output); err != nil {
		log.Error("clean failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := metrics.WriteTextfile(cfg.MetricsDir, "clean"); err != nil {
		log.Warn("write metrics", slog.Any("err", err))
	}
}
