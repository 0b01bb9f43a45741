package main

import (
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/luxnlp/lb-ner-corpus/internal/config"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/tagging"
)

func main() {
	log := logger.ForRun(logger.New("annotate"), uuid.NewString())
	cfg, err := config.LoadAnnotate()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	classes, err := tagging.LoadClasses(cfg.ClassesFile)
	if err != nil {
		log.Error("load class table", slog.Any("err", err))
		os.Exit(1)
	}
	table, err := tagging.NewTable(classes)
	if err != nil {
		log.Error("build tag table", slog.Any("err", err))
		os.Exit(1)
	}

	index, err := tagging.LoadClassIndex(cfg.RawInput)
	if err != nil {
		log.Error("load raw classes", slog.Any("err", err))
		os.Exit(1)
	}
	log.Info("loaded class info", slog.Int("ids", len(index)), slog.Int("mapped_classes", table.Len()))

	a := &tagging.Annotator{Table: table, Log: log}
	if _, err := a.Run(index, cfg.CleanInput, cfg.Output); err != nil {
		log.Error("annotate failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := metrics.WriteTextfile(cfg.MetricsDir, "annotate"); err != nil {
		log.Warn("write metrics", slog.Any("err", err))
	}
}
