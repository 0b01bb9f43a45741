package main

import (
	"log/slog"
	"os"

	"github.com/luxnlp/lb-ner-corpus/internal/config"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/tabular"
)

func main() {
	log := logger.New("inspect")
	cfg, err := config.LoadInspect()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	table, err := tabular.LoadCSV(cfg.Input)
	if err != nil {
		log.Error("load table", slog.Any("err", err))
		os.Exit(1)
	}

	in := &tabular.Inspector{
		Out:        os.Stdout,
		TagColumn:  cfg.TagColumn,
		SampleTags: cfg.SampleTags,
		SampleSize: cfg.SampleSize,
	}
	if err := in.Inspect(table); err != nil {
		log.Error("inspect failed", slog.Any("err", err))
		os.Exit(1)
	}
}
