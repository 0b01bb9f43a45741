package main

import (
	"log/slog"
	"os"

	"github.com/luxnlp/lb-ner-corpus/internal/config"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/tabular"
)

func main() {
	log := logger.New("export")
	cfg, err := config.LoadExport()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	e := &tabular.Exporter{Language: cfg.Language, Log: log}
	if _, err := e.Run(cfg.Input, cfg.CSVOutput, cfg.XLSXOutput); err != nil {
		log.Error("export failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := metrics.WriteTextfile(cfg.MetricsDir, "export"); err != nil {
		log.Warn("write metrics", slog.Any("err", err))
	}
}
