package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/luxnlp/lb-ner-corpus/internal/config"
	"github.com/luxnlp/lb-ner-corpus/internal/jsonl"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/models"
	"github.com/luxnlp/lb-ner-corpus/internal/tagging"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type publishResult struct {
	Read      int
	Published int
	Skipped   int
}

func main() {
	runID := uuid.NewString()
	log := logger.ForRun(logger.New("publish"), runID)
	cfg, err := config.LoadPublish()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaTopic,
		Balancer:     &kafka.Hash{},
		BatchSize:    cfg.BatchSize,
		BatchTimeout: 500 * time.Millisecond,
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  5,
	}
	defer writer.Close()

	log.Info("publisher started", slog.String("topic", cfg.KafkaTopic), slog.String("input", cfg.Input))

	res, err := publish(ctx, log, writer, cfg.Input, runID, cfg.BatchSize)
	if mErr := metrics.WriteTextfile(cfg.MetricsDir, "publish"); mErr != nil {
		log.Warn("write metrics", slog.Any("err", mErr))
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info("context canceled, stopping", slog.Int("published", res.Published))
			return
		}
		log.Error("publish failed", slog.Any("err", err))
		os.Exit(1)
	}
}

// publish streams the tagged store to w in batches of batchSize.
func publish(ctx context.Context, log *slog.Logger, w messageWriter, path, runID string, batchSize int) (publishResult, error) {
	var res publishResult
	batch := make([]kafka.Message, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := w.WriteMessages(ctx, batch...); err != nil {
			return fmt.Errorf("write messages: %w", err)
		}
		res.Published += len(batch)
		metrics.RecordsWrittenTotal.WithLabelValues("publish").Add(float64(len(batch)))
		batch = batch[:0]
		return nil
	}

	err := jsonl.Decode(path, func(rec models.TaggedEntity) error {
		res.Read++
		msg, err := buildMessage(rec, runID)
		if err != nil {
			res.Skipped++
			log.Debug("skip record", slog.String("id", rec.ID), slog.Any("err", err))
			return nil
		}
		batch = append(batch, msg)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		return res, err
	}

	log.Info("publish done",
		slog.Int("read", res.Read),
		slog.Int("published", res.Published),
		slog.Int("skipped", res.Skipped),
	)
	return res, nil
}

func buildMessage(rec models.TaggedEntity, runID string) (kafka.Message, error) {
	if err := tagging.Validate(rec); err != nil {
		return kafka.Message{}, err
	}
	value, err := json.Marshal(rec)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("marshal entity: %w", err)
	}
	return kafka.Message{
		Key:   []byte(rec.ID),
		Value: value,
		Headers: []kafka.Header{
			{Key: "run_id", Value: []byte(runID)},
		},
	}, nil
}
