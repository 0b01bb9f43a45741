package backfill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/luxnlp/lb-ner-corpus/internal/dedupe"
	"github.com/luxnlp/lb-ner-corpus/internal/jsonl"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/models"
	"github.com/luxnlp/lb-ner-corpus/internal/processing"
	"github.com/luxnlp/lb-ner-corpus/internal/retry"
	"github.com/luxnlp/lb-ner-corpus/internal/wikidata"
)

// EntityFetcher is the part of the Wikidata client the backfiller needs.
type EntityFetcher interface {
	GetEntities(ctx context.Context, ids []string, language string) (map[string]wikidata.Terms, error)
}

// Backfiller replaces labels and descriptions with values in exactly one
// language, fetched in fixed-size batches.
type Backfiller struct {
	Fetcher   EntityFetcher
	Language  string
	BatchSize int
	Retry     retry.Policy
	Pause     time.Duration
	Log       *slog.Logger
}

// Result summarizes a lookup pass.
type Result struct {
	Batches       int
	FailedBatches int
	Found         int
}

// Lookup resolves ids batch by batch. A batch that still fails after the
// retry policy gives up is skipped; its ids are absent from the map.
func (b *Backfiller) Lookup(ctx context.Context, ids []string) (map[string]wikidata.Terms, Result, error) {
	var res Result
	out := make(map[string]wikidata.Terms, len(ids))

	size := b.BatchSize
	if size <= 0 || size > wikidata.MaxLookupIDs {
		size = wikidata.MaxLookupIDs
	}

	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		batch := ids[start:end]
		res.Batches++

		b.logger().Info("fetching batch", slog.Int("from", start), slog.Int("to", end-1))

		var terms map[string]wikidata.Terms
		attempts := 0
		err := b.Retry.Do(ctx, b.logger(), "wbgetentities", func(ctx context.Context) error {
			attempts++
			if attempts > 1 {
				metrics.RetriesTotal.WithLabelValues("backfill").Inc()
			}
			var err error
			terms, err = b.Fetcher.GetEntities(ctx, batch, b.Language)
			return err
		})
		if err != nil {
			if ctx.Err() != nil {
				return out, res, ctx.Err()
			}
			res.FailedBatches++
			b.logger().Warn("skipping batch", slog.Any("err", err), slog.Int("from", start), slog.Int("size", len(batch)))
			continue
		}

		for id, t := range terms {
			out[id] = t
		}
		res.Found += len(terms)

		if err := b.Retry.Pause(ctx, b.Pause); err != nil {
			return out, res, err
		}
	}
	return out, res, nil
}

// RunResult summarizes a full backfill run.
type RunResult struct {
	Result
	Checked int
	Kept    int
}

// Run reads ids from rawPath, looks them up and writes one clean record per
// id whose label exists in the target language.
func (b *Backfiller) Run(ctx context.Context, rawPath, outPath string) (RunResult, error) {
	var res RunResult

	ids, err := LoadIDs(rawPath)
	if err != nil {
		return res, err
	}
	b.logger().Info("loaded ids", slog.Int("count", len(ids)), slog.String("input", rawPath))

	terms, lookup, err := b.Lookup(ctx, ids)
	res.Result = lookup
	if err != nil {
		return res, err
	}

	out, err := jsonl.Create(outPath)
	if err != nil {
		return res, err
	}
	seen := dedupe.NewSet(len(ids))
	for _, id := range ids {
		res.Checked++
		t := terms[id]
		label := strings.TrimSpace(t.Label)
		if label == "" || !seen.Add(id) {
			continue
		}
		if err := out.Write(models.CleanEntity{
			ID:          id,
			Label:       label,
			Description: strings.TrimSpace(t.Description),
		}); err != nil {
			out.Close()
			return res, err
		}
		res.Kept++
	}
	if err := out.Close(); err != nil {
		return res, err
	}

	metrics.RecordsWrittenTotal.WithLabelValues("backfill").Add(float64(res.Kept))
	b.logger().Info("backfill done",
		slog.Int("checked", res.Checked),
		slog.Int("kept", res.Kept),
		slog.Int("batches", res.Batches),
		slog.Int("failed_batches", res.FailedBatches),
		slog.String("output", outPath),
	)
	return res, nil
}

// LoadIDs returns the ids of a raw store in file order. Ids that are not
// valid entity ids are dropped: one bad id fails a whole wbgetentities batch.
func LoadIDs(path string) ([]string, error) {
	var ids []string
	err := jsonl.Decode(path, func(rec models.Entity) error {
		id := strings.TrimSpace(rec.ID)
		if processing.ValidEntityID(id) {
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load ids: %w", err)
	}
	return ids, nil
}

func (b *Backfiller) logger() *slog.Logger {
	if b.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return b.Log
}
