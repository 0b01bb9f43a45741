// Package retriever pages through the Wikidata query service and accumulates
// entity records until per-tag quotas are met or results run out.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/luxnlp/lb-ner-corpus/internal/dedupe"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/models"
	"github.com/luxnlp/lb-ner-corpus/internal/processing"
	"github.com/luxnlp/lb-ner-corpus/internal/retry"
	"github.com/luxnlp/lb-ner-corpus/internal/wikidata"
)

// PageFetcher runs one page of a class query.
type PageFetcher interface {
	QueryPage(ctx context.Context, q wikidata.Query) ([]wikidata.Row, error)
}

// RecordWriter is the output store. Flush is called once per page.
type RecordWriter interface {
	Write(v any) error
	Flush() error
}

// Target is one retrieval configuration. Max == 0 means unlimited.
type Target struct {
	Classes []string
	Tag     string
	Min     int
	Max     int
}

func (t Target) label() string {
	if t.Tag != "" {
		return t.Tag
	}
	return "all"
}

// Retriever owns the state of a single run: the seen-id set and the per-tag
// counters. Create a new Retriever for every run.
type Retriever struct {
	Fetcher  PageFetcher
	Out      RecordWriter
	Language string
	PageSize int
	Quality  processing.Quality
	Retry    retry.Policy
	Pause    time.Duration
	Log      *slog.Logger

	seen   *dedupe.Set
	counts map[string]int
}

// TagSummary reports how one tag ended up against its quota.
type TagSummary struct {
	Tag         string
	Count       int
	Min         int
	Max         int
	UnderTarget bool
}

// Summary is returned at the end of a run.
type Summary struct {
	Accepted int
	Pages    int
	Tags     []TagSummary
}

// Run processes targets in order. Ids are deduplicated across all targets.
// A canceled context stops the run; records already written stay written.
func (r *Retriever) Run(ctx context.Context, targets []Target) (Summary, error) {
	if r.PageSize <= 0 {
		return Summary{}, errors.New("page size must be positive")
	}
	if r.seen == nil {
		r.seen = dedupe.NewSet(1024)
		r.counts = make(map[string]int)
	}

	var sum Summary
	var order []string
	quotas := make(map[string]Target)

	for _, t := range targets {
		key := t.label()
		if _, ok := quotas[key]; !ok {
			order = append(order, key)
		}
		quotas[key] = t

		pages, accepted, err := r.collect(ctx, t)
		sum.Pages += pages
		sum.Accepted += accepted
		if err != nil {
			sum.Tags = r.tagSummaries(order, quotas)
			return sum, err
		}
	}

	sum.Tags = r.tagSummaries(order, quotas)
	r.logger().Info("retrieval done", slog.Int("accepted", sum.Accepted), slog.Int("pages", sum.Pages))
	for _, ts := range sum.Tags {
		r.logger().Info("tag summary",
			slog.String("tag", ts.Tag),
			slog.Int("count", ts.Count),
			slog.Int("target_min", ts.Min),
			slog.Int("target_max", ts.Max),
			slog.Bool("under_target", ts.UnderTarget),
		)
	}
	return sum, nil
}

// collect pages through one target. The count for a tag carries over from
// earlier targets with the same tag, so Max caps the tag, not the class.
func (r *Retriever) collect(ctx context.Context, t Target) (pages, accepted int, err error) {
	tag := t.label()
	log := r.logger().With(slog.String("tag", tag), slog.String("classes", strings.Join(t.Classes, " ")))
	log.Info("collecting")

	for offset := 0; t.Max == 0 || r.counts[tag] < t.Max; offset += r.PageSize {
		log.Info("fetching page", slog.Int("offset", offset), slog.Int("count", r.counts[tag]))

		rows, err := r.fetch(ctx, log, wikidata.Query{
			Classes:  t.Classes,
			Language: r.Language,
			Limit:    r.PageSize,
			Offset:   offset,
		})
		if err != nil {
			return pages, accepted, err
		}
		pages++
		if len(rows) == 0 {
			log.Info("no more results")
			break
		}

		saved, err := r.consume(rows, t)
		accepted += saved
		if err != nil {
			return pages, accepted, err
		}
		if err := r.Out.Flush(); err != nil {
			return pages, accepted, fmt.Errorf("flush output: %w", err)
		}
		log.Info("page saved", slog.Int("saved", saved), slog.Int("total_for_tag", r.counts[tag]))

		if saved == 0 {
			log.Info("no usable rows in page, stopping")
			break
		}
		if t.Max > 0 && r.counts[tag] >= t.Max {
			break
		}
		if err := r.Retry.Pause(ctx, r.Pause); err != nil {
			return pages, accepted, err
		}
	}

	log.Info("finished", slog.Int("count", r.counts[tag]), slog.Int("target_min", t.Min), slog.Int("target_max", t.Max))
	return pages, accepted, nil
}

func (r *Retriever) fetch(ctx context.Context, log *slog.Logger, q wikidata.Query) ([]wikidata.Row, error) {
	var rows []wikidata.Row
	attempts := 0
	err := r.Retry.Do(ctx, log, "sparql query", func(ctx context.Context) error {
		attempts++
		if attempts > 1 {
			metrics.RetriesTotal.WithLabelValues("retrieve").Inc()
		}
		var err error
		rows, err = r.Fetcher.QueryPage(ctx, q)
		return err
	})
	return rows, err
}

func (r *Retriever) consume(rows []wikidata.Row, t Target) (int, error) {
	tag := t.label()
	saved := 0
	for _, row := range rows {
		rec, ok := RecordFromRow(row)
		if !ok || r.seen.IsSeen(rec.ID) {
			metrics.RowsTotal.WithLabelValues(tag, "duplicate").Inc()
			continue
		}
		if !r.Quality.Accepts(rec.Label, rec.Description) {
			metrics.RowsTotal.WithLabelValues(tag, "rejected").Inc()
			continue
		}
		rec.NERTag = t.Tag

		if err := r.Out.Write(rec); err != nil {
			return saved, fmt.Errorf("write record %s: %w", rec.ID, err)
		}
		r.seen.MarkSeen(rec.ID)
		r.counts[tag]++
		saved++
		metrics.RowsTotal.WithLabelValues(tag, "accepted").Inc()
		metrics.RecordsWrittenTotal.WithLabelValues("retrieve").Inc()

		if t.Max > 0 && r.counts[tag] >= t.Max {
			break
		}
	}
	return saved, nil
}

func (r *Retriever) tagSummaries(order []string, quotas map[string]Target) []TagSummary {
	out := make([]TagSummary, 0, len(order))
	for _, tag := range order {
		q := quotas[tag]
		out = append(out, TagSummary{
			Tag:         tag,
			Count:       r.counts[tag],
			Min:         q.Min,
			Max:         q.Max,
			UnderTarget: r.counts[tag] < q.Min,
		})
	}
	return out
}

func (r *Retriever) logger() *slog.Logger {
	if r.Log == nil {
		return slog.New(slog.DiscardHandler)
	}
	return r.Log
}

// RecordFromRow maps a binding row to a raw record with trimmed label and
// description. Rows without an item id are rejected.
func RecordFromRow(row wikidata.Row) (models.Entity, bool) {
	rec := models.Entity{
		ID:          processing.EntityIDFromURI(row["item"]),
		Label:       strings.TrimSpace(row["itemLabel"]),
		Description: strings.TrimSpace(row["itemDescription"]),
		ClassID:     processing.EntityIDFromURI(row["class"]),
		ClassLabel:  row["classLabel"],
	}
	return rec, rec.ID != ""
}
