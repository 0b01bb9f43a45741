package retriever_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/models"
	"github.com/luxnlp/lb-ner-corpus/internal/processing"
	"github.com/luxnlp/lb-ner-corpus/internal/retriever"
	"github.com/luxnlp/lb-ner-corpus/internal/retry"
	"github.com/luxnlp/lb-ner-corpus/internal/wikidata"
	"github.com/stretchr/testify/require"
)

type memWriter struct {
	records []models.Entity
	flushes int
}

func (m *memWriter) Write(v any) error {
	m.records = append(m.records, v.(models.Entity))
	return nil
}

func (m *memWriter) Flush() error {
	m.flushes++
	return nil
}

func (m *memWriter) ids() []string {
	out := make([]string, 0, len(m.records))
	for _, r := range m.records {
		out = append(out, r.ID)
	}
	return out
}

// pagedSource serves pages keyed by class and offset.
type pagedSource struct {
	pages   map[string][][]wikidata.Row
	queries []wikidata.Query
	fail    int
}

func (p *pagedSource) QueryPage(_ context.Context, q wikidata.Query) ([]wikidata.Row, error) {
	p.queries = append(p.queries, q)
	if p.fail > 0 {
		p.fail--
		return nil, errors.New("504 gateway timeout")
	}
	pages := p.pages[q.Classes[0]]
	i := q.Offset / q.Limit
	if i >= len(pages) {
		return nil, nil
	}
	return pages[i], nil
}

// endlessSource yields qualifying rows for every offset.
type endlessSource struct {
	calls int
}

func (e *endlessSource) QueryPage(_ context.Context, q wikidata.Query) ([]wikidata.Row, error) {
	e.calls++
	rows := make([]wikidata.Row, 0, q.Limit)
	for i := 0; i < q.Limit; i++ {
		rows = append(rows, row(fmt.Sprintf("Q%d", q.Offset+i+1), "Label", "Beschreiwung"))
	}
	return rows, nil
}

func row(id, label, desc string) wikidata.Row {
	r := wikidata.Row{
		"item":       "http://www.wikidata.org/entity/" + id,
		"class":      "http://www.wikidata.org/entity/Q515",
		"classLabel": "Stad",
	}
	if label != "" {
		r["itemLabel"] = label
	}
	if desc != "" {
		r["itemDescription"] = desc
	}
	return r
}

func newRetriever(src retriever.PageFetcher, out *memWriter, sleeper *retry.NoSleep, pageSize int) *retriever.Retriever {
	p := retry.Unbounded(20 * time.Second)
	p.Sleep = sleeper.Sleep
	return &retriever.Retriever{
		Fetcher:  src,
		Out:      out,
		Language: "lb",
		PageSize: pageSize,
		Quality:  processing.Strict,
		Retry:    p,
		Pause:    2 * time.Second,
		Log:      logger.Discard(),
	}
}

func TestQuotaTermination(t *testing.T) {
	src := &endlessSource{}
	out := &memWriter{}
	r := newRetriever(src, out, &retry.NoSleep{}, 10)

	sum, err := r.Run(context.Background(), []retriever.Target{{Classes: []string{"wd:Q515"}, Tag: "LOC", Min: 1, Max: 3}})
	require.NoError(t, err)
	require.Equal(t, 3, sum.Accepted)
	require.Len(t, out.records, 3)
	require.Equal(t, 1, src.calls)
	require.Equal(t, []retriever.TagSummary{{Tag: "LOC", Count: 3, Min: 1, Max: 3}}, sum.Tags)
}

func TestExhaustionAfterOnePage(t *testing.T) {
	src := &pagedSource{pages: map[string][][]wikidata.Row{
		"Q515": {{row("Q1", "Esch", "Stad"), row("Q2", "Diekrech", "Stad")}},
	}}
	out := &memWriter{}
	sleeper := &retry.NoSleep{}
	r := newRetriever(src, out, sleeper, 2)

	sum, err := r.Run(context.Background(), []retriever.Target{{Classes: []string{"Q515"}, Tag: "LOC", Min: 10, Max: 100}})
	require.NoError(t, err)
	require.Equal(t, []string{"Q1", "Q2"}, out.ids())
	require.Len(t, src.queries, 2)
	require.Equal(t, 0, src.queries[0].Offset)
	require.Equal(t, 2, src.queries[1].Offset)
	require.Equal(t, []time.Duration{2 * time.Second}, sleeper.Waits)
	require.True(t, sum.Tags[0].UnderTarget)
}

func TestDedupeAcrossPages(t *testing.T) {
	src := &pagedSource{pages: map[string][][]wikidata.Row{
		"Q515": {
			{row("Q1", "Esch", "Stad"), row("Q2", "Diekrech", "Stad")},
			{row("Q2", "Diekrech", "Stad"), row("Q3", "Wooltz", "Stad")},
		},
	}}
	out := &memWriter{}
	r := newRetriever(src, out, &retry.NoSleep{}, 2)

	_, err := r.Run(context.Background(), []retriever.Target{{Classes: []string{"Q515"}, Tag: "LOC", Max: 100}})
	require.NoError(t, err)
	require.Equal(t, []string{"Q1", "Q2", "Q3"}, out.ids())
	require.Equal(t, 2, out.flushes)
}

func TestDedupeAcrossTargetsAndSharedTagCount(t *testing.T) {
	src := &pagedSource{pages: map[string][][]wikidata.Row{
		"Q515":  {{row("Q1", "Esch", "Stad"), row("Q2", "Diekrech", "Stad")}},
		"Q6256": {{row("Q2", "Diekrech", "Stad"), row("Q3", "Lëtzebuerg", "Land"), row("Q4", "Belsch", "Land")}},
	}}
	out := &memWriter{}
	r := newRetriever(src, out, &retry.NoSleep{}, 3)

	sum, err := r.Run(context.Background(), []retriever.Target{
		{Classes: []string{"Q515"}, Tag: "LOC", Max: 3},
		{Classes: []string{"Q6256"}, Tag: "LOC", Max: 3},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"Q1", "Q2", "Q3"}, out.ids())
	require.Equal(t, 3, sum.Accepted)
	require.Equal(t, "LOC", out.records[2].NERTag)
	require.Equal(t, "Q515", out.records[0].ClassID)
	require.Len(t, sum.Tags, 1)
	require.Equal(t, 3, sum.Tags[0].Count)
}

func TestStrictFilterAndEmptyPageStop(t *testing.T) {
	src := &pagedSource{pages: map[string][][]wikidata.Row{
		"Q577": {
			{row("Q10", "2000", ""), row("Q11", "", "Joer")},
			{row("Q12", "2001", "Joer")},
		},
	}}
	out := &memWriter{}
	r := newRetriever(src, out, &retry.NoSleep{}, 2)

	sum, err := r.Run(context.Background(), []retriever.Target{{Classes: []string{"Q577"}, Tag: "DATE", Max: 10}})
	require.NoError(t, err)
	require.Empty(t, out.records)
	require.Equal(t, 0, sum.Accepted)
	require.Len(t, src.queries, 1)
}

func TestLenientKeepsLabelOnly(t *testing.T) {
	src := &pagedSource{pages: map[string][][]wikidata.Row{
		"Q5": {{row("Q7245", " Jang ", ""), row("Q8", "", "")}},
	}}
	out := &memWriter{}
	r := newRetriever(src, out, &retry.NoSleep{}, 5)
	r.Quality = processing.Lenient

	sum, err := r.Run(context.Background(), []retriever.Target{{Classes: []string{"Q5", "Q515"}}})
	require.NoError(t, err)
	require.Equal(t, []string{"Q7245"}, out.ids())
	require.Equal(t, "Jang", out.records[0].Label)
	require.Equal(t, "", out.records[0].NERTag)
	require.Equal(t, "all", sum.Tags[0].Tag)
}

func TestRetriesSamePageUntilSuccess(t *testing.T) {
	src := &pagedSource{fail: 3, pages: map[string][][]wikidata.Row{
		"Q515": {{row("Q1", "Esch", "Stad")}},
	}}
	out := &memWriter{}
	sleeper := &retry.NoSleep{}
	r := newRetriever(src, out, sleeper, 1)

	_, err := r.Run(context.Background(), []retriever.Target{{Classes: []string{"Q515"}, Tag: "LOC", Max: 5}})
	require.NoError(t, err)
	require.Equal(t, []string{"Q1"}, out.ids())
	for _, q := range src.queries[:4] {
		require.Equal(t, 0, q.Offset)
	}
	require.Equal(t, 20*time.Second, sleeper.Waits[0])
}

func TestCanceledRunKeepsWrittenRecords(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := &endlessSource{}
	out := &memWriter{}
	sleeper := &retry.NoSleep{}
	r := newRetriever(src, out, sleeper, 2)
	r.Retry.Sleep = func(ctx context.Context, d time.Duration) error {
		cancel()
		return ctx.Err()
	}

	sum, err := r.Run(ctx, []retriever.Target{{Classes: []string{"Q515"}, Tag: "LOC"}})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 2, sum.Accepted)
	require.Len(t, out.records, 2)
	require.Equal(t, 1, out.flushes)
}

func TestRecordFromRow(t *testing.T) {
	rec, ok := retriever.RecordFromRow(wikidata.Row{
		"item":            "http://www.wikidata.org/entity/Q7245",
		"itemLabel":       " Jang ",
		"itemDescription": "Schrëftsteller\n",
		"class":           "http://www.wikidata.org/entity/Q5",
		"classLabel":      "Mënsch",
	})
	require.True(t, ok)
	require.Equal(t, models.Entity{ID: "Q7245", Label: "Jang", Description: "Schrëftsteller", ClassID: "Q5", ClassLabel: "Mënsch"}, rec)

	_, ok = retriever.RecordFromRow(wikidata.Row{"itemLabel": "no item"})
	require.False(t, ok)
}

func TestRunRejectsZeroPageSize(t *testing.T) {
	r := newRetriever(&endlessSource{}, &memWriter{}, &retry.NoSleep{}, 0)
	_, err := r.Run(context.Background(), nil)
	require.Error(t, err)
}
