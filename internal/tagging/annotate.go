package tagging

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/luxnlp/lb-ner-corpus/internal/dedupe"
	"github.com/luxnlp/lb-ner-corpus/internal/jsonl"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/models"
)

// ClassInfo is the class a raw record was retrieved under.
type ClassInfo struct {
	ClassID    string
	ClassLabel string
}

// LoadClassIndex scans a raw store once and maps id -> class info.
// When an id appears more than once the last occurrence wins.
func LoadClassIndex(rawPath string) (map[string]ClassInfo, error) {
	index := make(map[string]ClassInfo)
	err := jsonl.Decode(rawPath, func(rec models.Entity) error {
		id := strings.TrimSpace(rec.ID)
		if id == "" {
			return nil
		}
		index[id] = ClassInfo{ClassID: rec.ClassID, ClassLabel: rec.ClassLabel}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load class index: %w", err)
	}
	return index, nil
}

// Annotator joins cleaned records with their class and NER tag.
type Annotator struct {
	Table *Table
	Log   *slog.Logger
}

// AnnotateResult summarizes one run.
type AnnotateResult struct {
	Total      int
	Written    int
	Matched    int
	Duplicates int
	PerTag     map[Tag]int
}

// Tag builds the tagged record for rec.
func (a *Annotator) Tag(rec models.CleanEntity, index map[string]ClassInfo) models.TaggedEntity {
	info := index[rec.ID]
	return models.TaggedEntity{
		ID:          rec.ID,
		Label:       rec.Label,
		Description: rec.Description,
		ClassID:     info.ClassID,
		ClassLabel:  info.ClassLabel,
		NERTag:      string(a.Table.Lookup(info.ClassID)),
	}
}

// Run streams cleanPath, tags every record and writes outPath.
func (a *Annotator) Run(index map[string]ClassInfo, cleanPath, outPath string) (AnnotateResult, error) {
	res := AnnotateResult{PerTag: make(map[Tag]int)}

	out, err := jsonl.Create(outPath)
	if err != nil {
		return res, err
	}
	seen := dedupe.NewSet(len(index))

	err = jsonl.Decode(cleanPath, func(rec models.CleanEntity) error {
		res.Total++
		if rec.ID == "" {
			return nil
		}
		if !seen.Add(rec.ID) {
			res.Duplicates++
			return nil
		}
		if _, ok := index[rec.ID]; ok {
			res.Matched++
		}

		tagged := a.Tag(rec, index)
		if err := out.Write(tagged); err != nil {
			return err
		}
		res.Written++
		res.PerTag[Tag(tagged.NERTag)]++
		return nil
	})
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return res, fmt.Errorf("annotate %s: %w", cleanPath, err)
	}

	metrics.RecordsWrittenTotal.WithLabelValues("annotate").Add(float64(res.Written))
	if a.Log != nil {
		a.Log.Info("annotation done",
			slog.Int("total", res.Total),
			slog.Int("written", res.Written),
			slog.Int("matched", res.Matched),
			slog.Int("duplicates", res.Duplicates),
			slog.String("output", outPath),
		)
		for _, t := range Tags {
			a.Log.Info("tag count", slog.String("tag", string(t)), slog.Int("count", res.PerTag[t]))
		}
	}
	return res, nil
}
