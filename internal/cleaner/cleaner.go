package cleaner

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/luxnlp/lb-ner-corpus/internal/dedupe"
	"github.com/luxnlp/lb-ner-corpus/internal/jsonl"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/models"
	"github.com/luxnlp/lb-ner-corpus/internal/processing"
)

// Cleaner reduces a record store to unique {id, label, description} rows.
type Cleaner struct {
	Quality processing.Quality
	Log     *slog.Logger
}

// Result summarizes one run.
type Result struct {
	Read          int
	Kept          int
	MissingFields int
	Duplicates    int
	NoDescription int
}

// Clean normalizes one record and reports whether it passes the required
// field checks. Description is checked separately because duplicates are
// resolved before it.
func Clean(rec models.Entity) (models.CleanEntity, bool) {
	out := models.CleanEntity{
		ID:          strings.TrimSpace(rec.ID),
		Label:       strings.TrimSpace(rec.Label),
		Description: strings.TrimSpace(rec.Description),
	}
	return out, out.ID != "" && out.Label != ""
}

// Run streams inPath into outPath.
func (c *Cleaner) Run(inPath, outPath string) (Result, error) {
	var res Result

	out, err := jsonl.Create(outPath)
	if err != nil {
		return res, err
	}
	seen := dedupe.NewSet(0)

	err = jsonl.Decode(inPath, func(rec models.Entity) error {
		res.Read++

		clean, ok := Clean(rec)
		if !ok {
			res.MissingFields++
			return nil
		}
		// first occurrence wins, even if it is later dropped for lacking a description
		if !seen.Add(clean.ID) {
			res.Duplicates++
			return nil
		}
		if !c.Quality.Accepts(clean.Label, clean.Description) {
			res.NoDescription++
			return nil
		}

		if err := out.Write(clean); err != nil {
			return err
		}
		res.Kept++
		return nil
	})
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return res, fmt.Errorf("clean %s: %w", inPath, err)
	}

	metrics.RecordsWrittenTotal.WithLabelValues("clean").Add(float64(res.Kept))
	if c.Log != nil {
		c.Log.Info("cleaning done",
			slog.Int("read", res.Read),
			slog.Int("kept", res.Kept),
			slog.Int("missing_fields", res.MissingFields),
			slog.Int("duplicates", res.Duplicates),
			slog.Int("no_description", res.NoDescription),
			slog.String("quality", c.Quality.String()),
			slog.String("output", outPath),
		)
	}
	return res, nil
}
