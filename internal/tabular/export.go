// Package tabular turns JSON-lines stores into sorted CSV/XLSX tables and
// prints summaries of exported tables.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/luxnlp/lb-ner-corpus/internal/dedupe"
	"github.com/luxnlp/lb-ner-corpus/internal/jsonl"
	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
	"github.com/luxnlp/lb-ner-corpus/internal/models"
)

// Header is the column layout of exported tables.
var Header = []string{"id", "label_lb", "description_lb", "class_id", "class_label_lb", "ner_tag"}

const sheetName = "entities"

// Exporter converts a JSON-lines store into a sorted table.
type Exporter struct {
	// Language drives string ordering; "lb" by default.
	Language string
	Log      *slog.Logger
}

// ExportResult summarizes one export.
type ExportResult struct {
	Read       int
	Written    int
	NoLabel    int
	Duplicates int
}

// Load reads path keeping records with a label, first occurrence per id.
func Load(path string) ([]models.TaggedEntity, ExportResult, error) {
	var res ExportResult
	var rows []models.TaggedEntity
	seen := dedupe.NewSet(0)

	err := jsonl.Decode(path, func(rec models.TaggedEntity) error {
		res.Read++
		rec.ID = strings.TrimSpace(rec.ID)
		rec.Label = strings.TrimSpace(rec.Label)
		if rec.Label == "" {
			res.NoLabel++
			return nil
		}
		if !seen.Add(rec.ID) {
			res.Duplicates++
			return nil
		}
		rows = append(rows, rec)
		return nil
	})
	if err != nil {
		return nil, res, fmt.Errorf("load %s: %w", path, err)
	}
	return rows, res, nil
}

// Sort orders rows by (class label, label) with the collation rules of lang.
func Sort(rows []models.TaggedEntity, lang string) {
	col := collate.New(language.Make(lang))
	slices.SortStableFunc(rows, func(a, b models.TaggedEntity) int {
		if c := col.CompareString(a.ClassLabel, b.ClassLabel); c != 0 {
			return c
		}
		return col.CompareString(a.Label, b.Label)
	})
}

func record(e models.TaggedEntity) []string {
	return []string{e.ID, e.Label, e.Description, e.ClassID, e.ClassLabel, e.NERTag}
}

// WriteCSV writes rows with a header line.
func WriteCSV(w io.Writer, rows []models.TaggedEntity) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r)); err != nil {
			return fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX mirrors the CSV export into a single-sheet workbook.
func WriteXLSX(path string, rows []models.TaggedEntity) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := record(r)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %s: %w", r.ID, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

// Run loads inPath, sorts and writes csvPath, plus xlsxPath when set.
func (e *Exporter) Run(inPath, csvPath, xlsxPath string) (ExportResult, error) {
	rows, res, err := Load(inPath)
	if err != nil {
		return res, err
	}
	lang := e.Language
	if lang == "" {
		lang = "lb"
	}
	Sort(rows, lang)

	if err := os.MkdirAll(filepath.Dir(csvPath), 0o755); err != nil {
		return res, fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(csvPath)
	if err != nil {
		return res, fmt.Errorf("create %s: %w", csvPath, err)
	}
	if err := WriteCSV(f, rows); err != nil {
		f.Close()
		return res, err
	}
	if err := f.Close(); err != nil {
		return res, fmt.Errorf("close %s: %w", csvPath, err)
	}
	res.Written = len(rows)

	if xlsxPath != "" {
		if err := WriteXLSX(xlsxPath, rows); err != nil {
			return res, err
		}
	}

	metrics.RecordsWrittenTotal.WithLabelValues("export").Add(float64(res.Written))
	if e.Log != nil {
		e.Log.Info("export done",
			slog.Int("read", res.Read),
			slog.Int("written", res.Written),
			slog.Int("no_label", res.NoLabel),
			slog.Int("duplicates", res.Duplicates),
			slog.String("csv", csvPath),
			slog.String("xlsx", xlsxPath),
		)
	}
	return res, nil
}
