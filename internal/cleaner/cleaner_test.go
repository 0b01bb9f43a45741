package cleaner_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luxnlp/lb-ner-corpus/internal/cleaner"
	"github.com/luxnlp/lb-ner-corpus/internal/jsonl"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/models"
	"github.com/luxnlp/lb-ner-corpus/internal/processing"
	"github.com/stretchr/testify/require"
)

const rawInput = `{"id":" Q1 ","label_lb":" Lëtzebuerg ","description_lb":" Land an Europa ","class_id":"Q6256"}
{"id":"Q2","label_lb":"","description_lb":"ouni Label"}
{"id":"","label_lb":"ouni ID"}

{"id":"Q1","label_lb":"Duplikat","description_lb":"zweet"}
{"id":"Q3","label_lb":"Esch","description_lb":"   "}
{"id":"Q3","label_lb":"Esch","description_lb":"Stad"}
{"id":"Q4","label_lb":"Diekrech","description_lb":"Stad am Norden"}
`

func writeInput(t *testing.T, content string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	in := filepath.Join(dir, "in.jsonl")
	require.NoError(t, os.WriteFile(in, []byte(content), 0o644))
	return in, filepath.Join(dir, "out.jsonl")
}

func readClean(t *testing.T, path string) []models.CleanEntity {
	t.Helper()
	var out []models.CleanEntity
	require.NoError(t, jsonl.Decode(path, func(rec models.CleanEntity) error {
		out = append(out, rec)
		return nil
	}))
	return out
}

func TestCleanStrict(t *testing.T) {
	in, out := writeInput(t, rawInput)
	c := &cleaner.Cleaner{Quality: processing.Strict, Log: logger.Discard()}

	res, err := c.Run(in, out)
	require.NoError(t, err)
	require.Equal(t, cleaner.Result{Read: 7, Kept: 2, MissingFields: 2, Duplicates: 2, NoDescription: 1}, res)

	got := readClean(t, out)
	require.Equal(t, []models.CleanEntity{
		{ID: "Q1", Label: "Lëtzebuerg", Description: "Land an Europa"},
		{ID: "Q4", Label: "Diekrech", Description: "Stad am Norden"},
	}, got)
}

func TestCleanLenient(t *testing.T) {
	in, out := writeInput(t, rawInput)
	c := &cleaner.Cleaner{Quality: processing.Lenient}

	res, err := c.Run(in, out)
	require.NoError(t, err)
	require.Equal(t, 3, res.Kept)

	got := readClean(t, out)
	require.Equal(t, models.CleanEntity{ID: "Q3", Label: "Esch"}, got[1])
}

func TestCleanOutputInvariants(t *testing.T) {
	in, out := writeInput(t, rawInput)
	c := &cleaner.Cleaner{Quality: processing.Lenient}
	_, err := c.Run(in, out)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, rec := range readClean(t, out) {
		require.NotEmpty(t, rec.ID)
		require.NotEmpty(t, rec.Label)
		require.False(t, seen[rec.ID], rec.ID)
		seen[rec.ID] = true
	}

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	require.NotContains(t, string(data), "class_id")
}

func TestCleanIsIdempotent(t *testing.T) {
	in, first := writeInput(t, rawInput)
	c := &cleaner.Cleaner{Quality: processing.Strict}
	_, err := c.Run(in, first)
	require.NoError(t, err)

	second := filepath.Join(filepath.Dir(first), "second.jsonl")
	res, err := c.Run(first, second)
	require.NoError(t, err)
	require.Equal(t, res.Read, res.Kept)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	require.Equal(t, string(a), string(b))
}

func TestCleanMalformedInput(t *testing.T) {
	in, out := writeInput(t, strings.Join([]string{`{"id":"Q1","label_lb":"A"}`, `{oops`}, "\n"))
	c := &cleaner.Cleaner{Quality: processing.Lenient}
	_, err := c.Run(in, out)
	require.Error(t, err)
}
