package jsonl_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luxnlp/lb-ner-corpus/internal/jsonl"
	"github.com/stretchr/testify/require"
)

type rec struct {
	ID    string `json:"id"`
	Label string `json:"label_lb"`
}

func TestWriterKeepsNonASCII(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.jsonl")
	w, err := jsonl.Create(path)
	require.NoError(t, err)

	require.NoError(t, w.Write(rec{ID: "Q1", Label: "Lëtzebuerg <&>"}))
	require.NoError(t, w.Write(rec{ID: "Q2", Label: "Éislek"}))
	require.Equal(t, 2, w.Count())
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{\"id\":\"Q1\",\"label_lb\":\"Lëtzebuerg <&>\"}\n{\"id\":\"Q2\",\"label_lb\":\"Éislek\"}\n", string(data))
}

func TestFlushMakesLinesVisible(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl")
	w, err := jsonl.Create(path)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Write(rec{ID: "Q1"}))
	require.NoError(t, w.Flush())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestDecodeSkipsBlankLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"Q1\"}\n\n   \n{\"id\":\"Q2\",\"label_lb\":\"B\"}\n"), 0o644))

	var got []rec
	require.NoError(t, jsonl.Decode(path, func(r rec) error {
		got = append(got, r)
		return nil
	}))
	require.Equal(t, []rec{{ID: "Q1"}, {ID: "Q2", Label: "B"}}, got)
}

func TestDecodeReportsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.jsonl")
	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"Q1\"}\n{broken\n"), 0o644))

	err := jsonl.Decode(path, func(rec) error { return nil })
	require.ErrorContains(t, err, "line 2")
}

func TestEachMissingFile(t *testing.T) {
	err := jsonl.Each(filepath.Join(t.TempDir(), "nope.jsonl"), func([]byte) error { return nil })
	require.Error(t, err)
}
