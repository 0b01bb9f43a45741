package wikidata_test

import (
	"testing"

	"github.com/luxnlp/lb-ner-corpus/internal/wikidata"
	"github.com/stretchr/testify/require"
)

func TestDecodeBindingsRelaxed(t *testing.T) {
	// raw tab and 0x01 inside a literal are invalid JSON
	body := []byte("{\"results\": {\"bindings\": [" +
		"{\"item\": {\"value\": \"http://www.wikidata.org/entity/Q1\"}, \"itemLabel\": {\"value\": \"Lëtze\tbuerg\x01\"}}," +
		"{\"item\": {\"value\": \"http://www.wikidata.org/entity/Q2\"}}" +
		"]}}")

	rows, err := wikidata.DecodeBindings(body)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, "http://www.wikidata.org/entity/Q1", rows[0]["item"])
	require.Equal(t, "Lëtze\tbuerg\x01", rows[0]["itemLabel"])
	require.Equal(t, "http://www.wikidata.org/entity/Q2", rows[1]["item"])
}

func TestDecodeBindingsEmpty(t *testing.T) {
	rows, err := wikidata.DecodeBindings([]byte(`{"results": {"bindings": []}}`))
	require.NoError(t, err)
	require.Empty(t, rows)
}

func TestDecodeBindingsMalformed(t *testing.T) {
	_, err := wikidata.DecodeBindings([]byte(`<html>Service unavailable</html>`))
	require.Error(t, err)
}

func TestBuildQuery(t *testing.T) {
	q := wikidata.BuildQuery(wikidata.Query{
		Classes:  []string{"wd:Q5", "Q43229"},
		Language: "lb,en",
		Limit:    2000,
		Offset:   4000,
	})
	require.Contains(t, q, "VALUES ?class { wd:Q5 wd:Q43229 }")
	require.Contains(t, q, `wikibase:language "lb,en"`)
	require.Contains(t, q, "LIMIT 2000")
	require.Contains(t, q, "OFFSET 4000")
}
