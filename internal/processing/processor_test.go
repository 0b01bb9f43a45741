package processing_test

import (
	"testing"

	"github.com/luxnlp/lb-ner-corpus/internal/processing"
	"github.com/stretchr/testify/require"
)

func TestQualityAccepts(t *testing.T) {
	tests := []struct {
		name        string
		quality     processing.Quality
		label, desc string
		want        bool
	}{
		{name: "lenient label only", quality: processing.Lenient, label: "Lëtzebuerg", want: true},
		{name: "lenient empty label", quality: processing.Lenient, desc: "Stad", want: false},
		{name: "strict both", quality: processing.Strict, label: "Esch", desc: "Stad", want: true},
		{name: "strict missing description", quality: processing.Strict, label: "Esch", want: false},
		{name: "strict missing label", quality: processing.Strict, desc: "Stad", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.quality.Accepts(tt.label, tt.desc))
		})
	}
}

func TestParseQuality(t *testing.T) {
	q, err := processing.ParseQuality(" Strict ")
	require.NoError(t, err)
	require.Equal(t, processing.Strict, q)
	require.Equal(t, "strict", q.String())

	q, err = processing.ParseQuality("lenient")
	require.NoError(t, err)
	require.Equal(t, processing.Lenient, q)

	_, err = processing.ParseQuality("loose")
	require.Error(t, err)
}

func TestEntityIDFromURI(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "http://www.wikidata.org/entity/Q7245", want: "Q7245"},
		{input: "http://www.wikidata.org/entity/Q5/", want: "Q5"},
		{input: "Q42", want: "Q42"},
		{input: "", want: ""},
	}

	for _, tt := range tests {
		require.Equal(t, tt.want, processing.EntityIDFromURI(tt.input), tt.input)
	}
}

func TestValidEntityID(t *testing.T) {
	require.True(t, processing.ValidEntityID("Q5"))
	require.True(t, processing.ValidEntityID("P31"))
	require.False(t, processing.ValidEntityID("Q0"))
	require.False(t, processing.ValidEntityID("q5"))
	require.False(t, processing.ValidEntityID(""))
	require.False(t, processing.ValidEntityID("Q5|Q6"))
}

func TestClassPrefixes(t *testing.T) {
	require.Equal(t, "Q5", processing.ClassQID("wd:Q5"))
	require.Equal(t, "Q5", processing.ClassQID("Q5"))
	require.Equal(t, "wd:Q515", processing.PrefixedClass("Q515"))
	require.Equal(t, "wd:Q515", processing.PrefixedClass("wd:Q515"))
}
