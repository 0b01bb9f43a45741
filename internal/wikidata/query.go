package wikidata

import (
	"fmt"
	"strings"

	"github.com/luxnlp/lb-ner-corpus/internal/processing"
)

// Query selects one page of instances of the given classes.
type Query struct {
	Classes  []string
	Language string
	Limit    int
	Offset   int
}

// BuildQuery renders the SPARQL text for q.
func BuildQuery(q Query) string {
	classes := make([]string, 0, len(q.Classes))
	for _, c := range q.Classes {
		classes = append(classes, processing.PrefixedClass(c))
	}

	return fmt.Sprintf(`
SELECT ?item ?itemLabel ?itemDescription ?class ?classLabel WHERE {
  VALUES ?class { %s }
  ?item wdt:P31 ?class .

  SERVICE wikibase:label {
    bd:serviceParam wikibase:language "%s".
  }
}
LIMIT %d
OFFSET %d
`, strings.Join(classes, " "), q.Language, q.Limit, q.Offset)
}
