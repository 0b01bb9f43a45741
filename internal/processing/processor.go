package processing

import (
	"fmt"
	"regexp"
	"strings"
)

var entityIDRegex = regexp.MustCompile(`^[QPL][1-9][0-9]*$`)

// Quality is the non-empty field rule a record must pass to be kept.
type Quality int

const (
	// Lenient requires a label only.
	Lenient Quality = iota
	// Strict requires both a label and a description.
	Strict
)

// ParseQuality maps "lenient" and "strict" to a Quality.
func ParseQuality(raw string) (Quality, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "lenient":
		return Lenient, nil
	case "strict":
		return Strict, nil
	default:
		return Lenient, fmt.Errorf("unknown quality %q", raw)
	}
}

func (q Quality) String() string {
	if q == Strict {
		return "strict"
	}
	return "lenient"
}

// Accepts applies the rule to already trimmed fields.
func (q Quality) Accepts(label, description string) bool {
	if label == "" {
		return false
	}
	if q == Strict && description == "" {
		return false
	}
	return true
}

// EntityIDFromURI returns the last path segment of an entity URI,
// e.g. http://www.wikidata.org/entity/Q5 -> Q5.
func EntityIDFromURI(uri string) string {
	uri = strings.TrimSpace(uri)
	uri = strings.TrimRight(uri, "/")
	if i := strings.LastIndexByte(uri, '/'); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// ValidEntityID reports whether id looks like a Wikidata item, property or lexeme id.
func ValidEntityID(id string) bool {
	return entityIDRegex.MatchString(id)
}

// ClassQID strips the "wd:" prefix used in SPARQL VALUES clauses.
func ClassQID(class string) string {
	return strings.TrimPrefix(strings.TrimSpace(class), "wd:")
}

// PrefixedClass renders a class id for a SPARQL VALUES clause.
func PrefixedClass(class string) string {
	return "wd:" + ClassQID(class)
}
