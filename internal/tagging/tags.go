// Package tagging maps Wikidata classes to NER tags and annotates cleaned
// records with them.
package tagging

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/luxnlp/lb-ner-corpus/internal/processing"
)

// Tag is an NER category.
type Tag string

const (
	PER  Tag = "PER"
	ORG  Tag = "ORG"
	LOC  Tag = "LOC"
	DATE Tag = "DATE"
	MISC Tag = "MISC"
)

// Tags lists the closed tag set in display order.
var Tags = []Tag{PER, ORG, LOC, DATE, MISC}

// ParseTag accepts a tag name case-insensitively; "other" is an alias of MISC.
func ParseTag(raw string) (Tag, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "OTHER" {
		return MISC, nil
	}
	for _, t := range Tags {
		if string(t) == s {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown ner tag %q", raw)
}

// Valid reports whether t belongs to the closed set.
func (t Tag) Valid() bool {
	for _, v := range Tags {
		if t == v {
			return true
		}
	}
	return false
}

// ClassSpec is one row of the class table. Min/Max are retrieval quotas;
// a zero Max means the class is only used for tagging.
type ClassSpec struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
	Tag  Tag    `yaml:"tag"`
	Min  int    `yaml:"min"`
	Max  int    `yaml:"max"`
}

// DefaultClasses is the built-in class table.
var DefaultClasses = []ClassSpec{
	{ID: "Q5", Name: "human", Tag: PER},

	{ID: "Q43229", Name: "organization", Tag: ORG, Min: 3000, Max: 5000},
	{ID: "Q4830453", Name: "business", Tag: ORG, Min: 3000, Max: 5000},
	{ID: "Q3918", Name: "university", Tag: ORG, Min: 3000, Max: 5000},
	{ID: "Q7278", Name: "political party", Tag: ORG, Min: 3000, Max: 5000},

	{ID: "Q515", Name: "city", Tag: LOC, Min: 2000, Max: 4000},
	{ID: "Q6256", Name: "country", Tag: LOC, Min: 2000, Max: 4000},
	{ID: "Q486972", Name: "human settlement", Tag: LOC, Min: 2000, Max: 4000},
	{ID: "Q618123", Name: "geographical feature", Tag: LOC, Min: 2000, Max: 4000},

	{ID: "Q577", Name: "year", Tag: DATE, Min: 3000, Max: 5000},
	{ID: "Q205892", Name: "century", Tag: DATE, Min: 3000, Max: 5000},
	{ID: "Q2334719", Name: "decade", Tag: DATE, Min: 3000, Max: 5000},
}

type classFile struct {
	Classes []ClassSpec `yaml:"classes"`
}

// LoadClasses reads a YAML class table. An empty path yields DefaultClasses.
func LoadClasses(path string) ([]ClassSpec, error) {
	if path == "" {
		out := make([]ClassSpec, len(DefaultClasses))
		copy(out, DefaultClasses)
		return out, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read class table: %w", err)
	}
	var parsed classFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse class table: %w", err)
	}
	if len(parsed.Classes) == 0 {
		return nil, fmt.Errorf("class table %s has no classes", path)
	}

	for i, c := range parsed.Classes {
		c.ID = processing.ClassQID(c.ID)
		tag, err := ParseTag(string(c.Tag))
		if err != nil {
			return nil, fmt.Errorf("class table entry %d: %w", i, err)
		}
		c.Tag = tag
		if c.Min < 0 || c.Max < 0 {
			return nil, fmt.Errorf("class table entry %d: quotas cannot be negative", i)
		}
		parsed.Classes[i] = c
	}
	return parsed.Classes, nil
}
