package tagging

import (
	"fmt"

	"github.com/luxnlp/lb-ner-corpus/internal/processing"
)

// Table is an immutable, ordered class id -> tag mapping. Unmapped or empty
// class ids resolve to MISC.
type Table struct {
	order []string
	tags  map[string]Tag
}

// Entry is one mapping of a Table.
type Entry struct {
	ClassID string
	Tag     Tag
}

// NewTable builds a table from the class specs. A class listed twice must
// carry the same tag both times.
func NewTable(specs []ClassSpec) (*Table, error) {
	t := &Table{tags: make(map[string]Tag, len(specs))}
	for _, s := range specs {
		id := processing.ClassQID(s.ID)
		if id == "" {
			return nil, fmt.Errorf("class with empty id")
		}
		if !s.Tag.Valid() {
			return nil, fmt.Errorf("class %s: invalid tag %q", id, s.Tag)
		}
		if prev, ok := t.tags[id]; ok {
			if prev != s.Tag {
				return nil, fmt.Errorf("class %s mapped to both %s and %s", id, prev, s.Tag)
			}
			continue
		}
		t.order = append(t.order, id)
		t.tags[id] = s.Tag
	}
	return t, nil
}

// Lookup returns the tag for classID, or MISC.
func (t *Table) Lookup(classID string) Tag {
	if tag, ok := t.tags[processing.ClassQID(classID)]; ok {
		return tag
	}
	return MISC
}

// Entries returns the mappings in insertion order.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, Entry{ClassID: id, Tag: t.tags[id]})
	}
	return out
}

// Len returns the number of mapped classes.
func (t *Table) Len() int {
	return len(t.order)
}
