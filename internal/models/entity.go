package models

import "time"

// Entity is a raw record as written by the retriever.
type Entity struct {
	ID          string `json:"id"`
	Label       string `json:"label_lb"`
	Description string `json:"description_lb"`
	ClassID     string `json:"class_id"`
	ClassLabel  string `json:"class_label_lb"`
	NERTag      string `json:"ner_tag,omitempty"`
}

// CleanEntity is the reduced record produced by the backfiller and the cleaner.
type CleanEntity struct {
	ID          string `json:"id"`
	Label       string `json:"label_lb"`
	Description string `json:"description_lb"`
}

// TaggedEntity is a clean record joined with its class and NER tag.
type TaggedEntity struct {
	ID          string `json:"id"`
	Label       string `json:"label_lb"`
	Description string `json:"description_lb"`
	ClassID     string `json:"class_id"`
	ClassLabel  string `json:"class_label_lb"`
	NERTag      string `json:"ner_tag"`
}

// IndexedEntity is the document stored in Elasticsearch.
type IndexedEntity struct {
	TaggedEntity
	RunID     string    `json:"run_id,omitempty"`
	IndexedAt time.Time `json:"indexed_at"`
}
