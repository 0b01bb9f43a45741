package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Common contains Elasticsearch parameters shared by the index services.
type Common struct {
	ElasticsearchAddr  string
	ElasticsearchIndex string
}

// Kafka describes the corpus topic.
type Kafka struct {
	KafkaBrokers []string
	KafkaTopic   string
}

// Indexer holds configuration for the Kafka -> Elasticsearch indexer.
type Indexer struct {
	Common
	Kafka
	KafkaConsumer  string
	DedupeCapacity int
	BatchSize      int
}

// Publish configures the tagged store -> Kafka publisher.
type Publish struct {
	Kafka
	Input      string
	BatchSize  int
	MetricsDir string
}

// API describes HTTP-layer configuration.
type API struct {
	Common
	BindAddr    string
	DefaultPage int
	MaxPage     int
}

// Retention configures the cleanup loop.
type Retention struct {
	Common
	Interval  time.Duration
	MaxAge    time.Duration
	BatchSize int
}

func loadCommon() Common {
	return Common{
		ElasticsearchAddr:  getEnv("ELASTICSEARCH_ADDR", "http://elasticsearch:9200"),
		ElasticsearchIndex: getEnv("ELASTICSEARCH_INDEX", "lb-entities"),
	}
}

func loadKafka() (Kafka, error) {
	k := Kafka{
		KafkaBrokers: splitAndTrim(getEnv("KAFKA_BROKERS", "kafka:9092")),
		KafkaTopic:   getEnv("KAFKA_TOPIC", "lb_entities"),
	}
	if len(k.KafkaBrokers) == 0 {
		return k, fmt.Errorf("KAFKA_BROKERS must contain at least one broker")
	}
	return k, nil
}

// LoadIndexer builds an Indexer config from environment variables.
func LoadIndexer() (*Indexer, error) {
	k, err := loadKafka()
	if err != nil {
		return nil, err
	}
	c := &Indexer{
		Common:         loadCommon(),
		Kafka:          k,
		KafkaConsumer:  getEnv("KAFKA_CONSUMER_GROUP", "lb-entities-indexer"),
		DedupeCapacity: getInt("INDEXER_DEDUPE_CAPACITY", 100000),
		BatchSize:      getInt("INDEXER_BATCH_SIZE", 100),
	}

	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("INDEXER_BATCH_SIZE must be positive")
	}
	if c.DedupeCapacity <= 0 {
		return nil, fmt.Errorf("INDEXER_DEDUPE_CAPACITY must be positive")
	}

	return c, nil
}

// LoadPublish builds a Publish config from environment variables.
func LoadPublish() (*Publish, error) {
	k, err := loadKafka()
	if err != nil {
		return nil, err
	}
	c := &Publish{
		Kafka:      k,
		Input:      getEnv("PUBLISH_INPUT", "data/cleaned/wikidata_lb_with_desc_ner.jsonl"),
		BatchSize:  getInt("PUBLISH_BATCH_SIZE", 500),
		MetricsDir: getEnv("METRICS_TEXTFILE_DIR", ""),
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("PUBLISH_BATCH_SIZE must be positive")
	}
	return c, nil
}

// LoadAPI builds an API config from environment variables.
func LoadAPI() (*API, error) {
	c := &API{
		Common:      loadCommon(),
		BindAddr:    getEnv("API_BIND_ADDR", "0.0.0.0:8080"),
		DefaultPage: getInt("API_PAGE_SIZE", 20),
		MaxPage:     getInt("API_MAX_PAGE_SIZE", 100),
	}

	if c.DefaultPage <= 0 {
		return nil, fmt.Errorf("API_PAGE_SIZE must be positive")
	}
	if c.MaxPage <= 0 {
		return nil, fmt.Errorf("API_MAX_PAGE_SIZE must be positive")
	}
	if c.DefaultPage > c.MaxPage {
		return nil, fmt.Errorf("API_PAGE_SIZE cannot exceed API_MAX_PAGE_SIZE")
	}

	return c, nil
}

// LoadRetention builds a Retention config from environment variables.
func LoadRetention() (*Retention, error) {
	c := &Retention{
		Common:    loadCommon(),
		Interval:  getDuration("RETENTION_CRON", "24h"),
		MaxAge:    getDuration("RETENTION_MAX_AGE", "720h"),
		BatchSize: getInt("RETENTION_BATCH_SIZE", 500),
	}

	if c.MaxAge <= 0 {
		return nil, fmt.Errorf("RETENTION_MAX_AGE must be positive")
	}
	if c.Interval <= 0 {
		return nil, fmt.Errorf("RETENTION_CRON must be positive")
	}
	if c.BatchSize <= 0 {
		return nil, fmt.Errorf("RETENTION_BATCH_SIZE must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, fallback))
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
