package config

import (
	"fmt"
	"time"

	"github.com/luxnlp/lb-ner-corpus/internal/processing"
)

const (
	ProfileAll   = "all"
	ProfileQuota = "quota"
)

// Wikidata holds the remote endpoints shared by scrape and backfill.
type Wikidata struct {
	SPARQLURL string
	APIURL    string
	UserAgent string
	Timeout   time.Duration
}

// Scrape configures the bulk retriever.
type Scrape struct {
	Wikidata
	Profile     string
	Output      string
	Language    string
	PageSize    int
	Quality     processing.Quality
	Pause       time.Duration
	Cooldown    time.Duration
	MaxAttempts int
	ClassesFile string
	AllClasses  []string
	MetricsDir  string
}

// Backfill configures the single-language label lookup.
type Backfill struct {
	Wikidata
	Input       string
	Output      string
	Language    string
	BatchSize   int
	Pause       time.Duration
	Cooldown    time.Duration
	MaxAttempts int
	MetricsDir  string
}

// Clean configures the record cleaner.
type Clean struct {
	Input      string
	Output     string
	Quality    processing.Quality
	MetricsDir string
}

// Annotate configures the class -> tag annotator.
type Annotate struct {
	RawInput    string
	CleanInput  string
	Output      string
	ClassesFile string
	MetricsDir  string
}

// Export configures the JSONL -> CSV/XLSX exporter.
type Export struct {
	Input      string
	CSVOutput  string
	XLSXOutput string
	Language   string
	MetricsDir string
}

// Inspect configures the table inspector.
type Inspect struct {
	Input      string
	TagColumn  string
	SampleTags []string
	SampleSize int
}

func loadWikidata() Wikidata {
	return Wikidata{
		SPARQLURL: getEnv("WIKIDATA_SPARQL_URL", "https://query.wikidata.org/sparql"),
		APIURL:    getEnv("WIKIDATA_API_URL", "https://www.wikidata.org/w/api.php"),
		UserAgent: getEnv("WIKIDATA_USER_AGENT", "LuxNLPBot/1.0 (lb-ner-corpus; mail@example.com)"),
		Timeout:   getDuration("WIKIDATA_TIMEOUT", "60s"),
	}
}

// LoadScrape builds a Scrape config. SCRAPE_PROFILE picks the defaults:
// "quota" walks the class table with strict filtering, "all" runs a single
// lenient query over a few broad classes.
func LoadScrape() (*Scrape, error) {
	profile := getEnv("SCRAPE_PROFILE", ProfileQuota)

	var c *Scrape
	switch profile {
	case ProfileQuota:
		c = &Scrape{
			Output:   "data/raw/wikidata_lb_other_ner1.jsonl",
			Language: "lb",
			PageSize: 1000,
			Quality:  processing.Strict,
			Cooldown: 20 * time.Second,
		}
	case ProfileAll:
		c = &Scrape{
			Output:     "data/raw/wikidata_lb.jsonl",
			Language:   "lb,en",
			PageSize:   2000,
			Quality:    processing.Lenient,
			Cooldown:   15 * time.Second,
			AllClasses: []string{"Q5", "Q43229", "Q515", "Q6256"},
		}
	default:
		return nil, fmt.Errorf("SCRAPE_PROFILE must be %q or %q, got %q", ProfileQuota, ProfileAll, profile)
	}

	c.Wikidata = loadWikidata()
	c.Profile = profile
	c.Output = getEnv("SCRAPE_OUTPUT", c.Output)
	c.Language = getEnv("SCRAPE_LANGUAGE", c.Language)
	c.PageSize = getInt("SCRAPE_PAGE_SIZE", c.PageSize)
	c.Pause = getDuration("SCRAPE_PAUSE", "2s")
	c.Cooldown = getDuration("SCRAPE_COOLDOWN", c.Cooldown.String())
	c.MaxAttempts = getInt("SCRAPE_MAX_ATTEMPTS", 0)
	c.ClassesFile = getEnv("CLASSES_FILE", "")
	c.MetricsDir = getEnv("METRICS_TEXTFILE_DIR", "")
	if raw := getEnv("SCRAPE_CLASSES", ""); raw != "" {
		c.AllClasses = splitAndTrim(raw)
	}
	if raw := getEnv("SCRAPE_QUALITY", ""); raw != "" {
		q, err := processing.ParseQuality(raw)
		if err != nil {
			return nil, fmt.Errorf("SCRAPE_QUALITY: %w", err)
		}
		c.Quality = q
	}

	if c.PageSize <= 0 {
		return nil, fmt.Errorf("SCRAPE_PAGE_SIZE must be positive")
	}
	if c.MaxAttempts < 0 {
		return nil, fmt.Errorf("SCRAPE_MAX_ATTEMPTS cannot be negative")
	}
	if c.Profile == ProfileAll && len(c.AllClasses) == 0 {
		return nil, fmt.Errorf("SCRAPE_CLASSES must contain at least one class")
	}

	return c, nil
}

// LoadBackfill builds a Backfill config from environment variables.
func LoadBackfill() (*Backfill, error) {
	c := &Backfill{
		Wikidata:    loadWikidata(),
		Input:       getEnv("BACKFILL_INPUT", "data/raw/wikidata_lb.jsonl"),
		Output:      getEnv("BACKFILL_OUTPUT", "data/cleaned/wikidata_lb_pure.jsonl"),
		Language:    getEnv("BACKFILL_LANGUAGE", "lb"),
		BatchSize:   getInt("BACKFILL_BATCH_SIZE", 50),
		Pause:       getDuration("BACKFILL_PAUSE", "1s"),
		Cooldown:    getDuration("BACKFILL_COOLDOWN", "20s"),
		MaxAttempts: getInt("BACKFILL_MAX_ATTEMPTS", 2),
		MetricsDir:  getEnv("METRICS_TEXTFILE_DIR", ""),
	}

	if c.BatchSize <= 0 || c.BatchSize > 50 {
		return nil, fmt.Errorf("BACKFILL_BATCH_SIZE must be between 1 and 50")
	}
	if c.MaxAttempts <= 0 {
		return nil, fmt.Errorf("BACKFILL_MAX_ATTEMPTS must be positive")
	}

	return c, nil
}

// LoadClean builds a Clean config from environment variables.
func LoadClean() (*Clean, error) {
	c := &Clean{
		Input:      getEnv("CLEAN_INPUT", "data/cleaned/wikidata_lb_pure.jsonl"),
		Output:     getEnv("CLEAN_OUTPUT", "data/cleaned/wikidata_lb_with_description.jsonl"),
		Quality:    processing.Lenient,
		MetricsDir: getEnv("METRICS_TEXTFILE_DIR", ""),
	}
	if getBool("CLEAN_REQUIRE_DESCRIPTION", true) {
		c.Quality = processing.Strict
	}
	if c.Input == c.Output {
		return nil, fmt.Errorf("CLEAN_INPUT and CLEAN_OUTPUT must differ")
	}
	return c, nil
}

// LoadAnnotate builds an Annotate config from environment variables.
func LoadAnnotate() (*Annotate, error) {
	c := &Annotate{
		RawInput:    getEnv("ANNOTATE_RAW_INPUT", "data/raw/wikidata_lb.jsonl"),
		CleanInput:  getEnv("ANNOTATE_CLEAN_INPUT", "data/cleaned/wikidata_lb_with_description.jsonl"),
		Output:      getEnv("ANNOTATE_OUTPUT", "data/cleaned/wikidata_lb_with_desc_ner.jsonl"),
		ClassesFile: getEnv("CLASSES_FILE", ""),
		MetricsDir:  getEnv("METRICS_TEXTFILE_DIR", ""),
	}
	if c.Output == c.CleanInput || c.Output == c.RawInput {
		return nil, fmt.Errorf("ANNOTATE_OUTPUT must differ from its inputs")
	}
	return c, nil
}

// LoadExport builds an Export config from environment variables.
func LoadExport() (*Export, error) {
	c := &Export{
		Input:      getEnv("EXPORT_INPUT", "data/cleaned/wikidata_lb_with_desc_ner.jsonl"),
		CSVOutput:  getEnv("EXPORT_CSV_PATH", "data/cleaned/wikidata_lb_all_ner.csv"),
		XLSXOutput: getEnv("EXPORT_XLSX_PATH", ""),
		Language:   getEnv("EXPORT_COLLATION", "lb"),
		MetricsDir: getEnv("METRICS_TEXTFILE_DIR", ""),
	}
	return c, nil
}

// LoadInspect builds an Inspect config from environment variables.
func LoadInspect() (*Inspect, error) {
	c := &Inspect{
		Input:      getEnv("INSPECT_INPUT", "data/cleaned/wikidata_lb_all_ner.csv"),
		TagColumn:  getEnv("INSPECT_TAG_COLUMN", "ner_tag"),
		SampleTags: splitAndTrim(getEnv("INSPECT_SAMPLE_TAGS", "PER,LOC,ORG,DATE")),
		SampleSize: getInt("INSPECT_SAMPLE_SIZE", 5),
	}
	if c.SampleSize <= 0 {
		return nil, fmt.Errorf("INSPECT_SAMPLE_SIZE must be positive")
	}
	return c, nil
}
