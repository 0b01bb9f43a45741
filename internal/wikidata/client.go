package wikidata

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/luxnlp/lb-ner-corpus/internal/metrics"
)

const (
	DefaultSPARQLURL = "https://query.wikidata.org/sparql"
	DefaultAPIURL    = "https://www.wikidata.org/w/api.php"
	DefaultUserAgent = "LuxNLPBot/1.0 (lb-ner-corpus; mail@example.com)"

	// MaxLookupIDs is the wbgetentities limit for anonymous clients.
	MaxLookupIDs = 50
)

// StatusError is returned for non-2xx responses.
type StatusError struct {
	Endpoint string
	Code     int
	Body     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned %d: %s", e.Endpoint, e.Code, e.Body)
}

// Options configures a Client. Zero values fall back to the public endpoints.
type Options struct {
	SPARQLURL string
	APIURL    string
	UserAgent string
	Timeout   time.Duration
}

// Client talks to the Wikidata query service and the wbgetentities API.
// It performs a single attempt per call; retries belong to the caller's policy.
type Client struct {
	http      *resty.Client
	sparqlURL string
	apiURL    string
}

// New instantiates the client.
func New(opts Options) *Client {
	if opts.SPARQLURL == "" {
		opts.SPARQLURL = DefaultSPARQLURL
	}
	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}

	httpClient := resty.New().
		SetTimeout(opts.Timeout).
		SetHeader("User-Agent", opts.UserAgent).
		SetHeader("Accept", "application/sparql-results+json, application/json")

	return &Client{http: httpClient, sparqlURL: opts.SPARQLURL, apiURL: opts.APIURL}
}

// QueryPage runs one page of the class query and returns its rows.
func (c *Client) QueryPage(ctx context.Context, q Query) ([]Row, error) {
	body, err := c.get(ctx, "sparql", c.sparqlURL, map[string]string{
		"query":  BuildQuery(q),
		"format": "json",
	})
	if err != nil {
		return nil, err
	}
	return DecodeBindings(body)
}

// Terms holds the label and description of one entity in one language.
type Terms struct {
	Label       string
	Description string
}

type entitiesResponse struct {
	Entities map[string]struct {
		Missing      *string                `json:"missing"`
		Labels       map[string]valueObject `json:"labels"`
		Descriptions map[string]valueObject `json:"descriptions"`
	} `json:"entities"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

type valueObject struct {
	Value string `json:"value"`
}

// GetEntities fetches labels and descriptions for up to MaxLookupIDs ids in
// exactly one language, without fallback. Missing entities map to empty Terms.
func (c *Client) GetEntities(ctx context.Context, ids []string, language string) (map[string]Terms, error) {
	if len(ids) == 0 {
		return map[string]Terms{}, nil
	}
	if len(ids) > MaxLookupIDs {
		return nil, fmt.Errorf("get entities: %d ids exceeds limit of %d", len(ids), MaxLookupIDs)
	}

	body, err := c.get(ctx, "wbgetentities", c.apiURL, map[string]string{
		"action":    "wbgetentities",
		"ids":       strings.Join(ids, "|"),
		"props":     "labels|descriptions",
		"languages": language,
		"format":    "json",
	})
	if err != nil {
		return nil, err
	}

	var parsed entitiesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode wbgetentities response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("wbgetentities error %s: %s", parsed.Error.Code, parsed.Error.Info)
	}

	out := make(map[string]Terms, len(parsed.Entities))
	for id, ent := range parsed.Entities {
		out[id] = Terms{
			Label:       ent.Labels[language].Value,
			Description: ent.Descriptions[language].Value,
		}
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint, url string, params map[string]string) ([]byte, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(url)
	if err != nil {
		metrics.RemoteRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, fmt.Errorf("%s request: %w", endpoint, err)
	}

	metrics.RemoteRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode())).Inc()
	if !resp.IsSuccess() {
		return nil, &StatusError{
			Endpoint: endpoint,
			Code:     resp.StatusCode(),
			Body:     truncate(strings.TrimSpace(string(resp.Body())), 200),
		}
	}
	return resp.Body(), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
