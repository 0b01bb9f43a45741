package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxnlp/lb-ner-corpus/internal/config"
	"github.com/luxnlp/lb-ner-corpus/internal/elasticsearch"
	"github.com/luxnlp/lb-ner-corpus/internal/logger"
	"github.com/luxnlp/lb-ner-corpus/internal/models"
)

type stubSearcher struct {
	healthErr error
	params    elasticsearch.SearchParams
	result    *elasticsearch.SearchResult
	counts    []elasticsearch.TagCount
}

func (s *stubSearcher) Health(context.Context) error { return s.healthErr }

func (s *stubSearcher) SearchEntities(_ context.Context, params elasticsearch.SearchParams) (*elasticsearch.SearchResult, error) {
	s.params = params
	return s.result, nil
}

func (s *stubSearcher) TagCounts(context.Context) ([]elasticsearch.TagCount, error) {
	return s.counts, nil
}

func newTestServer(es searcher) http.Handler {
	srv := &server{
		log: logger.Discard(),
		cfg: &config.API{DefaultPage: 20, MaxPage: 100},
		es:  es,
	}
	return srv.routes()
}

func TestHandleSearchPassesFilters(t *testing.T) {
	es := &stubSearcher{result: &elasticsearch.SearchResult{
		Total: 1,
		Items: []models.IndexedEntity{{TaggedEntity: models.TaggedEntity{ID: "Q1842", Label: "Lëtzebuerg", NERTag: "LOC"}}},
	}}
	h := newTestServer(es)

	req := httptest.NewRequest(http.MethodGet, "/entities?q=stad&tag=loc&class=Q515&from=10&size=500", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, elasticsearch.SearchParams{Query: "stad", Tag: "LOC", ClassID: "Q515", From: 10, Size: 100}, es.params)

	var body elasticsearch.SearchResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, int64(1), body.Total)
	require.Equal(t, "Q1842", body.Items[0].ID)
}

func TestHandleSearchRejectsUnknownTag(t *testing.T) {
	h := newTestServer(&stubSearcher{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/entities?tag=EVENT", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleTagsAndHealth(t *testing.T) {
	es := &stubSearcher{counts: []elasticsearch.TagCount{{Tag: "ORG", Count: 3}, {Tag: "MISC", Count: 1}}}
	h := newTestServer(es)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tags", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"tags":[{"tag":"ORG","count":3},{"tag":"MISC","count":1}]}`, rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	es.healthErr = errors.New("red")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(&stubSearcher{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestClampInt(t *testing.T) {
	require.Equal(t, 20, clampInt("", 20, 100))
	require.Equal(t, 20, clampInt("abc", 20, 100))
	require.Equal(t, 0, clampInt("0", 0, 100))
	require.Equal(t, 100, clampInt("500", 20, 100))
	require.Equal(t, 7, clampInt("7", 20, 100))
}
