package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds every collector of this module. Batch stages dump it to a
// textfile on exit; the API serves it over HTTP.
var Registry = prometheus.NewRegistry()

var (
	RemoteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbner_remote_requests_total",
			Help: "Count of requests sent to Wikidata endpoints",
		},
		[]string{"endpoint", "status"},
	)

	RetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbner_retries_total",
			Help: "Count of retried remote calls",
		},
		[]string{"stage"},
	)

	RowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbner_rows_total",
			Help: "Rows seen by the retriever by outcome",
		},
		[]string{"tag", "outcome"},
	)

	RecordsWrittenTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbner_records_written_total",
			Help: "Records written per pipeline stage",
		},
		[]string{"stage"},
	)

	IndexedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lbner_indexed_total",
			Help: "Entities handled by the indexer by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	Registry.MustRegister(RemoteRequestsTotal)
	Registry.MustRegister(RetriesTotal)
	Registry.MustRegister(RowsTotal)
	Registry.MustRegister(RecordsWrittenTotal)
	Registry.MustRegister(IndexedTotal)
}

// WriteTextfile writes the registry to <dir>/<stage>.prom for the node
// exporter textfile collector. An empty dir disables the dump.
func WriteTextfile(dir, stage string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	path := filepath.Join(dir, stage+".prom")
	if err := prometheus.WriteToTextfile(path, Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
