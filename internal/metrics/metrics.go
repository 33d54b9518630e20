// Package metrics exposes Prometheus instrumentation for imports and scoring
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/myusername/fm-scout/pkg/importer"
)

// Label keys kept stable so dashboards stay searchable
const (
	LabelFormat  = "format"
	LabelOutcome = "outcome"
)

// Recorder counts imports and re-scoring batches on its own registry
type Recorder struct {
	registry       *prometheus.Registry
	imports        *prometheus.CounterVec
	playersLoaded  prometheus.Counter
	rowsSkipped    prometheus.Counter
	importDuration *prometheus.HistogramVec
	rescored       prometheus.Counter
}

// NewRecorder registers the collectors on a fresh registry
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fmscout",
			Name:      "imports_total",
			Help:      "Player file imports by format and outcome.",
		}, []string{LabelFormat, LabelOutcome}),
		playersLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fmscout",
			Name:      "players_imported_total",
			Help:      "Players produced by successful imports.",
		}),
		rowsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fmscout",
			Name:      "rows_skipped_total",
			Help:      "Rows dropped for arity mismatch or a missing name.",
		}),
		importDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fmscout",
			Name:      "import_duration_seconds",
			Help:      "Wall time of a full import.",
			Buckets:   prometheus.DefBuckets,
		}, []string{LabelFormat}),
		rescored: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fmscout",
			Name:      "players_rescored_total",
			Help:      "Player records re-scored against a role subset.",
		}),
	}
	r.registry.MustRegister(r.imports, r.playersLoaded, r.rowsSkipped, r.importDuration, r.rescored)
	return r
}

// ObserveImport implements importer.Recorder
func (r *Recorder) ObserveImport(format string, players, skipped int, duration time.Duration, err error) {
	if r == nil {
		return
	}
	if format == "" {
		format = "unknown"
	}

	r.imports.WithLabelValues(format, outcome(err)).Inc()
	r.importDuration.WithLabelValues(format).Observe(duration.Seconds())
	r.rowsSkipped.Add(float64(skipped))
	if err == nil {
		r.playersLoaded.Add(float64(players))
	}
}

// ObserveRescore counts re-scored records
func (r *Recorder) ObserveRescore(records int) {
	if r == nil {
		return
	}
	r.rescored.Add(float64(records))
}

// Handler serves the registry in the Prometheus exposition format
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry, mainly for tests
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func outcome(err error) string {
	switch importer.Kind(err) {
	case nil:
		if err != nil {
			return "error"
		}
		return "success"
	case importer.ErrIO:
		return "io_error"
	case importer.ErrUnsupportedFormat:
		return "unsupported_format"
	case importer.ErrStructural:
		return "structural_error"
	case importer.ErrEmptyResult:
		return "empty_result"
	case importer.ErrSizeLimitExceeded:
		return "size_limit_exceeded"
	default:
		return "error"
	}
}
