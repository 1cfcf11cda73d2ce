package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what happens while corpora are loaded and samples derived.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	documentsLoaded *prometheus.CounterVec
	spanMismatches  *prometheus.CounterVec
	raggedRows      *prometheus.CounterVec
	samplesDerived  *prometheus.CounterVec
	samplesDropped  *prometheus.CounterVec
}

// New returns Metrics registered on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		documentsLoaded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "absaset_documents_loaded_total",
				Help: "Number of canonical documents produced by the adapters",
			},
			[]string{"dataset", "partition"},
		),
		spanMismatches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "absaset_span_mismatches_total",
				Help: "Number of aspect terms whose offsets do not match the term text",
			},
			[]string{"dataset"},
		),
		raggedRows: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "absaset_ragged_rows_total",
				Help: "Number of delimited rows with an unexpected column count",
			},
			[]string{"dataset"},
		),
		samplesDerived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "absaset_samples_derived_total",
				Help: "Number of samples emitted by the derivation engine",
			},
			[]string{"dataset", "task", "partition"},
		),
		samplesDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "absaset_samples_dropped_total",
				Help: "Number of samples dropped for having an empty label",
			},
			[]string{"dataset", "task", "partition"},
		),
	}

	m.registry.MustRegister(
		m.documentsLoaded,
		m.spanMismatches,
		m.raggedRows,
		m.samplesDerived,
		m.samplesDropped,
	)
	return m
}

// Registry returns the registry holding the counters.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) DocumentsLoaded(dataset, partition string, n int) {
	if m == nil {
		return
	}
	m.documentsLoaded.WithLabelValues(dataset, partition).Add(float64(n))
}

func (m *Metrics) SpanMismatch(dataset string) {
	if m == nil {
		return
	}
	m.spanMismatches.WithLabelValues(dataset).Inc()
}

func (m *Metrics) RaggedRow(dataset string) {
	if m == nil {
		return
	}
	m.raggedRows.WithLabelValues(dataset).Inc()
}

func (m *Metrics) SamplesDerived(dataset, task, partition string, n int) {
	if m == nil {
		return
	}
	m.samplesDerived.WithLabelValues(dataset, task, partition).Add(float64(n))
}

func (m *Metrics) SamplesDropped(dataset, task, partition string, n int) {
	if m == nil {
		return
	}
	m.samplesDropped.WithLabelValues(dataset, task, partition).Add(float64(n))
}

// WriteTextfile writes the counters in the text exposition format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}
