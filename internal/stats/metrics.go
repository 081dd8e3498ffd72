package stats

import "github.com/prometheus/client_golang/prometheus"

// Gauges exposes a Record as Prometheus gauges. This is additive instrumentation behind
// --metrics-addr (SPEC_FULL.md §4.H); the persisted Record remains the authoritative statistics
// artifact regardless of whether anything scrapes these gauges.
type Gauges struct {
	NumDocuments        prometheus.Gauge
	NumUniqueTokens     prometheus.Gauge
	IndexSizeBytes      prometheus.Gauge
	PartialSegmentCount prometheus.Gauge
}

// NewGauges registers a fresh set of gauges against reg.
func NewGauges(reg prometheus.Registerer) *Gauges {
	g := &Gauges{
		NumDocuments: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "webengine_build_documents_total",
			Help: "Number of documents indexed in the most recent build.",
		}),
		NumUniqueTokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "webengine_build_unique_tokens_total",
			Help: "Number of unique stemmed terms in the final index.",
		}),
		IndexSizeBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "webengine_build_index_size_bytes",
			Help: "Combined size of the final index and doc-mapping files.",
		}),
		PartialSegmentCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "webengine_build_partial_segments_total",
			Help: "Number of partial segments spilled during the most recent build.",
		}),
	}
	reg.MustRegister(g.NumDocuments, g.NumUniqueTokens, g.IndexSizeBytes, g.PartialSegmentCount)
	return g
}

// Set updates all gauges from r.
func (g *Gauges) Set(r Record) {
	g.NumDocuments.Set(float64(r.NumDocuments))
	g.NumUniqueTokens.Set(float64(r.NumUniqueTokens))
	g.IndexSizeBytes.Set(float64(r.IndexSizeBytes))
	g.PartialSegmentCount.Set(float64(r.PartialSegmentCount))
}
