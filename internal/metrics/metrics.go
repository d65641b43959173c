// Package metrics exposes Prometheus instruments for an explorer session.
package metrics

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TomasH60/semantic-blockchain/pkg/explorer"
	"github.com/TomasH60/semantic-blockchain/pkg/ingest"
	"github.com/TomasH60/semantic-blockchain/pkg/view"
)

const namespace = "explorer"

// Load outcomes used as label values.
const (
	OutcomeApplied    = "applied"
	OutcomeParseError = "parse_error"
	OutcomeNoSchema   = "missing_schema"
	OutcomeSuperseded = "superseded"
	OutcomeFailed     = "failed"
)

// Metrics holds the instruments for one session.
type Metrics struct {
	registry *prometheus.Registry

	loadsTotal     *prometheus.CounterVec
	nodesAdded     *prometheus.CounterVec
	edgesAdded     *prometheus.CounterVec
	unknownTerms   prometheus.Counter
	viewsRendered  *prometheus.CounterVec
	graphNodes     prometheus.Gauge
	graphEdges     prometheus.Gauge
	schemaClasses  prometheus.Gauge
	visibleNodes   prometheus.Gauge
	assignedColors prometheus.Gauge
}

// New creates the instruments and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "loads_total",
				Help:      "Total number of load requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		nodesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_added_total",
				Help:      "Nodes inserted into the graph by operation",
			},
			[]string{"operation"},
		),
		edgesAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "edges_added_total",
				Help:      "Edges inserted into the graph by operation",
			},
			[]string{"operation"},
		),
		unknownTerms: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unknown_term_warnings_total",
			Help:      "Type statements that referenced a class missing from the schema",
		}),
		viewsRendered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "views_rendered_total",
				Help:      "View recomputations by resulting mode",
			},
			[]string{"mode"},
		),
		graphNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_nodes",
			Help:      "Nodes currently in the graph",
		}),
		graphEdges: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "graph_edges",
			Help:      "Edges currently in the graph",
		}),
		schemaClasses: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "schema_classes",
			Help:      "Classes in the loaded schema",
		}),
		visibleNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "visible_nodes",
			Help:      "Nodes in the current visible set",
		}),
		assignedColors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "assigned_colors",
			Help:      "Class labels that have been assigned a color",
		}),
	}

	m.registry.MustRegister(
		m.loadsTotal,
		m.nodesAdded,
		m.edgesAdded,
		m.unknownTerms,
		m.viewsRendered,
		m.graphNodes,
		m.graphEdges,
		m.schemaClasses,
		m.visibleNodes,
		m.assignedColors,
	)
	return m
}

// Attach subscribes the instruments to a session's loads and view changes.
func (m *Metrics) Attach(s *explorer.Session) {
	s.OnLoad(m.ObserveLoad)
	s.OnChange(m.ObserveView)
}

// ObserveLoad records a load result.
func (m *Metrics) ObserveLoad(res explorer.Result) {
	op := string(res.Operation)
	m.loadsTotal.WithLabelValues(op, Outcome(res.Err)).Inc()
	if res.Err != nil {
		return
	}

	m.nodesAdded.WithLabelValues(op).Add(float64(res.Report.NodesAdded))
	m.edgesAdded.WithLabelValues(op).Add(float64(res.Report.EdgesAdded))
	m.unknownTerms.Add(float64(len(res.Report.Warnings)))

	m.graphNodes.Set(float64(res.Stats.Nodes))
	m.graphEdges.Set(float64(res.Stats.Edges))
	m.schemaClasses.Set(float64(res.Stats.Classes))
	m.assignedColors.Set(float64(res.Stats.Colors))
}

// ObserveView records a recomputed view.
func (m *Metrics) ObserveView(v view.View) {
	m.viewsRendered.WithLabelValues(v.Mode.String()).Inc()
	m.visibleNodes.Set(float64(len(v.Nodes)))
}

// Registry returns the registry holding the instruments.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Outcome classifies a load error into a label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeApplied
	case errors.Is(err, ingest.ErrParse):
		return OutcomeParseError
	case errors.Is(err, ingest.ErrMissingSchema):
		return OutcomeNoSchema
	case errors.Is(err, explorer.ErrSuperseded):
		return OutcomeSuperseded
	default:
		return OutcomeFailed
	}
}
