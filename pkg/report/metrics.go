package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/user/cloudcomply/pkg/engine"
)

// Metrics holds the gauges published for a run, on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	compliancePercent *prometheus.GaugeVec
	controlsTotal     *prometheus.GaugeVec
	controlsAffected  *prometheus.GaugeVec
	findingsMapped    *prometheus.GaugeVec
	findingsTotal     prometheus.Gauge
}

// NewMetrics creates and registers the compliance gauges.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.compliancePercent = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cloudcomply_compliance_percent",
			Help: "Share of framework controls without findings",
		},
		[]string{"framework", "tier"},
	)
	m.controlsTotal = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cloudcomply_controls_total",
			Help: "Distinct controls declared by the framework",
		},
		[]string{"framework"},
	)
	m.controlsAffected = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cloudcomply_controls_affected",
			Help: "Controls with at least one finding",
		},
		[]string{"framework"},
	)
	m.findingsMapped = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cloudcomply_findings_mapped",
			Help: "Findings attributed to at least one control of the framework",
		},
		[]string{"framework"},
	)
	m.findingsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cloudcomply_findings_total",
		Help: "Findings in the batch",
	})

	collectors := []prometheus.Collector{
		m.compliancePercent, m.controlsTotal, m.controlsAffected, m.findingsMapped, m.findingsTotal,
	}
	for _, c := range collectors {
		if err := m.registry.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// Observe records the scores of a run. Frameworks without controls get no
// compliance gauge.
func (m *Metrics) Observe(r *Result) {
	m.findingsTotal.Set(float64(len(r.Findings)))
	for _, s := range r.Sections {
		name := s.Framework.Name
		m.controlsTotal.WithLabelValues(name).Set(float64(s.Score.TotalControls))
		m.controlsAffected.WithLabelValues(name).Set(float64(s.Score.AffectedControls))
		m.findingsMapped.WithLabelValues(name).Set(float64(engine.MappedFindings(name, r.Findings)))
		if s.Scored {
			m.compliancePercent.WithLabelValues(name, string(s.Score.Tier)).Set(s.Score.Percentage)
		}
	}
}

// Registry exposes the gatherer for tests and callers that serve it.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteMetrics writes the run's gauges in the Prometheus text format to path,
// for collection by a node exporter textfile collector.
func WriteMetrics(path string, r *Result) error {
	m, err := NewMetrics()
	if err != nil {
		return err
	}
	m.Observe(r)
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
