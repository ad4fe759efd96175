package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/lucasnoah/defendercheck/internal/checks"
)

// Metrics holds the gauges exported for one or more evaluated runs.
type Metrics struct {
	registry *prometheus.Registry

	Age         *prometheus.GaugeVec
	AgeWarn     *prometheus.GaugeVec
	AgeCrit     *prometheus.GaugeVec
	ItemState   *prometheus.GaugeVec
	Items       *prometheus.GaugeVec
	EvaluatedAt *prometheus.GaugeVec
}

// New creates a Metrics instance on its own registry so that a textfile
// export never carries process metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Age: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "defender_age_seconds",
			Help: "Age of a signature or scan as reported by the agent",
		}, []string{"host", "metric"}),
		AgeWarn: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "defender_age_warn_seconds",
			Help: "Warning threshold for the age metric",
		}, []string{"host", "metric"}),
		AgeCrit: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "defender_age_crit_seconds",
			Help: "Critical threshold for the age metric",
		}, []string{"host", "metric"}),
		ItemState: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "defender_item_state",
			Help: "Verdict per monitored item (0=OK, 1=WARN, 2=CRIT, 3=UNKNOWN)",
		}, []string{"host", "item"}),
		Items: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "defender_items",
			Help: "Number of monitored items per verdict",
		}, []string{"host", "state"}),
		EvaluatedAt: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "defender_evaluation_timestamp_seconds",
			Help: "Unix time of the last evaluation",
		}, []string{"host"}),
	}
}

// Registry returns the registry the gauges are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe sets every gauge from run. Items without a metric only export their state.
func (m *Metrics) Observe(run *checks.Run) {
	for _, res := range run.Results {
		m.ItemState.WithLabelValues(run.Host, res.Item).Set(float64(res.State))
		if res.Metric == nil {
			continue
		}
		name := res.Metric.Name
		m.Age.WithLabelValues(run.Host, name).Set(res.Metric.Value)
		if res.Metric.Warn != nil {
			m.AgeWarn.WithLabelValues(run.Host, name).Set(*res.Metric.Warn)
		}
		if res.Metric.Crit != nil {
			m.AgeCrit.WithLabelValues(run.Host, name).Set(*res.Metric.Crit)
		}
	}
	for _, s := range []checks.State{checks.StateOK, checks.StateWarn, checks.StateCrit, checks.StateUnknown} {
		m.Items.WithLabelValues(run.Host, s.String()).Set(float64(run.Count(s)))
	}
	m.EvaluatedAt.WithLabelValues(run.Host).Set(float64(run.EvaluatedAt.Unix()))
}

// WriteTextfile writes the registry in the text exposition format for the
// node_exporter textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// WriteTextfile exports a single run to path.
func WriteTextfile(path string, run *checks.Run) error {
	m := New()
	m.Observe(run)
	return m.WriteTextfile(path)
}
