package service

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mattsolo1/grove-notetree/pkg/notefs"
)

// Metrics counts command outcomes on a registry private to the service.
type Metrics struct {
	Registry   *prometheus.Registry
	operations *prometheus.CounterVec
}

// NewMetrics creates and registers the service counters.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: `notetree_operations_total`,
			Help: `A counter of notes tree commands by outcome`,
		}, []string{`op`, `outcome`}),
	}
	m.Registry.MustRegister(m.operations)
	return m
}

// WriteTextfile writes the counters in the Prometheus text format, as read
// by node_exporter's textfile collector. The file is replaced atomically.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// Totals returns the recorded counts keyed by "op/outcome".
func (m *Metrics) Totals() (map[string]float64, error) {
	families, err := m.Registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}
	totals := make(map[string]float64)
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			var op, result string
			for _, label := range metric.GetLabel() {
				switch label.GetName() {
				case "op":
					op = label.GetValue()
				case "outcome":
					result = label.GetValue()
				}
			}
			totals[op+"/"+result] = metric.GetCounter().GetValue()
		}
	}
	return totals, nil
}

func (m *Metrics) observe(op string, err error) error {
	m.operations.WithLabelValues(op, outcome(err)).Inc()
	return err
}

func (m *Metrics) skip(op string) error {
	m.operations.WithLabelValues(op, "noop").Inc()
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, notefs.ErrNameCollision):
		return "collision"
	case errors.Is(err, notefs.ErrPathNotFound):
		return "not_found"
	case errors.Is(err, notefs.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, notefs.ErrIOUnavailable):
		return "io_unavailable"
	default:
		return "error"
	}
}
