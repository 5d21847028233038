// Package observability provides the Prometheus metrics registry for birdwatcher.
package observability

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/tphakala/birdwatcher/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry    *prometheus.Registry
	Datastore   *metrics.DatastoreMetrics
	Observation *metrics.ObservationMetrics
	SunCalc     *metrics.SunCalcMetrics
}

// NewMetrics creates a new instance of Metrics on a private registry.
// It returns an error if any metric collector fails to initialize.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	datastoreMetrics, err := metrics.NewDatastoreMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Datastore metrics: %w", err)
	}

	observationMetrics, err := metrics.NewObservationMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create Observation metrics: %w", err)
	}

	sunCalcMetrics, err := metrics.NewSunCalcMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create SunCalc metrics: %w", err)
	}

	return &Metrics{
		registry:    registry,
		Datastore:   datastoreMetrics,
		Observation: observationMetrics,
		SunCalc:     sunCalcMetrics,
	}, nil
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Sample is one flattened metric value.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Snapshot gathers the registry and flattens counters, gauges and
// histogram counts into samples sorted by name and labels.
func (m *Metrics) Snapshot() ([]Sample, error) {
	families, err := m.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	var samples []Sample
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			sample := Sample{
				Name:   family.GetName(),
				Labels: formatLabels(metric.GetLabel()),
			}
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				sample.Value = metric.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				sample.Value = metric.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				// Report the observation count; the sum is available as name_sum
				sample.Name += "_count"
				sample.Value = float64(metric.GetHistogram().GetSampleCount())
				samples = append(samples, Sample{
					Name:   family.GetName() + "_sum",
					Labels: sample.Labels,
					Value:  metric.GetHistogram().GetSampleSum(),
				})
			default:
				continue
			}
			samples = append(samples, sample)
		}
	}

	slices.SortFunc(samples, func(a, b Sample) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Labels, b.Labels)
	})

	return samples, nil
}

// WriteText writes the snapshot as "name{labels} value" lines.
func (m *Metrics) WriteText(w io.Writer) error {
	samples, err := m.Snapshot()
	if err != nil {
		return err
	}
	for _, s := range samples {
		if _, err := fmt.Fprintf(w, "%s%s %g\n", s.Name, s.Labels, s.Value); err != nil {
			return err
		}
	}
	return nil
}

func formatLabels(pairs []*dto.LabelPair) string {
	if len(pairs) == 0 {
		return ""
	}
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, fmt.Sprintf("%s=%q", p.GetName(), p.GetValue()))
	}
	return "{" + strings.Join(parts, ",") + "}"
}
