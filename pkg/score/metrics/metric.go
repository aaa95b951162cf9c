// Package metrics implements the fixed catalog of scoring functions. Each
// metric is a pure function of the normalized record plus the immutable
// configuration; none performs network calls except the optional
// LLM-backed bus-factor variant, which is time-boxed and falls back to the
// heuristic on any failure.
package metrics

import (
	"context"
	"time"

	"github.com/modelscore/modelscore/pkg/observability"
	"github.com/modelscore/modelscore/pkg/score"
)

// Metric computes one bounded sub-score from an artifact record.
type Metric interface {
	Name() string
	Compute(ctx context.Context, rec *score.ArtifactRecord) score.MetricResult
}

// metricFunc adapts a plain scoring function into a Metric that times
// itself and clamps its output.
type metricFunc struct {
	name string
	fn   func(ctx context.Context, rec *score.ArtifactRecord) (float64, string)
}

func (m metricFunc) Name() string { return m.name }

func (m metricFunc) Compute(ctx context.Context, rec *score.ArtifactRecord) score.MetricResult {
	start := time.Now()
	value, note := m.fn(ctx, rec)
	result := score.MetricResult{
		Name:      m.name,
		Score:     value,
		LatencyMS: time.Since(start).Milliseconds(),
		Err:       note,
	}.Clamped()
	observability.Scoring().OnMetricComplete(ctx, m.name, result.Score, time.Since(start))
	return result
}

// Registry holds the catalog in registration order. The order defines the
// NDJSON field order of every emitted record.
type Registry struct {
	metrics []Metric
	byName  map[string]Metric
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Metric)}
}

// Register appends a metric. Re-registering a name replaces the
// implementation but keeps the original position.
func (r *Registry) Register(m Metric) {
	if _, exists := r.byName[m.Name()]; exists {
		for i, existing := range r.metrics {
			if existing.Name() == m.Name() {
				r.metrics[i] = m
				break
			}
		}
	} else {
		r.metrics = append(r.metrics, m)
	}
	r.byName[m.Name()] = m
}

// All returns the metrics in registration order.
func (r *Registry) All() []Metric {
	return r.metrics
}

// ByName looks up one metric.
func (r *Registry) ByName(name string) (Metric, bool) {
	m, ok := r.byName[name]
	return m, ok
}

// Names returns the registered names in order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.metrics))
	for i, m := range r.metrics {
		names[i] = m.Name()
	}
	return names
}
