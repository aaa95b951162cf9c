package score

import (
	"bytes"
	"encoding/json"
)

// MetricResult is one sub-score plus its computation latency. Err carries a
// note when the metric faulted; it is informational only and never aborts
// the record.
type MetricResult struct {
	Name      string
	Score     float64
	LatencyMS int64
	Err       string
}

// Clamped returns a copy with the score forced into [0,1] and the latency
// floored at zero.
func (m MetricResult) Clamped() MetricResult {
	out := m
	switch {
	case out.Score < 0 || out.Score != out.Score: // NaN compares unequal to itself
		out.Score = 0
	case out.Score > 1:
		out.Score = 1
	}
	if out.LatencyMS < 0 {
		out.LatencyMS = 0
	}
	return out
}

// Valid reports whether the result already satisfies the output schema.
func (m MetricResult) Valid() bool {
	return m.Score >= 0 && m.Score <= 1 && m.LatencyMS >= 0
}

// AggregateRecord is the full per-URL output: all metric results in catalog
// order plus the weighted net score. It serializes to a single flat JSON
// object with a fixed key order:
//
//	name, category, <metric>, <metric>_latency, ..., net_score, net_score_latency
type AggregateRecord struct {
	Name      string
	Category  Category
	Results   []MetricResult
	NetScore  float64
	LatencyMS int64
}

// MarshalJSON emits the fixed-order flat object. encoding/json does not
// preserve map ordering, so the object is assembled by hand with marshaled
// fragments for proper escaping.
func (a AggregateRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	writeField := func(key string, value any) error {
		if buf.Len() > 1 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return err
		}
		v, err := json.Marshal(value)
		if err != nil {
			return err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
		return nil
	}

	if err := writeField("name", a.Name); err != nil {
		return nil, err
	}
	if err := writeField("category", string(a.Category)); err != nil {
		return nil, err
	}
	for _, r := range a.Results {
		if err := writeField(r.Name, r.Score); err != nil {
			return nil, err
		}
		if err := writeField(r.Name+"_latency", r.LatencyMS); err != nil {
			return nil, err
		}
	}
	if err := writeField("net_score", a.NetScore); err != nil {
		return nil, err
	}
	if err := writeField("net_score_latency", a.LatencyMS); err != nil {
		return nil, err
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}
