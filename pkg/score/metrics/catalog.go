package metrics

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/modelscore/modelscore/pkg/score"
	"github.com/modelscore/modelscore/pkg/score/heuristics"
)

// BusFactorAssessor is the optional LLM-backed variant of the bus-factor
// capability. When nil, the contributor-share heuristic fills the slot.
type BusFactorAssessor interface {
	AssessBusFactor(ctx context.Context, rec *score.ArtifactRecord) (float64, error)
}

// NewCatalog builds the full metric registry in the published order. The
// assessor may be nil; the weight table is unaffected either way because
// both variants implement the same bus_factor slot.
func NewCatalog(cfg *score.Config, assessor BusFactorAssessor) (*Registry, error) {
	indicators, err := heuristics.CompileIndicators(cfg.ClaimIndicators)
	if err != nil {
		return nil, err
	}

	compatible := make(map[string]bool, len(cfg.CompatibleLicenses))
	for _, lic := range cfg.CompatibleLicenses {
		compatible[strings.ToLower(lic)] = true
	}

	reg := NewRegistry()
	reg.Register(&rampUpMetric{now: time.Now})
	reg.Register(&busFactorMetric{assessor: assessor, timeout: cfg.FetchTimeout.Duration})
	reg.Register(newClaimsMetric(indicators, cfg.ClaimThreshold))
	reg.Register(newLicenseMetric(compatible))
	reg.Register(newSizeMetric(cfg.SizeLimits))
	reg.Register(newAvailabilityMetric())
	reg.Register(newDatasetQualityMetric())
	reg.Register(newCodeQualityMetric())
	return reg, nil
}

// rampUpMetric estimates how quickly a new user can adopt the artifact:
// the mean of whichever popularity and freshness signals are present.
type rampUpMetric struct {
	now func() time.Time
}

func (m *rampUpMetric) Name() string { return score.MetricRampUpTime }

func (m *rampUpMetric) Compute(ctx context.Context, rec *score.ArtifactRecord) score.MetricResult {
	return timed(ctx, m.Name(), rec, func(rec *score.ArtifactRecord) (float64, string) {
		signals := []float64{
			heuristics.NormalizeDownloads(rec.Downloads),
			heuristics.NormalizeStars(rec.Stars),
			heuristics.Recency(rec.UpdatedAt, m.now()),
		}
		sum, n := 0.0, 0
		for _, s := range signals {
			if s > 0 {
				sum += s
				n++
			}
		}
		if n == 0 {
			return 0, ""
		}
		return sum / float64(n), ""
	})
}

// busFactorMetric scores resilience to losing the top maintainer. With an
// assessor configured it asks the model first and falls back to the
// contributor-share heuristic on any failure.
type busFactorMetric struct {
	assessor BusFactorAssessor
	timeout  time.Duration
}

func (m *busFactorMetric) Name() string { return score.MetricBusFactor }

func (m *busFactorMetric) Compute(ctx context.Context, rec *score.ArtifactRecord) score.MetricResult {
	return timed(ctx, m.Name(), rec, func(rec *score.ArtifactRecord) (float64, string) {
		if m.assessor != nil {
			callCtx, cancel := context.WithTimeout(ctx, m.timeout)
			defer cancel()
			s, err := m.assessor.AssessBusFactor(callCtx, rec)
			if err == nil {
				return s, ""
			}
			return heuristicBusFactor(rec), fmt.Sprintf("assessor fallback: %v", err)
		}
		return heuristicBusFactor(rec), ""
	})
}

func heuristicBusFactor(rec *score.ArtifactRecord) float64 {
	if rec.TopContributorPct != nil {
		return 1 - *rec.TopContributorPct
	}
	if rec.Contributors > 0 {
		return 1 - 1/float64(rec.Contributors)
	}
	return 0
}

func newClaimsMetric(indicators []*regexp.Regexp, threshold int) Metric {
	return metricFunc{
		name: score.MetricPerformanceClaims,
		fn: func(_ context.Context, rec *score.ArtifactRecord) (float64, string) {
			count := heuristics.CountClaimIndicators(rec.Readme(), indicators)
			return heuristics.ClaimScore(count, threshold), ""
		},
	}
}

func newLicenseMetric(compatible map[string]bool) Metric {
	return metricFunc{
		name: score.MetricLicense,
		fn: func(_ context.Context, rec *score.ArtifactRecord) (float64, string) {
			if compatible[strings.ToLower(rec.LicenseID())] {
				return 1, ""
			}
			return 0, ""
		},
	}
}

func newSizeMetric(limits map[string]int64) Metric {
	return metricFunc{
		name: score.MetricSizeScore,
		fn: func(_ context.Context, rec *score.ArtifactRecord) (float64, string) {
			return heuristics.SizeScore(heuristics.FitTargets(rec.SizeBytes, limits)), ""
		},
	}
}

// newAvailabilityMetric averages the three availability booleans: a linked
// code URL, a linked dataset URL, and reachable links overall.
func newAvailabilityMetric() Metric {
	return metricFunc{
		name: score.MetricDatasetAndCodeScore,
		fn: func(_ context.Context, rec *score.ArtifactRecord) (float64, string) {
			n := 0
			for _, ok := range []bool{rec.LinkedCode, rec.LinkedDataset, rec.LinksOK} {
				if ok {
					n++
				}
			}
			return float64(n) / 3, ""
		},
	}
}

func newDatasetQualityMetric() Metric {
	return metricFunc{
		name: score.MetricDatasetQuality,
		fn: func(_ context.Context, rec *score.ArtifactRecord) (float64, string) {
			return heuristics.DatasetQuality(rec.Readme(), rec.Tags), ""
		},
	}
}

func newCodeQualityMetric() Metric {
	return metricFunc{
		name: score.MetricCodeQuality,
		fn: func(_ context.Context, rec *score.ArtifactRecord) (float64, string) {
			return heuristics.CodeQuality(rec.Files, rec.HasTests), ""
		},
	}
}

// timed mirrors metricFunc.Compute for metrics with their own struct.
func timed(ctx context.Context, name string, rec *score.ArtifactRecord, fn func(*score.ArtifactRecord) (float64, string)) score.MetricResult {
	m := metricFunc{name: name, fn: func(_ context.Context, r *score.ArtifactRecord) (float64, string) { return fn(r) }}
	return m.Compute(ctx, rec)
}
