package metrics

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/modelscore/modelscore/pkg/errors"
	"github.com/modelscore/modelscore/pkg/score"
)

func testCatalog(t *testing.T, assessor BusFactorAssessor) *Registry {
	t.Helper()
	reg, err := NewCatalog(score.DefaultConfig(), assessor)
	if err != nil {
		t.Fatalf("NewCatalog() error: %v", err)
	}
	return reg
}

func TestCatalogOrderMatchesPublishedNames(t *testing.T) {
	reg := testCatalog(t, nil)

	names := reg.Names()
	if len(names) != len(score.MetricNames) {
		t.Fatalf("catalog size = %d, want %d", len(names), len(score.MetricNames))
	}
	for i, want := range score.MetricNames {
		if names[i] != want {
			t.Errorf("catalog[%d] = %q, want %q", i, names[i], want)
		}
	}
}

func TestAllMetricsBoundedOnEmptyRecord(t *testing.T) {
	reg := testCatalog(t, nil)
	rec := score.NewDegradedRecord("owner/ghost", score.SourceHuggingFace, score.CategoryModel)

	for _, m := range reg.All() {
		result := m.Compute(context.Background(), rec)
		if result.Score < 0 || result.Score > 1 {
			t.Errorf("%s score = %v, out of [0,1]", m.Name(), result.Score)
		}
		if result.LatencyMS < 0 {
			t.Errorf("%s latency = %d, negative", m.Name(), result.LatencyMS)
		}
		if result.Name != m.Name() {
			t.Errorf("result name = %q, want %q", result.Name, m.Name())
		}
	}
}

func TestMetricsIdempotent(t *testing.T) {
	reg := testCatalog(t, nil)

	lic := "mit"
	size := int64(50 << 20)
	readme := "Benchmark results: 92% accuracy on the leaderboard.\n| a | b |\n"
	updated := time.Now().Add(-30 * 24 * time.Hour)
	rec := &score.ArtifactRecord{
		ID:         "owner/model",
		Source:     score.SourceHuggingFace,
		Category:   score.CategoryModel,
		License:    &lic,
		ReadmeText: &readme,
		SizeBytes:  &size,
		Downloads:  50000,
		Stars:      900,
		UpdatedAt:  &updated,
		HasTests:   true,
		Files:      []string{"model.bin", "README.md"},
	}

	for _, m := range reg.All() {
		first := m.Compute(context.Background(), rec)
		second := m.Compute(context.Background(), rec)
		// ramp_up_time samples the clock for its recency signal, so allow
		// for the sub-millisecond drift between the two calls.
		if math.Abs(first.Score-second.Score) > 1e-9 {
			t.Errorf("%s not idempotent: %v then %v", m.Name(), first.Score, second.Score)
		}
	}
}

func TestLicenseMetric(t *testing.T) {
	reg := testCatalog(t, nil)
	m, ok := reg.ByName(score.MetricLicense)
	if !ok {
		t.Fatal("license metric not registered")
	}

	tests := []struct {
		name    string
		license string
		want    float64
	}{
		{"compatible", "mit", 1},
		{"compatible mixed case", "Apache-2.0", 1},
		{"copyleft", "gpl-3.0", 0},
		{"absent", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &score.ArtifactRecord{ID: "a/b", Source: score.SourceGitHub, Category: score.CategoryCode}
			if tt.license != "" {
				rec.License = &tt.license
			}
			if got := m.Compute(context.Background(), rec).Score; got != tt.want {
				t.Errorf("license %q score = %v, want %v", tt.license, got, tt.want)
			}
		})
	}
}

func TestBusFactorHeuristic(t *testing.T) {
	pct := 0.6
	tests := []struct {
		name string
		rec  score.ArtifactRecord
		want float64
	}{
		{"top share known", score.ArtifactRecord{TopContributorPct: &pct}, 0.4},
		{"count only", score.ArtifactRecord{Contributors: 4}, 0.75},
		{"single maintainer", score.ArtifactRecord{Contributors: 1}, 0},
		{"unknown", score.ArtifactRecord{}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := heuristicBusFactor(&tt.rec); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("heuristicBusFactor() = %v, want %v", got, tt.want)
			}
		})
	}
}

type stubAssessor struct {
	score float64
	err   error
	calls int
}

func (s *stubAssessor) AssessBusFactor(ctx context.Context, rec *score.ArtifactRecord) (float64, error) {
	s.calls++
	return s.score, s.err
}

func TestBusFactorUsesAssessor(t *testing.T) {
	stub := &stubAssessor{score: 0.9}
	reg := testCatalog(t, stub)
	m, _ := reg.ByName(score.MetricBusFactor)

	result := m.Compute(context.Background(), &score.ArtifactRecord{Contributors: 1})
	if result.Score != 0.9 {
		t.Errorf("score = %v, want 0.9 from assessor", result.Score)
	}
	if stub.calls != 1 {
		t.Errorf("assessor calls = %d, want 1", stub.calls)
	}
}

func TestBusFactorFallsBackOnAssessorError(t *testing.T) {
	pct := 0.25
	stub := &stubAssessor{err: errors.New(errors.ErrCodeMetricFault, "quota exceeded")}
	reg := testCatalog(t, stub)
	m, _ := reg.ByName(score.MetricBusFactor)

	result := m.Compute(context.Background(), &score.ArtifactRecord{TopContributorPct: &pct})
	if result.Score != 0.75 {
		t.Errorf("score = %v, want heuristic 0.75", result.Score)
	}
	if result.Err == "" {
		t.Error("fallback should note the assessor failure")
	}
}

func TestClaimsMetricSaturation(t *testing.T) {
	reg := testCatalog(t, nil)
	m, _ := reg.ByName(score.MetricPerformanceClaims)

	readme := "Benchmark results on the GLUE leaderboard.\n" +
		"Accuracy reaches 92.4%.\n" +
		"| model | score |\n"
	rec := &score.ArtifactRecord{ReadmeText: &readme}
	if got := m.Compute(context.Background(), rec).Score; got != 1.0 {
		t.Errorf("4-indicator readme score = %v, want 1.0", got)
	}

	short := "See the benchmark section. Accuracy: 88%."
	rec = &score.ArtifactRecord{ReadmeText: &short}
	if got := m.Compute(context.Background(), rec).Score; got != 0.5 {
		t.Errorf("2-indicator readme score = %v, want 0.5", got)
	}

	if got := m.Compute(context.Background(), &score.ArtifactRecord{}).Score; got != 0 {
		t.Errorf("empty readme score = %v, want 0", got)
	}
}

func TestAvailabilityMetric(t *testing.T) {
	reg := testCatalog(t, nil)
	m, _ := reg.ByName(score.MetricDatasetAndCodeScore)

	rec := &score.ArtifactRecord{LinkedCode: true, LinkedDataset: true, LinksOK: true}
	if got := m.Compute(context.Background(), rec).Score; got != 1.0 {
		t.Errorf("all-linked score = %v, want 1.0", got)
	}

	rec = &score.ArtifactRecord{LinkedCode: true}
	if got := m.Compute(context.Background(), rec).Score; math.Abs(got-1.0/3) > 1e-9 {
		t.Errorf("one-linked score = %v, want 1/3", got)
	}
}

func TestSizeMetricUnknownSize(t *testing.T) {
	reg := testCatalog(t, nil)
	m, _ := reg.ByName(score.MetricSizeScore)

	if got := m.Compute(context.Background(), &score.ArtifactRecord{}).Score; got != 0 {
		t.Errorf("unknown size score = %v, want 0", got)
	}
}

func TestRegistryReplaceKeepsOrder(t *testing.T) {
	reg := NewRegistry()
	reg.Register(metricFunc{name: "a", fn: func(context.Context, *score.ArtifactRecord) (float64, string) { return 0.1, "" }})
	reg.Register(metricFunc{name: "b", fn: func(context.Context, *score.ArtifactRecord) (float64, string) { return 0.2, "" }})
	reg.Register(metricFunc{name: "a", fn: func(context.Context, *score.ArtifactRecord) (float64, string) { return 0.9, "" }})

	if names := reg.Names(); names[0] != "a" || names[1] != "b" || len(names) != 2 {
		t.Errorf("Names() = %v, want [a b]", names)
	}
	m, _ := reg.ByName("a")
	if got := m.Compute(context.Background(), &score.ArtifactRecord{}).Score; got != 0.9 {
		t.Errorf("replaced metric score = %v, want 0.9", got)
	}
}
