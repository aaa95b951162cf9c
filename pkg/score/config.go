package score

import (
	"math"
	"os"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/modelscore/modelscore/pkg/errors"
)

// Canonical metric names. The catalog order here is also the NDJSON field
// order of every emitted record.
const (
	MetricRampUpTime          = "ramp_up_time"
	MetricBusFactor           = "bus_factor"
	MetricPerformanceClaims   = "performance_claims"
	MetricLicense             = "license"
	MetricSizeScore           = "size_score"
	MetricDatasetAndCodeScore = "dataset_and_code_score"
	MetricDatasetQuality      = "dataset_quality"
	MetricCodeQuality         = "code_quality"
)

// MetricNames lists the catalog in its fixed order.
var MetricNames = []string{
	MetricRampUpTime,
	MetricBusFactor,
	MetricPerformanceClaims,
	MetricLicense,
	MetricSizeScore,
	MetricDatasetAndCodeScore,
	MetricDatasetQuality,
	MetricCodeQuality,
}

// weightTolerance is the floating tolerance for the weight-sum invariant.
const weightTolerance = 1e-6

// Duration wraps time.Duration for TOML decoding ("10s", "2m").
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML values.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Config carries every tunable of the scoring pipeline. It is immutable
// after Validate and shared read-only across workers.
type Config struct {
	// Weights maps metric name to its share of the net score. Must cover
	// the full catalog and sum to 1.0.
	Weights map[string]float64 `toml:"weights"`

	// ClaimIndicators are regex patterns scanned over readme text by the
	// performance-claims metric.
	ClaimIndicators []string `toml:"claim_indicators"`

	// ClaimThreshold is the indicator count at which the claims score
	// saturates at 1.0.
	ClaimThreshold int `toml:"claim_threshold"`

	// SizeLimits maps hardware target name to the largest artifact size
	// (bytes) that still fits on it.
	SizeLimits map[string]int64 `toml:"size_limits"`

	// CompatibleLicenses lists license identifiers (lowercase) accepted by
	// the license metric.
	CompatibleLicenses []string `toml:"compatible_licenses"`

	FetchTimeout Duration `toml:"fetch_timeout"`
	Workers      int      `toml:"workers"`
	CacheTTL     Duration `toml:"cache_ttl"`
}

// DefaultConfig returns the published configuration: the fixed weight
// table, indicator patterns, hardware thresholds, and license set.
func DefaultConfig() *Config {
	return &Config{
		Weights: map[string]float64{
			MetricRampUpTime:          0.10,
			MetricBusFactor:           0.10,
			MetricPerformanceClaims:   0.20,
			MetricLicense:             0.10,
			MetricSizeScore:           0.05,
			MetricDatasetAndCodeScore: 0.15,
			MetricDatasetQuality:      0.15,
			MetricCodeQuality:         0.15,
		},
		ClaimIndicators: []string{
			`(?i)\bbenchmark`,
			`(?i)\bleaderboard`,
			`(?i)state[- ]of[- ]the[- ]art|\bsota\b`,
			`(?i)evaluation results?`,
			`(?i)model-index`,
			`(?i)\b\d{1,3}(?:\.\d+)?\s?%`,
			`(?im)^\s*\|.+\|.+\|\s*$`,
			`(?i)arxiv\.org|\bcitation\b|\bpaper\b`,
		},
		ClaimThreshold: 4,
		SizeLimits: map[string]int64{
			"raspberry_pi": 100 << 20,  // 100 MiB
			"jetson_nano":  1 << 30,    // 1 GiB
			"desktop_pc":   10 << 30,   // 10 GiB
			"aws_server":   100 << 30,  // 100 GiB
		},
		CompatibleLicenses: []string{
			"mit", "apache-2.0", "bsd-2-clause", "bsd-3-clause",
			"lgpl-2.1", "lgpl-2.1-only", "lgpl-2.1-or-later",
			"mpl-2.0", "unlicense", "cc0-1.0", "isc",
		},
		FetchTimeout: Duration{10 * time.Second},
		Workers:      8,
		CacheTTL:     Duration{24 * time.Hour},
	}
}

// LoadConfig returns the defaults overlaid with the TOML file at path.
// An empty path returns the defaults unchanged. The result is validated.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "reading config %s", path)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parsing config %s", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the configuration invariants. A failure here is the
// only fatal condition in the pipeline and must stop the run before any
// record is processed.
func (c *Config) Validate() error {
	sum := 0.0
	for _, name := range MetricNames {
		w, ok := c.Weights[name]
		if !ok {
			return errors.New(errors.ErrCodeInvalidConfig, "weight table missing metric %q", name)
		}
		if w < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "weight for %q is negative", name)
		}
		sum += w
	}
	if len(c.Weights) != len(MetricNames) {
		return errors.New(errors.ErrCodeInvalidConfig, "weight table has %d entries, want %d", len(c.Weights), len(MetricNames))
	}
	if math.Abs(sum-1.0) > weightTolerance {
		return errors.New(errors.ErrCodeInvalidConfig, "weights sum to %.6f, want 1.0", sum)
	}
	if c.ClaimThreshold <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "claim_threshold must be positive")
	}
	if len(c.ClaimIndicators) < 7 {
		return errors.New(errors.ErrCodeInvalidConfig, "need at least 7 claim indicators, have %d", len(c.ClaimIndicators))
	}
	if len(c.SizeLimits) == 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "size_limits is empty")
	}
	if c.Workers <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "workers must be positive")
	}
	if c.FetchTimeout.Duration <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "fetch_timeout must be positive")
	}
	return nil
}
