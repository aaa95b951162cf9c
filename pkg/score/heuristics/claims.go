// Package heuristics contains the pure normalizer functions that metrics
// build on: performance-claim detection, size/portability classification,
// repo-file quality analysis, and popularity/recency normalization. All
// functions are deterministic and never touch the network.
package heuristics

import (
	"regexp"

	"github.com/modelscore/modelscore/pkg/errors"
)

// CompileIndicators compiles the configured claim-indicator patterns.
// A pattern that fails to compile is a configuration fault.
func CompileIndicators(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "claim indicator %q", p)
		}
		out = append(out, re)
	}
	return out, nil
}

// CountClaimIndicators counts how many distinct indicator patterns match
// the readme text. Each pattern counts at most once regardless of how
// often it occurs.
func CountClaimIndicators(readme string, indicators []*regexp.Regexp) int {
	if readme == "" {
		return 0
	}
	count := 0
	for _, re := range indicators {
		if re.MatchString(readme) {
			count++
		}
	}
	return count
}

// ClaimScore normalizes an indicator count: min(count/threshold, 1.0).
// With the published threshold of 4, four matched indicators saturate the
// score at 1.0.
func ClaimScore(count, threshold int) float64 {
	if threshold <= 0 || count <= 0 {
		return 0
	}
	s := float64(count) / float64(threshold)
	if s > 1 {
		return 1
	}
	return s
}
