// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about fetches, metric computation, and record emission.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetFetchHooks(&myFetchHooks{})
//	    observability.SetScoringHooks(&myScoringHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Fetch().OnFetchStart(ctx, source, id)
//	// ... do fetching ...
//	observability.Fetch().OnFetchComplete(ctx, source, id, duration, err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Fetch Hooks
// =============================================================================

// FetchHooks receives events from source adapter fetches.
type FetchHooks interface {
	// OnFetchStart records the beginning of an adapter fetch.
	OnFetchStart(ctx context.Context, source, id string)

	// OnFetchComplete records a finished fetch. err is nil on success;
	// a non-nil err means the record proceeds in degraded mode.
	OnFetchComplete(ctx context.Context, source, id string, duration time.Duration, err error)
}

// =============================================================================
// Scoring Hooks
// =============================================================================

// ScoringHooks receives events from metric computation and aggregation.
type ScoringHooks interface {
	// OnMetricComplete records one computed metric.
	OnMetricComplete(ctx context.Context, metric string, score float64, duration time.Duration)

	// OnMetricFault records a metric that panicked or returned invalid data.
	OnMetricFault(ctx context.Context, metric string, err error)

	// OnSchemaViolation records a result corrected in place before emission.
	OnSchemaViolation(ctx context.Context, metric, field string)

	// OnRecordEmitted records one NDJSON line written to the output.
	OnRecordEmitted(ctx context.Context, name string, netScore float64, degraded bool)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFetchHooks is a no-op implementation of FetchHooks.
type NoopFetchHooks struct{}

func (NoopFetchHooks) OnFetchStart(context.Context, string, string)                                {}
func (NoopFetchHooks) OnFetchComplete(context.Context, string, string, time.Duration, error)       {}

// NoopScoringHooks is a no-op implementation of ScoringHooks.
type NoopScoringHooks struct{}

func (NoopScoringHooks) OnMetricComplete(context.Context, string, float64, time.Duration) {}
func (NoopScoringHooks) OnMetricFault(context.Context, string, error)                     {}
func (NoopScoringHooks) OnSchemaViolation(context.Context, string, string)                {}
func (NoopScoringHooks) OnRecordEmitted(context.Context, string, float64, bool)           {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)  {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	fetchHooks   FetchHooks   = NoopFetchHooks{}
	scoringHooks ScoringHooks = NoopScoringHooks{}
	cacheHooks   CacheHooks   = NoopCacheHooks{}
	hooksMu      sync.RWMutex
)

// SetFetchHooks registers custom fetch hooks.
// This should be called once at application startup before any fetches.
func SetFetchHooks(h FetchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fetchHooks = h
	}
}

// SetScoringHooks registers custom scoring hooks.
// This should be called once at application startup before any scoring.
func SetScoringHooks(h ScoringHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		scoringHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// Fetch returns the registered fetch hooks.
func Fetch() FetchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fetchHooks
}

// Scoring returns the registered scoring hooks.
func Scoring() ScoringHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return scoringHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	fetchHooks = NoopFetchHooks{}
	scoringHooks = NoopScoringHooks{}
	cacheHooks = NoopCacheHooks{}
}
