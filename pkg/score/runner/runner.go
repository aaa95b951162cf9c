// Package runner orchestrates the scoring pipeline: it fetches each URL
// group through its source adapter, runs every catalog metric with fault
// isolation, validates and aggregates the results, and emits one NDJSON
// line per group in input order.
//
// Each group moves through the states FETCHING → SCORING → AGGREGATING →
// EMITTED. A fetch or metric failure sets the degraded flag but never
// stops the group short of EMITTED; only an invalid configuration aborts
// a run, and it does so before any record is processed.
package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/modelscore/modelscore/pkg/errors"
	"github.com/modelscore/modelscore/pkg/observability"
	"github.com/modelscore/modelscore/pkg/score"
	"github.com/modelscore/modelscore/pkg/score/metrics"
)

// Target is one already-classified URL: its source-specific identifier
// plus where and what it is.
type Target struct {
	URL      string
	ID       string
	Source   score.Source
	Category score.Category
}

// Group is one manifest line: an optional code and dataset target plus
// the primary target that gets scored.
type Group struct {
	Primary Target
	Code    *Target
	Dataset *Target
}

// LinkProber checks whether a URL is reachable. The integrations client
// satisfies this with an HTTP HEAD request.
type LinkProber interface {
	Head(ctx context.Context, url string) (bool, error)
}

// Runner executes the scoring pipeline for batches of URL groups.
// It is safe for concurrent use; all shared state is read-only after New.
type Runner struct {
	cfg      *score.Config
	adapters map[score.Source]score.Adapter
	registry *metrics.Registry
	logger   *log.Logger
	prober   LinkProber
	runID    string
}

// New validates the configuration and builds a Runner. A weight table
// that does not match the registered catalog fails here, never per
// record.
func New(cfg *score.Config, adapters map[score.Source]score.Adapter, registry *metrics.Registry, logger *log.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	for _, name := range registry.Names() {
		if _, ok := cfg.Weights[name]; !ok {
			return nil, errors.New(errors.ErrCodeInvalidConfig, "metric %q registered but not weighted", name)
		}
	}
	if got, want := len(registry.Names()), len(cfg.Weights); got != want {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "catalog has %d metrics, weight table has %d", got, want)
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	runID := uuid.NewString()
	return &Runner{
		cfg:      cfg,
		adapters: adapters,
		registry: registry,
		logger:   logger.With("run_id", runID),
		runID:    runID,
	}, nil
}

// SetProber installs the optional link-availability prober used for the
// links_ok signal. Without one, link availability is inferred from which
// URLs the manifest supplies.
func (r *Runner) SetProber(p LinkProber) { r.prober = p }

// Run processes all groups with bounded parallelism and writes one NDJSON
// line per group to w, preserving input order. Groups still in flight
// when ctx is cancelled emit nothing.
func (r *Runner) Run(ctx context.Context, groups []Group, w io.Writer) error {
	if len(groups) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "no URL groups to process")
	}

	em := &emitter{w: w, pending: make(map[int][]byte)}
	sem := make(chan struct{}, r.cfg.Workers)
	var wg sync.WaitGroup

	for i, g := range groups {
		wg.Add(1)
		go func(idx int, g Group) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			rec := r.process(ctx, g)
			if rec == nil {
				// Cancelled mid-flight: release the slot so later lines
				// are not held back behind a record that will never come.
				em.emit(idx, nil)
				return
			}
			line, err := json.Marshal(rec)
			if err != nil {
				r.logger.Error("marshaling record", "name", rec.Name, "err", err)
				em.emit(idx, nil)
				return
			}
			if err := em.emit(idx, line); err != nil {
				r.logger.Error("writing record", "name", rec.Name, "err", err)
			}
		}(i, g)
	}
	wg.Wait()

	return ctx.Err()
}

// process runs one group through the state machine. It returns nil only
// when the context is cancelled before the record reaches AGGREGATING.
func (r *Runner) process(ctx context.Context, g Group) *score.AggregateRecord {
	logger := r.logger.With("artifact", g.Primary.ID)

	// FETCHING
	rec, fetchLatency := r.fetch(ctx, g.Primary, logger)
	if ctx.Err() != nil {
		return nil
	}
	r.attachAvailability(ctx, rec, g)

	// SCORING
	results := make([]score.MetricResult, 0, len(r.registry.All()))
	for _, m := range r.registry.All() {
		results = append(results, r.safeCompute(ctx, m, rec, logger))
	}
	if ctx.Err() != nil {
		return nil
	}

	// AGGREGATING
	net := 0.0
	totalLatency := fetchLatency.Milliseconds()
	for i, result := range results {
		if !result.Valid() {
			logger.Warn("schema violation corrected",
				"metric", result.Name, "score", result.Score, "latency_ms", result.LatencyMS)
			observability.Scoring().OnSchemaViolation(ctx, result.Name, "score")
			results[i] = result.Clamped()
			result = results[i]
		}
		net += r.cfg.Weights[result.Name] * result.Score
		totalLatency += result.LatencyMS
	}

	agg := &score.AggregateRecord{
		Name:      rec.Name(),
		Category:  g.Primary.Category,
		Results:   results,
		NetScore:  net,
		LatencyMS: totalLatency,
	}

	// EMITTED (the caller serializes the write)
	observability.Scoring().OnRecordEmitted(ctx, agg.Name, agg.NetScore, rec.Degraded)
	logger.Debug("record scored", "net_score", agg.NetScore, "degraded", rec.Degraded)
	return agg
}

// fetch invokes the adapter with the configured timeout. Any failure
// degrades the record instead of propagating.
func (r *Runner) fetch(ctx context.Context, t Target, logger *log.Logger) (*score.ArtifactRecord, time.Duration) {
	start := time.Now()
	observability.Fetch().OnFetchStart(ctx, string(t.Source), t.ID)

	adapter, ok := r.adapters[t.Source]
	if !ok {
		logger.Warn("no adapter for source, continuing degraded", "source", t.Source)
		observability.Fetch().OnFetchComplete(ctx, string(t.Source), t.ID, time.Since(start),
			errors.New(errors.ErrCodeFetchFailed, "no adapter for source %q", t.Source))
		return score.NewDegradedRecord(t.ID, t.Source, t.Category), time.Since(start)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.cfg.FetchTimeout.Duration)
	defer cancel()

	rec, err := adapter.Fetch(fetchCtx, t.ID, t.Category)
	elapsed := time.Since(start)
	observability.Fetch().OnFetchComplete(ctx, string(t.Source), t.ID, elapsed, err)
	if err != nil {
		logger.Warn("fetch failed, continuing degraded", "source", t.Source, "err", err)
		return score.NewDegradedRecord(t.ID, t.Source, t.Category), elapsed
	}
	return rec, elapsed
}

// attachAvailability fills the availability signals from the group shape
// and, when a prober is installed, from HEAD checks on the group's URLs:
// links_ok requires at least two reachable URLs.
func (r *Runner) attachAvailability(ctx context.Context, rec *score.ArtifactRecord, g Group) {
	rec.LinkedCode = g.Code != nil
	rec.LinkedDataset = g.Dataset != nil

	urls := []string{g.Primary.URL}
	if g.Code != nil {
		urls = append(urls, g.Code.URL)
	}
	if g.Dataset != nil {
		urls = append(urls, g.Dataset.URL)
	}

	if r.prober == nil {
		rec.LinksOK = len(urls) >= 2
		return
	}

	reachable := 0
	for _, u := range urls {
		if u == "" {
			continue
		}
		if ok, err := r.prober.Head(ctx, u); err == nil && ok {
			reachable++
		}
	}
	rec.LinksOK = reachable >= 2
}

// safeCompute isolates one metric call: a panic becomes a zero score with
// the elapsed latency, and the remaining metrics still run.
func (r *Runner) safeCompute(ctx context.Context, m metrics.Metric, rec *score.ArtifactRecord, logger *log.Logger) (result score.MetricResult) {
	start := time.Now()
	defer func() {
		if p := recover(); p != nil {
			logger.Warn("metric fault", "metric", m.Name(), "panic", p)
			observability.Scoring().OnMetricFault(ctx, m.Name(),
				errors.New(errors.ErrCodeMetricFault, "panic in %s: %v", m.Name(), p))
			result = score.MetricResult{
				Name:      m.Name(),
				Score:     0,
				LatencyMS: time.Since(start).Milliseconds(),
				Err:       fmt.Sprintf("panic: %v", p),
			}
		}
	}()

	result = m.Compute(ctx, rec)
	if result.Name != m.Name() {
		result.Name = m.Name()
	}
	return result
}

// emitter writes NDJSON lines in input order. Workers hand in lines by
// index; a contiguous prefix is flushed under the lock. A nil line marks
// a group that emits nothing and only advances the cursor.
type emitter struct {
	mu      sync.Mutex
	w       io.Writer
	next    int
	pending map[int][]byte
}

func (e *emitter) emit(idx int, line []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pending[idx] = line
	var firstErr error
	for {
		buf, ok := e.pending[e.next]
		if !ok {
			break
		}
		delete(e.pending, e.next)
		e.next++
		if buf == nil {
			continue
		}
		if _, err := e.w.Write(append(buf, '\n')); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// RunID returns the identifier attached to this runner's log events.
func (r *Runner) RunID() string { return r.runID }
