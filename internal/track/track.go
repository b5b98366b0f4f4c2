// Package track keeps in-process performance counters and per-source data
// freshness state. All state sits behind one mutex on an injected Tracker;
// nothing here errors or panics, so collection paths can record
// unconditionally.
package track

import (
	"sync"
	"time"

	"github.com/Collabos-llc/mlb-data-service/internal/config"
)

// Status classifies how current a source's data is.
type Status string

const (
	StatusFresh    Status = "fresh"
	StatusStale    Status = "stale"
	StatusCritical Status = "critical"
	StatusMissing  Status = "missing"
)

// Metrics aggregates all recorded operations.
type Metrics struct {
	OperationsCount       int
	TotalRecordsProcessed int
	AverageOperationTime  time.Duration
	LastOperation         string
	LastOperationTime     time.Duration
	LastOperationAt       time.Time
}

// Freshness describes one source's staleness at evaluation time.
type Freshness struct {
	Source      string
	Status      Status
	Staleness   time.Duration
	LastSuccess time.Time
	Threshold   time.Duration
}

// Tracker records operation timings and per-source last-success marks.
type Tracker struct {
	mu      sync.Mutex
	now     func() time.Time
	sources map[string]config.SourceConfig
	lastOK  map[string]time.Time
	metrics Metrics
}

// New creates a Tracker over the configured sources.
func New(sources map[string]config.SourceConfig) *Tracker {
	return &Tracker{
		now:     time.Now,
		sources: sources,
		lastOK:  make(map[string]time.Time, len(sources)),
	}
}

// RecordOperation folds one completed operation into the running totals.
func (t *Tracker) RecordOperation(name string, d time.Duration, records int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	m := &t.metrics
	m.OperationsCount++
	m.TotalRecordsProcessed += records
	n := time.Duration(m.OperationsCount)
	m.AverageOperationTime = (m.AverageOperationTime*(n-1) + d) / n
	m.LastOperation = name
	m.LastOperationTime = d
	m.LastOperationAt = t.now()
}

// Metrics returns a snapshot of the aggregate counters.
func (t *Tracker) Metrics() Metrics {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.metrics
}

// MarkFresh records a successful collection for source at the current time.
func (t *Tracker) MarkFresh(source string) {
	t.MarkFreshAt(source, t.clock()())
}

// MarkFreshAt records a successful collection at an explicit time. Used to
// seed state from the database on startup.
func (t *Tracker) MarkFreshAt(source string, ts time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastOK[source] = ts
}

// Freshness evaluates one source. Unknown sources report missing.
func (t *Tracker) Freshness(source string) Freshness {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.freshnessLocked(source)
}

// Report evaluates every configured source.
func (t *Tracker) Report() map[string]Freshness {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]Freshness, len(t.sources))
	for source := range t.sources {
		out[source] = t.freshnessLocked(source)
	}
	return out
}

func (t *Tracker) freshnessLocked(source string) Freshness {
	cfg, ok := t.sources[source]
	if !ok {
		return Freshness{Source: source, Status: StatusMissing}
	}
	last, ok := t.lastOK[source]
	if !ok {
		return Freshness{Source: source, Status: StatusMissing, Threshold: cfg.StaleAfter}
	}

	staleness := t.now().Sub(last)
	status := StatusFresh
	switch {
	case float64(staleness) > float64(cfg.StaleAfter)*cfg.CriticalFactor:
		status = StatusCritical
	case staleness > cfg.StaleAfter:
		status = StatusStale
	}
	return Freshness{
		Source:      source,
		Status:      status,
		Staleness:   staleness,
		LastSuccess: last,
		Threshold:   cfg.StaleAfter,
	}
}

func (t *Tracker) clock() func() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now
}
