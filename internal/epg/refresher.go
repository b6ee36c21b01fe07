package epg

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"zapp/internal/fetch"
	"zapp/internal/logging"
	"zapp/internal/metrics"
)

// Guide lifecycle states as reported by Status.
const (
	StatusAbsent = "absent"
	StatusFresh  = "fresh"
	StatusStale  = "stale"
)

// Store is the slice of application state the refresher needs. Snapshots
// go in whole, failures only leave a notice behind.
type Store interface {
	Snapshot() *Snapshot
	SetSnapshot(*Snapshot)
	SetNotice(msg string)
}

// FetchFunc retrieves the raw guide document for the active source.
type FetchFunc func(ctx context.Context) (*fetch.Payload, error)

// Refresher owns the guide refresh loop: periodic staleness checks, manual
// refreshes, and coalescing of concurrent triggers into one fetch. A failed
// refresh never discards the previous snapshot, stale data beats no data.
type Refresher struct {
	store         Store
	staleAfter    time.Duration
	checkInterval time.Duration

	mu     sync.Mutex
	source FetchFunc

	group singleflight.Group
	now   func() time.Time
}

func NewRefresher(store Store, staleAfter, checkInterval time.Duration) *Refresher {
	return &Refresher{
		store:         store,
		staleAfter:    staleAfter,
		checkInterval: checkInterval,
		now:           time.Now,
	}
}

// SetSource installs the fetch path for the active source. Passing nil
// disables refreshing until a source is configured again.
func (r *Refresher) SetSource(fn FetchFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.source = fn
}

// Status describes the current snapshot relative to the staleness window.
type Status struct {
	State     string     `json:"state"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
}

func (r *Refresher) Status() Status {
	snap := r.store.Snapshot()
	if snap == nil {
		return Status{State: StatusAbsent}
	}
	fetchedAt := snap.FetchedAt
	if snap.Stale(r.now(), r.staleAfter) {
		return Status{State: StatusStale, FetchedAt: &fetchedAt}
	}
	return Status{State: StatusFresh, FetchedAt: &fetchedAt}
}

// Refresh fetches and parses the guide, swapping in a new snapshot on
// success. Unless force is set, a fresh snapshot short-circuits the call.
// Concurrent callers coalesce onto a single in-flight fetch.
func (r *Refresher) Refresh(ctx context.Context, force bool) error {
	if !force {
		if snap := r.store.Snapshot(); snap != nil && !snap.Stale(r.now(), r.staleAfter) {
			return nil
		}
	}

	_, err, _ := r.group.Do("refresh", func() (any, error) {
		return nil, r.refresh(ctx)
	})
	return err
}

func (r *Refresher) refresh(ctx context.Context) error {
	r.mu.Lock()
	source := r.source
	r.mu.Unlock()

	if source == nil {
		return fmt.Errorf("no guide source configured")
	}

	started := r.now()

	payload, err := source(ctx)
	if err != nil {
		metrics.IncEPGRefresh(metrics.ResultError)
		r.store.SetNotice(fmt.Sprintf("Guide refresh failed: %v", err))
		return fmt.Errorf("guide fetch failed: %w", err)
	}

	guide, err := Parse(payload.Body)
	if err != nil {
		metrics.IncEPGRefresh(metrics.ResultError)
		r.store.SetNotice(fmt.Sprintf("Guide refresh failed: %v", err))
		return fmt.Errorf("guide parse failed: %w", err)
	}

	snap := NewSnapshot(guide, r.now())
	r.store.SetSnapshot(snap)
	r.store.SetNotice("")
	metrics.IncEPGRefresh(metrics.ResultOK)

	logging.Info(ctx, "guide refreshed",
		"channels", len(guide),
		"programmes", guide.Programmes(),
		"strategy", payload.Strategy,
		"duration", r.now().Sub(started).Round(time.Millisecond).String(),
	)
	return nil
}

// Run checks staleness on an interval and refreshes when the snapshot is
// absent or past its window. It blocks until ctx is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			snap := r.store.Snapshot()
			if snap != nil && !snap.Stale(r.now(), r.staleAfter) {
				continue
			}
			if err := r.Refresh(ctx, false); err != nil {
				logging.Warn(ctx, "scheduled guide refresh failed", "error", err)
			}
		}
	}
}
