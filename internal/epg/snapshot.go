package epg

import "time"

// Snapshot is one complete fetch+parse result. Refreshes replace the whole
// snapshot atomically, partial merges never happen, and the snapshot is
// never mutated after creation.
type Snapshot struct {
	Guide     Guide
	FetchedAt time.Time
}

func NewSnapshot(guide Guide, fetchedAt time.Time) *Snapshot {
	return &Snapshot{Guide: guide, FetchedAt: fetchedAt}
}

// Stale reports whether the snapshot has outlived maxAge.
func (s *Snapshot) Stale(now time.Time, maxAge time.Duration) bool {
	return now.Sub(s.FetchedAt) > maxAge
}
