package xtream

import (
	"context"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"zapp/internal/epg"
)

// ShortEPGAll fans out best-effort short EPG lookups over a bounded worker
// pool and returns the non-empty listings keyed by stream id. Individual
// failures surface as missing keys, never as errors.
func (c *Client) ShortEPGAll(ctx context.Context, streamIDs []string, fanout int) map[string][]epg.Programme {
	if fanout < 1 {
		fanout = 1
	}

	var mu sync.Mutex
	results := make(map[string][]epg.Programme, len(streamIDs))

	p := pool.New().WithMaxGoroutines(fanout).WithContext(ctx)
	for _, streamID := range streamIDs {
		streamID := streamID
		p.Go(func(ctx context.Context) error {
			listings := c.ShortEPG(ctx, streamID)
			if len(listings) == 0 {
				return nil
			}
			mu.Lock()
			results[streamID] = listings
			mu.Unlock()
			return nil
		})
	}
	_ = p.Wait()

	return results
}
