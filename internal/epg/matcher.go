package epg

import (
	"strings"

	"zapp/internal/playlist"
)

// Match resolves a channel to its guide bucket. Identifier confidence
// drops with each step: provider-supplied EPG ids first, stream ids next,
// free-text names last (case variance across providers is common, hence
// the lower/upper retries). The first non-empty bucket wins; nil means no
// strategy matched.
func Match(ch playlist.Channel, guide Guide) []Programme {
	if len(guide) == 0 {
		return nil
	}

	candidates := make([]string, 0, 5)

	if ch.EPGID != "" {
		candidates = append(candidates, ch.EPGID)
	}
	if ch.ID != "" {
		candidates = append(candidates, ch.ID, strings.TrimSpace(ch.ID))
	}
	if ch.Name != "" {
		candidates = append(candidates,
			ch.Name,
			strings.ToLower(ch.Name),
			strings.ToUpper(ch.Name),
		)
	}

	for _, key := range candidates {
		if listings := guide[key]; len(listings) > 0 {
			return listings
		}
	}

	return nil
}
