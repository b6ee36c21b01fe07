package state

import (
	"sort"
	"sync"

	"zapp/internal/config"
	"zapp/internal/epg"
	"zapp/internal/metrics"
	"zapp/internal/playlist"
	"zapp/internal/xtream"
)

// GroupAll is the synthetic group covering every channel.
const GroupAll = "All"

// State is the single owned home for everything the server knows about the
// current channel list and guide. All mutation goes through methods here;
// callers never reach into the fields. Channel lists are replaced wholesale,
// the EPG snapshot is swapped atomically, and readers always get copies.
type State struct {
	mu sync.RWMutex

	sourceType string
	channels   []playlist.Channel
	groups     []string
	favorites  map[string]bool

	account     *xtream.AccountInfo
	xtreamCreds config.Xtream
	epgURL      string

	snapshot *epg.Snapshot
	notice   string
}

func New() *State {
	return &State{
		favorites: make(map[string]bool),
		groups:    []string{GroupAll},
	}
}

// SetChannels replaces the whole channel list and recomputes the group
// index. There is no merge path: a new ingestion result always wins.
func (s *State) SetChannels(sourceType string, channels []playlist.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sourceType = sourceType
	s.channels = channels
	s.groups = computeGroups(channels)

	metrics.SetChannelsLoaded(len(channels))
}

func (s *State) Channels() []playlist.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]playlist.Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// ChannelByName returns the first channel with the given name.
func (s *State) ChannelByName(name string) (playlist.Channel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.channels {
		if ch.Name == name {
			return ch, true
		}
	}
	return playlist.Channel{}, false
}

func (s *State) Groups() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, len(s.groups))
	copy(out, s.groups)
	return out
}

func (s *State) SourceType() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sourceType
}

// ToggleFavorite flips the favorite flag for a channel name and reports
// the new value. Names unknown to the current channel list still toggle,
// favorites survive playlist reloads by design of the name keying.
func (s *State) ToggleFavorite(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.favorites[name] {
		delete(s.favorites, name)
		return false
	}
	s.favorites[name] = true
	return true
}

func (s *State) IsFavorite(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favorites[name]
}

func (s *State) Favorites() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]string, 0, len(s.favorites))
	for name := range s.favorites {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (s *State) SetAccount(account *xtream.AccountInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account = account
}

func (s *State) Account() *xtream.AccountInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.account == nil {
		return nil
	}
	cp := *s.account
	return &cp
}

// SetXtreamCreds records the active provider account. Credentials persist
// across restarts so the session can be re-established without re-entry.
func (s *State) SetXtreamCreds(creds config.Xtream) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.xtreamCreds = creds
}

func (s *State) XtreamCreds() config.Xtream {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.xtreamCreds
}

// SetEPGURL records a guide URL override supplied at runtime.
func (s *State) SetEPGURL(rawURL string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epgURL = rawURL
}

func (s *State) EPGURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.epgURL
}

// SetSnapshot swaps in a complete guide snapshot. The previous snapshot
// stays fully readable until the swap, so concurrent readers never observe
// a half-loaded guide.
func (s *State) SetSnapshot(snap *epg.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot = snap
	if snap != nil {
		metrics.SetEPGProgrammes(snap.Guide.Programmes())
	}
}

// Snapshot returns the current guide snapshot, which may be nil before the
// first successful refresh. Snapshots are immutable after creation, so
// sharing the pointer is safe.
func (s *State) Snapshot() *epg.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// SetNotice records a user-visible warning, a failed refresh behind
// still-usable stale data being the main case.
func (s *State) SetNotice(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = msg
}

func (s *State) Notice() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notice
}

func (s *State) DismissNotice() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notice = ""
}

func computeGroups(channels []playlist.Channel) []string {
	seen := make(map[string]bool, len(channels))
	named := make([]string, 0, 16)
	for _, ch := range channels {
		if ch.Group == "" || seen[ch.Group] {
			continue
		}
		seen[ch.Group] = true
		named = append(named, ch.Group)
	}
	return append([]string{GroupAll}, named...)
}
