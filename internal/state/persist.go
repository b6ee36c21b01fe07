package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"zapp/internal/config"
	"zapp/internal/playlist"
)

// persistedState is what survives a restart. The EPG snapshot is
// deliberately absent: guide data ages out in hours and is refetched on
// startup anyway, so persisting it would only serve stale listings with
// a reset clock.
type persistedState struct {
	SourceType string             `json:"sourceType,omitempty"`
	Channels   []playlist.Channel `json:"channels,omitempty"`
	Favorites  []string           `json:"favorites,omitempty"`
	EPGURL     string             `json:"epgUrl,omitempty"`
	Xtream     *persistedXtream   `json:"xtream,omitempty"`
}

type persistedXtream struct {
	BaseURL  string `json:"baseUrl"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// Save writes the durable parts of the state to path, atomically via a
// temp file in the same directory.
func (s *State) Save(path string) error {
	s.mu.RLock()
	snapshot := persistedState{
		SourceType: s.sourceType,
		Channels:   s.channels,
		EPGURL:     s.epgURL,
	}
	if s.xtreamCreds.BaseURL != "" {
		snapshot.Xtream = &persistedXtream{
			BaseURL:  s.xtreamCreds.BaseURL,
			Username: s.xtreamCreds.Username,
			Password: s.xtreamCreds.Password,
		}
	}
	for name := range s.favorites {
		snapshot.Favorites = append(snapshot.Favorites, name)
	}
	s.mu.RUnlock()
	sort.Strings(snapshot.Favorites)

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close state file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to replace state file: %w", err)
	}
	return nil
}

// Load restores persisted state from path. A missing file is not an
// error, it is simply a first run.
func (s *State) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read state file: %w", err)
	}

	var stored persistedState
	if err := json.Unmarshal(data, &stored); err != nil {
		return fmt.Errorf("failed to decode state file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sourceType = stored.SourceType
	s.channels = stored.Channels
	s.groups = computeGroups(stored.Channels)
	s.epgURL = stored.EPGURL
	if stored.Xtream != nil {
		s.xtreamCreds = config.Xtream{
			BaseURL:  stored.Xtream.BaseURL,
			Username: stored.Xtream.Username,
			Password: stored.Xtream.Password,
		}
	}
	s.favorites = make(map[string]bool, len(stored.Favorites))
	for _, name := range stored.Favorites {
		s.favorites[name] = true
	}
	return nil
}
