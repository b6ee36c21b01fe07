package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zapp/internal/config"
	"zapp/internal/epg"
	"zapp/internal/fetch"
	"zapp/internal/logging"
	"zapp/internal/playlist"
	"zapp/internal/state"
	"zapp/internal/xtream"
)

// Manager owns the application state and the ingestion pipeline. The HTTP
// layer is a thin shell around it: every operation the API exposes is a
// method here, so the whole pipeline is drivable without a server.
type Manager struct {
	cfg     *config.Config
	state   *state.State
	fetcher *fetch.Fetcher
	httpcl  fetch.HTTPClient

	refresher *epg.Refresher

	mu           sync.Mutex
	xtreamClient *xtream.Client
}

func New(cfg *config.Config) *Manager {
	st := state.New()
	fetcher := fetch.NewFetcher(cfg.Fetch)

	m := &Manager{
		cfg:     cfg,
		state:   st,
		fetcher: fetcher,
		httpcl:  fetch.NewHTTPClient(cfg.Fetch.HTTPHeaders),
	}
	m.refresher = epg.NewRefresher(st,
		time.Duration(cfg.EPG.StaleAfter), time.Duration(cfg.EPG.CheckInterval))
	return m
}

func (m *Manager) State() *state.State {
	return m.state
}

func (m *Manager) Refresher() *epg.Refresher {
	return m.refresher
}

// Start restores persisted state, ingests the configured source if any,
// and launches the background refresh loop. Ingestion failures at startup
// are logged, not fatal: the server still comes up and the source can be
// (re)configured through the API.
func (m *Manager) Start(ctx context.Context) error {
	if err := m.state.Load(m.cfg.State.Path); err != nil {
		return fmt.Errorf("failed to restore state: %w", err)
	}

	switch m.cfg.Source.Type {
	case config.SourceTypeM3U:
		if _, err := m.IngestM3U(ctx, m.cfg.Source.URL); err != nil {
			logging.Error(ctx, err, "startup playlist ingestion failed")
		}
	case config.SourceTypeXtream:
		if _, _, err := m.IngestXtream(ctx, m.cfg.Source.Xtream); err != nil {
			logging.Error(ctx, err, "startup xtream ingestion failed")
		}
	default:
		m.restoreSource(ctx)
	}

	go m.refresher.Run(ctx)
	return nil
}

// restoreSource re-establishes the guide source after a restart with no
// configured source, based on what the persisted state remembers.
func (m *Manager) restoreSource(ctx context.Context) {
	switch m.state.SourceType() {
	case config.SourceTypeM3U:
		url := m.guideURL()
		if url == "" {
			return
		}
		m.refresher.SetSource(m.guideFetch(url))
	case config.SourceTypeXtream:
		creds := m.state.XtreamCreds()
		if creds.Validate() != nil {
			return
		}
		client := xtream.NewClient(creds, m.httpcl, m.fetcher)
		m.mu.Lock()
		m.xtreamClient = client
		m.mu.Unlock()
		m.refresher.SetSource(client.FetchXMLTV)
	default:
		return
	}

	go func() {
		if err := m.refresher.Refresh(ctx, false); err != nil {
			logging.Warn(ctx, "startup guide refresh failed", "error", err)
		}
	}()
}

// IngestM3U loads a playlist URL, replaces the channel list, and points
// the refresher at the configured guide URL. Returns the channel count.
func (m *Manager) IngestM3U(ctx context.Context, rawURL string) (int, error) {
	channels, err := playlist.Fetch(ctx, m.httpcl, rawURL)
	if err != nil {
		return 0, err
	}

	m.state.SetChannels(config.SourceTypeM3U, channels)
	m.mu.Lock()
	m.xtreamClient = nil
	m.mu.Unlock()
	m.state.SetAccount(nil)
	m.state.SetXtreamCreds(config.Xtream{})

	if url := m.guideURL(); url != "" {
		m.refresher.SetSource(m.guideFetch(url))
		go func() {
			if err := m.refresher.Refresh(context.WithoutCancel(ctx), false); err != nil {
				logging.Warn(ctx, "guide refresh after ingestion failed", "error", err)
			}
		}()
	} else {
		m.refresher.SetSource(nil)
	}

	m.persist(ctx)
	logging.Info(ctx, "playlist ingested",
		"url", logging.SanitizeURL(rawURL), "channels", len(channels))
	return len(channels), nil
}

// IngestXtream validates the account, pulls the channel catalog, and wires
// the bulk XMLTV endpoint as the guide source. A failed login surfaces as
// *xtream.AuthError so callers can tell bad credentials from a dead host.
func (m *Manager) IngestXtream(ctx context.Context, creds config.Xtream) (*xtream.AccountInfo, int, error) {
	if err := creds.Validate(); err != nil {
		return nil, 0, err
	}

	client := xtream.NewClient(creds, m.httpcl, m.fetcher)

	account, err := client.Login(ctx)
	if err != nil {
		return nil, 0, err
	}

	channels, err := client.ListChannels(ctx)
	if err != nil {
		return nil, 0, err
	}

	m.state.SetChannels(config.SourceTypeXtream, channels)
	m.state.SetAccount(account)
	m.state.SetXtreamCreds(creds)
	m.mu.Lock()
	m.xtreamClient = client
	m.mu.Unlock()

	m.refresher.SetSource(client.FetchXMLTV)
	go func() {
		if err := m.refresher.Refresh(context.WithoutCancel(ctx), false); err != nil {
			logging.Warn(ctx, "guide refresh after ingestion failed", "error", err)
		}
	}()

	m.persist(ctx)
	logging.Info(ctx, "xtream catalog ingested",
		"username", account.Username, "channels", len(channels))
	return account, len(channels), nil
}

// ToggleFavorite flips a channel's favorite flag and persists the change.
func (m *Manager) ToggleFavorite(ctx context.Context, name string) bool {
	favorite := m.state.ToggleFavorite(name)
	m.persist(ctx)
	return favorite
}

// SetGuideURL overrides the guide source for M3U playlists at runtime.
func (m *Manager) SetGuideURL(ctx context.Context, rawURL string) {
	m.state.SetEPGURL(rawURL)
	if rawURL != "" {
		m.refresher.SetSource(m.guideFetch(rawURL))
	}
	m.persist(ctx)
}

// Listings returns the guide bucket matched to a channel name, or nil when
// the channel is unknown or no bucket matches.
func (m *Manager) Listings(name string) []epg.Programme {
	ch, ok := m.state.ChannelByName(name)
	if !ok {
		return nil
	}
	snap := m.state.Snapshot()
	if snap == nil {
		return nil
	}
	return epg.Match(ch, snap.Guide)
}

// NowNext resolves the current and next programme for a channel.
func (m *Manager) NowNext(name string, now time.Time) epg.NowNext {
	return epg.CurrentAndNext(m.Listings(name), now)
}

// ShortEPG proxies a best-effort per-stream lookup to the active Xtream
// account. Without one the answer is simply empty.
func (m *Manager) ShortEPG(ctx context.Context, streamID string) []epg.Programme {
	m.mu.Lock()
	client := m.xtreamClient
	m.mu.Unlock()

	if client == nil {
		return nil
	}
	return client.ShortEPG(ctx, streamID)
}

// ShortEPGAll fans out best-effort lookups for a set of stream ids,
// bounded by the configured fan-out.
func (m *Manager) ShortEPGAll(ctx context.Context, streamIDs []string) map[string][]epg.Programme {
	m.mu.Lock()
	client := m.xtreamClient
	m.mu.Unlock()

	if client == nil || len(streamIDs) == 0 {
		return nil
	}
	return client.ShortEPGAll(ctx, streamIDs, m.cfg.EPG.ShortEPGFanout)
}

func (m *Manager) guideURL() string {
	if url := m.state.EPGURL(); url != "" {
		return url
	}
	return m.cfg.EPG.URL
}

func (m *Manager) guideFetch(rawURL string) epg.FetchFunc {
	return func(ctx context.Context) (*fetch.Payload, error) {
		return m.fetcher.Text(ctx, rawURL)
	}
}

func (m *Manager) persist(ctx context.Context) {
	if err := m.state.Save(m.cfg.State.Path); err != nil {
		logging.Error(ctx, err, "failed to persist state")
	}
}
