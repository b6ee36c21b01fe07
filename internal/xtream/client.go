package xtream

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"zapp/internal/config"
	"zapp/internal/epg"
	"zapp/internal/fetch"
	"zapp/internal/logging"
	"zapp/internal/metrics"
	"zapp/internal/playlist"
)

const (
	apiAttempts  = 3
	apiBaseDelay = 500 * time.Millisecond
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to an Xtream-Codes style panel. There is no session state
// on either side: credentials ride along on every call, and Login is a
// validation probe rather than a handshake.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient HTTPClient
	fetcher    *fetch.Fetcher
}

func NewClient(cfg config.Xtream, httpClient HTTPClient, fetcher *fetch.Fetcher) *Client {
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		httpClient: httpClient,
		fetcher:    fetcher,
	}
}

// Login probes player_api.php and fails with *AuthError unless the server
// reports an explicitly authenticated account.
func (c *Client) Login(ctx context.Context) (*AccountInfo, error) {
	var resp accountResponse
	if err := c.apiCall(ctx, "", nil, &resp); err != nil {
		return nil, err
	}

	if !bool(resp.UserInfo.Auth) {
		err := &AuthError{}
		if resp.UserInfo.Status != "" && resp.UserInfo.Status != "Active" {
			err.Err = fmt.Errorf("account status: %s", resp.UserInfo.Status)
		}
		return nil, err
	}

	return &AccountInfo{
		Username:       resp.UserInfo.Username,
		Status:         resp.UserInfo.Status,
		ExpDate:        resp.UserInfo.ExpDate.String(),
		MaxConnections: resp.UserInfo.MaxConnections.String(),
	}, nil
}

// ListChannels merges the category catalog and the live-stream catalog
// into a channel list. Providers only expose category names through the
// separate catalog, so this is always two round trips joined client-side.
func (c *Client) ListChannels(ctx context.Context) ([]playlist.Channel, error) {
	var categories []category
	if err := c.apiCall(ctx, "get_live_categories", nil, &categories); err != nil {
		return nil, &ChannelFetchError{Stage: "category", Err: err}
	}

	categoryNames := make(map[string]string, len(categories))
	for _, cat := range categories {
		categoryNames[cat.CategoryID.String()] = cat.CategoryName
	}

	var streams []liveStream
	if err := c.apiCall(ctx, "get_live_streams", nil, &streams); err != nil {
		return nil, &ChannelFetchError{Stage: "live-stream", Err: err}
	}

	channels := make([]playlist.Channel, 0, len(streams))
	for _, stream := range streams {
		streamID := stream.StreamID.String()
		if streamID == "" {
			continue
		}

		name := stream.Name
		if name == "" {
			name = playlist.DefaultName
		}

		group := categoryNames[stream.CategoryID.String()]
		if group == "" {
			group = playlist.DefaultGroup
		}

		channels = append(channels, playlist.Channel{
			ID:    streamID,
			Name:  name,
			Logo:  stream.StreamIcon,
			Group: group,
			URL:   c.streamURL(streamID),
			EPGID: stream.EPGChannelID.String(),
		})
	}

	return channels, nil
}

// ShortEPG is best-effort by contract: the endpoint is known-unreliable
// across providers and must never block channel display, so every failure
// collapses to an empty listing.
func (c *Client) ShortEPG(ctx context.Context, streamID string) []epg.Programme {
	var resp shortEPGResponse
	params := url.Values{"stream_id": {streamID}}
	if err := c.apiCall(ctx, "get_short_epg", params, &resp); err != nil {
		metrics.IncShortEPG(metrics.ResultError)
		logging.Debug(ctx, "short epg lookup failed", "stream_id", streamID, "error", err)
		return nil
	}

	listings := make([]epg.Programme, 0, len(resp.EPGListings))
	for _, entry := range resp.EPGListings {
		listings = append(listings, epg.Programme{
			Start:       compactTime(entry.Start, entry.startUnix),
			End:         compactTime(entry.End, entry.stopUnix),
			Title:       decodeMaybeBase64(entry.Title.String()),
			Description: decodeMaybeBase64(entry.Description.String()),
		})
	}

	metrics.IncShortEPG(metrics.ResultOK)
	return listings
}

// XMLTVURL is the bulk guide endpoint for the account.
func (c *Client) XMLTVURL() string {
	return fmt.Sprintf("%s/xmltv.php?username=%s&password=%s",
		c.baseURL, url.QueryEscape(c.username), url.QueryEscape(c.password))
}

// FetchXMLTV retrieves the bulk guide through the resilient fetcher.
func (c *Client) FetchXMLTV(ctx context.Context) (*fetch.Payload, error) {
	return c.fetcher.Text(ctx, c.XMLTVURL())
}

func (c *Client) streamURL(streamID string) string {
	return fmt.Sprintf("%s/live/%s/%s/%s.m3u8", c.baseURL, c.username, c.password, streamID)
}

func (c *Client) apiURL(action string, params url.Values) string {
	apiURL := fmt.Sprintf("%s/player_api.php?username=%s&password=%s",
		c.baseURL, url.QueryEscape(c.username), url.QueryEscape(c.password))
	if action != "" {
		apiURL += "&action=" + url.QueryEscape(action)
	}
	for key, values := range params {
		for _, value := range values {
			apiURL += "&" + key + "=" + url.QueryEscape(value)
		}
	}
	return apiURL
}

// apiCall GETs a player_api.php action and decodes JSON into dest,
// retrying transient failures with backoff.
func (c *Client) apiCall(ctx context.Context, action string, params url.Values, dest any) error {
	apiURL := c.apiURL(action, params)

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
			if err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
			}

			resp, err := c.httpClient.Do(req)
			if err != nil {
				return fmt.Errorf("api call failed (action=%q host=%s): %w",
					action, safeHost(c.baseURL), err)
			}
			defer func() { _ = resp.Body.Close() }()

			if resp.StatusCode >= 500 {
				return fmt.Errorf("server error: status %d (action=%q)", resp.StatusCode, action)
			}
			if resp.StatusCode != http.StatusOK {
				return retry.Unrecoverable(
					fmt.Errorf("unexpected status code: %d (action=%q)", resp.StatusCode, action))
			}

			if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to decode response (action=%q): %w", action, err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(apiAttempts),
		retry.Delay(apiBaseDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}

// decodeMaybeBase64 handles the panels that base64-encode titles and
// descriptions in short EPG listings; plain text passes through.
func decodeMaybeBase64(s string) string {
	if s == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return s
	}
	if !utf8Valid(decoded) {
		return s
	}
	return string(decoded)
}

func utf8Valid(b []byte) bool {
	for _, r := range string(b) {
		if r == 0xFFFD || r < 0x09 {
			return false
		}
	}
	return true
}

// compactTime renders a short EPG timestamp in the XMLTV compact form so
// Programme values from both EPG paths compare the same way. The unix
// timestamp field wins over the formatted string when present.
func compactTime(formatted string, unix func() (int64, bool)) string {
	if ts, ok := unix(); ok {
		return time.Unix(ts, 0).UTC().Format("20060102150405")
	}
	if parsed, err := time.Parse("2006-01-02 15:04:05", formatted); err == nil {
		return parsed.Format("20060102150405")
	}
	return formatted
}

func safeHost(base string) string {
	parsed, err := url.Parse(base)
	if err != nil {
		return "[unparseable]"
	}
	return parsed.Host
}
