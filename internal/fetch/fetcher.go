package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"zapp/internal/config"
	"zapp/internal/logging"
	"zapp/internal/metrics"
)

// LargeBodyBytes is the size above which a payload is flagged for
// slow-path handling. The body is still accepted in full, parsing it just
// should not happen on a serving path.
const LargeBodyBytes = 50 << 20

const errorSniffBytes = 4096

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Attempt is one entry of the ordered fallback strategy: a name for
// logging and metrics, its own timeout, and an optional URL rewrite
// (the CORS relay wraps the original URL).
type Attempt struct {
	Name    string
	Timeout time.Duration
	Rewrite func(rawURL string) string
}

type Payload struct {
	Body     string
	Strategy string
	Large    bool
}

type Fetcher struct {
	attempts []Attempt
	client   HTTPClient
}

func NewFetcher(cfg config.Fetch) *Fetcher {
	attempts := []Attempt{
		{
			Name:    metrics.FetchStrategyDirect,
			Timeout: time.Duration(cfg.DirectTimeout),
		},
	}

	if cfg.RelayURL != "" {
		relayBase := cfg.RelayURL
		attempts = append(attempts, Attempt{
			Name:    metrics.FetchStrategyRelay,
			Timeout: time.Duration(cfg.RelayTimeout),
			Rewrite: func(rawURL string) string {
				return relayBase + url.QueryEscape(rawURL)
			},
		})
	}

	return &Fetcher{
		attempts: attempts,
		client:   NewHTTPClient(cfg.HTTPHeaders),
	}
}

// NewWithAttempts builds a fetcher over an explicit attempt list and
// client, used by tests to stub each strategy without network mocking.
func NewWithAttempts(client HTTPClient, attempts []Attempt) *Fetcher {
	return &Fetcher{attempts: attempts, client: client}
}

// Text runs the attempt list in order until one succeeds or all fail.
// Transport failures (network error, non-2xx, timeout) advance to the
// next attempt; a payload that fails the sanity check is terminal, the
// XMLTV parser stays the authority on structural validity.
func (f *Fetcher) Text(ctx context.Context, rawURL string) (*Payload, error) {
	var lastErr error

	for _, attempt := range f.attempts {
		body, err := f.do(ctx, attempt, rawURL)
		if err != nil {
			metrics.IncFetchAttempt(attempt.Name, metrics.ResultError)
			logging.Debug(ctx, "fetch attempt failed",
				"strategy", attempt.Name, "url", logging.SanitizeURL(rawURL), "error", err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		metrics.IncFetchAttempt(attempt.Name, metrics.ResultOK)

		if err := checkPayload(rawURL, body); err != nil {
			return nil, err
		}

		payload := &Payload{
			Body:     body,
			Strategy: attempt.Name,
			Large:    len(body) > LargeBodyBytes,
		}
		if payload.Large {
			logging.Warn(ctx, "payload exceeds large-body threshold",
				"url", logging.SanitizeURL(rawURL), "bytes", len(body))
		}
		return payload, nil
	}

	return nil, &Error{URL: rawURL, Err: lastErr}
}

func (f *Fetcher) do(ctx context.Context, attempt Attempt, rawURL string) (string, error) {
	target := rawURL
	if attempt.Rewrite != nil {
		target = attempt.Rewrite(rawURL)
	}

	attemptCtx := ctx
	if attempt.Timeout > 0 {
		var cancel context.CancelFunc
		attemptCtx, cancel = context.WithTimeout(ctx, attempt.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, target, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}

	return string(body), nil
}

// checkPayload is a sanity gate, not a format validation: bodies that look
// like XML pass untouched, and non-XML bodies are rejected only when they
// also carry error-indicating markers.
func checkPayload(rawURL, body string) error {
	trimmed := strings.TrimLeft(body, " \t\r\n\uFEFF")
	if strings.HasPrefix(trimmed, "<?xml") || strings.HasPrefix(trimmed, "<tv") {
		return nil
	}

	sniff := trimmed
	if len(sniff) > errorSniffBytes {
		sniff = sniff[:errorSniffBytes]
	}
	sniff = strings.ToLower(sniff)

	for _, marker := range []string{"error", "401", "403"} {
		if strings.Contains(sniff, marker) {
			return &FormatError{URL: rawURL, Marker: marker}
		}
	}

	return nil
}
