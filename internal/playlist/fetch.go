package playlist

import (
	"context"
	"fmt"
	"net/http"
)

// FetchError covers both transport failures and unusable responses when
// retrieving a playlist URL.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch playlist from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetch retrieves an M3U playlist with a plain GET and parses it. Unlike
// XMLTV resources there is no relay fallback here, playlist URLs are
// expected to be directly reachable.
func Fetch(ctx context.Context, client HTTPClient, url string) ([]Channel, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("unexpected status code: %d", resp.StatusCode)}
	}

	return Parse(resp.Body), nil
}
