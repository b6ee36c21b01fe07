package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClient struct {
	responses map[string]stubResponse
	requests  []string
}

type stubResponse struct {
	status int
	body   string
	err    error
}

func (c *stubClient) Do(req *http.Request) (*http.Response, error) {
	url := req.URL.String()
	c.requests = append(c.requests, url)

	resp, ok := c.responses[url]
	if !ok {
		return nil, errors.New("no route")
	}
	if resp.err != nil {
		return nil, resp.err
	}
	return &http.Response{
		StatusCode: resp.status,
		Body:       io.NopCloser(strings.NewReader(resp.body)),
	}, nil
}

func relayAttempts() []Attempt {
	return []Attempt{
		{Name: "direct", Timeout: time.Second},
		{Name: "relay", Timeout: time.Second, Rewrite: func(rawURL string) string {
			return "http://relay/" + rawURL
		}},
	}
}

func TestFetcher_DirectSuccess(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"http://origin/guide.xml": {status: 200, body: "<tv></tv>"},
	}}
	f := NewWithAttempts(client, relayAttempts())

	payload, err := f.Text(context.Background(), "http://origin/guide.xml")
	require.NoError(t, err)
	assert.Equal(t, "<tv></tv>", payload.Body)
	assert.Equal(t, "direct", payload.Strategy)
	assert.False(t, payload.Large)
	assert.Equal(t, []string{"http://origin/guide.xml"}, client.requests)
}

func TestFetcher_FallsBackToRelay(t *testing.T) {
	tests := []struct {
		name   string
		direct stubResponse
	}{
		{"network error", stubResponse{err: errors.New("connection refused")}},
		{"http 403", stubResponse{status: 403, body: "forbidden"}},
		{"http 500", stubResponse{status: 500, body: "boom"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubClient{responses: map[string]stubResponse{
				"http://origin/guide.xml":              tt.direct,
				"http://relay/http://origin/guide.xml": {status: 200, body: "<tv></tv>"},
			}}
			f := NewWithAttempts(client, relayAttempts())

			payload, err := f.Text(context.Background(), "http://origin/guide.xml")
			require.NoError(t, err)
			assert.Equal(t, "relay", payload.Strategy)
			assert.Len(t, client.requests, 2)
		})
	}
}

func TestFetcher_AllAttemptsFail(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{}}
	f := NewWithAttempts(client, relayAttempts())

	_, err := f.Text(context.Background(), "http://origin/guide.xml")

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, "http://origin/guide.xml", fetchErr.URL)
	assert.Len(t, client.requests, 2)
}

func TestFetcher_FormatErrorIsTerminal(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"http://origin/guide.xml": {status: 200, body: "Error: invalid credentials"},
	}}
	f := NewWithAttempts(client, relayAttempts())

	_, err := f.Text(context.Background(), "http://origin/guide.xml")

	var formatErr *FormatError
	require.ErrorAs(t, err, &formatErr)
	assert.Len(t, client.requests, 1, "format failures must not hit the relay")
}

func TestFetcher_LargePayloadFlagged(t *testing.T) {
	client := &stubClient{responses: map[string]stubResponse{
		"http://origin/guide.xml": {status: 200, body: "<tv>" + strings.Repeat("x", LargeBodyBytes) + "</tv>"},
	}}
	f := NewWithAttempts(client, relayAttempts())

	payload, err := f.Text(context.Background(), "http://origin/guide.xml")
	require.NoError(t, err)
	assert.True(t, payload.Large)
}

func TestCheckPayload(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  bool
	}{
		{"xml declaration", `<?xml version="1.0"?><tv></tv>`, false},
		{"bare tv root", "<tv></tv>", false},
		{"leading bom and whitespace", "\uFEFF  \n<?xml version=\"1.0\"?>", false},
		{"non-xml without markers", "just some text", false},
		{"error marker", "Error: account expired", true},
		{"401 marker", "HTTP 401 Unauthorized", true},
		{"403 marker", "status 403", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkPayload("http://origin", tt.body)
			if tt.err {
				var formatErr *FormatError
				assert.ErrorAs(t, err, &formatErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
