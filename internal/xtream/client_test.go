package xtream

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zapp/internal/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(config.Xtream{
		BaseURL:  server.URL + "/",
		Username: "user",
		Password: "pass",
	}, http.DefaultClient, nil)
	return client, server
}

func TestClient_Login(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		authErr bool
	}{
		{
			name: "numeric auth flag",
			body: `{"user_info":{"username":"user","auth":1,"status":"Active","exp_date":1735689600,"max_connections":"2"}}`,
		},
		{
			name: "string auth flag",
			body: `{"user_info":{"username":"user","auth":"1","status":"Active"}}`,
		},
		{
			name:    "auth zero",
			body:    `{"user_info":{"username":"user","auth":0,"status":"Expired"}}`,
			authErr: true,
		},
		{
			name:    "auth missing",
			body:    `{"user_info":{"username":"user"}}`,
			authErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/player_api.php", r.URL.Path)
				assert.Equal(t, "user", r.URL.Query().Get("username"))
				assert.Equal(t, "pass", r.URL.Query().Get("password"))
				_, _ = w.Write([]byte(tt.body))
			})

			account, err := client.Login(context.Background())
			if tt.authErr {
				var authErr *AuthError
				require.ErrorAs(t, err, &authErr)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "user", account.Username)
			assert.Equal(t, "Active", account.Status)
		})
	}
}

func TestClient_ListChannels(t *testing.T) {
	client, server := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("action") {
		case "get_live_categories":
			_, _ = w.Write([]byte(`[
				{"category_id":1,"category_name":"News"},
				{"category_id":"2","category_name":"Sports"}
			]`))
		case "get_live_streams":
			_, _ = w.Write([]byte(`[
				{"stream_id":100,"name":"CNN","stream_icon":"http://logo/cnn.png","category_id":1,"epg_channel_id":"cnn.us"},
				{"stream_id":"200","name":"ESPN","category_id":"2"},
				{"stream_id":300,"name":"","category_id":99},
				{"name":"no id, dropped"}
			]`))
		default:
			http.NotFound(w, r)
		}
	})

	channels, err := client.ListChannels(context.Background())
	require.NoError(t, err)
	require.Len(t, channels, 3)

	assert.Equal(t, "100", channels[0].ID)
	assert.Equal(t, "CNN", channels[0].Name)
	assert.Equal(t, "News", channels[0].Group)
	assert.Equal(t, "cnn.us", channels[0].EPGID)
	assert.Equal(t, server.URL+"/live/user/pass/100.m3u8", channels[0].URL)

	assert.Equal(t, "Sports", channels[1].Group)
	assert.Equal(t, "", channels[1].EPGID)

	assert.Equal(t, "Unknown Channel", channels[2].Name)
	assert.Equal(t, "Uncategorized", channels[2].Group, "unknown category id falls back")
}

func TestClient_ListChannels_StageErrors(t *testing.T) {
	tests := []struct {
		name  string
		stage string
	}{
		{"category catalog fails", "category"},
		{"live stream catalog fails", "live-stream"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				action := r.URL.Query().Get("action")
				if tt.stage == "category" && action == "get_live_categories" {
					http.NotFound(w, r)
					return
				}
				if tt.stage == "live-stream" && action == "get_live_streams" {
					http.NotFound(w, r)
					return
				}
				_, _ = w.Write([]byte(`[]`))
			})

			_, err := client.ListChannels(context.Background())
			var fetchErr *ChannelFetchError
			require.ErrorAs(t, err, &fetchErr)
			assert.Equal(t, tt.stage, fetchErr.Stage)
		})
	}
}

func TestClient_ShortEPG(t *testing.T) {
	title := base64.StdEncoding.EncodeToString([]byte("Evening News"))

	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "get_short_epg", r.URL.Query().Get("action"))
		assert.Equal(t, "42", r.URL.Query().Get("stream_id"))
		_, _ = w.Write([]byte(`{"epg_listings":[
			{"title":"` + title + `","description":"","start":"2024-01-01 18:00:00","end":"2024-01-01 19:00:00","start_timestamp":"1704132000","stop_timestamp":"1704135600"},
			{"title":"Plain Title","start":"2024-01-01 19:00:00","end":"2024-01-01 20:00:00"}
		]}`))
	})

	listings := client.ShortEPG(context.Background(), "42")
	require.Len(t, listings, 2)

	assert.Equal(t, "Evening News", listings[0].Title)
	assert.Equal(t, "20240101180000", listings[0].Start)
	assert.Equal(t, "20240101190000", listings[0].End)

	assert.Equal(t, "Plain Title", listings[1].Title)
	assert.Equal(t, "20240101190000", listings[1].Start)
}

func TestClient_ShortEPG_FailureIsEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not implemented", http.StatusNotFound)
	})

	assert.Empty(t, client.ShortEPG(context.Background(), "42"))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"user_info":{"username":"user","auth":1,"status":"Active"}}`))
	})

	_, err := client.Login(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_ClientErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "nope", http.StatusNotFound)
	})

	_, err := client.Login(context.Background())
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_XMLTVURL(t *testing.T) {
	client := NewClient(config.Xtream{
		BaseURL:  "http://panel.example.com",
		Username: "us er",
		Password: "p&ss",
	}, http.DefaultClient, nil)

	assert.Equal(t,
		"http://panel.example.com/xmltv.php?username=us+er&password=p%26ss",
		client.XMLTVURL())
}

func TestClient_ShortEPGAll(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		streamID := r.URL.Query().Get("stream_id")
		if streamID == "2" {
			http.Error(w, "no data", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"epg_listings":[{"title":"Show ` + streamID + `","start":"2024-01-01 18:00:00","end":"2024-01-01 19:00:00"}]}`))
	})

	results := client.ShortEPGAll(context.Background(), []string{"1", "2", "3"}, 2)
	require.Len(t, results, 2)
	assert.Equal(t, "Show 1", results["1"][0].Title)
	assert.Equal(t, "Show 3", results["3"][0].Title)
	assert.NotContains(t, results, "2")
}
