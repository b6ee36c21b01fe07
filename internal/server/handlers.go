package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"zapp/internal/config"
	"zapp/internal/ctxutil"
	"zapp/internal/epg"
	"zapp/internal/fetch"
	"zapp/internal/playlist"
	"zapp/internal/state"
	"zapp/internal/xtream"
)

const maxBodyBytes = 64 << 10

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type m3uSourceRequest struct {
	URL    string `json:"url"`
	EPGURL string `json:"epgUrl,omitempty"`
}

func (s *Server) handleSourceM3U(w http.ResponseWriter, r *http.Request) {
	var req m3uSourceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	ctx := ctxutil.WithSourceType(r.Context(), config.SourceTypeM3U)

	if req.EPGURL != "" {
		s.manager.SetGuideURL(ctx, req.EPGURL)
	}

	count, err := s.manager.IngestM3U(ctx, req.URL)
	if err != nil {
		writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"channels": count})
}

type xtreamSourceRequest struct {
	BaseURL  string `json:"baseUrl"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleSourceXtream(w http.ResponseWriter, r *http.Request) {
	var req xtreamSourceRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := ctxutil.WithSourceType(r.Context(), config.SourceTypeXtream)

	account, count, err := s.manager.IngestXtream(ctx, config.Xtream{
		BaseURL:  req.BaseURL,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		writeIngestError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"account":  account,
		"channels": count,
	})
}

type channelResponse struct {
	playlist.Channel
	Favorite bool `json:"favorite"`
}

func (s *Server) handleChannels(w http.ResponseWriter, r *http.Request) {
	group := r.URL.Query().Get("group")
	search := strings.ToLower(r.URL.Query().Get("search"))
	favoritesOnly := r.URL.Query().Get("favorites") == "true"

	channels := s.manager.State().Channels()
	out := make([]channelResponse, 0, len(channels))
	for _, ch := range channels {
		if group != "" && group != state.GroupAll && ch.Group != group {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(ch.Name), search) {
			continue
		}
		favorite := s.manager.State().IsFavorite(ch.Name)
		if favoritesOnly && !favorite {
			continue
		}
		out = append(out, channelResponse{Channel: ch, Favorite: favorite})
	}

	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.State().Groups())
}

func (s *Server) handleToggleFavorite(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if name == "" {
		writeError(w, http.StatusBadRequest, "channel name is required")
		return
	}

	ctx := ctxutil.WithChannelName(r.Context(), name)
	favorite := s.manager.ToggleFavorite(ctx, name)
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "favorite": favorite})
}

func (s *Server) handleNowNext(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("channel")
	if name == "" {
		writeError(w, http.StatusBadRequest, "channel query parameter is required")
		return
	}

	if _, ok := s.manager.State().ChannelByName(name); !ok {
		writeError(w, http.StatusNotFound, "unknown channel")
		return
	}

	writeJSON(w, http.StatusOK, s.manager.NowNext(name, time.Now().UTC()))
}

func (s *Server) handleListings(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("channel")
	if name == "" {
		writeError(w, http.StatusBadRequest, "channel query parameter is required")
		return
	}

	if _, ok := s.manager.State().ChannelByName(name); !ok {
		writeError(w, http.StatusNotFound, "unknown channel")
		return
	}

	listings := s.manager.Listings(name)
	if listings == nil {
		listings = []epg.Programme{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.manager.Refresher().Refresh(r.Context(), true); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.manager.Refresher().Status())
}

type statusResponse struct {
	epg.Status
	Notice   string `json:"notice,omitempty"`
	Channels int    `json:"channels"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Status:   s.manager.Refresher().Status(),
		Notice:   s.manager.State().Notice(),
		Channels: len(s.manager.State().Channels()),
	})
}

func (s *Server) handleDismissNotice(w http.ResponseWriter, r *http.Request) {
	s.manager.State().DismissNotice()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleShortEPG(w http.ResponseWriter, r *http.Request) {
	streamID := mux.Vars(r)["streamID"]
	ctx := ctxutil.WithStreamID(r.Context(), streamID)

	listings := s.manager.ShortEPG(ctx, streamID)
	if listings == nil {
		listings = []epg.Programme{}
	}
	writeJSON(w, http.StatusOK, listings)
}

func (s *Server) handleShortEPGBulk(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("streams")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "streams query parameter is required")
		return
	}

	var streamIDs []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			streamIDs = append(streamIDs, id)
		}
	}

	results := s.manager.ShortEPGAll(r.Context(), streamIDs)
	if results == nil {
		results = map[string][]epg.Programme{}
	}
	writeJSON(w, http.StatusOK, results)
}

func decodeBody(r *http.Request, dest any) error {
	defer func() { _ = r.Body.Close() }()
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

// writeIngestError maps ingestion failures onto status codes: credential
// rejections are the client's problem, upstream fetch failures are the
// provider's.
func writeIngestError(w http.ResponseWriter, err error) {
	var authErr *xtream.AuthError
	var fetchErr *fetch.Error
	var formatErr *fetch.FormatError
	var playlistErr *playlist.FetchError
	var catalogErr *xtream.ChannelFetchError

	switch {
	case errors.As(err, &authErr):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.As(err, &fetchErr), errors.As(err, &formatErr),
		errors.As(err, &playlistErr), errors.As(err, &catalogErr):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}
