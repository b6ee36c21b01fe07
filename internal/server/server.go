package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"zapp/internal/app"
	"zapp/internal/config"
	"zapp/internal/logging"
	"zapp/internal/metrics"
)

type Server struct {
	cfg     config.ServerConfig
	manager *app.Manager

	httpServer    *http.Server
	metricsServer *http.Server
}

func New(cfg config.ServerConfig, manager *app.Manager) *Server {
	s := &Server{cfg: cfg, manager: manager}

	router := mux.NewRouter()
	router.Use(requestIDMiddleware, loggingMiddleware)

	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/source/m3u", s.handleSourceM3U).Methods(http.MethodPost)
	api.HandleFunc("/source/xtream", s.handleSourceXtream).Methods(http.MethodPost)
	api.HandleFunc("/channels", s.handleChannels).Methods(http.MethodGet)
	api.HandleFunc("/groups", s.handleGroups).Methods(http.MethodGet)
	api.HandleFunc("/favorites/{name}", s.handleToggleFavorite).Methods(http.MethodPost)
	api.HandleFunc("/epg/now", s.handleNowNext).Methods(http.MethodGet)
	api.HandleFunc("/epg/listings", s.handleListings).Methods(http.MethodGet)
	api.HandleFunc("/epg/refresh", s.handleRefresh).Methods(http.MethodPost)
	api.HandleFunc("/epg/status", s.handleStatus).Methods(http.MethodGet)
	api.HandleFunc("/epg/notice", s.handleDismissNotice).Methods(http.MethodDelete)
	api.HandleFunc("/epg/short", s.handleShortEPGBulk).Methods(http.MethodGet)
	api.HandleFunc("/epg/short/{streamID}", s.handleShortEPG).Methods(http.MethodGet)

	metricsHandler := promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})
	if cfg.MetricsAddr != "" {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", metricsHandler)
		s.metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           metricsMux,
			ReadHeaderTimeout: 10 * time.Second,
		}
	} else {
		router.Handle("/metrics", metricsHandler).Methods(http.MethodGet)
	}

	s.httpServer = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start blocks serving HTTP until Stop is called or the listener fails.
func (s *Server) Start() error {
	ctx := context.Background()

	if s.metricsServer != nil {
		go func() {
			logging.Info(ctx, "metrics server listening", "addr", s.metricsServer.Addr)
			if err := s.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logging.Error(ctx, err, "metrics server failed")
			}
		}()
	}

	logging.Info(ctx, "server listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

func (s *Server) Stop(ctx context.Context) error {
	if s.metricsServer != nil {
		_ = s.metricsServer.Shutdown(ctx)
	}
	return s.httpServer.Shutdown(ctx)
}
