package metrics

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"zapp/internal/ctxutil"
)

const (
	RequestTypeChannels = "channels"
	RequestTypeEPG      = "epg"
	RequestTypeIngest   = "ingest"

	FetchStrategyDirect = "direct"
	FetchStrategyRelay  = "relay"

	ResultOK    = "ok"
	ResultError = "error"
)

var Registry = prometheus.NewRegistry()

var (
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapp_http_requests_total",
			Help: "HTTP requests served, by request type and status class.",
		},
		[]string{"type", "class"},
	)

	fetchAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapp_fetch_attempts_total",
			Help: "Outbound fetch attempts, by strategy and result.",
		},
		[]string{"strategy", "result"},
	)

	epgRefreshes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapp_epg_refresh_total",
			Help: "Bulk EPG refresh outcomes.",
		},
		[]string{"result"},
	)

	shortEPGRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zapp_short_epg_requests_total",
			Help: "Per-channel short EPG lookups, by result.",
		},
		[]string{"result"},
	)

	channelsLoaded = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "zapp_channels_loaded",
			Help: "Channels in the active channel list.",
		},
	)

	epgProgrammes = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "zapp_epg_programmes",
			Help: "Programme entries in the active EPG snapshot.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		fetchAttempts,
		epgRefreshes,
		shortEPGRequests,
		channelsLoaded,
		epgProgrammes,
	)
}

func IncHTTPRequest(ctx context.Context, statusClass string) {
	reqType := ctxutil.RequestType(ctx)
	if reqType == "" {
		reqType = "other"
	}
	httpRequests.WithLabelValues(reqType, statusClass).Inc()
}

func IncFetchAttempt(strategy, result string) {
	fetchAttempts.WithLabelValues(strategy, result).Inc()
}

func IncEPGRefresh(result string) {
	epgRefreshes.WithLabelValues(result).Inc()
}

func IncShortEPG(result string) {
	shortEPGRequests.WithLabelValues(result).Inc()
}

func SetChannelsLoaded(n int) {
	channelsLoaded.Set(float64(n))
}

func SetEPGProgrammes(n int) {
	epgProgrammes.Set(float64(n))
}
