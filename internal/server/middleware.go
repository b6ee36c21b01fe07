package server

import (
	"net/http"
	"strings"
	"time"

	"zapp/internal/ctxutil"
	"zapp/internal/logging"
	"zapp/internal/metrics"
)

type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.written += int64(n)
	return n, err
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := ctxutil.WithRequestID(r.Context())
		ctx = ctxutil.WithRequestType(ctx, requestType(r.URL.Path))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestType(path string) string {
	switch {
	case strings.HasPrefix(path, "/api/source"):
		return metrics.RequestTypeIngest
	case strings.HasPrefix(path, "/api/epg"):
		return metrics.RequestTypeEPG
	case strings.HasPrefix(path, "/api/"):
		return metrics.RequestTypeChannels
	default:
		return "other"
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		metrics.IncHTTPRequest(r.Context(), statusClass(recorder.status))
		logging.HttpRequest(r.Context(), r, recorder.status, time.Since(start), recorder.written)
	})
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
