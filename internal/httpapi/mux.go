package httpapi

import (
	"log/slog"
	"net/http"
	"os"

	"airquality-server/internal/metrics"
)

// NewMux returns a mux carrying the infrastructure routes: /healthz,
// /metrics and the static assets. Feature modules register on it afterwards.
func NewMux(source Pinger, staticDir string, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, source)
	mux.Handle("GET /metrics", m.Handler())
	registerStatic(mux, staticDir)
	return mux
}

func registerStatic(mux *http.ServeMux, staticDir string) {
	if staticDir == "" {
		return
	}
	if _, err := os.Stat(staticDir); err != nil {
		slog.Warn("static dir unavailable, /static/ disabled", "dir", staticDir, "error", err)
		return
	}
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
}
