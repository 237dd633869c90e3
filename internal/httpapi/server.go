package httpapi

import (
	"net/http"
	"time"

	"airquality-server/internal/config"
	"airquality-server/internal/metrics"
)

func NewServer(cfg config.Config, mux *http.ServeMux, m *metrics.Metrics) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestID(requestLogger(m, mux)),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
