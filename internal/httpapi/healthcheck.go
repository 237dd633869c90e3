package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"airquality-server/internal/utils"
)

// Pinger reports whether the reading source can serve data.
type Pinger interface {
	Ping(ctx context.Context) error
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	source Pinger
}

func NewHealthchecker(source Pinger) healthchecker {
	return &healthcheckerImpl{source: source}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := h.source.Ping(ctx); err != nil {
		slog.Error("failed to check data source", "error", err)
		utils.WriteError(w, http.StatusServiceUnavailable, "data source unavailable")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, source Pinger) {
	healthchecker := NewHealthchecker(source)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
