package controller

import (
	"net/http"

	"airquality-server/internal/metrics"
	"airquality-server/internal/modules/airquality/repository"
)

type AirQualityController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type airQualityControllerImpl struct {
	repository repository.ReadingRepository
	metrics    *metrics.Metrics
}

func NewAirQualityController(repository repository.ReadingRepository, m *metrics.Metrics) AirQualityController {
	return &airQualityControllerImpl{repository: repository, metrics: m}
}

func (c *airQualityControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleDashboard)
	mux.HandleFunc("GET /partials/analytics", c.handleAnalyticsPartial)
	mux.HandleFunc("GET /api/v1/range", c.handleRange)
	mux.HandleFunc("GET /api/v1/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1/analytics", c.handleAnalytics)
}
