package airquality

import (
	"net/http"

	"airquality-server/internal/metrics"
	"airquality-server/internal/modules/airquality/controller"
	"airquality-server/internal/modules/airquality/repository"
)

func RegisterFeature(mux *http.ServeMux, repo repository.ReadingRepository, m *metrics.Metrics) {
	airQualityController := controller.NewAirQualityController(repo, m)
	airQualityController.RegisterRoutes(mux)
}
