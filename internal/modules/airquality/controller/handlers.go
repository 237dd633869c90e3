package controller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"airquality-server/internal/modules/airquality/charts"
	"airquality-server/internal/modules/airquality/pipeline"
	"airquality-server/internal/modules/airquality/types"
	"airquality-server/internal/modules/airquality/views"
	"airquality-server/internal/utils"
)

type rangeResponse struct {
	Min *string `json:"min"`
	Max *string `json:"max"`
}

type analyticsResponse struct {
	pipeline.Result
	Charts []charts.Spec `json:"charts"`
}

func (c *airQualityControllerImpl) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	readings, err := c.repository.GetReadings(r.Context())
	if err != nil {
		slog.Error("dashboard: get readings failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	stations, err := c.repository.GetStations(r.Context())
	if err != nil {
		slog.Error("dashboard: get stations failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}

	data := &views.DashboardData{Stations: make([]views.StationLegend, 0, len(stations))}
	for _, s := range stations {
		data.Stations = append(data.Stations, views.StationLegend{Name: s.Name, Area: s.Area})
	}
	if first, last, ok := pipeline.Bounds(readings); ok {
		data.MinDate, data.MaxDate = formatDate(first), formatDate(last)
	}
	if err := utils.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
		return views.RenderDashboard(out, data)
	}); err != nil {
		slog.Error("dashboard template render failed", "error", err)
	}
}

func (c *airQualityControllerImpl) handleRange(w http.ResponseWriter, r *http.Request) {
	readings, err := c.repository.GetReadings(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var resp rangeResponse
	if first, last, ok := pipeline.Bounds(readings); ok {
		lo, hi := formatDate(first), formatDate(last)
		resp.Min, resp.Max = &lo, &hi
	}
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (c *airQualityControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.repository.GetStations(r.Context())
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if stations == nil {
		stations = []types.Station{}
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *airQualityControllerImpl) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	q, err := parseDateRangeQuery(r.URL.Query())
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	res, err := c.analyze(r.Context(), q)
	if err != nil {
		var rangeErr *pipeline.RangeError
		if errors.As(err, &rangeErr) {
			utils.WriteError(w, http.StatusBadRequest, rangeErr.Error())
			return
		}
		slog.Error("analytics failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}
	utils.WriteJSON(w, http.StatusOK, analyticsResponse{Result: res, Charts: charts.Build(res)})
}

// handleAnalyticsPartial never rejects a selection: an unparsable or reversed
// range is replaced by the full range and the reason shown above the charts.
func (c *airQualityControllerImpl) handleAnalyticsPartial(w http.ResponseWriter, r *http.Request) {
	var message string
	q, err := parseDateRangeQuery(r.URL.Query())
	if err != nil {
		message = err.Error()
		q = dateRangeQuery{}
	}
	res, err := c.analyze(r.Context(), q)
	var rangeErr *pipeline.RangeError
	if errors.As(err, &rangeErr) {
		slog.Warn("analytics partial: invalid range, using full range", "start", rangeErr.Start, "end", rangeErr.End)
		message = rangeErr.Error()
		res, err = c.analyze(r.Context(), dateRangeQuery{})
	}
	if err != nil {
		slog.Error("analytics partial failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load readings")
		return
	}

	data := views.NewAnalyticsData(res, message)
	if err := utils.WriteHTML(w, http.StatusOK, func(out io.Writer) error {
		return views.RenderAnalyticsPartial(out, data)
	}); err != nil {
		slog.Error("analytics partial render failed", "error", err)
	}
}

// analyze loads the readings and runs the pipeline over the requested range,
// defaulting to the dataset bounds.
func (c *airQualityControllerImpl) analyze(ctx context.Context, q dateRangeQuery) (pipeline.Result, error) {
	readings, err := c.repository.GetReadings(ctx)
	if err != nil {
		return pipeline.Result{}, err
	}
	first, last, ok := pipeline.Bounds(readings)
	if !ok && !(q.HasStart && q.HasEnd) {
		return pipeline.Render(nil), nil
	}
	start, end := q.resolve(first, last)

	began := time.Now()
	res, err := pipeline.Run(readings, start, end)
	if err != nil {
		c.metrics.IncRangeError()
		return pipeline.Result{}, err
	}
	c.metrics.ObservePipeline(res.Summary.Readings, time.Since(began))
	slog.Debug("pipeline run",
		"start", formatDate(res.Start),
		"end", formatDate(res.End),
		"readings", res.Summary.Readings,
		"duration", time.Since(began),
	)
	return res, nil
}
