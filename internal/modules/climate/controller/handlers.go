package controller

import (
	"bytes"
	"log/slog"
	"net/http"

	"surfsup-server/internal/modules/climate/views"
	"surfsup-server/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, views.IndexData{Routes: c.service.ListRoutes()}); err != nil {
		slog.ErrorContext(r.Context(), "index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	precipitation, err := c.service.PrecipitationLastYear(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "precipitation query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load precipitation")
		return
	}
	utils.WriteJSON(w, http.StatusOK, precipitation)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.service.ListStations(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "stations query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load stations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	tobs, err := c.service.MostActiveStationTemperatures(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "tobs query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature observations")
		return
	}
	utils.WriteJSON(w, http.StatusOK, tobs)
}

// handleTempStats serves both /temp/{start} and /temp/{start}/{end}. Path
// values are forwarded as-is; bad dates yield null stats, not a 400.
func (c *climateControllerImpl) handleTempStats(w http.ResponseWriter, r *http.Request) {
	start := r.PathValue("start")
	var end *string
	if v := r.PathValue("end"); v != "" {
		end = &v
	}

	summary, err := c.service.TemperatureStats(r.Context(), start, end)
	if err != nil {
		slog.ErrorContext(r.Context(), "temperature stats query failed", "start", start, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load temperature stats")
		return
	}
	utils.WriteJSON(w, http.StatusOK, summary)
}
