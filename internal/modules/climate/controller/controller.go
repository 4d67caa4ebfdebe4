package controller

import (
	"context"
	"net/http"

	"surfsup-server/internal/modules/climate/types"
)

// ClimateService is what the handlers need from the query service.
type ClimateService interface {
	ListRoutes() []string
	PrecipitationLastYear(ctx context.Context) ([]types.Precipitation, error)
	ListStations(ctx context.Context) ([]string, error)
	MostActiveStationTemperatures(ctx context.Context) ([]float64, error)
	TemperatureStats(ctx context.Context, start string, end *string) (types.TemperatureSummary, error)
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	service ClimateService
}

func NewClimateController(service ClimateService) ClimateController {
	return &climateControllerImpl{service: service}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET /api/v1.0/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET /api/v1.0/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1.0/tobs", c.handleTobs)
	mux.HandleFunc("GET /api/v1.0/temp/{start}", c.handleTempStats)
	mux.HandleFunc("GET /api/v1.0/temp/{start}/{end}", c.handleTempStats)
}
