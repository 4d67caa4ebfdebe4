package climate

import (
	"log/slog"
	"net/http"

	"surfsup-server/internal/db"
	"surfsup-server/internal/modules/climate/controller"
	"surfsup-server/internal/modules/climate/repository"
	"surfsup-server/internal/modules/climate/service"
)

func RegisterFeature(mux *http.ServeMux, sessions db.SessionProvider, logger *slog.Logger) {
	climateRepository := repository.NewRepository()
	climateService := service.NewService(sessions, climateRepository, logger)
	climateController := controller.NewClimateController(climateService)
	climateController.RegisterRoutes(mux)
}
