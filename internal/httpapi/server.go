package httpapi

import (
	"net/http"

	"surfsup-server/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           withMiddleware(mux, cfg.Gzip),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
