package httpapi

import (
	"log/slog"
	"net/http"

	"surfsup-server/internal/db"
	"surfsup-server/internal/utils"
)

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	sessions db.SessionProvider
}

func NewHealthchecker(sessions db.SessionProvider) healthchecker {
	return &healthcheckerImpl{sessions: sessions}
}

func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	err := h.sessions.WithSession(r.Context(), func(q db.DBTX) error {
		var ok int
		return q.QueryRowContext(r.Context(), `SELECT 1`).Scan(&ok)
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func registerHealthcheck(mux *http.ServeMux, sessions db.SessionProvider) {
	healthchecker := NewHealthchecker(sessions)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}

