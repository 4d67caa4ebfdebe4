package httpapi

import (
	"net/http"

	"surfsup-server/internal/db"
)

func NewMux(sessions db.SessionProvider) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, sessions)
	return mux
}
