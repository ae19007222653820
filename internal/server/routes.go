package server

import (
	"log/slog"
	"net/http"

	"runcoach/internal/xhttp/middleware"
)

// NewRouter wires the API routes behind request id, logging and panic recovery.
func NewRouter(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET /activities", h.HandleListActivities)
	mux.HandleFunc("GET /activities/{id}", h.HandleGetActivity)

	return middleware.Chain(mux,
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Logging,
		middleware.Recovery,
	)
}
