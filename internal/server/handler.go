// Package server exposes activity analysis over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"runcoach/internal/service"
	"runcoach/internal/xhttp"
	"runcoach/internal/xslog"
)

// Activities is the service behind the HTTP handlers
type Activities interface {
	ListActivities(ctx context.Context) ([]service.ActivitySummary, error)
	GetActivity(ctx context.Context, id string) (*service.ActivityDetail, error)
	LastScan() (time.Time, error)
}

type Handler struct {
	activities Activities
}

func NewHandler(activities Activities) *Handler {
	return &Handler{activities: activities}
}

type healthResponse struct {
	Status   string     `json:"status"`
	LastScan *time.Time `json:"lastScan,omitempty"`
}

// HandleHealth handles GET /health requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if last, err := h.activities.LastScan(); err == nil && !last.IsZero() {
		resp.LastScan = &last
	}
	xhttp.WriteOK(w, resp)
}

// HandleListActivities handles GET /activities requests.
func (h *Handler) HandleListActivities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	activities, err := h.activities.ListActivities(ctx)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if activities == nil {
		activities = []service.ActivitySummary{}
	}

	xhttp.WriteOK(w, activities)
}

// HandleGetActivity handles GET /activities/{id} requests.
func (h *Handler) HandleGetActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	detail, err := h.activities.GetActivity(ctx, id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	xslog.FromContext(ctx).DebugContext(ctx, "analyzed activity", xslog.ActivityID(id))
	xhttp.WriteOK(w, detail)
}

// writeServiceError maps service errors onto HTTP statuses. Unexpected errors
// are logged and reported without detail.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, service.ErrInvalidID):
		xhttp.WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrActivityNotFound):
		xhttp.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUndecodable):
		xhttp.WriteError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, context.Canceled):
		// client went away
		return
	default:
		xslog.FromContext(ctx).ErrorContext(ctx, "request failed", xslog.RequestPath(r), xslog.ErrorGroup(err))
		xhttp.Error(w, http.StatusInternalServerError)
	}
}
