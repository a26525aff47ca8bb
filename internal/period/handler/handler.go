package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nhc/internal/period/models"
	"nhc/internal/platform/httputil"
)

// Service defines the window operations exposed over HTTP.
type Service interface {
	Schedule(ctx context.Context, kind models.Kind, req models.ScheduleRequest) (*models.View, error)
	End(ctx context.Context, zoneID uuid.UUID, kind models.Kind) (*models.View, error)
	Active(ctx context.Context, kind models.Kind) ([]*models.View, error)
	Latest(ctx context.Context, zoneID uuid.UUID, kind models.Kind) (*models.View, error)
}

type Handler struct {
	periods Service
	logger  *slog.Logger
}

func New(periods Service, logger *slog.Logger) *Handler {
	return &Handler{periods: periods, logger: logger}
}

// Register mounts the window queries.
func (h *Handler) Register(r chi.Router) {
	r.Get("/nominations", h.handleActive(models.KindNomination))
	r.Get("/elections", h.handleActive(models.KindElection))
	r.Get("/zones/{zoneId}/nomination", h.handleLatest(models.KindNomination))
	r.Get("/zones/{zoneId}/election", h.handleLatest(models.KindElection))
}

// RegisterAdmin mounts window scheduling. Ending an election runs the close
// engine and is served by the election handler.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Put("/nomination-window", h.handleSchedule(models.KindNomination))
	r.Delete("/nomination-window/{zoneId}", h.handleEnd(models.KindNomination))
	r.Put("/election-window", h.handleSchedule(models.KindElection))
}

func (h *Handler) handleSchedule(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req models.ScheduleRequest
		if err := httputil.DecodeJSON(r, &req); err != nil {
			httputil.Fail(ctx, h.logger, w, "invalid schedule request", err)
			return
		}
		view, err := h.periods.Schedule(ctx, kind, req)
		if err != nil {
			httputil.Fail(ctx, h.logger, w, "failed to schedule "+string(kind), err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, view)
	}
}

func (h *Handler) handleEnd(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		zoneID, err := httputil.URLParamUUID(r, "zoneId")
		if err != nil {
			httputil.Fail(ctx, h.logger, w, "invalid zone id", err)
			return
		}
		view, err := h.periods.End(ctx, zoneID, kind)
		if err != nil {
			httputil.Fail(ctx, h.logger, w, "failed to end "+string(kind), err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, view)
	}
}

func (h *Handler) handleActive(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		views, err := h.periods.Active(ctx, kind)
		if err != nil {
			httputil.Fail(ctx, h.logger, w, "failed to list active periods", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, views)
	}
}

func (h *Handler) handleLatest(kind models.Kind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		zoneID, err := httputil.URLParamUUID(r, "zoneId")
		if err != nil {
			httputil.Fail(ctx, h.logger, w, "invalid zone id", err)
			return
		}
		view, err := h.periods.Latest(ctx, zoneID, kind)
		if err != nil {
			httputil.Fail(ctx, h.logger, w, "failed to get latest period", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, view)
	}
}
