package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nhc/internal/platform/httputil"
	"nhc/internal/zone"
)

// Service defines the zone operations the handler needs.
type Service interface {
	Create(ctx context.Context, req zone.CreateRequest) (*zone.Zone, error)
	Get(ctx context.Context, id uuid.UUID) (*zone.Zone, error)
	List(ctx context.Context) ([]*zone.Zone, error)
}

// Handler serves the zone registry.
type Handler struct {
	zones  Service
	logger *slog.Logger
}

// New creates a zone Handler.
func New(zones Service, logger *slog.Logger) *Handler {
	return &Handler{zones: zones, logger: logger}
}

// Register mounts the read routes.
func (h *Handler) Register(r chi.Router) {
	r.Get("/zones", h.handleList)
	r.Get("/zones/{zoneId}", h.handleGet)
}

// RegisterAdmin mounts the routes that draw zones.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/zones", h.handleCreate)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req zone.CreateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid create zone request", err)
		return
	}
	z, err := h.zones.Create(ctx, req)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to create zone", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, z)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamUUID(r, "zoneId")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid zone id", err)
		return
	}
	z, err := h.zones.Get(ctx, id)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to get zone", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, z)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	zones, err := h.zones.List(ctx)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list zones", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, zones)
}
