package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nhc/internal/platform/httputil"
	"nhc/internal/position"
)

type Service interface {
	Create(ctx context.Context, name string) (*position.Position, error)
	List(ctx context.Context) ([]*position.Position, error)
}

type Handler struct {
	positions Service
	logger    *slog.Logger
}

func New(positions Service, logger *slog.Logger) *Handler {
	return &Handler{positions: positions, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/positions", h.handleList)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/positions", h.handleCreate)
}

type createRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req createRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid create position request", err)
		return
	}
	p, err := h.positions.Create(ctx, req.Name)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to create position", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	positions, err := h.positions.List(ctx)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list positions", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, positions)
}
