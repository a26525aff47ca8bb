package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nhc/internal/platform/httputil"
	"nhc/internal/request"
	dErrors "nhc/pkg/domain-errors"
)

type Service interface {
	File(ctx context.Context, req request.FileRequest) (*request.Request, error)
	List(ctx context.Context, status string) ([]*request.Request, error)
	Assign(ctx context.Context, id, zoneID uuid.UUID) (*request.Request, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	requests Service
	logger   *slog.Logger
}

func New(requests Service, logger *slog.Logger) *Handler {
	return &Handler{requests: requests, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/requests", h.handleFile)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/requests", h.handleList)
	r.Put("/requests/{id}/assign", h.handleAssign)
	r.Delete("/requests/{id}", h.handleDelete)
}

type assignRequest struct {
	ZoneID uuid.UUID `json:"zoneId"`
}

func (h *Handler) handleFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req request.FileRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid file request", err)
		return
	}
	out, err := h.requests.File(ctx, req)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to file request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, out)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.requests.List(ctx, r.URL.Query().Get("status"))
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list requests", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleAssign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamUUID(r, "id")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid request id", err)
		return
	}
	var req assignRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid assign request", err)
		return
	}
	if req.ZoneID == uuid.Nil {
		httputil.Fail(ctx, h.logger, w, "invalid assign request", badRequest("zoneId is required"))
		return
	}
	out, err := h.requests.Assign(ctx, id, req.ZoneID)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to assign request", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamUUID(r, "id")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid request id", err)
		return
	}
	if err := h.requests.Delete(ctx, id); err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to delete request", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func badRequest(msg string) error {
	return dErrors.New(dErrors.CodeBadRequest, msg)
}
