package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nhc/internal/notification"
	"nhc/internal/platform/httputil"
)

type Service interface {
	Send(ctx context.Context, req notification.SendRequest) (*notification.Notification, error)
	List(ctx context.Context, personalID string) ([]*notification.Notification, error)
}

type Handler struct {
	notifications Service
	logger        *slog.Logger
}

func New(notifications Service, logger *slog.Logger) *Handler {
	return &Handler{notifications: notifications, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/notifications", h.handleList)
}

func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/notifications", h.handleSend)
}

func (h *Handler) handleSend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req notification.SendRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid notification request", err)
		return
	}
	n, err := h.notifications.Send(ctx, req)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to send notification", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, n)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.notifications.List(ctx, r.URL.Query().Get("personalId"))
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list notifications", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
