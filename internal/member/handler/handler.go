package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nhc/internal/member/models"
	"nhc/internal/platform/httputil"
)

// Service defines the membership operations exposed over HTTP.
type Service interface {
	Signup(ctx context.Context, req models.SignupRequest) (*models.Profile, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.Profile, error)
	Get(ctx context.Context, personalID string) (*models.Profile, error)
	Update(ctx context.Context, personalID string, req models.UpdateRequest) (*models.Profile, error)
	List(ctx context.Context, zoneID *uuid.UUID) ([]*models.Profile, error)
	Roles(ctx context.Context, personalID string) ([]*models.RoleAssignment, error)
}

type Handler struct {
	members Service
	logger  *slog.Logger
}

func New(members Service, logger *slog.Logger) *Handler {
	return &Handler{members: members, logger: logger}
}

// Register mounts the citizen-facing routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/members", h.handleSignup)
	r.Post("/login", h.handleLogin)
	r.Get("/members/{personalId}", h.handleGet)
	r.Put("/members/{personalId}", h.handleUpdate)
	r.Get("/members/{personalId}/roles", h.handleRoles)
}

// RegisterAdmin mounts the directory listing.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/members", h.handleList)
}

func (h *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SignupRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid signup request", err)
		return
	}
	p, err := h.members.Signup(ctx, req)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "signup failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.LoginRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid login request", err)
		return
	}
	p, err := h.members.Login(ctx, req)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, err := h.members.Get(ctx, chi.URLParam(r, "personalId"))
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to get member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.UpdateRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid update member request", err)
		return
	}
	p, err := h.members.Update(ctx, chi.URLParam(r, "personalId"), req)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to update member", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	zoneID, ok, err := httputil.QueryUUID(r, "zoneId")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid zone id", err)
		return
	}
	var filter *uuid.UUID
	if ok {
		filter = &zoneID
	}
	out, err := h.members.List(ctx, filter)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list members", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleRoles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	out, err := h.members.Roles(ctx, chi.URLParam(r, "personalId"))
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list roles", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
