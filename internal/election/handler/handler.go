package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nhc/internal/election/models"
	"nhc/internal/platform/httputil"
)

// Service defines the balloting, closing and results operations exposed over HTTP.
type Service interface {
	Cast(ctx context.Context, req models.CastRequest) (*models.Vote, error)
	Close(ctx context.Context, zoneID uuid.UUID) (*models.CloseOutcome, error)
	Stats(ctx context.Context, electionID, zoneID *uuid.UUID) (*models.Stats, error)
	Results(ctx context.Context, zoneID uuid.UUID) ([]*models.ElectionResults, error)
	Votes(ctx context.Context, electionID uuid.UUID) ([]*models.VoteRecord, error)
	CandidacyVotes(ctx context.Context, candidacyID uuid.UUID) ([]*models.VoteRecord, error)
}

type Handler struct {
	elections Service
	logger    *slog.Logger
}

func New(elections Service, logger *slog.Logger) *Handler {
	return &Handler{elections: elections, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/votes", h.handleCast)
	r.Get("/election-stats", h.handleStats)
	r.Get("/election-results/{zoneId}", h.handleResults)
}

// RegisterAdmin mounts closing and the ballot audit trail.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Delete("/election-window/{zoneId}", h.handleClose)
	r.Get("/votes", h.handleVotes)
	r.Get("/candidacies/{id}/votes", h.handleCandidacyVotes)
}

func (h *Handler) handleCast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.CastRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid vote request", err)
		return
	}
	v, err := h.elections.Cast(ctx, req)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "vote rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, v)
}

func (h *Handler) handleClose(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	zoneID, err := httputil.URLParamUUID(r, "zoneId")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid zone id", err)
		return
	}
	out, err := h.elections.Close(ctx, zoneID)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to close election", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var electionID, zoneID *uuid.UUID
	if id, ok, err := httputil.QueryUUID(r, "electionId"); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid election id", err)
		return
	} else if ok {
		electionID = &id
	}
	if id, ok, err := httputil.QueryUUID(r, "zoneId"); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid zone id", err)
		return
	} else if ok {
		zoneID = &id
	}
	out, err := h.elections.Stats(ctx, electionID, zoneID)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to compute election stats", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleResults(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	zoneID, err := httputil.URLParamUUID(r, "zoneId")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid zone id", err)
		return
	}
	out, err := h.elections.Results(ctx, zoneID)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to load election results", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleVotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	electionID, err := httputil.RequireQueryUUID(r, "electionId")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid election id", err)
		return
	}
	out, err := h.elections.Votes(ctx, electionID)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list votes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleCandidacyVotes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamUUID(r, "id")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid candidacy id", err)
		return
	}
	out, err := h.elections.CandidacyVotes(ctx, id)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list candidacy votes", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
