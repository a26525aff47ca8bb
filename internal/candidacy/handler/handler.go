package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"nhc/internal/candidacy/models"
	"nhc/internal/platform/httputil"
)

// Service defines the candidacy ledger operations exposed over HTTP.
type Service interface {
	Submit(ctx context.Context, req models.SubmitRequest) (*models.Candidacy, error)
	Support(ctx context.Context, candidacyID uuid.UUID, supporterPersonalID string) (*models.SupportResult, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.View, error)
	Eligibility(ctx context.Context, zoneID uuid.UUID) (*models.EligibilityReport, error)
	Summary(ctx context.Context, zoneID uuid.UUID) (*models.Summary, error)
	Supports(ctx context.Context, zoneID uuid.UUID) ([]*models.SupportRecord, error)
	CandidacySupports(ctx context.Context, candidacyID uuid.UUID) (*models.CandidacySupports, error)
	Stats(ctx context.Context, zoneID uuid.UUID) (*models.SupportStats, error)
}

type Handler struct {
	candidacies Service
	logger      *slog.Logger
}

func New(candidacies Service, logger *slog.Logger) *Handler {
	return &Handler{candidacies: candidacies, logger: logger}
}

// Register mounts the member-facing routes: nominating, supporting and the
// ballot listing.
func (h *Handler) Register(r chi.Router) {
	r.Post("/candidacies", h.handleSubmit)
	r.Post("/candidacies/{id}/support", h.handleSupport)
	r.Get("/candidacies", h.handleList)
}

// RegisterAdmin mounts the reports.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/candidacies/eligibility", h.handleEligibility)
	r.Get("/candidacies/summary", h.handleSummary)
	r.Get("/candidacies/{id}/supports", h.handleCandidacySupports)
	r.Get("/supports", h.handleSupports)
	r.Get("/support-stats", h.handleStats)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req models.SubmitRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid candidacy request", err)
		return
	}
	c, err := h.candidacies.Submit(ctx, req)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "candidacy rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleSupport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamUUID(r, "id")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid candidacy id", err)
		return
	}
	var req models.SupportRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid support request", err)
		return
	}
	res, err := h.candidacies.Support(ctx, id, strings.TrimSpace(req.SupporterPersonalID))
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "support rejected", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	zoneID, err := httputil.RequireQueryUUID(r, "zoneId")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid candidacy query", err)
		return
	}
	eligible, _, err := httputil.QueryBool(r, "eligible")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid candidacy query", err)
		return
	}
	out, err := h.candidacies.List(ctx, models.ListFilter{
		ZoneID:              zoneID,
		EligibleOnly:        eligible,
		SupporterPersonalID: strings.TrimSpace(r.URL.Query().Get("supporterPersonalId")),
	})
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list candidacies", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleEligibility(w http.ResponseWriter, r *http.Request) {
	h.zoneQuery(w, r, "failed to build eligibility report", func(ctx context.Context, zoneID uuid.UUID) (any, error) {
		return h.candidacies.Eligibility(ctx, zoneID)
	})
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	h.zoneQuery(w, r, "failed to summarise candidacies", func(ctx context.Context, zoneID uuid.UUID) (any, error) {
		return h.candidacies.Summary(ctx, zoneID)
	})
}

func (h *Handler) handleSupports(w http.ResponseWriter, r *http.Request) {
	h.zoneQuery(w, r, "failed to list supports", func(ctx context.Context, zoneID uuid.UUID) (any, error) {
		return h.candidacies.Supports(ctx, zoneID)
	})
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	h.zoneQuery(w, r, "failed to compute support stats", func(ctx context.Context, zoneID uuid.UUID) (any, error) {
		return h.candidacies.Stats(ctx, zoneID)
	})
}

func (h *Handler) handleCandidacySupports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := httputil.URLParamUUID(r, "id")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid candidacy id", err)
		return
	}
	out, err := h.candidacies.CandidacySupports(ctx, id)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "failed to list candidacy supports", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// zoneQuery serves the read-only reports keyed by ?zoneId=.
func (h *Handler) zoneQuery(w http.ResponseWriter, r *http.Request, failMsg string, fn func(context.Context, uuid.UUID) (any, error)) {
	ctx := r.Context()
	zoneID, err := httputil.RequireQueryUUID(r, "zoneId")
	if err != nil {
		httputil.Fail(ctx, h.logger, w, "invalid zone id", err)
		return
	}
	out, err := fn(ctx, zoneID)
	if err != nil {
		httputil.Fail(ctx, h.logger, w, failMsg, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}
