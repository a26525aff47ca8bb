// Package request handles citizen requests and their assignment to a zone.
package request

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	memberModels "nhc/internal/member/models"
	memberService "nhc/internal/member/service"
	"nhc/internal/notification"
	"nhc/internal/zone"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	"nhc/pkg/requestcontext"
)

const ReasonRequestNotFound = "RequestNotFound"

type Store interface {
	CreateRequest(ctx context.Context, r *Request) error
	FindRequestByID(ctx context.Context, id uuid.UUID) (*Request, error)
	UpdateRequest(ctx context.Context, r *Request) error
	DeleteRequest(ctx context.Context, id uuid.UUID) error
	ListRequests(ctx context.Context, status Status) ([]*Request, error)
	FindMemberByPersonalID(ctx context.Context, personalID string) (*memberModels.Member, error)
	SetMemberZone(ctx context.Context, personalID string, zoneID uuid.UUID) error
	FindZoneByID(ctx context.Context, id uuid.UUID) (*zone.Zone, error)
}

// Tx runs fn as one unit of work.
type Tx interface {
	RunInTx(ctx context.Context, fn func(store Store) error) error
}

type Notifier interface {
	Notify(ctx context.Context, personalID, message string)
}

type Service struct {
	store    Store
	tx       Tx
	notifier Notifier
	logger   *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func NewService(store Store, tx Tx, opts ...Option) *Service {
	s := &Service{store: store, tx: tx, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// File records a pending request from an existing member.
func (s *Service) File(ctx context.Context, req FileRequest) (*Request, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	if _, err := s.store.FindMemberByPersonalID(ctx, req.PersonalID); err != nil {
		return nil, memberService.NotFound(err)
	}

	now := requestcontext.Now(ctx)
	r := &Request{
		ID:          uuid.New(),
		PersonalID:  req.PersonalID,
		Location:    req.Location,
		Description: req.Description,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateRequest(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create request")
	}
	return r, nil
}

// List returns requests newest first, optionally filtered by status.
func (s *Service) List(ctx context.Context, status string) ([]*Request, error) {
	st := Status(strings.TrimSpace(status))
	if st != "" && !st.IsValid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "status must be Pending or Created")
	}
	out, err := s.store.ListRequests(ctx, st)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list requests")
	}
	return out, nil
}

// Assign places the requesting member in zoneID and marks the request Created.
// The member is notified once the change is committed.
func (s *Service) Assign(ctx context.Context, id, zoneID uuid.UUID) (*Request, error) {
	var (
		out      *Request
		zoneName string
	)
	err := s.tx.RunInTx(ctx, func(store Store) error {
		z, err := store.FindZoneByID(ctx, zoneID)
		if err != nil {
			return zone.NotFound(err)
		}
		r, err := store.FindRequestByID(ctx, id)
		if err != nil {
			return notFound(err)
		}
		if err := store.SetMemberZone(ctx, r.PersonalID, z.ID); err != nil {
			return memberService.NotFound(err)
		}
		r.Status = StatusCreated
		r.AssignedZoneID = &z.ID
		r.UpdatedAt = requestcontext.Now(ctx)
		if err := store.UpdateRequest(ctx, r); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update request")
		}
		out, zoneName = r, z.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "request assigned",
		"request_id", requestcontext.RequestID(ctx),
		"citizen_request_id", out.ID,
		"personal_id", out.PersonalID,
		"zone_id", zoneID,
	)
	if s.notifier != nil {
		s.notifier.Notify(ctx, out.PersonalID, notification.RequestApproved(zoneName))
	}
	return out, nil
}

// Delete removes a request.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteRequest(ctx, id); err != nil {
		return notFound(err)
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "request not found").WithReason(ReasonRequestNotFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load request")
}
