// Package zone is the registry of NHC zones every other context refers to by id.
package zone

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	"nhc/pkg/requestcontext"
)

// Reasons reported with zone errors.
const (
	ReasonZoneNotFound = "ZoneNotFound"
	ReasonZoneExists   = "ZoneExists"
)

// Store persists zones.
type Store interface {
	CreateZone(ctx context.Context, z *Zone) error
	FindZoneByID(ctx context.Context, id uuid.UUID) (*Zone, error)
	ListZones(ctx context.Context) ([]*Zone, error)
}

// Service manages the zone registry.
type Service struct {
	store  Store
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func NewService(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates and stores a new zone. Names are unique, case-insensitively.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Zone, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	z := &Zone{
		ID:        uuid.New(),
		Name:      req.Name,
		Boundary:  req.Boundary,
		CreatedAt: requestcontext.Now(ctx),
	}
	if err := s.store.CreateZone(ctx, z); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "zone name already exists").WithReason(ReasonZoneExists)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create zone")
	}

	s.logger.InfoContext(ctx, "zone created",
		"zone_id", z.ID,
		"name", z.Name,
		"points", len(z.Boundary),
	)
	return z, nil
}

// Get returns one zone.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Zone, error) {
	z, err := s.store.FindZoneByID(ctx, id)
	if err != nil {
		return nil, NotFound(err)
	}
	return z, nil
}

// List returns every zone ordered by name.
func (s *Service) List(ctx context.Context) ([]*Zone, error) {
	zones, err := s.store.ListZones(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list zones")
	}
	return zones, nil
}

// NotFound translates a zone lookup failure into the domain error other contexts report.
func NotFound(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "zone not found").WithReason(ReasonZoneNotFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load zone")
}

// Names maps zone ids to display names for read models.
func Names(zones []*Zone) map[uuid.UUID]string {
	out := make(map[uuid.UUID]string, len(zones))
	for _, z := range zones {
		out[z.ID] = z.Name
	}
	return out
}

