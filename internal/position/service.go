// Package position is the registry of position names candidacies run for and
// roles members hold.
package position

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	"nhc/pkg/requestcontext"
)

const ReasonPositionExists = "PositionExists"

// Defaults are seeded at startup when missing.
var Defaults = []string{"President", "Vice President", "Treasurer"}

// Position is a named office within a zone council.
type Position struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

type Store interface {
	CreatePosition(ctx context.Context, p *Position) error
	FindPositionByName(ctx context.Context, name string) (*Position, error)
	ListPositions(ctx context.Context) ([]*Position, error)
}

// Service manages positions and answers category lookups for other contexts.
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

// Create registers a new position name.
func (s *Service) Create(ctx context.Context, name string) (*Position, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "name is required")
	}
	p := &Position{ID: uuid.New(), Name: name, CreatedAt: requestcontext.Now(ctx)}
	if err := s.store.CreatePosition(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "position already exists").WithReason(ReasonPositionExists)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create position")
	}
	s.logger.InfoContext(ctx, "position created", "position", p.Name)
	return p, nil
}

// List returns every position ordered by name.
func (s *Service) List(ctx context.Context) ([]*Position, error) {
	positions, err := s.store.ListPositions(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list positions")
	}
	return positions, nil
}

// Names returns the registered position names.
func (s *Service) Names(ctx context.Context) ([]string, error) {
	positions, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(positions))
	for _, p := range positions {
		names = append(names, p.Name)
	}
	return names, nil
}

// IsRegistered reports whether name is a registered position.
func (s *Service) IsRegistered(ctx context.Context, name string) (bool, error) {
	_, err := s.store.FindPositionByName(ctx, name)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, sentinel.ErrNotFound) {
		return false, nil
	}
	return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up position")
}

// EnsureDefaults creates any missing default position.
func (s *Service) EnsureDefaults(ctx context.Context) error {
	for _, name := range Defaults {
		ok, err := s.IsRegistered(ctx, name)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if _, err := s.Create(ctx, name); err != nil && !dErrors.HasReason(err, ReasonPositionExists) {
			return err
		}
	}
	return nil
}
