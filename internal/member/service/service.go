package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"nhc/internal/member/models"
	"nhc/internal/zone"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	"nhc/pkg/requestcontext"
)

// Reasons reported with member errors.
const (
	ReasonMemberNotFound      = "MemberNotFound"
	ReasonDuplicatePersonalID = "DuplicatePersonalID"
	ReasonInvalidCredentials  = "InvalidCredentials"
)

type Store interface {
	CreateMember(ctx context.Context, m *models.Member) error
	FindMemberByPersonalID(ctx context.Context, personalID string) (*models.Member, error)
	ListMembers(ctx context.Context, zoneID *uuid.UUID) ([]*models.Member, error)
	UpdateMember(ctx context.Context, m *models.Member) error
	ListRoleAssignments(ctx context.Context, personalID string) ([]*models.RoleAssignment, error)
	FindZoneByID(ctx context.Context, id uuid.UUID) (*zone.Zone, error)
	ListZones(ctx context.Context) ([]*zone.Zone, error)
}

// Service is the membership directory.
type Service struct {
	store      Store
	logger     *slog.Logger
	bcryptCost int
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithBcryptCost overrides the password hashing cost. Tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) {
		s.bcryptCost = cost
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default(), bcryptCost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Signup creates a member with role User and no zone.
func (s *Service) Signup(ctx context.Context, req models.SignupRequest) (*models.Profile, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to hash password")
	}

	now := requestcontext.Now(ctx)
	m := &models.Member{
		ID:           uuid.New(),
		PersonalID:   req.PersonalID,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Address:      req.Address,
		Role:         models.RoleUser,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateMember(ctx, m); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a member with this personal id already exists").
				WithReason(ReasonDuplicatePersonalID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create member")
	}

	s.logger.InfoContext(ctx, "member signed up", "personal_id", m.PersonalID)
	return &models.Profile{Member: m}, nil
}

// Login checks credentials and returns the member's profile. No session is issued.
func (s *Service) Login(ctx context.Context, req models.LoginRequest) (*models.Profile, error) {
	invalid := dErrors.New(dErrors.CodeUnauthorized, "invalid personal id or password").WithReason(ReasonInvalidCredentials)

	personalID := strings.TrimSpace(req.PersonalID)
	if personalID == "" || req.Password == "" {
		return nil, invalid
	}
	m, err := s.store.FindMemberByPersonalID(ctx, personalID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, invalid
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(m.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.WarnContext(ctx, "login rejected", "personal_id", personalID)
		return nil, invalid
	}
	return s.profile(ctx, m)
}

// Get returns one member's profile.
func (s *Service) Get(ctx context.Context, personalID string) (*models.Profile, error) {
	m, err := s.find(ctx, personalID)
	if err != nil {
		return nil, err
	}
	return s.profile(ctx, m)
}

// Update changes contact fields.
func (s *Service) Update(ctx context.Context, personalID string, req models.UpdateRequest) (*models.Profile, error) {
	m, err := s.find(ctx, personalID)
	if err != nil {
		return nil, err
	}
	if err := req.Apply(m); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}
	m.UpdatedAt = requestcontext.Now(ctx)
	if err := s.store.UpdateMember(ctx, m); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update member")
	}
	return s.profile(ctx, m)
}

// List returns members, optionally only those of one zone.
func (s *Service) List(ctx context.Context, zoneID *uuid.UUID) ([]*models.Profile, error) {
	members, err := s.store.ListMembers(ctx, zoneID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list members")
	}
	zones, err := s.store.ListZones(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list zones")
	}
	names := zone.Names(zones)

	out := make([]*models.Profile, 0, len(members))
	for _, m := range members {
		p := &models.Profile{Member: m}
		if m.ZoneID != nil {
			p.ZoneName = names[*m.ZoneID]
		}
		out = append(out, p)
	}
	return out, nil
}

// Roles returns the member's role history, newest first.
func (s *Service) Roles(ctx context.Context, personalID string) ([]*models.RoleAssignment, error) {
	if _, err := s.find(ctx, personalID); err != nil {
		return nil, err
	}
	out, err := s.store.ListRoleAssignments(ctx, personalID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list role assignments")
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, personalID string) (*models.Member, error) {
	personalID = strings.TrimSpace(personalID)
	if personalID == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "personalId is required")
	}
	m, err := s.store.FindMemberByPersonalID(ctx, personalID)
	if err != nil {
		return nil, NotFound(err)
	}
	return m, nil
}

func (s *Service) profile(ctx context.Context, m *models.Member) (*models.Profile, error) {
	p := &models.Profile{Member: m}
	if m.ZoneID == nil {
		return p, nil
	}
	z, err := s.store.FindZoneByID(ctx, *m.ZoneID)
	switch {
	case err == nil:
		p.ZoneName = z.Name
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load zone")
	}
	return p, nil
}

// NotFound translates a member lookup failure.
func NotFound(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "member not found").WithReason(ReasonMemberNotFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load member")
}
