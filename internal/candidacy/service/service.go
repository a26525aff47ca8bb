package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nhc/internal/candidacy/metrics"
	"nhc/internal/candidacy/models"
	memberModels "nhc/internal/member/models"
	memberService "nhc/internal/member/service"
	"nhc/internal/notification"
	periodModels "nhc/internal/period/models"
	"nhc/internal/zone"
	"nhc/pkg/calendar"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	"nhc/pkg/requestcontext"
)

// Store is everything the candidacy ledger reads and writes.
type Store interface {
	FindZoneByID(ctx context.Context, id uuid.UUID) (*zone.Zone, error)
	FindMemberByPersonalID(ctx context.Context, personalID string) (*memberModels.Member, error)
	ListMembersByPersonalIDs(ctx context.Context, personalIDs []string) ([]*memberModels.Member, error)
	FindLatestPeriod(ctx context.Context, zoneID uuid.UUID, kind periodModels.Kind) (*periodModels.Period, error)
	FindPeriodByID(ctx context.Context, id uuid.UUID) (*periodModels.Period, error)

	CreateCandidacy(ctx context.Context, c *models.Candidacy) error
	FindCandidacyByID(ctx context.Context, id uuid.UUID) (*models.Candidacy, error)
	UpdateCandidacy(ctx context.Context, c *models.Candidacy) error
	HasCandidacy(ctx context.Context, personalID string, periodID uuid.UUID) (bool, error)
	ListCandidaciesByPeriod(ctx context.Context, periodID uuid.UUID) ([]*models.Candidacy, error)
	ListCandidaciesByZone(ctx context.Context, zoneID uuid.UUID) ([]*models.Candidacy, error)

	CreateSupport(ctx context.Context, s *models.Support) error
	CountSupports(ctx context.Context, candidacyID uuid.UUID) (int, error)
	HasSupport(ctx context.Context, candidacyID uuid.UUID, supporterPersonalID string) (bool, error)
	HasSupportInCategory(ctx context.Context, periodID uuid.UUID, category, supporterPersonalID string) (bool, error)
	ListSupportsByZone(ctx context.Context, zoneID uuid.UUID) ([]*models.Support, error)
	ListSupportsByCandidacy(ctx context.Context, candidacyID uuid.UUID) ([]*models.Support, error)
	ListSupportsBySupporter(ctx context.Context, supporterPersonalID string) ([]*models.Support, error)

	CountVotesByCandidacy(ctx context.Context, electionID uuid.UUID) (map[uuid.UUID]int, error)
}

// Tx runs fn as one unit of work.
type Tx interface {
	RunInTx(ctx context.Context, fn func(store Store) error) error
}

// PositionRegistry answers whether a category is a registered position.
type PositionRegistry interface {
	IsRegistered(ctx context.Context, name string) (bool, error)
}

type Notifier interface {
	Notify(ctx context.Context, personalID, message string)
}

// Service is the candidacy and support ledger.
type Service struct {
	store     Store
	tx        Tx
	positions PositionRegistry
	notifier  Notifier
	metrics   *metrics.Metrics
	logger    *slog.Logger
	location  *time.Location
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		s.notifier = n
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.location = loc
	}
}

func New(store Store, tx Tx, positions PositionRegistry, opts ...Option) *Service {
	s := &Service{
		store:     store,
		tx:        tx,
		positions: positions,
		logger:    slog.Default(),
		location:  time.UTC,
		tracer:    otel.Tracer("nhc/candidacy"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit nominates a member in the zone's current nomination period.
func (s *Service) Submit(ctx context.Context, req models.SubmitRequest) (*models.Candidacy, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	ok, err := s.positions.IsRegistered(ctx, req.Category)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dErrors.New(dErrors.CodeValidation, "Invalid category").WithReason(models.ReasonInvalidCategory)
	}

	now := requestcontext.Now(ctx)
	today := calendar.On(now, s.location)

	var (
		c      *models.Candidacy
		period *periodModels.Period
	)
	err = s.tx.RunInTx(ctx, func(store Store) error {
		if _, err := store.FindZoneByID(ctx, req.ZoneID); err != nil {
			return zone.NotFound(err)
		}
		if _, err := store.FindMemberByPersonalID(ctx, req.PersonalID); err != nil {
			return memberService.NotFound(err)
		}

		var err error
		period, err = latestNomination(ctx, store, req.ZoneID)
		if err != nil {
			return err
		}
		if err := period.CheckOpen(today); err != nil {
			return err
		}

		exists, err := store.HasCandidacy(ctx, req.PersonalID, period.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check existing candidacy")
		}
		if exists {
			return duplicateCandidacy()
		}

		c = models.NewCandidacy(req.PersonalID, req.ZoneID, period.ID, req.Category, now)
		if err := store.CreateCandidacy(ctx, c); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return duplicateCandidacy()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create candidacy")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "candidacy submitted",
		"request_id", requestcontext.RequestID(ctx),
		"candidacy_id", c.ID,
		"personal_id", c.PersonalID,
		"zone_id", c.ZoneID,
		"category", c.Category,
	)
	s.metrics.IncrementCandidacySubmitted()
	if s.notifier != nil {
		s.notifier.Notify(ctx, c.PersonalID, notification.CandidacyReceived(c.Category, period.EndDate.String()))
	}
	return c, nil
}

// Support records an endorsement, recounts the candidacy's supports from the
// ledger and flips eligibility once the threshold is reached.
func (s *Service) Support(ctx context.Context, candidacyID uuid.UUID, supporterPersonalID string) (*models.SupportResult, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "candidacy.support",
		trace.WithAttributes(
			attribute.String("candidacy.id", candidacyID.String()),
		),
	)
	defer span.End()

	result, becameEligible, err := s.support(ctx, candidacyID, supporterPersonalID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, dErrors.ReasonOf(err))
		s.metrics.IncrementSupportRejected(dErrors.ReasonOf(err))
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("support.count", result.SupportCount),
		attribute.Bool("candidacy.eligible", result.IsEligible),
	)
	s.metrics.ObserveSupport(start, becameEligible)
	s.logger.InfoContext(ctx, "support recorded",
		"request_id", requestcontext.RequestID(ctx),
		"candidacy_id", candidacyID,
		"supporter_personal_id", supporterPersonalID,
		"support_count", result.SupportCount,
		"became_eligible", becameEligible,
	)
	return result, nil
}

func (s *Service) support(ctx context.Context, candidacyID uuid.UUID, supporter string) (*models.SupportResult, bool, error) {
	if supporter == "" {
		return nil, false, dErrors.New(dErrors.CodeValidation, "supporterPersonalId is required")
	}
	now := requestcontext.Now(ctx)
	today := calendar.On(now, s.location)

	var (
		result         *models.SupportResult
		becameEligible bool
	)
	err := s.tx.RunInTx(ctx, func(store Store) error {
		c, err := store.FindCandidacyByID(ctx, candidacyID)
		if err != nil {
			return candidacyNotFound(err)
		}
		if c.PersonalID == supporter {
			return dErrors.New(dErrors.CodeBadRequest, "You cannot support yourself").WithReason(models.ReasonSelfSupportForbidden)
		}

		period, err := store.FindPeriodByID(ctx, c.NominationPeriodID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load nomination period")
		}
		if err := period.CheckOpen(today); err != nil {
			return err
		}

		if _, err := store.FindMemberByPersonalID(ctx, supporter); err != nil {
			return memberService.NotFound(err)
		}

		taken, err := store.HasSupportInCategory(ctx, c.NominationPeriodID, c.Category, supporter)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check category support")
		}
		if taken {
			// The same-candidacy case also lands here; report it as the narrower duplicate.
			dup, err := store.HasSupport(ctx, c.ID, supporter)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check support")
			}
			if dup {
				return duplicateSupport()
			}
			return categorySupported()
		}

		sup := &models.Support{
			ID:                  uuid.New(),
			CandidacyID:         c.ID,
			SupporterPersonalID: supporter,
			ZoneID:              c.ZoneID,
			NominationPeriodID:  c.NominationPeriodID,
			Category:            c.Category,
			PeriodEndDate:       period.EndDate,
			CreatedAt:           now,
		}
		if err := store.CreateSupport(ctx, sup); err != nil {
			switch {
			case errors.Is(err, models.ErrCategorySupported):
				return categorySupported()
			case errors.Is(err, sentinel.ErrAlreadyUsed):
				return duplicateSupport()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record support")
		}

		count, err := store.CountSupports(ctx, c.ID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to recount supports")
		}
		becameEligible = c.ApplySupportCount(count)
		if err := store.UpdateCandidacy(ctx, c); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update support count")
		}
		result = &models.SupportResult{CandidacyID: c.ID, SupportCount: c.SupportCount, IsEligible: c.IsEligible}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, becameEligible, nil
}

func latestNomination(ctx context.Context, store Store, zoneID uuid.UUID) (*periodModels.Period, error) {
	p, err := store.FindLatestPeriod(ctx, zoneID, periodModels.KindNomination)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, periodModels.NotScheduled(periodModels.KindNomination)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load nomination period")
	}
	return p, nil
}

func candidacyNotFound(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "Candidacy not found").WithReason(models.ReasonCandidacyNotFound)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidacy")
}

func duplicateCandidacy() error {
	return dErrors.New(dErrors.CodeConflict, "You have already nominated for this nomination period").
		WithReason(models.ReasonDuplicateCandidacy)
}

func duplicateSupport() error {
	return dErrors.New(dErrors.CodeConflict, "You already supported this candidacy").
		WithReason(models.ReasonDuplicateSupport)
}

func categorySupported() error {
	return dErrors.New(dErrors.CodeConflict, "You have already supported a candidate in this category for the current nomination period").
		WithReason(models.ReasonCategoryAlreadySupported)
}
