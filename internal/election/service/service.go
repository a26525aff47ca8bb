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
	"golang.org/x/sync/singleflight"

	candidacyModels "nhc/internal/candidacy/models"
	"nhc/internal/election/metrics"
	"nhc/internal/election/models"
	memberModels "nhc/internal/member/models"
	memberService "nhc/internal/member/service"
	periodModels "nhc/internal/period/models"
	"nhc/internal/zone"
	"nhc/pkg/calendar"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	"nhc/pkg/requestcontext"
)

// Store is everything balloting and the close engine read and write.
type Store interface {
	FindZoneByID(ctx context.Context, id uuid.UUID) (*zone.Zone, error)
	FindPeriodByID(ctx context.Context, id uuid.UUID) (*periodModels.Period, error)
	FindLatestPeriod(ctx context.Context, zoneID uuid.UUID, kind periodModels.Kind) (*periodModels.Period, error)
	UpdatePeriod(ctx context.Context, p *periodModels.Period) error

	FindCandidacyByID(ctx context.Context, id uuid.UUID) (*candidacyModels.Candidacy, error)
	ListCandidaciesByPeriod(ctx context.Context, periodID uuid.UUID) ([]*candidacyModels.Candidacy, error)

	FindMemberByPersonalID(ctx context.Context, personalID string) (*memberModels.Member, error)
	ListMembers(ctx context.Context, zoneID *uuid.UUID) ([]*memberModels.Member, error)
	ListMembersByPersonalIDs(ctx context.Context, personalIDs []string) ([]*memberModels.Member, error)
	UpdateMemberRole(ctx context.Context, personalID, role string, at time.Time) error
	CreateRoleAssignment(ctx context.Context, a *memberModels.RoleAssignment) error
	RevokeRoleAssignments(ctx context.Context, zoneID uuid.UUID, roles []string, at time.Time) ([]*memberModels.RoleAssignment, error)

	CreateVote(ctx context.Context, v *models.Vote) error
	HasVoted(ctx context.Context, electionID uuid.UUID, voterPersonalID string) (bool, error)
	ListVotesByElection(ctx context.Context, electionID uuid.UUID) ([]*models.Vote, error)
	ListVotesByCandidacy(ctx context.Context, candidacyID uuid.UUID) ([]*models.Vote, error)
	CountVotesByCandidacy(ctx context.Context, electionID uuid.UUID) (map[uuid.UUID]int, error)

	CreateResult(ctx context.Context, r *models.Result) error
	ListResultsByElection(ctx context.Context, electionID uuid.UUID) ([]*models.Result, error)
	ListResultsByZone(ctx context.Context, zoneID uuid.UUID) ([]*models.Result, error)

	// Savepoint runs fn so that its writes are undone, alone, when it fails.
	Savepoint(ctx context.Context, name string, fn func() error) error
}

// Tx runs fn as one unit of work.
type Tx interface {
	RunInTx(ctx context.Context, fn func(store Store) error) error
}

// PositionRegistry lists the role names the close engine resets.
type PositionRegistry interface {
	Names(ctx context.Context) ([]string, error)
}

type Notifier interface {
	Notify(ctx context.Context, personalID, message string)
}

// ResultsCache holds each zone's frozen results. Set stores results only
// while the zone's generation still equals gen; Invalidate advances it.
type ResultsCache interface {
	Get(ctx context.Context, zoneID uuid.UUID) ([]*models.ElectionResults, bool, error)
	Generation(ctx context.Context, zoneID uuid.UUID) (int64, error)
	Set(ctx context.Context, zoneID uuid.UUID, gen int64, results []*models.ElectionResults) error
	Invalidate(ctx context.Context, zoneID uuid.UUID) error
}

// Service is the vote ledger and the results and role-assignment engine.
type Service struct {
	store     Store
	tx        Tx
	positions PositionRegistry
	notifier  Notifier
	cache     ResultsCache
	metrics   *metrics.Metrics
	logger    *slog.Logger
	location  *time.Location
	policy    models.WinnerPolicy
	tracer    trace.Tracer
	loads     singleflight.Group
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

func WithResultsCache(c ResultsCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.location = loc
	}
}

func WithWinnerPolicy(p models.WinnerPolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

func New(store Store, tx Tx, positions PositionRegistry, opts ...Option) *Service {
	s := &Service{
		store:     store,
		tx:        tx,
		positions: positions,
		cache:     nopCache{},
		logger:    slog.Default(),
		location:  time.UTC,
		policy:    models.PolicyAllEligible,
		tracer:    otel.Tracer("nhc/election"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cast records a ballot.
func (s *Service) Cast(ctx context.Context, req models.CastRequest) (*models.Vote, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	ctx, span := s.tracer.Start(ctx, "election.cast",
		trace.WithAttributes(
			attribute.String("election.id", req.ElectionID.String()),
			attribute.String("candidacy.id", req.CandidacyID.String()),
		),
	)
	defer span.End()

	v, err := s.cast(ctx, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, dErrors.ReasonOf(err))
		s.metrics.IncrementVoteRejected(dErrors.ReasonOf(err))
		return nil, err
	}

	s.metrics.IncrementVoteCast()
	s.logger.InfoContext(ctx, "vote cast",
		"request_id", requestcontext.RequestID(ctx),
		"vote_id", v.ID,
		"election_id", v.ElectionID,
		"candidacy_id", v.CandidacyID,
	)
	return v, nil
}

func (s *Service) cast(ctx context.Context, req models.CastRequest) (*models.Vote, error) {
	now := requestcontext.Now(ctx)
	today := calendar.On(now, s.location)

	var vote *models.Vote
	err := s.tx.RunInTx(ctx, func(store Store) error {
		election, err := findElection(ctx, store, req.ElectionID)
		if err != nil {
			return err
		}
		c, err := store.FindCandidacyByID(ctx, req.CandidacyID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "Candidacy not found").WithReason(candidacyModels.ReasonCandidacyNotFound)
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidacy")
		}
		if c.PersonalID == req.VoterPersonalID {
			return dErrors.New(dErrors.CodeBadRequest, "You cannot vote for yourself").WithReason(models.ReasonSelfVoteForbidden)
		}
		if err := election.CheckOpen(today); err != nil {
			return err
		}
		if err := checkOnBallot(ctx, store, election, c); err != nil {
			return err
		}
		if _, err := store.FindMemberByPersonalID(ctx, req.VoterPersonalID); err != nil {
			return memberService.NotFound(err)
		}

		voted, err := store.HasVoted(ctx, election.ID, req.VoterPersonalID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check ballot")
		}
		if voted {
			return alreadyVoted()
		}

		vote = &models.Vote{
			ID:              uuid.New(),
			ElectionID:      election.ID,
			ZoneID:          election.ZoneID,
			VoterPersonalID: req.VoterPersonalID,
			CandidacyID:     c.ID,
			PeriodEndDate:   election.EndDate,
			CreatedAt:       now,
		}
		if err := store.CreateVote(ctx, vote); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				return alreadyVoted()
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record vote")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return vote, nil
}

// checkOnBallot accepts only eligible candidacies of the zone's latest
// nomination period.
func checkOnBallot(ctx context.Context, store Store, election *periodModels.Period, c *candidacyModels.Candidacy) error {
	notEligible := dErrors.New(dErrors.CodeBadRequest, "Candidacy is not on this election's ballot").
		WithReason(models.ReasonCandidacyNotEligible)
	if !c.IsEligible || c.ZoneID != election.ZoneID {
		return notEligible
	}
	nomination, err := store.FindLatestPeriod(ctx, election.ZoneID, periodModels.KindNomination)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return notEligible
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load nomination period")
	}
	if c.NominationPeriodID != nomination.ID {
		return notEligible
	}
	return nil
}

func findElection(ctx context.Context, store Store, id uuid.UUID) (*periodModels.Period, error) {
	p, err := store.FindPeriodByID(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, periodModels.NotScheduled(periodModels.KindElection)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load election")
	}
	if p.Kind != periodModels.KindElection {
		return nil, periodModels.NotScheduled(periodModels.KindElection)
	}
	return p, nil
}

func latestElection(ctx context.Context, store Store, zoneID uuid.UUID) (*periodModels.Period, error) {
	p, err := store.FindLatestPeriod(ctx, zoneID, periodModels.KindElection)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, periodModels.NotScheduled(periodModels.KindElection)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load election")
	}
	return p, nil
}

func alreadyVoted() error {
	return dErrors.New(dErrors.CodeConflict, "You have already voted in this election").WithReason(models.ReasonAlreadyVoted)
}

type nopCache struct{}

func (nopCache) Get(context.Context, uuid.UUID) ([]*models.ElectionResults, bool, error) {
	return nil, false, nil
}
func (nopCache) Generation(context.Context, uuid.UUID) (int64, error)                    { return 0, nil }
func (nopCache) Set(context.Context, uuid.UUID, int64, []*models.ElectionResults) error { return nil }
func (nopCache) Invalidate(context.Context, uuid.UUID) error                             { return nil }
