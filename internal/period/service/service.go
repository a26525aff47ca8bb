package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	memberModels "nhc/internal/member/models"
	"nhc/internal/notification"
	"nhc/internal/period/models"
	"nhc/internal/zone"
	"nhc/pkg/calendar"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	"nhc/pkg/requestcontext"
)

type Store interface {
	CreatePeriod(ctx context.Context, p *models.Period) error
	UpdatePeriod(ctx context.Context, p *models.Period) error
	FindLatestPeriod(ctx context.Context, zoneID uuid.UUID, kind models.Kind) (*models.Period, error)
	ListUnendedPeriods(ctx context.Context, zoneID uuid.UUID, kind models.Kind) ([]*models.Period, error)
	ListOpenPeriods(ctx context.Context, kind models.Kind, today calendar.Date) ([]*models.Period, error)
	FindZoneByID(ctx context.Context, id uuid.UUID) (*zone.Zone, error)
	ListZones(ctx context.Context) ([]*zone.Zone, error)
	ListMembers(ctx context.Context, zoneID *uuid.UUID) ([]*memberModels.Member, error)
}

// Tx runs fn as one unit of work.
type Tx interface {
	RunInTx(ctx context.Context, fn func(store Store) error) error
}

type Notifier interface {
	Notify(ctx context.Context, personalID, message string)
}

// Service tracks nomination and election windows per zone.
type Service struct {
	store    Store
	tx       Tx
	notifier Notifier
	logger   *slog.Logger
	location *time.Location
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

// WithLocation sets the zone that defines "today". Defaults to UTC.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		s.location = loc
	}
}

func New(store Store, tx Tx, opts ...Option) *Service {
	s := &Service{store: store, tx: tx, logger: slog.Default(), location: time.UTC}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule opens a new window for the zone. Every earlier window of the same
// kind that has not ended is superseded, so at most one window per zone and
// kind is ever live. Zone members are notified after commit.
func (s *Service) Schedule(ctx context.Context, kind models.Kind, req models.ScheduleRequest) (*models.View, error) {
	now := requestcontext.Now(ctx)
	today := calendar.On(now, s.location)
	if err := req.Validate(today); err != nil {
		return nil, dErrors.New(dErrors.CodeValidation, err.Error())
	}

	var (
		created *models.Period
		z       *zone.Zone
	)
	err := s.tx.RunInTx(ctx, func(store Store) error {
		var err error
		z, err = store.FindZoneByID(ctx, req.ZoneID)
		if err != nil {
			return zone.NotFound(err)
		}

		previous, err := store.ListUnendedPeriods(ctx, z.ID, kind)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load previous periods")
		}
		for _, p := range previous {
			p.Supersede(now)
			if err := store.UpdatePeriod(ctx, p); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to supersede period")
			}
		}

		created, err = models.New(z.ID, kind, req.StartDate, req.EndDate, today, now)
		if err != nil {
			return err
		}
		if err := store.CreatePeriod(ctx, created); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to create period")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "period scheduled",
		"request_id", requestcontext.RequestID(ctx),
		"kind", kind,
		"zone_id", z.ID,
		"period_id", created.ID,
		"start", created.StartDate.String(),
		"end", created.EndDate.String(),
	)
	s.announce(ctx, kind, z, created)
	return &models.View{Period: created.WithStatusOn(today), ZoneName: z.Name}, nil
}

// End closes the zone's latest window of kind early. Ending an ended window
// returns it unchanged.
func (s *Service) End(ctx context.Context, zoneID uuid.UUID, kind models.Kind) (*models.View, error) {
	now := requestcontext.Now(ctx)
	today := calendar.On(now, s.location)

	var (
		ended *models.Period
		z     *zone.Zone
	)
	err := s.tx.RunInTx(ctx, func(store Store) error {
		var err error
		z, err = store.FindZoneByID(ctx, zoneID)
		if err != nil {
			return zone.NotFound(err)
		}
		ended, err = store.FindLatestPeriod(ctx, zoneID, kind)
		if err != nil {
			return latestErr(err, kind)
		}
		if !ended.End(today, now) {
			return nil
		}
		if err := store.UpdatePeriod(ctx, ended); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to end period")
		}
		s.logger.InfoContext(ctx, "period ended early",
			"request_id", requestcontext.RequestID(ctx),
			"kind", kind,
			"zone_id", zoneID,
			"period_id", ended.ID,
			"end", ended.EndDate.String(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &models.View{Period: ended.WithStatusOn(today), ZoneName: z.Name}, nil
}

// Active lists windows of kind that are open today, one per zone at most.
func (s *Service) Active(ctx context.Context, kind models.Kind) ([]*models.View, error) {
	today := calendar.Today(ctx, s.location)
	periods, err := s.store.ListOpenPeriods(ctx, kind, today)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list periods")
	}
	zones, err := s.store.ListZones(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list zones")
	}
	names := zone.Names(zones)

	out := make([]*models.View, 0, len(periods))
	for _, p := range periods {
		out = append(out, &models.View{Period: p.WithStatusOn(today), ZoneName: names[p.ZoneID]})
	}
	return out, nil
}

// Latest returns the zone's current window of kind, ended or not.
func (s *Service) Latest(ctx context.Context, zoneID uuid.UUID, kind models.Kind) (*models.View, error) {
	z, err := s.store.FindZoneByID(ctx, zoneID)
	if err != nil {
		return nil, zone.NotFound(err)
	}
	p, err := s.store.FindLatestPeriod(ctx, zoneID, kind)
	if err != nil {
		return nil, latestErr(err, kind)
	}
	return &models.View{Period: p.WithStatusOn(calendar.Today(ctx, s.location)), ZoneName: z.Name}, nil
}

func (s *Service) announce(ctx context.Context, kind models.Kind, z *zone.Zone, p *models.Period) {
	if s.notifier == nil {
		return
	}
	members, err := s.store.ListMembers(ctx, &z.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list zone members for announcement",
			"zone_id", z.ID,
			"error", err.Error(),
		)
		return
	}
	msg := notification.NominationScheduled(z.Name, p.StartDate.String(), p.EndDate.String())
	if kind == models.KindElection {
		msg = notification.ElectionScheduled(z.Name, p.StartDate.String(), p.EndDate.String())
	}
	for _, m := range members {
		s.notifier.Notify(ctx, m.PersonalID, msg)
	}
}

func latestErr(err error, kind models.Kind) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.NotScheduled(kind)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load period")
}
