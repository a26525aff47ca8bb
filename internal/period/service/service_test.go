package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"pgregory.net/rapid"

	"nhc/internal/period/models"
	"nhc/internal/period/service"
	"nhc/internal/zone"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/requestcontext"
	"nhc/pkg/testutil"
)

var now = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

type PeriodSuite struct {
	suite.Suite
	ctx      context.Context
	council  *testutil.Council
	notified *testutil.Notifications
	svc      *service.Service
}

func TestPeriodSuite(t *testing.T) {
	suite.Run(t, new(PeriodSuite))
}

func (s *PeriodSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.council = testutil.NewCouncil(s.T(), now)
	s.notified = &testutil.Notifications{}
	s.svc = service.New(s.council.Store, testutil.MemoryTx[service.Store]{Store: s.council.Store}, service.WithNotifier(s.notified))
}

func (s *PeriodSuite) schedule(kind models.Kind, fromDays, toDays int) (*models.View, error) {
	today := s.council.Today()
	return s.svc.Schedule(s.ctx, kind, models.ScheduleRequest{
		ZoneID:    s.council.Zone.ID,
		StartDate: today.AddDays(fromDays),
		EndDate:   today.AddDays(toDays),
	})
}

func (s *PeriodSuite) TestSchedule() {
	s.council.AddMembers("resident", 2)

	s.Run("active window announced to zone members", func() {
		view, err := s.schedule(models.KindNomination, 0, 5)
		s.Require().NoError(err)
		s.Equal(models.StatusActive, view.Status)
		s.Equal(s.council.Zone.Name, view.ZoneName)
		s.Require().Len(s.notified.Sent["resident-1"], 1)
		s.Contains(s.notified.Sent["resident-1"][0], "Nomination period for Ward 1")
	})

	s.Run("future window is scheduled", func() {
		view, err := s.schedule(models.KindElection, 2, 5)
		s.Require().NoError(err)
		s.Equal(models.StatusScheduled, view.Status)
		s.Contains(s.notified.Sent["resident-2"][1], "Election period")
	})

	s.Run("end date in the past", func() {
		_, err := s.schedule(models.KindNomination, -5, -1)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown zone", func() {
		_, err := s.svc.Schedule(s.ctx, models.KindNomination, models.ScheduleRequest{
			ZoneID: uuid.New(), StartDate: s.council.Today(), EndDate: s.council.Today(),
		})
		s.True(dErrors.HasReason(err, zone.ReasonZoneNotFound))
	})
}

func (s *PeriodSuite) TestRescheduleSupersedes() {
	first, err := s.schedule(models.KindNomination, 0, 5)
	s.Require().NoError(err)
	election, err := s.schedule(models.KindElection, 6, 8)
	s.Require().NoError(err)
	second, err := s.schedule(models.KindNomination, 1, 4)
	s.Require().NoError(err)

	stored, err := s.council.Store.FindPeriodByID(s.ctx, first.ID)
	s.Require().NoError(err)
	s.Equal(models.StatusEnded, stored.Status)
	s.NotNil(stored.EndedAt)

	latest, err := s.svc.Latest(s.ctx, s.council.Zone.ID, models.KindNomination)
	s.Require().NoError(err)
	s.Equal(second.ID, latest.ID)

	stillLive, err := s.council.Store.FindPeriodByID(s.ctx, election.ID)
	s.Require().NoError(err)
	s.NotEqual(models.StatusEnded, stillLive.Status, "other kinds are untouched")
}

func (s *PeriodSuite) TestEnd() {
	_, err := s.svc.End(s.ctx, s.council.Zone.ID, models.KindNomination)
	s.True(dErrors.HasReason(err, models.ReasonNoNominationScheduled))

	_, err = s.schedule(models.KindNomination, -2, 5)
	s.Require().NoError(err)

	ended, err := s.svc.End(s.ctx, s.council.Zone.ID, models.KindNomination)
	s.Require().NoError(err)
	s.Equal(models.StatusEnded, ended.Status)
	s.Equal(s.council.Today(), ended.EndDate)
	endedAt := *ended.EndedAt

	later := requestcontext.WithTime(context.Background(), now.Add(48*time.Hour))
	again, err := s.svc.End(later, s.council.Zone.ID, models.KindNomination)
	s.Require().NoError(err)
	s.Equal(endedAt, *again.EndedAt, "ending twice keeps the first end")
	s.Equal(s.council.Today(), again.EndDate)
}

func (s *PeriodSuite) TestActive() {
	other := s.council.AddZone("Ward 2")
	_, err := s.schedule(models.KindElection, 0, 2)
	s.Require().NoError(err)
	_, err = s.svc.Schedule(s.ctx, models.KindElection, models.ScheduleRequest{
		ZoneID: other.ID, StartDate: s.council.Today().AddDays(3), EndDate: s.council.Today().AddDays(4),
	})
	s.Require().NoError(err)

	active, err := s.svc.Active(s.ctx, models.KindElection)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("Ward 1", active[0].ZoneName)

	later := requestcontext.WithTime(context.Background(), now.AddDate(0, 0, 3))
	active, err = s.svc.Active(later, models.KindElection)
	s.Require().NoError(err)
	s.Require().Len(active, 1)
	s.Equal("Ward 2", active[0].ZoneName)

	nominations, err := s.svc.Active(s.ctx, models.KindNomination)
	s.Require().NoError(err)
	s.Empty(nominations)
}

// TestAtMostOneOpenWindowPerZone schedules and ends windows at random and
// checks that no day shows two open windows of one kind in the same zone.
func TestAtMostOneOpenWindowPerZone(t *testing.T) {
	kinds := []models.Kind{models.KindNomination, models.KindElection}
	rapid.Check(t, func(rt *rapid.T) {
		council := testutil.NewCouncil(t, now)
		zones := []*zone.Zone{council.Zone, council.AddZone("Ward 2")}
		ctx := requestcontext.WithTime(context.Background(), now)
		svc := service.New(council.Store, testutil.MemoryTx[service.Store]{Store: council.Store})
		today := council.Today()

		steps := rapid.IntRange(1, 20).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			z := rapid.SampledFrom(zones).Draw(rt, "zone")
			kind := rapid.SampledFrom(kinds).Draw(rt, "kind")
			if rapid.Bool().Draw(rt, "end") {
				if _, err := svc.End(ctx, z.ID, kind); err != nil && dErrors.CodeOf(err) != dErrors.CodeNotFound {
					rt.Fatalf("end: %v", err)
				}
				continue
			}
			start := rapid.IntRange(0, 5).Draw(rt, "start")
			length := rapid.IntRange(0, 5).Draw(rt, "length")
			_, err := svc.Schedule(ctx, kind, models.ScheduleRequest{
				ZoneID:    z.ID,
				StartDate: today.AddDays(start),
				EndDate:   today.AddDays(start + length),
			})
			if err != nil {
				rt.Fatalf("schedule: %v", err)
			}
		}

		for day := 0; day <= 11; day++ {
			dayCtx := requestcontext.WithTime(context.Background(), now.AddDate(0, 0, day))
			for _, kind := range kinds {
				views, err := svc.Active(dayCtx, kind)
				if err != nil {
					rt.Fatalf("active: %v", err)
				}
				open := map[uuid.UUID]int{}
				for _, v := range views {
					open[v.ZoneID]++
					if open[v.ZoneID] > 1 {
						rt.Fatalf("day %d: zone %s has %d open %s windows", day, v.ZoneID, open[v.ZoneID], kind)
					}
				}
			}
		}
	})
}
