package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	candidacyModels "nhc/internal/candidacy/models"
	"nhc/internal/election/models"
	"nhc/internal/election/service"
	memberModels "nhc/internal/member/models"
	memberService "nhc/internal/member/service"
	periodModels "nhc/internal/period/models"
	"nhc/internal/position"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/requestcontext"
	"nhc/pkg/testutil"
)

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

type ElectionSuite struct {
	suite.Suite
	ctx        context.Context
	council    *testutil.Council
	notified   *testutil.Notifications
	cache      *mapCache
	nomination *periodModels.Period
	election   *periodModels.Period
}

func TestElectionSuite(t *testing.T) {
	suite.Run(t, new(ElectionSuite))
}

func (s *ElectionSuite) SetupTest() {
	s.ctx = requestcontext.WithTime(context.Background(), now)
	s.council = testutil.NewCouncil(s.T(), now)
	s.notified = &testutil.Notifications{}
	s.cache = newMapCache()
	s.nomination = s.council.OpenWindow(periodModels.KindNomination, -10, -1)
	s.election = s.council.OpenWindow(periodModels.KindElection, 0, 3)
}

func (s *ElectionSuite) service(opts ...service.Option) *service.Service {
	opts = append([]service.Option{
		service.WithNotifier(s.notified),
		service.WithResultsCache(s.cache),
	}, opts...)
	return service.New(
		s.council.Store,
		testutil.MemoryTx[service.Store]{Store: s.council.Store},
		position.NewService(s.council.Store),
		opts...,
	)
}

// candidate stores a candidacy of the current nomination period directly.
func (s *ElectionSuite) candidate(personalID, category string, eligible bool) *candidacyModels.Candidacy {
	s.council.AddMember(personalID)
	c := candidacyModels.NewCandidacy(personalID, s.council.Zone.ID, s.nomination.ID, category, now.Add(-time.Duration(len(personalID))*time.Minute))
	if eligible {
		c.ApplySupportCount(candidacyModels.SupportThreshold)
	}
	s.Require().NoError(s.council.Store.CreateCandidacy(s.ctx, c))
	return c
}

func (s *ElectionSuite) vote(svc *service.Service, voter string, c *candidacyModels.Candidacy) {
	_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: voter, CandidacyID: c.ID})
	s.Require().NoError(err)
}

func (s *ElectionSuite) assertReason(err error, code dErrors.Code, reason string) {
	s.Require().Error(err)
	s.Equal(code, dErrors.CodeOf(err), err.Error())
	if reason != "" {
		s.Equal(reason, dErrors.ReasonOf(err))
	}
}

func (s *ElectionSuite) TestCast() {
	svc := s.service()
	c := s.candidate("cand", "President", true)
	pending := s.candidate("pending", "President", false)
	s.council.AddMembers("voter", 3)

	s.Run("records a ballot", func() {
		v, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: " voter-1 ", CandidacyID: c.ID})
		s.Require().NoError(err)
		s.Equal("voter-1", v.VoterPersonalID)
		s.Equal(s.council.Zone.ID, v.ZoneID)
		s.Equal(s.election.EndDate, v.PeriodEndDate)
	})

	s.Run("one ballot per election", func() {
		_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: "voter-1", CandidacyID: c.ID})
		s.assertReason(err, dErrors.CodeConflict, models.ReasonAlreadyVoted)
	})

	s.Run("self vote", func() {
		_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: "cand", CandidacyID: c.ID})
		s.assertReason(err, dErrors.CodeBadRequest, models.ReasonSelfVoteForbidden)
	})

	s.Run("candidacy not eligible", func() {
		_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: "voter-2", CandidacyID: pending.ID})
		s.assertReason(err, dErrors.CodeBadRequest, models.ReasonCandidacyNotEligible)
	})

	s.Run("voter must be a member", func() {
		_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: "ghost", CandidacyID: c.ID})
		s.assertReason(err, dErrors.CodeNotFound, memberService.ReasonMemberNotFound)
	})

	s.Run("unknown election", func() {
		_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: uuid.New(), VoterPersonalID: "voter-2", CandidacyID: c.ID})
		s.assertReason(err, dErrors.CodeNotFound, periodModels.ReasonElectionNotFound)
	})

	s.Run("nomination id is not an election", func() {
		_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.nomination.ID, VoterPersonalID: "voter-2", CandidacyID: c.ID})
		s.assertReason(err, dErrors.CodeNotFound, periodModels.ReasonElectionNotFound)
	})

	s.Run("unknown candidacy", func() {
		_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: "voter-2", CandidacyID: uuid.New()})
		s.assertReason(err, dErrors.CodeNotFound, candidacyModels.ReasonCandidacyNotFound)
	})

	s.Run("missing fields", func() {
		_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID})
		s.assertReason(err, dErrors.CodeValidation, "")
	})
}

func (s *ElectionSuite) TestCastRejectsStaleNomination() {
	svc := s.service()
	old := s.candidate("old", "President", true)
	s.nomination = s.council.OpenWindow(periodModels.KindNomination, -5, -1)
	s.council.AddMember("voter")

	_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: "voter", CandidacyID: old.ID})
	s.assertReason(err, dErrors.CodeBadRequest, models.ReasonCandidacyNotEligible)
}

func (s *ElectionSuite) TestCastOutsideWindow() {
	svc := s.service()
	c := s.candidate("cand", "President", true)
	s.council.AddMember("voter")

	later := requestcontext.WithTime(context.Background(), now.AddDate(0, 0, 5))
	_, err := svc.Cast(later, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: "voter", CandidacyID: c.ID})
	s.assertReason(err, dErrors.CodeWindowClosed, periodModels.ReasonVotingWindowClosed)
}

func (s *ElectionSuite) TestClose() {
	svc := s.service()
	president := s.candidate("pres", "President", true)
	rival := s.candidate("rival", "President", true)
	treasurer := s.candidate("treas", "Treasurer", true)
	s.candidate("pending", "Treasurer", false)
	voters := s.council.AddMembers("voter", 3)
	s.vote(svc, voters[0].PersonalID, president)
	s.vote(svc, voters[1].PersonalID, president)
	s.vote(svc, voters[2].PersonalID, rival)

	incumbent := s.council.AddMember("incumbent")
	s.Require().NoError(s.council.Store.UpdateMemberRole(s.ctx, incumbent.PersonalID, "President", now))
	s.Require().NoError(s.council.Store.CreateRoleAssignment(s.ctx, &memberModels.RoleAssignment{
		ID: uuid.New(), MemberID: incumbent.ID, PersonalID: incumbent.PersonalID, ZoneID: s.council.Zone.ID,
		Role: "President", ElectionID: uuid.New(), AssignedAt: now.AddDate(-1, 0, 0),
	}))

	outcome, err := svc.Close(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)

	s.Run("freezes one result per eligible candidacy", func() {
		s.False(outcome.AlreadyClosed)
		s.Require().Len(outcome.Results, 3)
		s.Equal(president.ID, outcome.Results[0].CandidacyID)
		s.Equal(2, outcome.Results[0].TotalVotes)
		s.Equal("Firstpres", outcome.Results[0].FirstName)
		s.Equal(rival.ID, outcome.Results[1].CandidacyID)
		s.Equal(treasurer.ID, outcome.Results[2].CandidacyID)
		s.Zero(outcome.Results[2].TotalVotes, "candidacies without ballots are frozen with zero")
	})

	s.Run("ends the election today", func() {
		stored, err := s.council.Store.FindPeriodByID(s.ctx, s.election.ID)
		s.Require().NoError(err)
		s.Equal(periodModels.StatusEnded, stored.Status)
		s.Equal(s.council.Today(), stored.EndDate)
		s.Equal(s.council.Today(), outcome.EndDate)
	})

	s.Run("resets incumbents and promotes every eligible candidacy", func() {
		s.Equal(1, outcome.Revoked)
		m, err := s.council.Store.FindMemberByPersonalID(s.ctx, incumbent.PersonalID)
		s.Require().NoError(err)
		s.Equal(memberModels.RoleUser, m.Role)

		s.Len(outcome.Winners, 3)
		for personalID, role := range map[string]string{"pres": "President", "rival": "President", "treas": "Treasurer"} {
			m, err := s.council.Store.FindMemberByPersonalID(s.ctx, personalID)
			s.Require().NoError(err)
			s.Equal(role, m.Role, personalID)

			history, err := s.council.Store.ListRoleAssignments(s.ctx, personalID)
			s.Require().NoError(err)
			s.Require().Len(history, 1)
			s.True(history[0].Active())
			s.Equal(s.election.ID, history[0].ElectionID)
		}
		s.Len(s.notified.Sent["pres"], 1)
		s.Contains(s.notified.Sent["pres"][0], "President")
	})

	s.Run("closing again returns the stored results", func() {
		again, err := svc.Close(s.ctx, s.council.Zone.ID)
		s.Require().NoError(err)
		s.True(again.AlreadyClosed)
		s.Len(again.Results, 3)
		s.Empty(again.Winners)
		s.Len(s.notified.Sent["pres"], 1, "winners are not notified twice")
	})

	s.Run("no ballots after close", func() {
		s.council.AddMember("late")
		_, err := svc.Cast(s.ctx, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: "late", CandidacyID: treasurer.ID})
		s.assertReason(err, dErrors.CodeWindowClosed, periodModels.ReasonVotingWindowClosed)
	})
}

func (s *ElectionSuite) TestCloseTopVotePolicy() {
	svc := s.service(service.WithWinnerPolicy(models.PolicyTopVote))
	winner := s.candidate("win", "President", true)
	s.candidate("lose", "President", true)
	s.council.AddMember("voter")
	s.vote(svc, "voter", winner)

	outcome, err := svc.Close(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)
	s.Len(outcome.Results, 2)
	s.Require().Len(outcome.Winners, 1)
	s.Equal("win", outcome.Winners[0].PersonalID)

	loser, err := s.council.Store.FindMemberByPersonalID(s.ctx, "lose")
	s.Require().NoError(err)
	s.Equal(memberModels.RoleUser, loser.Role)
}

func (s *ElectionSuite) TestClosePromotionFailureIsIsolated() {
	svc := s.service()
	s.candidate("ok", "President", true)
	blocked := s.candidate("blocked", "Treasurer", true)
	// An assignment already recorded for this election makes the promotion conflict.
	s.Require().NoError(s.council.Store.CreateRoleAssignment(s.ctx, &memberModels.RoleAssignment{
		ID: uuid.New(), PersonalID: blocked.PersonalID, ZoneID: uuid.New(), Role: "Treasurer",
		ElectionID: s.election.ID, AssignedAt: now,
	}))

	outcome, err := svc.Close(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)
	s.Len(outcome.Results, 2)
	s.Require().Len(outcome.Winners, 1)
	s.Equal("ok", outcome.Winners[0].PersonalID)
	s.Require().Len(outcome.PromotionFailures, 1)
	s.Equal("blocked", outcome.PromotionFailures[0].PersonalID)

	m, err := s.council.Store.FindMemberByPersonalID(s.ctx, "blocked")
	s.Require().NoError(err)
	s.Equal(memberModels.RoleUser, m.Role, "the failed promotion's role change is undone")

	stored, err := s.council.Store.FindPeriodByID(s.ctx, s.election.ID)
	s.Require().NoError(err)
	s.Equal(periodModels.StatusEnded, stored.Status)
}

func (s *ElectionSuite) TestCloseWithoutElection() {
	svc := s.service()
	other := s.council.AddZone("Ward 2")

	_, err := svc.Close(s.ctx, other.ID)
	s.assertReason(err, dErrors.CodeNotFound, periodModels.ReasonElectionNotFound)

	_, err = svc.Close(s.ctx, uuid.New())
	s.assertReason(err, dErrors.CodeNotFound, "")
}

func (s *ElectionSuite) TestStats() {
	svc := s.service()
	c := s.candidate("cand", "President", true)
	s.candidate("treas", "Treasurer", true)
	s.council.AddMember("voter")
	s.vote(svc, "voter", c)

	s.Run("requires an id", func() {
		_, err := svc.Stats(s.ctx, nil, nil)
		s.assertReason(err, dErrors.CodeValidation, "")
	})

	s.Run("live before close", func() {
		stats, err := svc.Stats(s.ctx, nil, &s.council.Zone.ID)
		s.Require().NoError(err)
		s.Equal(models.SourceLive, stats.Source)
		s.Require().Len(stats.Positions, 2)
		s.Equal("President", stats.Positions[0].Category)
		s.Equal(1, stats.Positions[0].Candidates[0].TotalVotes)
		s.Equal("Firstcand", stats.Positions[0].Candidates[0].FirstName)
	})

	_, err := svc.Close(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)

	s.Run("snapshot after close", func() {
		stats, err := svc.Stats(s.ctx, &s.election.ID, nil)
		s.Require().NoError(err)
		s.Equal(models.SourceSnapshot, stats.Source)
		s.Len(stats.Positions, 2)
	})
}

func (s *ElectionSuite) TestResults() {
	svc := s.service()
	c := s.candidate("cand", "President", true)
	s.council.AddMember("voter")
	s.vote(svc, "voter", c)

	_, err := svc.Results(s.ctx, s.council.Zone.ID)
	s.assertReason(err, dErrors.CodeNotFound, models.ReasonNoResults)

	_, err = svc.Close(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)

	results, err := svc.Results(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal(s.election.ID, results[0].ElectionID)
	s.Equal(s.election.StartDate, results[0].StartDate)
	s.Require().Len(results[0].Positions, 1)
	s.Equal(1, results[0].Positions[0].Candidates[0].TotalVotes)
	s.Equal(1, s.cache.sets)

	cached, err := svc.Results(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)
	s.Equal(results, cached)
	s.Equal(1, s.cache.sets, "second read is served from the cache")
}

func (s *ElectionSuite) TestResultsNewestElectionFirst() {
	svc := s.service()
	c := s.candidate("cand", "President", true)
	_, err := svc.Close(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)

	s.election = s.council.OpenWindow(periodModels.KindElection, 1, 3)
	s.council.AddMember("voter")
	later := requestcontext.WithTime(context.Background(), now.AddDate(0, 0, 2))
	_, err = svc.Cast(later, models.CastRequest{ElectionID: s.election.ID, VoterPersonalID: "voter", CandidacyID: c.ID})
	s.Require().NoError(err)
	_, err = svc.Close(later, s.council.Zone.ID)
	s.Require().NoError(err)

	results, err := svc.Results(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(s.election.ID, results[0].ElectionID)
}

func (s *ElectionSuite) TestResultsLoadedBeforeCloseAreNotCached() {
	s.candidate("cand", "President", true)
	paused := &pausedResults{Store: s.council.Store, reading: make(chan struct{}), release: make(chan struct{})}
	svc := service.New(
		paused,
		testutil.MemoryTx[service.Store]{Store: s.council.Store},
		position.NewService(s.council.Store),
		service.WithNotifier(s.notified),
		service.WithResultsCache(s.cache),
	)
	_, err := svc.Close(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)
	s.election = s.council.OpenWindow(periodModels.KindElection, 1, 3)

	loaded := make(chan error, 1)
	go func() {
		_, err := svc.Results(s.ctx, s.council.Zone.ID)
		loaded <- err
	}()
	<-paused.reading

	later := requestcontext.WithTime(context.Background(), now.AddDate(0, 0, 2))
	_, err = svc.Close(later, s.council.Zone.ID)
	s.Require().NoError(err)
	close(paused.release)
	s.Require().NoError(<-loaded)

	results, err := svc.Results(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)
	s.Require().Len(results, 2, "the second election is visible right after its close")
	s.Equal(s.election.ID, results[0].ElectionID)
}

func (s *ElectionSuite) TestResultsFillSurvivesCallerCancel() {
	svc := s.service()
	s.candidate("cand", "President", true)
	_, err := svc.Close(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)

	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	results, err := svc.Results(ctx, s.council.Zone.ID)
	s.Require().NoError(err)
	s.Len(results, 1)
	s.Equal(1, s.cache.sets)
	s.NoError(s.cache.setCtxErr, "the shared load does not run on the caller's context")
}

func (s *ElectionSuite) TestCloseResetsHoldersWhoMovedZones() {
	svc := s.service()
	s.candidate("cand", "Treasurer", true)
	elsewhere := s.council.AddZone("Ward 2")

	hold := func(personalID, role string, zoneID uuid.UUID) *memberModels.Member {
		m := s.council.AddMember(personalID)
		s.Require().NoError(s.council.Store.UpdateMemberRole(s.ctx, personalID, role, now))
		s.Require().NoError(s.council.Store.CreateRoleAssignment(s.ctx, &memberModels.RoleAssignment{
			ID: uuid.New(), MemberID: m.ID, PersonalID: personalID, ZoneID: zoneID,
			Role: role, ElectionID: uuid.New(), AssignedAt: now.AddDate(-1, 0, 0),
		}))
		return m
	}
	move := func(personalID string, zoneID uuid.UUID) {
		m, err := s.council.Store.FindMemberByPersonalID(s.ctx, personalID)
		s.Require().NoError(err)
		m.ZoneID = &zoneID
		s.Require().NoError(s.council.Store.UpdateMember(s.ctx, m))
	}

	hold("mover", "President", s.council.Zone.ID)
	move("mover", elsewhere.ID)

	hold("reelected", "Vice President", s.council.Zone.ID)
	move("reelected", elsewhere.ID)
	s.Require().NoError(s.council.Store.UpdateMemberRole(s.ctx, "reelected", "Treasurer", now))

	outcome, err := svc.Close(s.ctx, s.council.Zone.ID)
	s.Require().NoError(err)
	s.Equal(2, outcome.Revoked)

	mover, err := s.council.Store.FindMemberByPersonalID(s.ctx, "mover")
	s.Require().NoError(err)
	s.Equal(memberModels.RoleUser, mover.Role, "a revoked assignment clears the role that came with it")
	history, err := s.council.Store.ListRoleAssignments(s.ctx, "mover")
	s.Require().NoError(err)
	s.Require().Len(history, 1)
	s.False(history[0].Active())

	reelected, err := s.council.Store.FindMemberByPersonalID(s.ctx, "reelected")
	s.Require().NoError(err)
	s.Equal("Treasurer", reelected.Role, "a role held for another reason is left alone")
}

func (s *ElectionSuite) TestVoteHistory() {
	svc := s.service()
	c := s.candidate("cand", "President", true)
	s.council.AddMembers("voter", 2)
	s.vote(svc, "voter-1", c)
	s.vote(svc, "voter-2", c)

	records, err := svc.Votes(s.ctx, s.election.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal("Firstcand Lastcand", records[0].CandidacyName)
	s.Equal("President", records[0].Category)
	s.NotEmpty(records[0].VoterName)

	byCandidacy, err := svc.CandidacyVotes(s.ctx, c.ID)
	s.Require().NoError(err)
	s.Len(byCandidacy, 2)

	_, err = svc.CandidacyVotes(s.ctx, uuid.New())
	s.assertReason(err, dErrors.CodeNotFound, candidacyModels.ReasonCandidacyNotFound)
	_, err = svc.Votes(s.ctx, uuid.New())
	s.assertReason(err, dErrors.CodeNotFound, periodModels.ReasonElectionNotFound)
}

type mapCache struct {
	mu        sync.Mutex
	data      map[uuid.UUID][]*models.ElectionResults
	gens      map[uuid.UUID]int64
	sets      int
	setCtxErr error
}

func newMapCache() *mapCache {
	return &mapCache{data: map[uuid.UUID][]*models.ElectionResults{}, gens: map[uuid.UUID]int64{}}
}

func (c *mapCache) Get(_ context.Context, zoneID uuid.UUID) ([]*models.ElectionResults, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[zoneID]
	return v, ok, nil
}

func (c *mapCache) Generation(_ context.Context, zoneID uuid.UUID) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gens[zoneID], nil
}

func (c *mapCache) Set(ctx context.Context, zoneID uuid.UUID, gen int64, results []*models.ElectionResults) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCtxErr = ctx.Err()
	if c.gens[zoneID] != gen {
		return nil
	}
	c.sets++
	c.data[zoneID] = results
	return nil
}

func (c *mapCache) Invalidate(_ context.Context, zoneID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gens[zoneID]++
	delete(c.data, zoneID)
	return nil
}

// pausedResults holds the first zone results read open until release is
// closed, so a close can commit while that read is in flight.
type pausedResults struct {
	service.Store
	once    sync.Once
	reading chan struct{}
	release chan struct{}
}

func (p *pausedResults) ListResultsByZone(ctx context.Context, zoneID uuid.UUID) ([]*models.Result, error) {
	rows, err := p.Store.ListResultsByZone(ctx, zoneID)
	p.once.Do(func() {
		close(p.reading)
		<-p.release
	})
	return rows, err
}
