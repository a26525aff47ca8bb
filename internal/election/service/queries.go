package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	candidacyModels "nhc/internal/candidacy/models"
	"nhc/internal/election/models"
	periodModels "nhc/internal/period/models"
	"nhc/internal/zone"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	"nhc/pkg/requestcontext"
)

// Stats reports the standings of one election. electionID wins over zoneID;
// with only zoneID the zone's latest election is used. A frozen snapshot is
// returned when one exists, otherwise votes are tallied live.
func (s *Service) Stats(ctx context.Context, electionID, zoneID *uuid.UUID) (*models.Stats, error) {
	var (
		election *periodModels.Period
		err      error
	)
	switch {
	case electionID != nil:
		election, err = findElection(ctx, s.store, *electionID)
	case zoneID != nil:
		if _, zerr := s.store.FindZoneByID(ctx, *zoneID); zerr != nil {
			return nil, zone.NotFound(zerr)
		}
		election, err = latestElection(ctx, s.store, *zoneID)
	default:
		return nil, dErrors.New(dErrors.CodeValidation, "electionId or zoneId is required")
	}
	if err != nil {
		return nil, err
	}

	stats := &models.Stats{ElectionID: election.ID, ZoneID: election.ZoneID}

	frozen, err := s.store.ListResultsByElection(ctx, election.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load results")
	}
	if len(frozen) > 0 {
		models.SortResults(frozen)
		rows := make([]models.Standing, 0, len(frozen))
		for _, r := range frozen {
			rows = append(rows, models.StandingOf(r))
		}
		stats.Source = models.SourceSnapshot
		stats.Positions = models.GroupStandings(rows)
		return stats, nil
	}

	tallies, err := s.tally(ctx, s.store, election)
	if err != nil {
		return nil, err
	}
	members, err := membersByPersonalID(ctx, s.store, talliedPersonalIDs(tallies))
	if err != nil {
		return nil, err
	}
	rows := make([]models.Standing, 0, len(tallies))
	for _, t := range tallies {
		row := models.Standing{
			CandidacyID: t.Candidacy.ID,
			PersonalID:  t.Candidacy.PersonalID,
			Category:    t.Candidacy.Category,
			TotalVotes:  t.Votes,
		}
		if m, ok := members[row.PersonalID]; ok {
			row.FirstName, row.LastName = m.FirstName, m.LastName
		}
		rows = append(rows, row)
	}
	stats.Source = models.SourceLive
	stats.Positions = models.GroupStandings(rows)
	return stats, nil
}

// Results returns the zone's frozen results grouped by election, newest
// first. Results are served from the cache when possible; concurrent misses
// for the same zone share one load. A load is only cached when no close
// invalidated the zone while it ran.
func (s *Service) Results(ctx context.Context, zoneID uuid.UUID) ([]*models.ElectionResults, error) {
	if _, err := s.store.FindZoneByID(ctx, zoneID); err != nil {
		return nil, zone.NotFound(err)
	}

	cached, ok, err := s.cache.Get(ctx, zoneID)
	switch {
	case err != nil:
		s.metrics.IncrementCache("error")
		s.logger.WarnContext(ctx, "results cache read failed",
			"request_id", requestcontext.RequestID(ctx),
			"zone_id", zoneID,
			"error", err.Error(),
		)
	case ok:
		s.metrics.IncrementCache("hit")
		return cached, nil
	default:
		s.metrics.IncrementCache("miss")
	}

	v, err, _ := s.loads.Do(zoneID.String(), func() (any, error) {
		// shared by every waiter, so one caller going away must not fail the rest
		ctx := context.WithoutCancel(ctx)
		gen, genErr := s.cache.Generation(ctx, zoneID)
		results, err := s.loadResults(ctx, zoneID)
		if err != nil {
			return nil, err
		}
		if len(results) == 0 || genErr != nil {
			return results, nil
		}
		if err := s.cache.Set(ctx, zoneID, gen, results); err != nil {
			s.logger.WarnContext(ctx, "results cache write failed", "zone_id", zoneID, "error", err.Error())
		}
		return results, nil
	})
	if err != nil {
		return nil, err
	}
	results := v.([]*models.ElectionResults)
	if len(results) == 0 {
		return nil, dErrors.New(dErrors.CodeNotFound, "No election results found for this NHC").WithReason(models.ReasonNoResults)
	}
	return results, nil
}

func (s *Service) loadResults(ctx context.Context, zoneID uuid.UUID) ([]*models.ElectionResults, error) {
	rows, err := s.store.ListResultsByZone(ctx, zoneID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load results")
	}

	byElection := map[uuid.UUID][]*models.Result{}
	for _, r := range rows {
		byElection[r.ElectionID] = append(byElection[r.ElectionID], r)
	}

	out := make([]*models.ElectionResults, 0, len(byElection))
	for id, results := range byElection {
		election, err := s.store.FindPeriodByID(ctx, id)
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load election")
		}
		group := &models.ElectionResults{ElectionID: id}
		if election != nil {
			group.StartDate, group.EndDate = election.StartDate, election.EndDate
		}
		models.SortResults(results)
		standings := make([]models.Standing, 0, len(results))
		for _, r := range results {
			standings = append(standings, models.StandingOf(r))
		}
		group.Positions = models.GroupStandings(standings)
		out = append(out, group)
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c > 0
		}
		return a.ElectionID.String() > b.ElectionID.String()
	})
	return out, nil
}

// Votes is the ballot history of one election, newest first.
func (s *Service) Votes(ctx context.Context, electionID uuid.UUID) ([]*models.VoteRecord, error) {
	if _, err := findElection(ctx, s.store, electionID); err != nil {
		return nil, err
	}
	votes, err := s.store.ListVotesByElection(ctx, electionID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list votes")
	}
	return s.voteRecords(ctx, votes)
}

// CandidacyVotes lists the ballots a candidacy received across elections.
func (s *Service) CandidacyVotes(ctx context.Context, candidacyID uuid.UUID) ([]*models.VoteRecord, error) {
	if _, err := s.store.FindCandidacyByID(ctx, candidacyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "Candidacy not found").WithReason(candidacyModels.ReasonCandidacyNotFound)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidacy")
	}
	votes, err := s.store.ListVotesByCandidacy(ctx, candidacyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list votes")
	}
	return s.voteRecords(ctx, votes)
}

func (s *Service) voteRecords(ctx context.Context, votes []*models.Vote) ([]*models.VoteRecord, error) {
	candidacies := map[uuid.UUID]*candidacyModels.Candidacy{}
	ids := []string{}
	for _, v := range votes {
		ids = append(ids, v.VoterPersonalID)
		if _, ok := candidacies[v.CandidacyID]; ok {
			continue
		}
		c, err := s.store.FindCandidacyByID(ctx, v.CandidacyID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				candidacies[v.CandidacyID] = nil
				continue
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load candidacy")
		}
		candidacies[v.CandidacyID] = c
		ids = append(ids, c.PersonalID)
	}
	members, err := membersByPersonalID(ctx, s.store, ids)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].CreatedAt.After(votes[j].CreatedAt)
	})
	out := make([]*models.VoteRecord, 0, len(votes))
	for _, v := range votes {
		rec := &models.VoteRecord{Vote: v}
		if m, ok := members[v.VoterPersonalID]; ok {
			rec.VoterName = m.FullName()
		}
		if c := candidacies[v.CandidacyID]; c != nil {
			rec.CandidacyPersonalID = c.PersonalID
			rec.Category = c.Category
			if m, ok := members[c.PersonalID]; ok {
				rec.CandidacyName = m.FullName()
			}
		}
		out = append(out, rec)
	}
	return out, nil
}
