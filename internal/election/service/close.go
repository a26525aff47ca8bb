package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"nhc/internal/election/models"
	memberModels "nhc/internal/member/models"
	"nhc/internal/notification"
	periodModels "nhc/internal/period/models"
	"nhc/internal/zone"
	"nhc/pkg/calendar"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	strutil "nhc/pkg/platform/strings"
	"nhc/pkg/requestcontext"
)

// Close ends the zone's latest election and freezes its results in one unit
// of work:
//
//  1. tally every eligible candidacy of the zone's latest nomination period
//  2. write one result row per candidacy (any failure aborts the close)
//  3. revoke current position roles in the zone and reset holders to User
//  4. promote the winners chosen by the policy (failures are isolated and reported)
//  5. mark the election Ended
//
// Closing an election that is already closed returns its stored results.
func (s *Service) Close(ctx context.Context, zoneID uuid.UUID) (*models.CloseOutcome, error) {
	start := time.Now()
	ctx, span := s.tracer.Start(ctx, "election.close",
		trace.WithAttributes(
			attribute.String("zone.id", zoneID.String()),
			attribute.String("winner.policy", string(s.policy)),
		),
	)
	defer span.End()

	roles, err := s.positions.Names(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	var (
		outcome *models.CloseOutcome
		z       *zone.Zone
	)
	err = s.tx.RunInTx(ctx, func(store Store) error {
		var err error
		z, err = store.FindZoneByID(ctx, zoneID)
		if err != nil {
			return zone.NotFound(err)
		}
		outcome, err = s.close(ctx, store, z, roles)
		return err
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "close failed")
		s.logger.ErrorContext(ctx, "election close failed",
			"request_id", requestcontext.RequestID(ctx),
			"zone_id", zoneID,
			"error", err.Error(),
		)
		return nil, err
	}

	span.SetAttributes(
		attribute.String("election.id", outcome.ElectionID.String()),
		attribute.Bool("election.already_closed", outcome.AlreadyClosed),
		attribute.Int("results.count", len(outcome.Results)),
		attribute.Int("winners.count", len(outcome.Winners)),
		attribute.Int("promotion.failures", len(outcome.PromotionFailures)),
	)
	s.metrics.ObserveClose(start, outcome.AlreadyClosed, len(outcome.PromotionFailures))
	if outcome.AlreadyClosed {
		return outcome, nil
	}

	s.logger.InfoContext(ctx, "election closed",
		"request_id", requestcontext.RequestID(ctx),
		"zone_id", zoneID,
		"election_id", outcome.ElectionID,
		"results", len(outcome.Results),
		"winners", len(outcome.Winners),
		"revoked", outcome.Revoked,
		"promotion_failures", len(outcome.PromotionFailures),
	)
	if err := s.cache.Invalidate(ctx, zoneID); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate results cache", "zone_id", zoneID, "error", err.Error())
	}
	if s.notifier != nil {
		for _, w := range outcome.Winners {
			s.notifier.Notify(ctx, w.PersonalID, notification.Elected(w.Role, z.Name))
		}
	}
	return outcome, nil
}

func (s *Service) close(ctx context.Context, store Store, z *zone.Zone, roles []string) (*models.CloseOutcome, error) {
	now := requestcontext.Now(ctx)
	today := calendar.On(now, s.location)

	election, err := latestElection(ctx, store, z.ID)
	if err != nil {
		return nil, err
	}
	outcome := &models.CloseOutcome{
		ElectionID: election.ID,
		ZoneID:     z.ID,
		Policy:     s.policy,
		Results:    []*models.Result{},
		Winners:    []models.Winner{},
	}

	if election.Status == periodModels.StatusEnded && election.EndedAt != nil {
		stored, err := store.ListResultsByElection(ctx, election.ID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load stored results")
		}
		models.SortResults(stored)
		outcome.AlreadyClosed = true
		outcome.EndDate = election.EndDate
		outcome.Results = stored
		return outcome, nil
	}

	tallies, err := s.tally(ctx, store, election)
	if err != nil {
		return nil, err
	}
	members, err := membersByPersonalID(ctx, store, talliedPersonalIDs(tallies))
	if err != nil {
		return nil, err
	}

	for _, t := range tallies {
		r := &models.Result{
			ID:          uuid.New(),
			ElectionID:  election.ID,
			ZoneID:      z.ID,
			CandidacyID: t.Candidacy.ID,
			PersonalID:  t.Candidacy.PersonalID,
			Category:    t.Candidacy.Category,
			TotalVotes:  t.Votes,
			CreatedAt:   now,
		}
		if m, ok := members[r.PersonalID]; ok {
			r.FirstName, r.LastName = m.FirstName, m.LastName
		}
		if err := store.CreateResult(ctx, r); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal,
				fmt.Sprintf("failed to store result for candidacy %s", r.CandidacyID))
		}
		outcome.Results = append(outcome.Results, r)
	}

	revoked, err := s.resetRoles(ctx, store, z.ID, roles, now)
	if err != nil {
		return nil, err
	}
	outcome.Revoked = revoked

	for i, t := range s.policy.Winners(tallies) {
		w := models.Winner{
			CandidacyID: t.Candidacy.ID,
			PersonalID:  t.Candidacy.PersonalID,
			Role:        t.Candidacy.Category,
			TotalVotes:  t.Votes,
		}
		err := store.Savepoint(ctx, fmt.Sprintf("promote_%d", i), func() error {
			return promote(ctx, store, members[w.PersonalID], w, z.ID, election.ID, now)
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to promote winner",
				"request_id", requestcontext.RequestID(ctx),
				"zone_id", z.ID,
				"election_id", election.ID,
				"candidacy_id", w.CandidacyID,
				"personal_id", w.PersonalID,
				"role", w.Role,
				"error", err.Error(),
			)
			outcome.PromotionFailures = append(outcome.PromotionFailures, models.PromotionFailure{
				PersonalID: w.PersonalID,
				Role:       w.Role,
				Error:      err.Error(),
			})
			continue
		}
		outcome.Winners = append(outcome.Winners, w)
	}

	election.End(today, now)
	if err := store.UpdatePeriod(ctx, election); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to end election")
	}
	outcome.EndDate = election.EndDate
	models.SortResults(outcome.Results)
	return outcome, nil
}

// tally counts the election's ballots for each eligible candidacy of the
// zone's latest nomination period. Candidacies without ballots count zero.
func (s *Service) tally(ctx context.Context, store Store, election *periodModels.Period) ([]models.Tally, error) {
	nomination, err := store.FindLatestPeriod(ctx, election.ZoneID, periodModels.KindNomination)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return []models.Tally{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load nomination period")
	}
	candidacies, err := store.ListCandidaciesByPeriod(ctx, nomination.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidacies")
	}
	votes, err := store.CountVotesByCandidacy(ctx, election.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count votes")
	}

	tallies := make([]models.Tally, 0, len(candidacies))
	for _, c := range candidacies {
		if !c.IsEligible || c.ZoneID != election.ZoneID {
			continue
		}
		tallies = append(tallies, models.Tally{Candidacy: c, Votes: votes[c.ID]})
	}
	models.SortTallies(tallies)
	return tallies, nil
}

// resetRoles revokes every current position role in the zone and sets the
// holders back to User. Holders are the zone's members with a position role
// plus anyone named on a revoked assignment who still carries that role after
// moving to another zone.
func (s *Service) resetRoles(ctx context.Context, store Store, zoneID uuid.UUID, roles []string, now time.Time) (int, error) {
	isPosition := make(map[string]bool, len(roles))
	for _, r := range roles {
		isPosition[r] = true
	}

	revoked, err := store.RevokeRoleAssignments(ctx, zoneID, roles, now)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke role assignments")
	}

	members, err := store.ListMembers(ctx, &zoneID)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list zone members")
	}
	var holders []string
	inZone := make(map[string]bool, len(members))
	for _, m := range members {
		inZone[m.PersonalID] = true
		if isPosition[m.Role] {
			holders = append(holders, m.PersonalID)
		}
	}

	heldRole := map[string]string{}
	var moved []string
	for _, a := range revoked {
		if inZone[a.PersonalID] {
			continue
		}
		heldRole[a.PersonalID] = a.Role
		moved = append(moved, a.PersonalID)
	}
	if len(moved) > 0 {
		others, err := store.ListMembersByPersonalIDs(ctx, strutil.Distinct(moved))
		if err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load former holders")
		}
		for _, m := range others {
			if m.Role == heldRole[m.PersonalID] {
				holders = append(holders, m.PersonalID)
			}
		}
	}

	for _, personalID := range holders {
		if err := store.UpdateMemberRole(ctx, personalID, memberModels.RoleUser, now); err != nil {
			return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to reset member role")
		}
	}
	return len(revoked), nil
}

func promote(ctx context.Context, store Store, m *memberModels.Member, w models.Winner, zoneID, electionID uuid.UUID, now time.Time) error {
	if m == nil {
		return fmt.Errorf("member %s: %w", w.PersonalID, sentinel.ErrNotFound)
	}
	if err := store.UpdateMemberRole(ctx, w.PersonalID, w.Role, now); err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	err := store.CreateRoleAssignment(ctx, &memberModels.RoleAssignment{
		ID:         uuid.New(),
		MemberID:   m.ID,
		PersonalID: m.PersonalID,
		ZoneID:     zoneID,
		Role:       w.Role,
		ElectionID: electionID,
		AssignedAt: now,
	})
	if err != nil {
		return fmt.Errorf("record role assignment: %w", err)
	}
	return nil
}

func membersByPersonalID(ctx context.Context, store Store, ids []string) (map[string]*memberModels.Member, error) {
	out := map[string]*memberModels.Member{}
	if len(ids) == 0 {
		return out, nil
	}
	members, err := store.ListMembersByPersonalIDs(ctx, strutil.Distinct(ids))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load members")
	}
	for _, m := range members {
		out[m.PersonalID] = m
	}
	return out, nil
}

func talliedPersonalIDs(tallies []models.Tally) []string {
	ids := make([]string, 0, len(tallies))
	for _, t := range tallies {
		ids = append(ids, t.Candidacy.PersonalID)
	}
	return ids
}

