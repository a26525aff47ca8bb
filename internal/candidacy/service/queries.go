package service

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"nhc/internal/candidacy/models"
	memberModels "nhc/internal/member/models"
	periodModels "nhc/internal/period/models"
	"nhc/internal/zone"
	dErrors "nhc/pkg/domain-errors"
	"nhc/pkg/platform/sentinel"
	strutil "nhc/pkg/platform/strings"
)

// List returns the candidacies of the zone's current nomination period, most
// supported first, with live vote counts for the zone's latest election.
func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.View, error) {
	period, err := s.store.FindLatestPeriod(ctx, filter.ZoneID, periodModels.KindNomination)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return []*models.View{}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load nomination period")
	}
	candidacies, err := s.store.ListCandidaciesByPeriod(ctx, period.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidacies")
	}
	if filter.EligibleOnly {
		candidacies = eligibleOnly(candidacies)
	}

	votes := map[uuid.UUID]int{}
	election, err := s.store.FindLatestPeriod(ctx, filter.ZoneID, periodModels.KindElection)
	switch {
	case err == nil:
		if votes, err = s.store.CountVotesByCandidacy(ctx, election.ID); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count votes")
		}
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load election")
	}

	supported := map[uuid.UUID]bool{}
	if filter.SupporterPersonalID != "" {
		supports, err := s.store.ListSupportsBySupporter(ctx, filter.SupporterPersonalID)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list supports")
		}
		for _, sup := range supports {
			supported[sup.CandidacyID] = true
		}
	}

	members, err := s.membersOf(ctx, personalIDs(candidacies))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidacies, func(i, j int) bool {
		a, b := candidacies[i], candidacies[j]
		if a.SupportCount != b.SupportCount {
			return a.SupportCount > b.SupportCount
		}
		return a.CreatedAt.After(b.CreatedAt)
	})

	out := make([]*models.View, 0, len(candidacies))
	for _, c := range candidacies {
		v := &models.View{
			Candidacy:     c,
			ElectionVotes: votes[c.ID],
			IsSupported:   supported[c.ID],
		}
		if m, ok := members[c.PersonalID]; ok {
			v.FirstName, v.LastName = m.FirstName, m.LastName
		}
		out = append(out, v)
	}
	return out, nil
}

// Eligibility reports every candidacy the zone has had against its latest
// nomination window, most supported first.
func (s *Service) Eligibility(ctx context.Context, zoneID uuid.UUID) (*models.EligibilityReport, error) {
	z, err := s.store.FindZoneByID(ctx, zoneID)
	if err != nil {
		return nil, zone.NotFound(err)
	}
	period, err := latestNomination(ctx, s.store, zoneID)
	if err != nil {
		return nil, err
	}
	candidacies, err := s.store.ListCandidaciesByZone(ctx, zoneID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidacies")
	}
	members, err := s.membersOf(ctx, personalIDs(candidacies))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(candidacies, func(i, j int) bool {
		a, b := candidacies[i], candidacies[j]
		if a.SupportCount != b.SupportCount {
			return a.SupportCount > b.SupportCount
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})

	report := &models.EligibilityReport{
		NominationStartDate: period.StartDate,
		NominationEndDate:   period.EndDate,
		Candidacies:         make([]*models.EligibilityEntry, 0, len(candidacies)),
	}
	for _, c := range candidacies {
		e := &models.EligibilityEntry{
			Candidacy:         c,
			ZoneName:          z.Name,
			EligibilityStatus: c.EligibilityStatus(),
		}
		if m, ok := members[c.PersonalID]; ok {
			e.FirstName, e.LastName, e.Phone, e.Email = m.FirstName, m.LastName, m.Phone, m.Email
		}
		report.Candidacies = append(report.Candidacies, e)
	}
	return report, nil
}

// Summary aggregates every candidacy the zone has had.
func (s *Service) Summary(ctx context.Context, zoneID uuid.UUID) (*models.Summary, error) {
	candidacies, err := s.store.ListCandidaciesByZone(ctx, zoneID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidacies")
	}
	sum := &models.Summary{Total: len(candidacies)}
	total := 0
	for _, c := range candidacies {
		if c.IsEligible {
			sum.Eligible++
		} else {
			sum.NotEligible++
		}
		if c.SupportCount > sum.MaxSupport {
			sum.MaxSupport = c.SupportCount
		}
		total += c.SupportCount
	}
	if sum.Total > 0 {
		sum.AvgSupport = float64(total) / float64(sum.Total)
	}
	return sum, nil
}

// Supports is the zone's support history, newest first.
func (s *Service) Supports(ctx context.Context, zoneID uuid.UUID) ([]*models.SupportRecord, error) {
	z, err := s.store.FindZoneByID(ctx, zoneID)
	if err != nil {
		return nil, zone.NotFound(err)
	}
	supports, err := s.store.ListSupportsByZone(ctx, zoneID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list supports")
	}
	candidacies, err := s.store.ListCandidaciesByZone(ctx, zoneID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidacies")
	}
	byID := make(map[uuid.UUID]*models.Candidacy, len(candidacies))
	ids := personalIDs(candidacies)
	for _, c := range candidacies {
		byID[c.ID] = c
	}
	for _, sup := range supports {
		ids = append(ids, sup.SupporterPersonalID)
	}
	members, err := s.membersOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*models.SupportRecord, 0, len(supports))
	for _, sup := range supports {
		rec := &models.SupportRecord{Support: sup, ZoneName: z.Name}
		if c, ok := byID[sup.CandidacyID]; ok {
			rec.CandidacyPersonalID = c.PersonalID
			rec.CandidacySupports = c.SupportCount
			rec.CandidacyIsEligible = c.IsEligible
			if m, ok := members[c.PersonalID]; ok {
				rec.CandidacyName = m.FullName()
			}
		}
		if m, ok := members[sup.SupporterPersonalID]; ok {
			rec.SupporterName = m.FullName()
			rec.SupporterPhone = m.Phone
			rec.SupporterEmail = m.Email
		}
		out = append(out, rec)
	}
	return out, nil
}

// CandidacySupports lists who supported one candidacy, newest first.
func (s *Service) CandidacySupports(ctx context.Context, candidacyID uuid.UUID) (*models.CandidacySupports, error) {
	c, err := s.store.FindCandidacyByID(ctx, candidacyID)
	if err != nil {
		return nil, candidacyNotFound(err)
	}
	supports, err := s.store.ListSupportsByCandidacy(ctx, candidacyID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list supports")
	}
	ids := []string{c.PersonalID}
	for _, sup := range supports {
		ids = append(ids, sup.SupporterPersonalID)
	}
	members, err := s.membersOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := &models.CandidacySupports{Candidacy: c, Supporters: make([]*models.Supporter, 0, len(supports))}
	if m, ok := members[c.PersonalID]; ok {
		out.CandidateName = m.FullName()
	}
	for _, sup := range supports {
		row := &models.Supporter{
			SupportID:           sup.ID,
			SupporterPersonalID: sup.SupporterPersonalID,
			PeriodEndDate:       sup.PeriodEndDate,
			CreatedAt:           sup.CreatedAt,
		}
		if m, ok := members[sup.SupporterPersonalID]; ok {
			row.SupporterName = m.FullName()
			row.SupporterPhone = m.Phone
			row.SupporterEmail = m.Email
			row.SupporterAddress = m.Address
		}
		out.Supporters = append(out.Supporters, row)
	}
	return out, nil
}

// Stats aggregates support activity in a zone.
func (s *Service) Stats(ctx context.Context, zoneID uuid.UUID) (*models.SupportStats, error) {
	supports, err := s.store.ListSupportsByZone(ctx, zoneID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list supports")
	}
	candidacies, err := s.store.ListCandidaciesByZone(ctx, zoneID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list candidacies")
	}

	stats := &models.SupportStats{
		SupportsCast:     len(supports),
		TotalCandidacies: len(candidacies),
	}
	for _, c := range candidacies {
		if c.IsEligible {
			stats.EligibleCandidacies++
		}
	}

	supporters := map[string]struct{}{}
	supported := map[uuid.UUID]struct{}{}
	for _, sup := range supports {
		supporters[sup.SupporterPersonalID] = struct{}{}
		supported[sup.CandidacyID] = struct{}{}
		at := sup.CreatedAt
		if stats.FirstSupportAt == nil || at.Before(*stats.FirstSupportAt) {
			stats.FirstSupportAt = &at
		}
		if stats.LastSupportAt == nil || at.After(*stats.LastSupportAt) {
			stats.LastSupportAt = &at
		}
	}
	stats.DistinctSupporters = len(supporters)
	stats.CandidaciesSupported = len(supported)
	return stats, nil
}

func (s *Service) membersOf(ctx context.Context, ids []string) (map[string]*memberModels.Member, error) {
	if len(ids) == 0 {
		return map[string]*memberModels.Member{}, nil
	}
	members, err := s.store.ListMembersByPersonalIDs(ctx, strutil.Distinct(ids))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load members")
	}
	out := make(map[string]*memberModels.Member, len(members))
	for _, m := range members {
		out[m.PersonalID] = m
	}
	return out, nil
}

func personalIDs(candidacies []*models.Candidacy) []string {
	ids := make([]string, 0, len(candidacies))
	for _, c := range candidacies {
		ids = append(ids, c.PersonalID)
	}
	return ids
}

func eligibleOnly(in []*models.Candidacy) []*models.Candidacy {
	out := in[:0:0]
	for _, c := range in {
		if c.IsEligible {
			out = append(out, c)
		}
	}
	return out
}
