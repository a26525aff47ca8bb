package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	candidacyModels "nhc/internal/candidacy/models"
	electionModels "nhc/internal/election/models"
	periodModels "nhc/internal/period/models"
	"nhc/pkg/calendar"
	"nhc/pkg/platform/sentinel"
)

func (s *Store) CreatePeriod(_ context.Context, p *periodModels.Period) error {
	return s.write(func(st *state) error {
		if _, ok := st.zones[p.ZoneID]; !ok {
			return sentinel.ErrNotFound
		}
		st.periods = append(st.periods, *p)
		return nil
	})
}

func (s *Store) UpdatePeriod(_ context.Context, p *periodModels.Period) error {
	return s.write(func(st *state) error {
		for i := range st.periods {
			if st.periods[i].ID == p.ID {
				st.periods[i] = *p
				return nil
			}
		}
		return sentinel.ErrNotFound
	})
}

func (s *Store) FindPeriodByID(_ context.Context, id uuid.UUID) (*periodModels.Period, error) {
	var out *periodModels.Period
	s.read(func(st *state) {
		for _, p := range st.periods {
			if p.ID == id {
				out = &p
				return
			}
		}
	})
	if out == nil {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

// FindLatestPeriod returns the most recently scheduled period of kind.
func (s *Store) FindLatestPeriod(_ context.Context, zoneID uuid.UUID, kind periodModels.Kind) (*periodModels.Period, error) {
	var out *periodModels.Period
	s.read(func(st *state) {
		for i := len(st.periods) - 1; i >= 0; i-- {
			if p := st.periods[i]; p.ZoneID == zoneID && p.Kind == kind {
				out = &p
				return
			}
		}
	})
	if out == nil {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

func (s *Store) ListUnendedPeriods(_ context.Context, zoneID uuid.UUID, kind periodModels.Kind) ([]*periodModels.Period, error) {
	out := []*periodModels.Period{}
	s.read(func(st *state) {
		for _, p := range st.periods {
			if p.ZoneID == zoneID && p.Kind == kind && p.Status != periodModels.StatusEnded {
				out = append(out, &p)
			}
		}
	})
	return out, nil
}

func (s *Store) ListOpenPeriods(_ context.Context, kind periodModels.Kind, today calendar.Date) ([]*periodModels.Period, error) {
	out := []*periodModels.Period{}
	s.read(func(st *state) {
		for _, p := range st.periods {
			if p.Kind == kind && p.OpenOn(today) {
				out = append(out, &p)
			}
		}
	})
	return out, nil
}

func (s *Store) CreateCandidacy(_ context.Context, c *candidacyModels.Candidacy) error {
	return s.write(func(st *state) error {
		for _, existing := range st.candidacies {
			if existing.PersonalID == c.PersonalID && existing.NominationPeriodID == c.NominationPeriodID {
				return sentinel.ErrAlreadyUsed
			}
		}
		st.candidacies[c.ID] = *c
		return nil
	})
}

func (s *Store) FindCandidacyByID(_ context.Context, id uuid.UUID) (*candidacyModels.Candidacy, error) {
	var out *candidacyModels.Candidacy
	s.read(func(st *state) {
		if c, ok := st.candidacies[id]; ok {
			out = &c
		}
	})
	if out == nil {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

func (s *Store) UpdateCandidacy(_ context.Context, c *candidacyModels.Candidacy) error {
	return s.write(func(st *state) error {
		if _, ok := st.candidacies[c.ID]; !ok {
			return sentinel.ErrNotFound
		}
		st.candidacies[c.ID] = *c
		return nil
	})
}

func (s *Store) HasCandidacy(_ context.Context, personalID string, periodID uuid.UUID) (bool, error) {
	found := false
	s.read(func(st *state) {
		for _, c := range st.candidacies {
			if c.PersonalID == personalID && c.NominationPeriodID == periodID {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (s *Store) ListCandidaciesByPeriod(_ context.Context, periodID uuid.UUID) ([]*candidacyModels.Candidacy, error) {
	return s.candidacies(func(c candidacyModels.Candidacy) bool { return c.NominationPeriodID == periodID }), nil
}

func (s *Store) ListCandidaciesByZone(_ context.Context, zoneID uuid.UUID) ([]*candidacyModels.Candidacy, error) {
	return s.candidacies(func(c candidacyModels.Candidacy) bool { return c.ZoneID == zoneID }), nil
}

// candidacies returns matching candidacies oldest first.
func (s *Store) candidacies(match func(candidacyModels.Candidacy) bool) []*candidacyModels.Candidacy {
	out := []*candidacyModels.Candidacy{}
	s.read(func(st *state) {
		for _, c := range st.candidacies {
			if match(c) {
				out = append(out, &c)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out
}

// CreateSupport enforces one support per (candidacy, supporter) and one per
// (period, category, supporter).
func (s *Store) CreateSupport(_ context.Context, sup *candidacyModels.Support) error {
	return s.write(func(st *state) error {
		for _, existing := range st.supports {
			if existing.SupporterPersonalID != sup.SupporterPersonalID {
				continue
			}
			if existing.CandidacyID == sup.CandidacyID {
				return sentinel.ErrAlreadyUsed
			}
			if existing.NominationPeriodID == sup.NominationPeriodID && existing.Category == sup.Category {
				return fmt.Errorf("%w: %w", sentinel.ErrAlreadyUsed, candidacyModels.ErrCategorySupported)
			}
		}
		st.supports = append(st.supports, *sup)
		return nil
	})
}

func (s *Store) CountSupports(_ context.Context, candidacyID uuid.UUID) (int, error) {
	n := 0
	s.read(func(st *state) {
		for _, sup := range st.supports {
			if sup.CandidacyID == candidacyID {
				n++
			}
		}
	})
	return n, nil
}

func (s *Store) HasSupport(_ context.Context, candidacyID uuid.UUID, supporterPersonalID string) (bool, error) {
	found := false
	s.read(func(st *state) {
		for _, sup := range st.supports {
			if sup.CandidacyID == candidacyID && sup.SupporterPersonalID == supporterPersonalID {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (s *Store) HasSupportInCategory(_ context.Context, periodID uuid.UUID, category, supporterPersonalID string) (bool, error) {
	found := false
	s.read(func(st *state) {
		for _, sup := range st.supports {
			if sup.NominationPeriodID == periodID && sup.Category == category && sup.SupporterPersonalID == supporterPersonalID {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (s *Store) ListSupportsByZone(_ context.Context, zoneID uuid.UUID) ([]*candidacyModels.Support, error) {
	return s.supports(func(sup candidacyModels.Support) bool { return sup.ZoneID == zoneID }), nil
}

func (s *Store) ListSupportsByCandidacy(_ context.Context, candidacyID uuid.UUID) ([]*candidacyModels.Support, error) {
	return s.supports(func(sup candidacyModels.Support) bool { return sup.CandidacyID == candidacyID }), nil
}

func (s *Store) ListSupportsBySupporter(_ context.Context, supporterPersonalID string) ([]*candidacyModels.Support, error) {
	return s.supports(func(sup candidacyModels.Support) bool { return sup.SupporterPersonalID == supporterPersonalID }), nil
}

// supports returns matching supports newest first.
func (s *Store) supports(match func(candidacyModels.Support) bool) []*candidacyModels.Support {
	out := []*candidacyModels.Support{}
	s.read(func(st *state) {
		for i := len(st.supports) - 1; i >= 0; i-- {
			if sup := st.supports[i]; match(sup) {
				out = append(out, &sup)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *Store) CreateVote(_ context.Context, v *electionModels.Vote) error {
	return s.write(func(st *state) error {
		for _, existing := range st.votes {
			if existing.ElectionID == v.ElectionID && existing.VoterPersonalID == v.VoterPersonalID {
				return sentinel.ErrAlreadyUsed
			}
		}
		st.votes = append(st.votes, *v)
		return nil
	})
}

func (s *Store) HasVoted(_ context.Context, electionID uuid.UUID, voterPersonalID string) (bool, error) {
	found := false
	s.read(func(st *state) {
		for _, v := range st.votes {
			if v.ElectionID == electionID && v.VoterPersonalID == voterPersonalID {
				found = true
				return
			}
		}
	})
	return found, nil
}

func (s *Store) ListVotesByElection(_ context.Context, electionID uuid.UUID) ([]*electionModels.Vote, error) {
	return s.votes(func(v electionModels.Vote) bool { return v.ElectionID == electionID }), nil
}

func (s *Store) ListVotesByCandidacy(_ context.Context, candidacyID uuid.UUID) ([]*electionModels.Vote, error) {
	return s.votes(func(v electionModels.Vote) bool { return v.CandidacyID == candidacyID }), nil
}

func (s *Store) votes(match func(electionModels.Vote) bool) []*electionModels.Vote {
	out := []*electionModels.Vote{}
	s.read(func(st *state) {
		for i := len(st.votes) - 1; i >= 0; i-- {
			if v := st.votes[i]; match(v) {
				out = append(out, &v)
			}
		}
	})
	return out
}

func (s *Store) CountVotesByCandidacy(_ context.Context, electionID uuid.UUID) (map[uuid.UUID]int, error) {
	out := map[uuid.UUID]int{}
	s.read(func(st *state) {
		for _, v := range st.votes {
			if v.ElectionID == electionID {
				out[v.CandidacyID]++
			}
		}
	})
	return out, nil
}

func (s *Store) CreateResult(_ context.Context, r *electionModels.Result) error {
	return s.write(func(st *state) error {
		for _, existing := range st.results {
			if existing.ElectionID == r.ElectionID && existing.CandidacyID == r.CandidacyID {
				return sentinel.ErrAlreadyUsed
			}
		}
		st.results = append(st.results, *r)
		return nil
	})
}

func (s *Store) ListResultsByElection(_ context.Context, electionID uuid.UUID) ([]*electionModels.Result, error) {
	return s.results(func(r electionModels.Result) bool { return r.ElectionID == electionID }), nil
}

func (s *Store) ListResultsByZone(_ context.Context, zoneID uuid.UUID) ([]*electionModels.Result, error) {
	return s.results(func(r electionModels.Result) bool { return r.ZoneID == zoneID }), nil
}

func (s *Store) results(match func(electionModels.Result) bool) []*electionModels.Result {
	out := []*electionModels.Result{}
	s.read(func(st *state) {
		for _, r := range st.results {
			if match(r) {
				out = append(out, &r)
			}
		}
	})
	return out
}
