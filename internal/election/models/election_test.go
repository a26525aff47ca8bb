package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	candidacyModels "nhc/internal/candidacy/models"
)

var base = time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)

func tally(personalID, category string, votes int, age time.Duration) Tally {
	return Tally{
		Candidacy: &candidacyModels.Candidacy{
			ID:         uuid.New(),
			PersonalID: personalID,
			Category:   category,
			IsEligible: true,
			CreatedAt:  base.Add(age),
		},
		Votes: votes,
	}
}

func personalIDs(ts []Tally) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.Candidacy.PersonalID)
	}
	return out
}

func TestParseWinnerPolicy(t *testing.T) {
	p, err := ParseWinnerPolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyAllEligible, p)

	p, err = ParseWinnerPolicy(" top-vote ")
	require.NoError(t, err)
	assert.Equal(t, PolicyTopVote, p)

	_, err = ParseWinnerPolicy("plurality")
	assert.Error(t, err)
}

func TestSortTallies(t *testing.T) {
	ts := []Tally{
		tally("t-low", "Treasurer", 1, 0),
		tally("p-late", "President", 3, time.Hour),
		tally("p-top", "President", 7, 2*time.Hour),
		tally("p-early", "President", 3, 0),
	}
	SortTallies(ts)
	assert.Equal(t, []string{"p-top", "p-early", "p-late", "t-low"}, personalIDs(ts))
}

func TestWinners(t *testing.T) {
	ts := []Tally{
		tally("p-2", "President", 2, 0),
		tally("p-5", "President", 5, time.Minute),
		tally("t-0", "Treasurer", 0, 0),
	}

	all := PolicyAllEligible.Winners(ts)
	assert.Equal(t, []string{"p-5", "p-2", "t-0"}, personalIDs(all))

	top := PolicyTopVote.Winners(ts)
	assert.Equal(t, []string{"p-5", "t-0"}, personalIDs(top))

	assert.Equal(t, "p-2", ts[0].Candidacy.PersonalID, "input is not reordered")
}

func TestTopVoteTieBreaksOnAge(t *testing.T) {
	ts := []Tally{
		tally("younger", "President", 4, time.Hour),
		tally("older", "President", 4, 0),
	}
	assert.Equal(t, []string{"older"}, personalIDs(PolicyTopVote.Winners(ts)))
}

func TestTopVotePicksOnePerCategory(t *testing.T) {
	categories := []string{"President", "Vice President", "Treasurer"}
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "n")
		ts := make([]Tally, 0, n)
		for i := 0; i < n; i++ {
			ts = append(ts, tally(
				uuid.NewString(),
				rapid.SampledFrom(categories).Draw(t, "category"),
				rapid.IntRange(0, 5).Draw(t, "votes"),
				time.Duration(rapid.IntRange(0, 100).Draw(t, "age"))*time.Minute,
			))
		}

		winners := PolicyTopVote.Winners(ts)
		best := map[string]int{}
		for _, tt := range ts {
			if v, ok := best[tt.Candidacy.Category]; !ok || tt.Votes > v {
				best[tt.Candidacy.Category] = tt.Votes
			}
		}
		if len(winners) != len(best) {
			t.Fatalf("got %d winners for %d categories", len(winners), len(best))
		}
		for _, w := range winners {
			if w.Votes != best[w.Candidacy.Category] {
				t.Fatalf("winner in %s has %d votes, best is %d", w.Candidacy.Category, w.Votes, best[w.Candidacy.Category])
			}
		}
		if len(PolicyAllEligible.Winners(ts)) != len(ts) {
			t.Fatalf("all-eligible dropped tallies")
		}
	})
}

func TestGroupStandings(t *testing.T) {
	groups := GroupStandings([]Standing{
		{PersonalID: "a", Category: "President"},
		{PersonalID: "b", Category: "President"},
		{PersonalID: "c", Category: "Treasurer"},
		{PersonalID: "d"},
	})

	require.Len(t, groups, 3)
	assert.Equal(t, "President", groups[0].Category)
	assert.Len(t, groups[0].Candidates, 2)
	assert.Equal(t, "Treasurer", groups[1].Category)
	assert.Equal(t, "Unknown", groups[2].Category)

	assert.NotNil(t, GroupStandings(nil), "empty grouping encodes as []")
}

func TestSortResults(t *testing.T) {
	rs := []*Result{
		{PersonalID: "b", Category: "Treasurer", TotalVotes: 1},
		{PersonalID: "z", Category: "President", TotalVotes: 2},
		{PersonalID: "a", Category: "President", TotalVotes: 2},
		{PersonalID: "m", Category: "President", TotalVotes: 9},
	}
	SortResults(rs)

	got := make([]string, 0, len(rs))
	for _, r := range rs {
		got = append(got, r.PersonalID)
	}
	assert.Equal(t, []string{"m", "a", "z", "b"}, got)
}
