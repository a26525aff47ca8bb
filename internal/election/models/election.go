package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	candidacyModels "nhc/internal/candidacy/models"
	"nhc/pkg/calendar"
)

// Reasons reported by vote casting and closing.
const (
	ReasonSelfVoteForbidden    = "SelfVoteForbidden"
	ReasonAlreadyVoted         = "AlreadyVoted"
	ReasonCandidacyNotEligible = "CandidacyNotEligible"
	ReasonNoResults            = "NoResults"
)

// Vote is one ballot. A voter casts at most one ballot per election.
type Vote struct {
	ID              uuid.UUID     `json:"id"`
	ElectionID      uuid.UUID     `json:"electionId"`
	ZoneID          uuid.UUID     `json:"zoneId"`
	VoterPersonalID string        `json:"voterPersonalId"`
	CandidacyID     uuid.UUID     `json:"candidacyId"`
	PeriodEndDate   calendar.Date `json:"periodEndDate"`
	CreatedAt       time.Time     `json:"createdAt"`
}

// Result is the frozen tally of one candidacy in a closed election. Names and
// category are copied at close time and never recomputed.
type Result struct {
	ID          uuid.UUID `json:"id"`
	ElectionID  uuid.UUID `json:"electionId"`
	ZoneID      uuid.UUID `json:"zoneId"`
	CandidacyID uuid.UUID `json:"candidacyId"`
	PersonalID  string    `json:"personalId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Category    string    `json:"category"`
	TotalVotes  int       `json:"totalVotes"`
	CreatedAt   time.Time `json:"createdAt"`
}

// WinnerPolicy decides which eligible candidacies take their role at close.
type WinnerPolicy string

const (
	// PolicyAllEligible promotes every eligible candidacy.
	PolicyAllEligible WinnerPolicy = "all-eligible"
	// PolicyTopVote promotes one candidacy per category: most votes, then
	// earliest candidacy, then lowest id.
	PolicyTopVote WinnerPolicy = "top-vote"
)

func ParseWinnerPolicy(s string) (WinnerPolicy, error) {
	switch p := WinnerPolicy(strings.TrimSpace(s)); p {
	case "":
		return PolicyAllEligible, nil
	case PolicyAllEligible, PolicyTopVote:
		return p, nil
	default:
		return "", fmt.Errorf("unknown winner policy %q", s)
	}
}

// Tally is a candidacy with its vote count in one election.
type Tally struct {
	Candidacy *candidacyModels.Candidacy
	Votes     int
}

// SortTallies orders by category, then votes descending, then candidacy age.
func SortTallies(tallies []Tally) {
	sort.SliceStable(tallies, func(i, j int) bool {
		a, b := tallies[i], tallies[j]
		if a.Candidacy.Category != b.Candidacy.Category {
			return a.Candidacy.Category < b.Candidacy.Category
		}
		return ahead(a, b)
	})
}

// ahead reports whether a beats b within a category.
func ahead(a, b Tally) bool {
	if a.Votes != b.Votes {
		return a.Votes > b.Votes
	}
	if !a.Candidacy.CreatedAt.Equal(b.Candidacy.CreatedAt) {
		return a.Candidacy.CreatedAt.Before(b.Candidacy.CreatedAt)
	}
	return a.Candidacy.ID.String() < b.Candidacy.ID.String()
}

// Winners picks the tallies whose members take their category as role.
// The result is ordered by category.
func (p WinnerPolicy) Winners(tallies []Tally) []Tally {
	sorted := append([]Tally(nil), tallies...)
	SortTallies(sorted)
	if p != PolicyTopVote {
		return sorted
	}
	out := make([]Tally, 0, len(sorted))
	for i, t := range sorted {
		if i == 0 || sorted[i-1].Candidacy.Category != t.Candidacy.Category {
			out = append(out, t)
		}
	}
	return out
}

// CastRequest is the body of POST /votes.
type CastRequest struct {
	ElectionID      uuid.UUID `json:"electionId"`
	VoterPersonalID string    `json:"voterPersonalId"`
	CandidacyID     uuid.UUID `json:"candidacyId"`
}

func (r *CastRequest) Normalize() {
	r.VoterPersonalID = strings.TrimSpace(r.VoterPersonalID)
}

func (r *CastRequest) Validate() error {
	if r.ElectionID == uuid.Nil || r.VoterPersonalID == "" || r.CandidacyID == uuid.Nil {
		return fmt.Errorf("electionId, voterPersonalId and candidacyId are required")
	}
	return nil
}

// Winner is a member promoted at close.
type Winner struct {
	CandidacyID uuid.UUID `json:"candidacyId"`
	PersonalID  string    `json:"personalId"`
	Role        string    `json:"role"`
	TotalVotes  int       `json:"totalVotes"`
}

// PromotionFailure is a winner whose role could not be assigned. It does not
// undo the close.
type PromotionFailure struct {
	PersonalID string `json:"personalId"`
	Role       string `json:"role"`
	Error      string `json:"error"`
}

// CloseOutcome reports what closing an election did.
type CloseOutcome struct {
	ElectionID        uuid.UUID          `json:"electionId"`
	ZoneID            uuid.UUID          `json:"zoneId"`
	EndDate           calendar.Date      `json:"endDate"`
	Policy            WinnerPolicy       `json:"policy"`
	AlreadyClosed     bool               `json:"alreadyClosed"`
	Results           []*Result          `json:"results"`
	Winners           []Winner           `json:"winners"`
	Revoked           int                `json:"revoked"`
	PromotionFailures []PromotionFailure `json:"promotionFailures,omitempty"`
}

// Standing is one candidacy's line in a tally.
type Standing struct {
	CandidacyID uuid.UUID `json:"candidacyId"`
	PersonalID  string    `json:"personalId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Category    string    `json:"category"`
	TotalVotes  int       `json:"totalVotes"`
}

// CategoryStandings groups standings under one position.
type CategoryStandings struct {
	Category   string     `json:"category"`
	Candidates []Standing `json:"candidates"`
}

// Stats sources.
const (
	SourceSnapshot = "snapshot"
	SourceLive     = "live"
)

// Stats is the tally of one election, frozen or live.
type Stats struct {
	ElectionID uuid.UUID           `json:"electionId"`
	ZoneID     uuid.UUID           `json:"zoneId"`
	Source     string              `json:"source"`
	Positions  []CategoryStandings `json:"positions"`
}

// ElectionResults is one closed election's frozen results grouped by position.
type ElectionResults struct {
	ElectionID uuid.UUID           `json:"electionId"`
	StartDate  calendar.Date       `json:"electionStartDate"`
	EndDate    calendar.Date       `json:"electionEndDate"`
	Positions  []CategoryStandings `json:"positions"`
}

// GroupStandings groups already-ordered standings by category, keeping the
// order of first appearance.
func GroupStandings(rows []Standing) []CategoryStandings {
	out := []CategoryStandings{}
	idx := map[string]int{}
	for _, r := range rows {
		cat := r.Category
		if cat == "" {
			cat = "Unknown"
		}
		i, ok := idx[cat]
		if !ok {
			i = len(out)
			idx[cat] = i
			out = append(out, CategoryStandings{Category: cat})
		}
		out[i].Candidates = append(out[i].Candidates, r)
	}
	return out
}

// SortResults orders frozen results by category ascending, votes descending,
// then name so the output is stable.
func SortResults(results []*Result) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Category != b.Category {
			return a.Category < b.Category
		}
		if a.TotalVotes != b.TotalVotes {
			return a.TotalVotes > b.TotalVotes
		}
		return a.PersonalID < b.PersonalID
	})
}

// StandingOf converts a frozen result.
func StandingOf(r *Result) Standing {
	return Standing{
		CandidacyID: r.CandidacyID,
		PersonalID:  r.PersonalID,
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Category:    r.Category,
		TotalVotes:  r.TotalVotes,
	}
}

// VoteRecord is a ballot with names resolved.
type VoteRecord struct {
	*Vote
	VoterName           string `json:"voterName"`
	CandidacyPersonalID string `json:"candidacyPersonalId"`
	CandidacyName       string `json:"candidacyName"`
	Category            string `json:"category"`
}
