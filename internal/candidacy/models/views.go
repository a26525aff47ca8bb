package models

import (
	"time"

	"github.com/google/uuid"

	"nhc/pkg/calendar"
)

// ListFilter narrows GET /candidacies.
type ListFilter struct {
	ZoneID              uuid.UUID
	EligibleOnly        bool
	SupporterPersonalID string
}

// View is a candidacy of the current nomination period as shown on the ballot
// and nomination pages.
type View struct {
	*Candidacy
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	ElectionVotes int    `json:"electionVotes"`
	IsSupported   bool   `json:"isSupported"`
}

// EligibilityEntry is one row of the eligibility report.
type EligibilityEntry struct {
	*Candidacy
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	Phone             string `json:"phone,omitempty"`
	Email             string `json:"email,omitempty"`
	ZoneName          string `json:"zoneName"`
	EligibilityStatus string `json:"eligibilityStatus"`
}

// EligibilityReport lists every candidacy of a zone against the latest window.
type EligibilityReport struct {
	NominationStartDate calendar.Date       `json:"nominationStartDate"`
	NominationEndDate   calendar.Date       `json:"nominationEndDate"`
	Candidacies         []*EligibilityEntry `json:"candidacies"`
}

// Summary aggregates a zone's candidacies.
type Summary struct {
	Total       int     `json:"total"`
	Eligible    int     `json:"eligible"`
	NotEligible int     `json:"notEligible"`
	MaxSupport  int     `json:"maxSupport"`
	AvgSupport  float64 `json:"avgSupport"`
}

// SupportRecord is one row of a zone's support history.
type SupportRecord struct {
	*Support
	CandidacyPersonalID string `json:"candidacyPersonalId"`
	CandidacyName       string `json:"candidacyName"`
	CandidacySupports   int    `json:"candidacySupportCount"`
	CandidacyIsEligible bool   `json:"candidacyIsEligible"`
	SupporterName       string `json:"supporterName"`
	SupporterPhone      string `json:"supporterPhone,omitempty"`
	SupporterEmail      string `json:"supporterEmail,omitempty"`
	ZoneName            string `json:"zoneName"`
}

// Supporter is one endorsement of a single candidacy.
type Supporter struct {
	SupportID           uuid.UUID     `json:"supportId"`
	SupporterPersonalID string        `json:"supporterPersonalId"`
	SupporterName       string        `json:"supporterName"`
	SupporterPhone      string        `json:"supporterPhone,omitempty"`
	SupporterEmail      string        `json:"supporterEmail,omitempty"`
	SupporterAddress    string        `json:"supporterAddress,omitempty"`
	PeriodEndDate       calendar.Date `json:"periodEndDate"`
	CreatedAt           time.Time     `json:"createdAt"`
}

// CandidacySupports is a candidacy with its supporters, newest first.
type CandidacySupports struct {
	Candidacy     *Candidacy   `json:"candidacy"`
	CandidateName string       `json:"candidateName"`
	Supporters    []*Supporter `json:"supporters"`
}

// SupportStats aggregates support activity in a zone.
type SupportStats struct {
	DistinctSupporters   int        `json:"distinctSupporters"`
	SupportsCast         int        `json:"supportsCast"`
	CandidaciesSupported int        `json:"candidaciesSupported"`
	EligibleCandidacies  int        `json:"eligibleCandidacies"`
	TotalCandidacies     int        `json:"totalCandidacies"`
	FirstSupportAt       *time.Time `json:"firstSupportAt,omitempty"`
	LastSupportAt        *time.Time `json:"lastSupportAt,omitempty"`
}
