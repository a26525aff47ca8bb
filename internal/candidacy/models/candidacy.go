package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"nhc/pkg/calendar"
)

// SupportThreshold is the number of distinct supports that makes a candidacy
// eligible for the ballot.
const SupportThreshold = 5

type Status string

const (
	StatusPending  Status = "Pending"
	StatusEligible Status = "Eligible"
)

// Reasons reported by candidacy and support submission.
const (
	ReasonInvalidCategory          = "InvalidCategory"
	ReasonDuplicateCandidacy       = "DuplicateCandidacy"
	ReasonCandidacyNotFound        = "CandidacyNotFound"
	ReasonSelfSupportForbidden     = "SelfSupportForbidden"
	ReasonCategoryAlreadySupported = "CategoryAlreadySupported"
	ReasonDuplicateSupport         = "DuplicateSupport"
)

// Candidacy is a member's self-nomination for one position within one
// nomination period. A member holds at most one candidacy per period.
type Candidacy struct {
	ID                 uuid.UUID `json:"id"`
	PersonalID         string    `json:"personalId"`
	ZoneID             uuid.UUID `json:"zoneId"`
	NominationPeriodID uuid.UUID `json:"nominationPeriodId"`
	Category           string    `json:"category"`
	Status             Status    `json:"status"`
	SupportCount       int       `json:"supportCount"`
	IsEligible         bool      `json:"isEligible"`
	CreatedAt          time.Time `json:"createdAt"`
}

// NewCandidacy starts a pending candidacy with no supports.
func NewCandidacy(personalID string, zoneID, periodID uuid.UUID, category string, now time.Time) *Candidacy {
	return &Candidacy{
		ID:                 uuid.New(),
		PersonalID:         personalID,
		ZoneID:             zoneID,
		NominationPeriodID: periodID,
		Category:           category,
		Status:             StatusPending,
		CreatedAt:          now,
	}
}

// ApplySupportCount stores a fresh recount. Eligibility only ever turns on:
// once eligible, a lower count never revokes it. Reports whether this call
// made the candidacy eligible.
func (c *Candidacy) ApplySupportCount(n int) bool {
	c.SupportCount = n
	if n >= SupportThreshold && !c.IsEligible {
		c.IsEligible = true
		c.Status = StatusEligible
		return true
	}
	return false
}

// SupportsNeeded is how many more supports the candidacy needs.
func (c *Candidacy) SupportsNeeded() int {
	if c.IsEligible || c.SupportCount >= SupportThreshold {
		return 0
	}
	return SupportThreshold - c.SupportCount
}

// EligibilityStatus is the human-readable eligibility line for reports.
func (c *Candidacy) EligibilityStatus() string {
	if n := c.SupportsNeeded(); n > 0 {
		return fmt.Sprintf("Not Eligible (Need %d more supports)", n)
	}
	return "Eligible"
}

// Support is one member's endorsement of a candidacy. The nomination period
// and category are copied from the candidacy so "one support per category per
// period" can be enforced by a unique index.
type Support struct {
	ID                  uuid.UUID     `json:"id"`
	CandidacyID         uuid.UUID     `json:"candidacyId"`
	SupporterPersonalID string        `json:"supporterPersonalId"`
	ZoneID              uuid.UUID     `json:"zoneId"`
	NominationPeriodID  uuid.UUID     `json:"nominationPeriodId"`
	Category            string        `json:"category"`
	PeriodEndDate       calendar.Date `json:"periodEndDate"`
	CreatedAt           time.Time     `json:"createdAt"`
}

// SubmitRequest nominates the member for category in the zone's current period.
type SubmitRequest struct {
	PersonalID string    `json:"personalId"`
	ZoneID     uuid.UUID `json:"zoneId"`
	Category   string    `json:"category"`
}

func (r *SubmitRequest) Normalize() {
	r.PersonalID = strings.TrimSpace(r.PersonalID)
	r.Category = strings.TrimSpace(r.Category)
}

func (r *SubmitRequest) Validate() error {
	if r.PersonalID == "" || r.ZoneID == uuid.Nil || r.Category == "" {
		return fmt.Errorf("personalId, zoneId and category are required")
	}
	return nil
}

// SupportRequest is the body of a support submission.
type SupportRequest struct {
	SupporterPersonalID string `json:"supporterPersonalId"`
}

// SupportResult is returned after a support is recorded.
type SupportResult struct {
	CandidacyID  uuid.UUID `json:"candidacyId"`
	SupportCount int       `json:"supportCount"`
	IsEligible   bool      `json:"isEligible"`
}

// ErrCategorySupported is joined with sentinel.ErrAlreadyUsed by stores when
// the per-category support constraint, rather than the per-candidacy one,
// rejected an insert.
var ErrCategorySupported = errors.New("supporter already backs a candidacy in this category")
