package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"nhc/pkg/calendar"
	dErrors "nhc/pkg/domain-errors"
)

// Kind separates nomination windows from election windows. Each kind keeps
// its own history per zone.
type Kind string

const (
	KindNomination Kind = "nomination"
	KindElection   Kind = "election"
)

func (k Kind) IsValid() bool {
	return k == KindNomination || k == KindElection
}

// Label is the capitalised kind used in messages.
func (k Kind) Label() string {
	if k == KindElection {
		return "Election"
	}
	return "Nomination"
}

type Status string

const (
	StatusScheduled Status = "Scheduled"
	StatusActive    Status = "Active"
	StatusEnded     Status = "Ended"
)

// Reasons reported by the window gates.
const (
	ReasonNoNominationScheduled  = "NoNominationScheduled"
	ReasonNominationWindowClosed = "NominationWindowClosed"
	ReasonElectionNotFound       = "ElectionNotFound"
	ReasonVotingWindowClosed     = "VotingWindowClosed"
)

// Period is one scheduled window for a zone. Rows are never deleted: a new
// schedule supersedes the previous one and the latest row is the current window.
type Period struct {
	ID        uuid.UUID     `json:"id"`
	ZoneID    uuid.UUID     `json:"zoneId"`
	Kind      Kind          `json:"kind"`
	StartDate calendar.Date `json:"startDate"`
	EndDate   calendar.Date `json:"endDate"`
	Status    Status        `json:"status"`
	CreatedAt time.Time     `json:"createdAt"`
	EndedAt   *time.Time    `json:"endedAt,omitempty"`
}

// New builds a period for a window that has not yet passed.
func New(zoneID uuid.UUID, kind Kind, start, end, today calendar.Date, now time.Time) (*Period, error) {
	if !kind.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, fmt.Sprintf("unknown period kind %q", kind))
	}
	p := &Period{
		ID:        uuid.New(),
		ZoneID:    zoneID,
		Kind:      kind,
		StartDate: start,
		EndDate:   end,
		CreatedAt: now,
	}
	p.Status = p.StatusOn(today)
	return p, nil
}

// StatusOn is the effective status on a given day. A stored Ended status wins
// over the dates; otherwise the inclusive [start, end] window decides.
func (p *Period) StatusOn(today calendar.Date) Status {
	switch {
	case p.Status == StatusEnded, today.After(p.EndDate):
		return StatusEnded
	case today.Before(p.StartDate):
		return StatusScheduled
	default:
		return StatusActive
	}
}

// OpenOn reports whether the window admits submissions on today.
func (p *Period) OpenOn(today calendar.Date) bool {
	return p.StatusOn(today) == StatusActive
}

// CheckOpen returns a window_closed error naming the window when it is not open.
func (p *Period) CheckOpen(today calendar.Date) error {
	if p.OpenOn(today) {
		return nil
	}
	reason := ReasonNominationWindowClosed
	what := "Nominations are not open"
	if p.Kind == KindElection {
		reason = ReasonVotingWindowClosed
		what = "Voting is not open"
	}
	return dErrors.New(dErrors.CodeWindowClosed,
		fmt.Sprintf("%s. %s period: %s to %s", what, p.Kind.Label(), p.StartDate, p.EndDate),
	).WithReason(reason)
}

// End closes the window early. endDate is clamped to today but never before
// startDate. Returns false when the period had already been ended.
func (p *Period) End(today calendar.Date, now time.Time) bool {
	if p.Status == StatusEnded && p.EndedAt != nil {
		return false
	}
	p.Status = StatusEnded
	p.EndedAt = &now
	p.EndDate = calendar.Max(p.StartDate, calendar.Min(p.EndDate, today))
	return true
}

// Supersede marks an older window Ended because a new one was scheduled.
// Its dates stay as history.
func (p *Period) Supersede(now time.Time) {
	p.Status = StatusEnded
	p.EndedAt = &now
}

// WithStatusOn returns a copy whose Status is the effective status on today,
// for responses.
func (p *Period) WithStatusOn(today calendar.Date) *Period {
	cp := *p
	cp.Status = p.StatusOn(today)
	return &cp
}

// NotScheduled is the error for a zone that has no period of kind.
func NotScheduled(kind Kind) error {
	if kind == KindElection {
		return dErrors.New(dErrors.CodeNotFound, "Election not found for this zone").WithReason(ReasonElectionNotFound)
	}
	return dErrors.New(dErrors.CodeNotFound, "Nomination period not set for this zone").WithReason(ReasonNoNominationScheduled)
}

// View is a period with its zone name, as listed to clients.
type View struct {
	*Period
	ZoneName string `json:"zoneName"`
}

// ScheduleRequest opens a window for a zone.
type ScheduleRequest struct {
	ZoneID    uuid.UUID     `json:"zoneId"`
	StartDate calendar.Date `json:"startDate"`
	EndDate   calendar.Date `json:"endDate"`
}

func (r *ScheduleRequest) Validate(today calendar.Date) error {
	switch {
	case r.ZoneID == uuid.Nil:
		return fmt.Errorf("zoneId is required")
	case r.StartDate.IsZero() || r.EndDate.IsZero():
		return fmt.Errorf("startDate and endDate are required")
	case r.EndDate.Before(r.StartDate):
		return fmt.Errorf("endDate must not be before startDate")
	case r.EndDate.Before(today):
		return fmt.Errorf("endDate %s is already in the past", r.EndDate)
	}
	return nil
}
