package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func newCandidacy() *Candidacy {
	return NewCandidacy("P-1", uuid.New(), uuid.New(), "President", time.Now())
}

func TestNewCandidacyIsPending(t *testing.T) {
	c := newCandidacy()
	assert.Equal(t, StatusPending, c.Status)
	assert.False(t, c.IsEligible)
	assert.Zero(t, c.SupportCount)
	assert.Equal(t, SupportThreshold, c.SupportsNeeded())
}

func TestApplySupportCount(t *testing.T) {
	c := newCandidacy()

	assert.False(t, c.ApplySupportCount(SupportThreshold-1))
	assert.Equal(t, StatusPending, c.Status)
	assert.Equal(t, 1, c.SupportsNeeded())
	assert.Equal(t, "Not Eligible (Need 1 more supports)", c.EligibilityStatus())

	assert.True(t, c.ApplySupportCount(SupportThreshold), "crossing the threshold flips eligibility")
	assert.Equal(t, StatusEligible, c.Status)
	assert.Equal(t, "Eligible", c.EligibilityStatus())

	assert.False(t, c.ApplySupportCount(SupportThreshold+1), "already eligible")
	assert.False(t, c.ApplySupportCount(0))
	assert.True(t, c.IsEligible, "a lower recount never revokes eligibility")
	assert.Equal(t, 0, c.SupportsNeeded())
}

func TestEligibilityIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		counts := rapid.SliceOf(rapid.IntRange(0, 3*SupportThreshold)).Draw(t, "counts")
		c := newCandidacy()
		flips := 0
		seenThreshold := false
		for _, n := range counts {
			wasEligible := c.IsEligible
			if c.ApplySupportCount(n) {
				flips++
			}
			if n >= SupportThreshold {
				seenThreshold = true
			}
			if wasEligible && !c.IsEligible {
				t.Fatalf("eligibility revoked by count %d", n)
			}
			if c.IsEligible != seenThreshold {
				t.Fatalf("eligible=%v after counts reaching threshold=%v", c.IsEligible, seenThreshold)
			}
			if c.SupportCount != n {
				t.Fatalf("support count %d, want %d", c.SupportCount, n)
			}
		}
		if flips > 1 {
			t.Fatalf("eligibility flipped %d times", flips)
		}
	})
}

func TestSubmitRequest(t *testing.T) {
	r := SubmitRequest{PersonalID: "  P-1 ", ZoneID: uuid.New(), Category: " President "}
	r.Normalize()
	assert.Equal(t, "P-1", r.PersonalID)
	assert.Equal(t, "President", r.Category)
	assert.NoError(t, r.Validate())

	assert.Error(t, (&SubmitRequest{PersonalID: "P-1", Category: "President"}).Validate())
}
