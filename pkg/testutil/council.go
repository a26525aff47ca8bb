package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	memberModels "nhc/internal/member/models"
	periodModels "nhc/internal/period/models"
	"nhc/internal/position"
	"nhc/internal/storage/memory"
	"nhc/internal/zone"
	"nhc/pkg/calendar"
)

// Council is a memory store seeded with one zone and the default positions,
// plus helpers to add members and windows directly.
type Council struct {
	t     *testing.T
	Store *memory.Store
	Zone  *zone.Zone
	Now   time.Time
}

// NewCouncil seeds a fresh store. now is the instant tests should also inject
// with requestcontext.WithTime.
func NewCouncil(t *testing.T, now time.Time) *Council {
	t.Helper()
	ctx := context.Background()
	store := memory.New()

	for _, name := range position.Defaults {
		require.NoError(t, store.CreatePosition(ctx, &position.Position{ID: uuid.New(), Name: name, CreatedAt: now}))
	}
	c := &Council{t: t, Store: store, Now: now}
	c.Zone = c.AddZone("Ward 1")
	return c
}

// Today is Now as a calendar date in UTC.
func (c *Council) Today() calendar.Date {
	return calendar.On(c.Now, time.UTC)
}

func (c *Council) AddZone(name string) *zone.Zone {
	c.t.Helper()
	z := &zone.Zone{
		ID:        uuid.New(),
		Name:      name,
		Boundary:  []zone.Point{{Lat: 1, Lng: 1}, {Lat: 1, Lng: 2}, {Lat: 2, Lng: 2}},
		CreatedAt: c.Now,
	}
	require.NoError(c.t, c.Store.CreateZone(context.Background(), z))
	return z
}

// AddMember registers a member living in the council's zone.
func (c *Council) AddMember(personalID string) *memberModels.Member {
	c.t.Helper()
	return c.AddMemberIn(personalID, c.Zone.ID)
}

func (c *Council) AddMemberIn(personalID string, zoneID uuid.UUID) *memberModels.Member {
	c.t.Helper()
	m := &memberModels.Member{
		ID:         uuid.New(),
		PersonalID: personalID,
		FirstName:  "First" + personalID,
		LastName:   "Last" + personalID,
		ZoneID:     &zoneID,
		Role:       memberModels.RoleUser,
		CreatedAt:  c.Now,
		UpdatedAt:  c.Now,
	}
	require.NoError(c.t, c.Store.CreateMember(context.Background(), m))
	return m
}

// AddMembers registers n members with personal ids prefix-1 .. prefix-n.
func (c *Council) AddMembers(prefix string, n int) []*memberModels.Member {
	c.t.Helper()
	out := make([]*memberModels.Member, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, c.AddMember(fmt.Sprintf("%s-%d", prefix, i)))
	}
	return out
}

// OpenWindow stores a window of kind for the council's zone spanning
// [today+fromDays, today+toDays].
func (c *Council) OpenWindow(kind periodModels.Kind, fromDays, toDays int) *periodModels.Period {
	c.t.Helper()
	today := c.Today()
	p := &periodModels.Period{
		ID:        uuid.New(),
		ZoneID:    c.Zone.ID,
		Kind:      kind,
		StartDate: today.AddDays(fromDays),
		EndDate:   today.AddDays(toDays),
		CreatedAt: c.Now,
	}
	p.Status = p.StatusOn(today)
	require.NoError(c.t, c.Store.CreatePeriod(context.Background(), p))
	return p
}

// MemoryTx runs units of work on a memory store for a service whose Store
// interface the memory backend satisfies.
type MemoryTx[S any] struct {
	Store *memory.Store
}

func (t MemoryTx[S]) RunInTx(ctx context.Context, fn func(store S) error) error {
	return t.Store.RunInTx(ctx, func(tx *memory.Store) error {
		return fn(any(tx).(S))
	})
}

// Notifications records messages instead of storing them.
type Notifications struct {
	Sent map[string][]string
}

func (n *Notifications) Notify(_ context.Context, personalID, message string) {
	if n.Sent == nil {
		n.Sent = map[string][]string{}
	}
	n.Sent[personalID] = append(n.Sent[personalID], message)
}
