// Package memory is the in-process backend. One Store satisfies every
// service's store interface, so a single instance backs the whole server in
// development and in tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	candidacyModels "nhc/internal/candidacy/models"
	electionModels "nhc/internal/election/models"
	memberModels "nhc/internal/member/models"
	"nhc/internal/notification"
	periodModels "nhc/internal/period/models"
	"nhc/internal/position"
	"nhc/internal/request"
	"nhc/internal/zone"
)

type state struct {
	zones         map[uuid.UUID]zone.Zone
	positions     map[string]position.Position
	members       map[string]memberModels.Member
	assignments   []memberModels.RoleAssignment
	notifications []notification.Notification
	requests      map[uuid.UUID]request.Request
	periods       []periodModels.Period
	candidacies   map[uuid.UUID]candidacyModels.Candidacy
	supports      []candidacyModels.Support
	votes         []electionModels.Vote
	results       []electionModels.Result
}

func newState() *state {
	return &state{
		zones:       map[uuid.UUID]zone.Zone{},
		positions:   map[string]position.Position{},
		members:     map[string]memberModels.Member{},
		requests:    map[uuid.UUID]request.Request{},
		candidacies: map[uuid.UUID]candidacyModels.Candidacy{},
	}
}

func (st *state) clone() *state {
	cp := &state{
		zones:         make(map[uuid.UUID]zone.Zone, len(st.zones)),
		positions:     make(map[string]position.Position, len(st.positions)),
		members:       make(map[string]memberModels.Member, len(st.members)),
		assignments:   append([]memberModels.RoleAssignment(nil), st.assignments...),
		notifications: append([]notification.Notification(nil), st.notifications...),
		requests:      make(map[uuid.UUID]request.Request, len(st.requests)),
		periods:       append([]periodModels.Period(nil), st.periods...),
		candidacies:   make(map[uuid.UUID]candidacyModels.Candidacy, len(st.candidacies)),
		supports:      append([]candidacyModels.Support(nil), st.supports...),
		votes:         append([]electionModels.Vote(nil), st.votes...),
		results:       append([]electionModels.Result(nil), st.results...),
	}
	for k, v := range st.zones {
		cp.zones[k] = v
	}
	for k, v := range st.positions {
		cp.positions[k] = v
	}
	for k, v := range st.members {
		cp.members[k] = v
	}
	for k, v := range st.requests {
		cp.requests[k] = v
	}
	for k, v := range st.candidacies {
		cp.candidacies[k] = v
	}
	return cp
}

type db struct {
	mu    sync.RWMutex
	txMu  sync.Mutex
	state *state
}

// Store keeps all records in memory. Units of work are serialized and undone
// by restoring a snapshot when they fail.
type Store struct {
	db    *db
	bound bool
}

func New() *Store {
	return &Store{db: &db{state: newState()}}
}

// RunInTx runs fn against a store bound to one unit of work. A failed fn
// leaves no trace. Nested calls join the outer unit.
func (s *Store) RunInTx(ctx context.Context, fn func(store *Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.bound {
		return fn(s)
	}
	s.db.txMu.Lock()
	defer s.db.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(&Store{db: s.db, bound: true}); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

// Savepoint undoes fn's writes, and only those, when fn fails.
func (s *Store) Savepoint(_ context.Context, _ string, fn func() error) error {
	snapshot := s.snapshot()
	if err := fn(); err != nil {
		s.restore(snapshot)
		return err
	}
	return nil
}

func (s *Store) snapshot() *state {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	return s.db.state.clone()
}

func (s *Store) restore(st *state) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.state = st
}

// write applies fn under the write lock. Outside a unit of work it also waits
// for any running unit so a rollback cannot discard it.
func (s *Store) write(fn func(st *state) error) error {
	if !s.bound {
		s.db.txMu.Lock()
		defer s.db.txMu.Unlock()
	}
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	return fn(s.db.state)
}

func (s *Store) read(fn func(st *state)) {
	s.db.mu.RLock()
	defer s.db.mu.RUnlock()
	fn(s.db.state)
}
