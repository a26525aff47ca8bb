package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	memberModels "nhc/internal/member/models"
	"nhc/internal/notification"
	"nhc/internal/position"
	"nhc/internal/request"
	"nhc/internal/zone"
	"nhc/pkg/platform/sentinel"
)

func (s *Store) CreateZone(_ context.Context, z *zone.Zone) error {
	return s.write(func(st *state) error {
		for _, existing := range st.zones {
			if strings.EqualFold(existing.Name, z.Name) {
				return sentinel.ErrAlreadyUsed
			}
		}
		st.zones[z.ID] = *z
		return nil
	})
}

func (s *Store) FindZoneByID(_ context.Context, id uuid.UUID) (*zone.Zone, error) {
	var out *zone.Zone
	s.read(func(st *state) {
		if z, ok := st.zones[id]; ok {
			out = &z
		}
	})
	if out == nil {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

func (s *Store) ListZones(_ context.Context) ([]*zone.Zone, error) {
	out := []*zone.Zone{}
	s.read(func(st *state) {
		for _, z := range st.zones {
			out = append(out, &z)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreatePosition(_ context.Context, p *position.Position) error {
	return s.write(func(st *state) error {
		if _, ok := st.positions[p.Name]; ok {
			return sentinel.ErrAlreadyUsed
		}
		st.positions[p.Name] = *p
		return nil
	})
}

func (s *Store) FindPositionByName(_ context.Context, name string) (*position.Position, error) {
	var out *position.Position
	s.read(func(st *state) {
		if p, ok := st.positions[name]; ok {
			out = &p
		}
	})
	if out == nil {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

func (s *Store) ListPositions(_ context.Context) ([]*position.Position, error) {
	out := []*position.Position{}
	s.read(func(st *state) {
		for _, p := range st.positions {
			out = append(out, &p)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CreateMember(_ context.Context, m *memberModels.Member) error {
	return s.write(func(st *state) error {
		if _, ok := st.members[m.PersonalID]; ok {
			return sentinel.ErrAlreadyUsed
		}
		st.members[m.PersonalID] = *m
		return nil
	})
}

func (s *Store) FindMemberByPersonalID(_ context.Context, personalID string) (*memberModels.Member, error) {
	var out *memberModels.Member
	s.read(func(st *state) {
		if m, ok := st.members[personalID]; ok {
			out = &m
		}
	})
	if out == nil {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

func (s *Store) ListMembers(_ context.Context, zoneID *uuid.UUID) ([]*memberModels.Member, error) {
	out := []*memberModels.Member{}
	s.read(func(st *state) {
		for _, m := range st.members {
			if zoneID != nil && !m.InZone(*zoneID) {
				continue
			}
			out = append(out, &m)
		}
	})
	sortMembers(out)
	return out, nil
}

func (s *Store) ListMembersByPersonalIDs(_ context.Context, personalIDs []string) ([]*memberModels.Member, error) {
	out := []*memberModels.Member{}
	seen := map[string]bool{}
	s.read(func(st *state) {
		for _, id := range personalIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			if m, ok := st.members[id]; ok {
				out = append(out, &m)
			}
		}
	})
	sortMembers(out)
	return out, nil
}

func sortMembers(members []*memberModels.Member) {
	sort.Slice(members, func(i, j int) bool {
		a, b := members[i], members[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.PersonalID < b.PersonalID
	})
}

func (s *Store) UpdateMember(_ context.Context, m *memberModels.Member) error {
	return s.write(func(st *state) error {
		if _, ok := st.members[m.PersonalID]; !ok {
			return sentinel.ErrNotFound
		}
		st.members[m.PersonalID] = *m
		return nil
	})
}

func (s *Store) UpdateMemberRole(_ context.Context, personalID, role string, at time.Time) error {
	return s.write(func(st *state) error {
		m, ok := st.members[personalID]
		if !ok {
			return sentinel.ErrNotFound
		}
		m.Role = role
		m.UpdatedAt = at
		st.members[personalID] = m
		return nil
	})
}

func (s *Store) SetMemberZone(_ context.Context, personalID string, zoneID uuid.UUID) error {
	return s.write(func(st *state) error {
		m, ok := st.members[personalID]
		if !ok {
			return sentinel.ErrNotFound
		}
		if _, ok := st.zones[zoneID]; !ok {
			return sentinel.ErrNotFound
		}
		m.ZoneID = &zoneID
		st.members[personalID] = m
		return nil
	})
}

func (s *Store) CreateRoleAssignment(_ context.Context, a *memberModels.RoleAssignment) error {
	return s.write(func(st *state) error {
		if _, ok := st.members[a.PersonalID]; !ok {
			return sentinel.ErrNotFound
		}
		for _, existing := range st.assignments {
			if existing.ElectionID == a.ElectionID && existing.PersonalID == a.PersonalID && existing.Role == a.Role {
				return sentinel.ErrAlreadyUsed
			}
		}
		st.assignments = append(st.assignments, *a)
		return nil
	})
}

func (s *Store) RevokeRoleAssignments(_ context.Context, zoneID uuid.UUID, roles []string, at time.Time) ([]*memberModels.RoleAssignment, error) {
	wanted := make(map[string]bool, len(roles))
	for _, r := range roles {
		wanted[r] = true
	}
	revoked := []*memberModels.RoleAssignment{}
	err := s.write(func(st *state) error {
		for i := range st.assignments {
			a := &st.assignments[i]
			if a.ZoneID != zoneID || a.RevokedAt != nil || !wanted[a.Role] {
				continue
			}
			revokedAt := at
			a.RevokedAt = &revokedAt
			cp := *a
			revoked = append(revoked, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return revoked, nil
}

func (s *Store) ListRoleAssignments(_ context.Context, personalID string) ([]*memberModels.RoleAssignment, error) {
	out := []*memberModels.RoleAssignment{}
	s.read(func(st *state) {
		for _, a := range st.assignments {
			if a.PersonalID == personalID {
				out = append(out, &a)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].AssignedAt.After(out[j].AssignedAt) })
	return out, nil
}

func (s *Store) CreateNotification(_ context.Context, n *notification.Notification) error {
	return s.write(func(st *state) error {
		st.notifications = append(st.notifications, *n)
		return nil
	})
}

func (s *Store) ListNotifications(_ context.Context, personalID string) ([]*notification.Notification, error) {
	out := []*notification.Notification{}
	s.read(func(st *state) {
		for i := len(st.notifications) - 1; i >= 0; i-- {
			if n := st.notifications[i]; n.RecipientPersonalID == personalID {
				out = append(out, &n)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) CreateRequest(_ context.Context, r *request.Request) error {
	return s.write(func(st *state) error {
		if _, ok := st.requests[r.ID]; ok {
			return sentinel.ErrAlreadyUsed
		}
		st.requests[r.ID] = *r
		return nil
	})
}

func (s *Store) FindRequestByID(_ context.Context, id uuid.UUID) (*request.Request, error) {
	var out *request.Request
	s.read(func(st *state) {
		if r, ok := st.requests[id]; ok {
			out = &r
		}
	})
	if out == nil {
		return nil, sentinel.ErrNotFound
	}
	return out, nil
}

func (s *Store) UpdateRequest(_ context.Context, r *request.Request) error {
	return s.write(func(st *state) error {
		if _, ok := st.requests[r.ID]; !ok {
			return sentinel.ErrNotFound
		}
		st.requests[r.ID] = *r
		return nil
	})
}

func (s *Store) DeleteRequest(_ context.Context, id uuid.UUID) error {
	return s.write(func(st *state) error {
		if _, ok := st.requests[id]; !ok {
			return sentinel.ErrNotFound
		}
		delete(st.requests, id)
		return nil
	})
}

func (s *Store) ListRequests(_ context.Context, status request.Status) ([]*request.Request, error) {
	out := []*request.Request{}
	s.read(func(st *state) {
		for _, r := range st.requests {
			if status != "" && r.Status != status {
				continue
			}
			out = append(out, &r)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID.String() < b.ID.String()
	})
	return out, nil
}
