package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	memberModels "nhc/internal/member/models"
	"nhc/internal/notification"
	"nhc/internal/position"
	"nhc/internal/request"
	"nhc/internal/zone"
)

const zoneColumns = `id, name, boundary, created_at`

func scanZone(row scanner) (*zone.Zone, error) {
	var (
		z        zone.Zone
		boundary []byte
	)
	if err := row.Scan(&z.ID, &z.Name, &boundary, &z.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(boundary, &z.Boundary); err != nil {
		return nil, fmt.Errorf("decode boundary: %w", err)
	}
	return &z, nil
}

func (s *Store) CreateZone(ctx context.Context, z *zone.Zone) error {
	boundary, err := json.Marshal(z.Boundary)
	if err != nil {
		return fmt.Errorf("encode boundary: %w", err)
	}
	_, err = s.q.ExecContext(ctx,
		`INSERT INTO zones (id, name, boundary, created_at) VALUES ($1, $2, $3::jsonb, $4)`,
		z.ID, z.Name, string(boundary), z.CreatedAt)
	return writeErr("create zone", err)
}

func (s *Store) FindZoneByID(ctx context.Context, id uuid.UUID) (*zone.Zone, error) {
	z, err := scanZone(s.q.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM zones WHERE id = $1`, id))
	if err != nil {
		return nil, readErr("find zone", err)
	}
	return z, nil
}

func (s *Store) ListZones(ctx context.Context) ([]*zone.Zone, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT `+zoneColumns+` FROM zones ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	return collect(rows, "list zones", scanZone)
}

func scanPosition(row scanner) (*position.Position, error) {
	var p position.Position
	if err := row.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) CreatePosition(ctx context.Context, p *position.Position) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO positions (id, name, created_at) VALUES ($1, $2, $3)`,
		p.ID, p.Name, p.CreatedAt)
	return writeErr("create position", err)
}

func (s *Store) FindPositionByName(ctx context.Context, name string) (*position.Position, error) {
	p, err := scanPosition(s.q.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM positions WHERE name = $1`, name))
	if err != nil {
		return nil, readErr("find position", err)
	}
	return p, nil
}

func (s *Store) ListPositions(ctx context.Context) ([]*position.Position, error) {
	rows, err := s.q.QueryContext(ctx, `SELECT id, name, created_at FROM positions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	return collect(rows, "list positions", scanPosition)
}

const memberColumns = `id, personal_id, first_name, last_name, email, phone, address, zone_id, role, password_hash, created_at, updated_at`

func scanMember(row scanner) (*memberModels.Member, error) {
	var (
		m      memberModels.Member
		zoneID uuid.NullUUID
	)
	err := row.Scan(&m.ID, &m.PersonalID, &m.FirstName, &m.LastName, &m.Email, &m.Phone, &m.Address,
		&zoneID, &m.Role, &m.PasswordHash, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if zoneID.Valid {
		m.ZoneID = &zoneID.UUID
	}
	return &m, nil
}

func (s *Store) CreateMember(ctx context.Context, m *memberModels.Member) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO members (`+memberColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.PersonalID, m.FirstName, m.LastName, m.Email, m.Phone, m.Address,
		m.ZoneID, m.Role, m.PasswordHash, m.CreatedAt, m.UpdatedAt)
	return writeErr("create member", err)
}

func (s *Store) FindMemberByPersonalID(ctx context.Context, personalID string) (*memberModels.Member, error) {
	m, err := scanMember(s.q.QueryRowContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE personal_id = $1`, personalID))
	if err != nil {
		return nil, readErr("find member", err)
	}
	return m, nil
}

func (s *Store) ListMembers(ctx context.Context, zoneID *uuid.UUID) ([]*memberModels.Member, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if zoneID == nil {
		rows, err = s.q.QueryContext(ctx,
			`SELECT `+memberColumns+` FROM members ORDER BY created_at, personal_id`)
	} else {
		rows, err = s.q.QueryContext(ctx,
			`SELECT `+memberColumns+` FROM members WHERE zone_id = $1 ORDER BY created_at, personal_id`, *zoneID)
	}
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	return collect(rows, "list members", scanMember)
}

func (s *Store) ListMembersByPersonalIDs(ctx context.Context, personalIDs []string) ([]*memberModels.Member, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+memberColumns+` FROM members WHERE personal_id = ANY($1) ORDER BY created_at, personal_id`,
		pq.Array(personalIDs))
	if err != nil {
		return nil, fmt.Errorf("list members by personal id: %w", err)
	}
	return collect(rows, "list members by personal id", scanMember)
}

func (s *Store) UpdateMember(ctx context.Context, m *memberModels.Member) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE members
		SET first_name = $2, last_name = $3, email = $4, phone = $5, address = $6,
		    zone_id = $7, role = $8, password_hash = $9, updated_at = $10
		WHERE personal_id = $1`,
		m.PersonalID, m.FirstName, m.LastName, m.Email, m.Phone, m.Address,
		m.ZoneID, m.Role, m.PasswordHash, m.UpdatedAt)
	return expectRow("update member", res, err)
}

func (s *Store) UpdateMemberRole(ctx context.Context, personalID, role string, at time.Time) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE members SET role = $2, updated_at = $3 WHERE personal_id = $1`,
		personalID, role, at)
	return expectRow("update member role", res, err)
}

func (s *Store) SetMemberZone(ctx context.Context, personalID string, zoneID uuid.UUID) error {
	res, err := s.q.ExecContext(ctx,
		`UPDATE members SET zone_id = $2 WHERE personal_id = $1`, personalID, zoneID)
	return expectRow("set member zone", res, err)
}

const assignmentColumns = `id, member_id, personal_id, zone_id, role, election_id, assigned_at, revoked_at`

func scanAssignment(row scanner) (*memberModels.RoleAssignment, error) {
	var (
		a         memberModels.RoleAssignment
		revokedAt sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.MemberID, &a.PersonalID, &a.ZoneID, &a.Role, &a.ElectionID, &a.AssignedAt, &revokedAt); err != nil {
		return nil, err
	}
	a.RevokedAt = nullTime(revokedAt)
	return &a, nil
}

func (s *Store) CreateRoleAssignment(ctx context.Context, a *memberModels.RoleAssignment) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO role_assignments (`+assignmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.MemberID, a.PersonalID, a.ZoneID, a.Role, a.ElectionID, a.AssignedAt, a.RevokedAt)
	return writeErr("create role assignment", err)
}

func (s *Store) RevokeRoleAssignments(ctx context.Context, zoneID uuid.UUID, roles []string, at time.Time) ([]*memberModels.RoleAssignment, error) {
	rows, err := s.q.QueryContext(ctx, `
		UPDATE role_assignments SET revoked_at = $3
		WHERE zone_id = $1 AND role = ANY($2) AND revoked_at IS NULL
		RETURNING `+assignmentColumns,
		zoneID, pq.Array(roles), at)
	if err != nil {
		return nil, writeErr("revoke role assignments", err)
	}
	return collect(rows, "revoke role assignments", scanAssignment)
}

func (s *Store) ListRoleAssignments(ctx context.Context, personalID string) ([]*memberModels.RoleAssignment, error) {
	rows, err := s.q.QueryContext(ctx,
		`SELECT `+assignmentColumns+` FROM role_assignments WHERE personal_id = $1 ORDER BY assigned_at DESC`,
		personalID)
	if err != nil {
		return nil, fmt.Errorf("list role assignments: %w", err)
	}
	return collect(rows, "list role assignments", scanAssignment)
}

func (s *Store) CreateNotification(ctx context.Context, n *notification.Notification) error {
	_, err := s.q.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient_personal_id, message, created_at) VALUES ($1, $2, $3, $4)`,
		n.ID, n.RecipientPersonalID, n.Message, n.CreatedAt)
	return writeErr("create notification", err)
}

func (s *Store) ListNotifications(ctx context.Context, personalID string) ([]*notification.Notification, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, recipient_personal_id, message, created_at FROM notifications
		WHERE recipient_personal_id = $1 ORDER BY created_at DESC`, personalID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return collect(rows, "list notifications", func(row scanner) (*notification.Notification, error) {
		var n notification.Notification
		if err := row.Scan(&n.ID, &n.RecipientPersonalID, &n.Message, &n.CreatedAt); err != nil {
			return nil, err
		}
		return &n, nil
	})
}

const requestColumns = `id, personal_id, location, description, status, assigned_zone_id, created_at, updated_at`

func scanRequest(row scanner) (*request.Request, error) {
	var (
		r      request.Request
		zoneID uuid.NullUUID
	)
	err := row.Scan(&r.ID, &r.PersonalID, &r.Location, &r.Description, &r.Status, &zoneID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if zoneID.Valid {
		r.AssignedZoneID = &zoneID.UUID
	}
	return &r, nil
}

func (s *Store) CreateRequest(ctx context.Context, r *request.Request) error {
	_, err := s.q.ExecContext(ctx, `
		INSERT INTO requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		r.ID, r.PersonalID, r.Location, r.Description, string(r.Status), r.AssignedZoneID, r.CreatedAt, r.UpdatedAt)
	return writeErr("create request", err)
}

func (s *Store) FindRequestByID(ctx context.Context, id uuid.UUID) (*request.Request, error) {
	r, err := scanRequest(s.q.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = $1`, id))
	if err != nil {
		return nil, readErr("find request", err)
	}
	return r, nil
}

func (s *Store) UpdateRequest(ctx context.Context, r *request.Request) error {
	res, err := s.q.ExecContext(ctx, `
		UPDATE requests SET location = $2, description = $3, status = $4, assigned_zone_id = $5, updated_at = $6
		WHERE id = $1`,
		r.ID, r.Location, r.Description, string(r.Status), r.AssignedZoneID, r.UpdatedAt)
	return expectRow("update request", res, err)
}

func (s *Store) DeleteRequest(ctx context.Context, id uuid.UUID) error {
	res, err := s.q.ExecContext(ctx, `DELETE FROM requests WHERE id = $1`, id)
	return expectRow("delete request", res, err)
}

func (s *Store) ListRequests(ctx context.Context, status request.Status) ([]*request.Request, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM requests
		WHERE $1::text = '' OR status = $1::text
		ORDER BY created_at DESC, id`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return collect(rows, "list requests", scanRequest)
}
