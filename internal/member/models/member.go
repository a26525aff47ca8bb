package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RoleUser is the role of every member who holds no position.
const RoleUser = "User"

// Member is a citizen record keyed by personal id.
type Member struct {
	ID           uuid.UUID  `json:"id"`
	PersonalID   string     `json:"personalId"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Email        string     `json:"email,omitempty"`
	Phone        string     `json:"phone,omitempty"`
	Address      string     `json:"address,omitempty"`
	ZoneID       *uuid.UUID `json:"zoneId"`
	Role         string     `json:"role"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// FullName joins first and last name.
func (m *Member) FullName() string {
	return strings.TrimSpace(m.FirstName + " " + m.LastName)
}

// InZone reports whether the member is assigned to zoneID.
func (m *Member) InZone(zoneID uuid.UUID) bool {
	return m.ZoneID != nil && *m.ZoneID == zoneID
}

// Profile is a member with the zone name resolved for display.
type Profile struct {
	*Member
	ZoneName string `json:"zoneName,omitempty"`
}

// RoleAssignment records one period a member held a position role.
// RevokedAt is nil while the assignment is current.
type RoleAssignment struct {
	ID         uuid.UUID  `json:"id"`
	MemberID   uuid.UUID  `json:"memberId"`
	PersonalID string     `json:"personalId"`
	ZoneID     uuid.UUID  `json:"zoneId"`
	Role       string     `json:"role"`
	ElectionID uuid.UUID  `json:"electionId"`
	AssignedAt time.Time  `json:"assignedAt"`
	RevokedAt  *time.Time `json:"revokedAt,omitempty"`
}

func (a *RoleAssignment) Active() bool {
	return a.RevokedAt == nil
}

// SignupRequest creates a member.
type SignupRequest struct {
	PersonalID string `json:"personalId"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Password   string `json:"password"`
}

func (r *SignupRequest) Normalize() {
	r.PersonalID = strings.TrimSpace(r.PersonalID)
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Address = strings.TrimSpace(r.Address)
}

func (r *SignupRequest) Validate() error {
	switch {
	case r.PersonalID == "":
		return fmt.Errorf("personalId is required")
	case r.FirstName == "":
		return fmt.Errorf("firstName is required")
	case r.Password == "":
		return fmt.Errorf("password is required")
	case r.Email != "" && !strings.Contains(r.Email, "@"):
		return fmt.Errorf("email is invalid")
	}
	return nil
}

type LoginRequest struct {
	PersonalID string `json:"personalId"`
	Password   string `json:"password"`
}

// UpdateRequest changes contact fields. Nil fields are left as they are.
type UpdateRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// Apply copies the set fields onto m.
func (r *UpdateRequest) Apply(m *Member) error {
	if r.FirstName != nil {
		v := strings.TrimSpace(*r.FirstName)
		if v == "" {
			return fmt.Errorf("firstName cannot be empty")
		}
		m.FirstName = v
	}
	if r.LastName != nil {
		m.LastName = strings.TrimSpace(*r.LastName)
	}
	if r.Email != nil {
		v := strings.ToLower(strings.TrimSpace(*r.Email))
		if v != "" && !strings.Contains(v, "@") {
			return fmt.Errorf("email is invalid")
		}
		m.Email = v
	}
	if r.Phone != nil {
		m.Phone = strings.TrimSpace(*r.Phone)
	}
	if r.Address != nil {
		m.Address = strings.TrimSpace(*r.Address)
	}
	return nil
}
