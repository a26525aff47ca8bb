package request

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "Pending"
	StatusCreated Status = "Created"
)

func (s Status) IsValid() bool {
	return s == StatusPending || s == StatusCreated
}

// Request is a citizen's application to be placed in a zone, or any other
// message for the council admin.
type Request struct {
	ID             uuid.UUID  `json:"id"`
	PersonalID     string     `json:"personalId"`
	Location       string     `json:"location"`
	Description    string     `json:"description"`
	Status         Status     `json:"status"`
	AssignedZoneID *uuid.UUID `json:"assignedZoneId,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type FileRequest struct {
	PersonalID  string `json:"personalId"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (r *FileRequest) Normalize() {
	r.PersonalID = strings.TrimSpace(r.PersonalID)
	r.Location = strings.TrimSpace(r.Location)
	r.Description = strings.TrimSpace(r.Description)
}

func (r *FileRequest) Validate() error {
	if r.PersonalID == "" {
		return fmt.Errorf("personalId is required")
	}
	if r.Location == "" && r.Description == "" {
		return fmt.Errorf("location or description is required")
	}
	return nil
}
