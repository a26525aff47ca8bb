package zone

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// minBoundaryPoints is the smallest polygon a zone can be drawn with.
const minBoundaryPoints = 3

// Point is one vertex of a zone boundary.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Zone is a named geographic membership boundary (an NHC).
type Zone struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Boundary  []Point   `json:"boundary"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateRequest is the payload for drawing a new zone.
type CreateRequest struct {
	Name     string  `json:"name"`
	Boundary []Point `json:"boundary"`
}

// Normalize trims the zone name.
func (r *CreateRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// Validate checks the name and the boundary polygon.
func (r *CreateRequest) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(r.Boundary) < minBoundaryPoints {
		return fmt.Errorf("boundary needs at least %d points", minBoundaryPoints)
	}
	for i, p := range r.Boundary {
		if p.Lat < -90 || p.Lat > 90 {
			return fmt.Errorf("boundary[%d]: latitude %v out of range", i, p.Lat)
		}
		if p.Lng < -180 || p.Lng > 180 {
			return fmt.Errorf("boundary[%d]: longitude %v out of range", i, p.Lng)
		}
	}
	return nil
}
