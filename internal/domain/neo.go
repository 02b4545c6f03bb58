package domain

import (
	"context"
	"regexp"
	"strings"
	"time"
)

// DiameterRange is a catalog estimate of an object's diameter in km.
type DiameterRange struct {
	MinKm float64 `json:"min_km"`
	MaxKm float64 `json:"max_km"`
}

// Mean returns the midpoint of the range.
func (r DiameterRange) Mean() float64 {
	return (r.MinKm + r.MaxKm) / 2
}

// CloseApproach is one close-approach event from the NEO catalog.
type CloseApproach struct {
	Date                time.Time `json:"date"`
	RelativeVelocityKms float64   `json:"relative_velocity_kms"`
	MissDistanceKm      float64   `json:"miss_distance_km"`
	OrbitingBody        string    `json:"orbiting_body"`
}

// NEORecord is the catalog view of a near-Earth object. Optional values are
// nil when the catalog omits them.
type NEORecord struct {
	ID                     string          `json:"id"`
	Name                   string          `json:"name"`
	EstimatedDiameter      *DiameterRange  `json:"estimated_diameter_km,omitempty"`
	AbsoluteMagnitudeH     *float64        `json:"absolute_magnitude_h,omitempty"`
	IsPotentiallyHazardous bool            `json:"is_potentially_hazardous"`
	CloseApproaches        []CloseApproach `json:"close_approaches,omitempty"`
}

// NEOCatalog fetches NEO records by identifier.
type NEOCatalog interface {
	FetchNEO(ctx context.Context, id string) (NEORecord, error)
}

var (
	numberedName    = regexp.MustCompile(`^\s*(\d+)\s`)
	provisionalName = regexp.MustCompile(`\(([^)]+)\)`)
)

// Designation returns the identifier used to query physical-parameter catalogs:
// the catalog number when the object is numbered ("101955 Bennu (1999 RQ36)"),
// else the provisional designation in parentheses ("(2010 PK9)"), else the name.
func (n NEORecord) Designation() string {
	if m := numberedName.FindStringSubmatch(n.Name); m != nil {
		return m[1]
	}
	if m := provisionalName.FindStringSubmatch(n.Name); m != nil {
		return strings.TrimSpace(m[1])
	}
	if name := strings.TrimSpace(n.Name); name != "" {
		return name
	}
	return n.ID
}

// RecentVelocity returns the relative velocity of the latest close approach
// that is not in the future. When every approach lies ahead, the first listed
// approach is used. ok is false when the record has no usable approaches.
func (n NEORecord) RecentVelocity() (float64, bool) {
	now := clock.Now()
	var (
		best  *CloseApproach
		first *CloseApproach
	)
	for i := range n.CloseApproaches {
		ca := &n.CloseApproaches[i]
		if ca.RelativeVelocityKms <= 0 {
			continue
		}
		if first == nil {
			first = ca
		}
		if ca.Date.After(now) {
			continue
		}
		if best == nil || ca.Date.After(best.Date) {
			best = ca
		}
	}
	if best != nil {
		return best.RelativeVelocityKms, true
	}
	if first != nil {
		return first.RelativeVelocityKms, true
	}
	return 0, false
}

// NEOPage is one page of a catalog listing.
type NEOPage struct {
	Records    []NEORecord `json:"records"`
	Number     int         `json:"number"`
	TotalPages int         `json:"total_pages"`
}
