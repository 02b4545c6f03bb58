package assessment

import (
	"context"
	"fmt"

	"github.com/couchcryptid/neo-impact-service/internal/domain"
)

// Scan limits.
const (
	DefaultScanLimit    = 20
	MaxScanLimit        = 100
	DefaultScanMaxPages = 5
	MaxScanPages        = 20
	ScanPageSize        = 20
)

// Filter selects catalog objects during a Scan. Diameter bounds apply to the
// mean of the catalog's estimated range; objects without one never match a
// diameter bound.
type Filter struct {
	Hazardous     *bool    `json:"hazardous,omitempty"`
	MinDiameterKm *float64 `json:"min_diameter_km,omitempty" validate:"omitempty,gt=0"`
	MaxDiameterKm *float64 `json:"max_diameter_km,omitempty" validate:"omitempty,gt=0"`
	Limit         int      `json:"limit" validate:"gte=0,lte=100"`
	Page          int      `json:"page" validate:"gte=0"`
	MaxPages      int      `json:"max_pages" validate:"gte=0,lte=20"`
}

// ScanResult lists matches. NextPage is the page after the last one read,
// or -1 once the catalog is exhausted.
type ScanResult struct {
	Matches      []domain.NEORecord `json:"matches"`
	PagesScanned int                `json:"pages_scanned"`
	NextPage     int                `json:"next_page"`
}

// Scan walks catalog pages from f.Page, collecting matching records until the
// limit is reached, f.MaxPages pages have been read, or the catalog ends.
func (s *Service) Scan(ctx context.Context, f Filter) (ScanResult, error) {
	if err := domain.ValidateStruct(f); err != nil {
		return ScanResult{}, err
	}
	if f.MinDiameterKm != nil && f.MaxDiameterKm != nil && *f.MinDiameterKm > *f.MaxDiameterKm {
		return ScanResult{}, fmt.Errorf("%w: min_diameter_km exceeds max_diameter_km", domain.ErrScenarioValidation)
	}
	limit := f.Limit
	if limit == 0 {
		limit = DefaultScanLimit
	}
	maxPages := f.MaxPages
	if maxPages == 0 {
		maxPages = DefaultScanMaxPages
	}

	result := ScanResult{Matches: []domain.NEORecord{}, NextPage: f.Page}
	for page := f.Page; result.PagesScanned < maxPages; page++ {
		p, err := s.browseRecords(ctx, page, ScanPageSize)
		if err != nil {
			return ScanResult{}, err
		}
		result.PagesScanned++
		result.NextPage = page + 1

		for _, neo := range p.Records {
			if f.matches(neo) {
				result.Matches = append(result.Matches, neo)
				if len(result.Matches) == limit {
					if page+1 >= p.TotalPages {
						result.NextPage = -1
					}
					return result, nil
				}
			}
		}
		if page+1 >= p.TotalPages {
			result.NextPage = -1
			break
		}
	}
	return result, nil
}

func (f Filter) matches(neo domain.NEORecord) bool {
	if f.Hazardous != nil && neo.IsPotentiallyHazardous != *f.Hazardous {
		return false
	}
	if f.MinDiameterKm == nil && f.MaxDiameterKm == nil {
		return true
	}
	if neo.EstimatedDiameter == nil {
		return false
	}
	d := neo.EstimatedDiameter.Mean()
	if f.MinDiameterKm != nil && d < *f.MinDiameterKm {
		return false
	}
	if f.MaxDiameterKm != nil && d > *f.MaxDiameterKm {
		return false
	}
	return true
}
