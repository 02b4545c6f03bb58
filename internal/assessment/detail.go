package assessment

import (
	"context"

	"github.com/couchcryptid/neo-impact-service/internal/domain"
)

// DetailOptions selects the blocks of a composite detail view.
type DetailOptions struct {
	Enrichment bool
	Impact     bool
	Request    ImpactRequest
}

// Detail is the composite view of one NEO. A block that could not be
// produced is replaced by its error message.
type Detail struct {
	NEO             domain.NEORecord         `json:"neo"`
	Enrichment      *domain.EnrichmentResult `json:"enrichment,omitempty"`
	Impact          *domain.ImpactResult     `json:"impact,omitempty"`
	EnrichmentError string                   `json:"enrichment_error,omitempty"`
	ImpactError     string                   `json:"impact_error,omitempty"`
}

// Detail returns the NEO record with the requested blocks embedded. Only a
// failure to fetch the record itself fails the call.
func (s *Service) Detail(ctx context.Context, id string, opts DetailOptions) (Detail, error) {
	neo, err := s.records.FetchNEO(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	d := Detail{NEO: neo}

	if opts.Enrichment {
		e, err := s.Enrichment(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return Detail{}, ctx.Err()
			}
			d.EnrichmentError = err.Error()
		} else {
			d.Enrichment = &e
		}
	}

	if opts.Impact {
		r, err := s.Impact(ctx, id, opts.Request)
		if err != nil {
			if ctx.Err() != nil {
				return Detail{}, ctx.Err()
			}
			d.ImpactError = err.Error()
		} else {
			d.Impact = &r
		}
	}
	return d, nil
}
