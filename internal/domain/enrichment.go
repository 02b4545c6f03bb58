package domain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Source tags where an enrichment value came from.
type Source string

const (
	SourceSsodnet  Source = "ssodnet"
	SourceSBDB     Source = "sbdb"
	SourceEstimate Source = "estimate"
)

// authority orders sources: estimate < sbdb < ssodnet.
func (s Source) authority() int {
	switch s {
	case SourceSsodnet:
		return 2
	case SourceSBDB:
		return 1
	default:
		return 0
	}
}

// PhysicalFields is a partial set of physical parameters returned by a
// catalog. Zero values mean the catalog did not supply the field.
type PhysicalFields struct {
	DiameterKm  float64
	DensityGCm3 float64
	MassKg      float64
	Taxonomy    string
	Bibcode     string
}

// PhysicalProvider looks up physical parameters in one external catalog.
// An object the catalog does not know yields empty fields and a nil error;
// errors are reserved for transport or service failures.
type PhysicalProvider interface {
	Name() Source
	Lookup(ctx context.Context, designation string) (PhysicalFields, error)
}

// EnrichmentResult is the resolved physical description of a NEO.
type EnrichmentResult struct {
	DiameterKm  float64 `json:"diameter_km"`
	DensityGCm3 float64 `json:"density_g_cm3"`
	MassKg      float64 `json:"mass_kg"`
	Taxonomy    string  `json:"taxonomy,omitempty"`
	Bibcode     string  `json:"bibcode,omitempty"`
	Source      Source  `json:"source"`
	Note        string  `json:"note"`
	MassDerived bool    `json:"mass_derived"`
}

// EstimationDefaults holds the constants used when no catalog has data.
type EstimationDefaults struct {
	Albedo      float64
	DensityGCm3 float64
}

type field string

const (
	fieldDiameter field = "diameter"
	fieldDensity  field = "density"
	fieldMass     field = "mass"
	fieldTaxonomy field = "taxonomy"
	fieldBibcode  field = "bibcode"
)

// noteOrder fixes the clause order of EnrichmentResult.Note.
var noteOrder = []field{fieldDiameter, fieldDensity, fieldMass, fieldTaxonomy, fieldBibcode}

// massInputs are the fields whose provenance decides the overall source.
var massInputs = []field{fieldDiameter, fieldDensity, fieldMass}

type fieldAccessor struct {
	present func(PhysicalFields) bool
	take    func(dst *PhysicalFields, src PhysicalFields)
}

var fieldAccess = map[field]fieldAccessor{
	fieldDiameter: {
		present: func(f PhysicalFields) bool { return f.DiameterKm > 0 },
		take:    func(dst *PhysicalFields, src PhysicalFields) { dst.DiameterKm = src.DiameterKm },
	},
	fieldDensity: {
		present: func(f PhysicalFields) bool { return f.DensityGCm3 > 0 },
		take:    func(dst *PhysicalFields, src PhysicalFields) { dst.DensityGCm3 = src.DensityGCm3 },
	},
	fieldMass: {
		present: func(f PhysicalFields) bool { return f.MassKg > 0 },
		take:    func(dst *PhysicalFields, src PhysicalFields) { dst.MassKg = src.MassKg },
	},
	fieldTaxonomy: {
		present: func(f PhysicalFields) bool { return strings.TrimSpace(f.Taxonomy) != "" },
		take:    func(dst *PhysicalFields, src PhysicalFields) { dst.Taxonomy = strings.TrimSpace(src.Taxonomy) },
	},
	fieldBibcode: {
		present: func(f PhysicalFields) bool { return strings.TrimSpace(f.Bibcode) != "" },
		take:    func(dst *PhysicalFields, src PhysicalFields) { dst.Bibcode = strings.TrimSpace(src.Bibcode) },
	},
}

type provenance struct {
	source Source
	clause string
}

// resolution accumulates field values and their provenance across providers.
type resolution struct {
	values PhysicalFields
	from   map[field]provenance
}

func newResolution() *resolution {
	return &resolution{from: make(map[field]provenance, len(noteOrder))}
}

func (r *resolution) has(f field) bool {
	_, ok := r.from[f]
	return ok
}

func (r *resolution) complete() bool {
	return len(r.from) == len(noteOrder)
}

// adopt fills every still-missing field the provider supplied. Fields already
// resolved by a more authoritative provider are kept.
func (r *resolution) adopt(src Source, fields PhysicalFields) {
	for _, f := range noteOrder {
		acc := fieldAccess[f]
		if r.has(f) || !acc.present(fields) {
			continue
		}
		acc.take(&r.values, fields)
		r.from[f] = provenance{source: src, clause: fmt.Sprintf("%s from %s", f, src)}
	}
}

func (r *resolution) set(f field, src Source, clause string) {
	r.from[f] = provenance{source: src, clause: clause}
}

// estimate fills diameter, density, and mass from the NEO record and defaults.
func (r *resolution) estimate(neo NEORecord, defaults EstimationDefaults) error {
	if !r.has(fieldDiameter) {
		switch {
		case neo.EstimatedDiameter != nil && neo.EstimatedDiameter.Mean() > 0:
			r.values.DiameterKm = neo.EstimatedDiameter.Mean()
			r.set(fieldDiameter, SourceEstimate, "diameter from catalog avg")
		case neo.AbsoluteMagnitudeH != nil:
			h := *neo.AbsoluteMagnitudeH
			r.values.DiameterKm = DiameterFromMagnitude(h, defaults.Albedo)
			r.set(fieldDiameter, SourceEstimate,
				fmt.Sprintf("diameter from H=%g with albedo %g", h, defaults.Albedo))
		default:
			return fmt.Errorf("%w: neo %s has neither H nor an estimated diameter range", ErrResolution, neo.ID)
		}
	}

	if !r.has(fieldDensity) {
		taxonomy := r.values.Taxonomy
		if d, ok := TaxonomyDensity(taxonomy); ok {
			r.values.DensityGCm3 = d
			r.set(fieldDensity, SourceEstimate, fmt.Sprintf("density from taxonomy %s", taxonomy))
		} else {
			r.values.DensityGCm3 = defaults.DensityGCm3
			clause := "density default"
			if taxonomy != "" {
				clause = fmt.Sprintf("density default (taxonomy %s unmapped)", taxonomy)
			}
			r.set(fieldDensity, SourceEstimate, clause)
		}
	}

	if !r.has(fieldMass) {
		r.values.MassKg = SphereMass(r.values.DiameterKm, r.values.DensityGCm3)
		r.set(fieldMass, SourceEstimate, "mass derived")
	}
	return nil
}

func (r *resolution) result() EnrichmentResult {
	overall := SourceSsodnet
	for _, f := range massInputs {
		if src := r.from[f].source; src.authority() < overall.authority() {
			overall = src
		}
	}

	clauses := make([]string, 0, len(noteOrder))
	for _, f := range noteOrder {
		if p, ok := r.from[f]; ok {
			clauses = append(clauses, p.clause)
			continue
		}
		switch f {
		case fieldTaxonomy:
			clauses = append(clauses, "taxonomy unknown")
		case fieldBibcode:
			clauses = append(clauses, "bibcode unavailable")
		}
	}

	return EnrichmentResult{
		DiameterKm:  r.values.DiameterKm,
		DensityGCm3: r.values.DensityGCm3,
		MassKg:      r.values.MassKg,
		Taxonomy:    r.values.Taxonomy,
		Bibcode:     r.values.Bibcode,
		Source:      overall,
		Note:        strings.Join(clauses, "; "),
		MassDerived: r.from[fieldMass].clause == "mass derived",
	}
}

// Resolver resolves physical parameters field by field across an ordered list
// of catalogs, then estimates whatever is still missing.
type Resolver struct {
	providers []PhysicalProvider
	defaults  EstimationDefaults
	logger    *slog.Logger
}

// NewResolver creates a Resolver. Providers are queried in the given order;
// the first to supply a field wins. Non-positive defaults are replaced with
// DefaultAlbedo and DefaultDensityGCm3.
func NewResolver(providers []PhysicalProvider, defaults EstimationDefaults, logger *slog.Logger) *Resolver {
	if defaults.Albedo <= 0 {
		defaults.Albedo = DefaultAlbedo
	}
	if defaults.DensityGCm3 <= 0 {
		defaults.DensityGCm3 = DefaultDensityGCm3
	}
	return &Resolver{
		providers: providers,
		defaults:  defaults,
		logger:    logger,
	}
}

// Resolve produces a best-effort EnrichmentResult. Provider failures degrade
// to the next provider and finally to estimation; the only error paths are
// context cancellation and ErrResolution.
func (r *Resolver) Resolve(ctx context.Context, neo NEORecord) (EnrichmentResult, error) {
	res := newResolution()
	designation := neo.Designation()

	for _, p := range r.providers {
		if res.complete() {
			break
		}
		fields, err := p.Lookup(ctx, designation)
		if err != nil {
			if ctx.Err() != nil {
				return EnrichmentResult{}, ctx.Err()
			}
			r.logger.Warn("physical catalog lookup failed, falling back",
				"neo_id", neo.ID,
				"designation", designation,
				"provider", p.Name(),
				"error", err,
			)
			continue
		}
		res.adopt(p.Name(), fields)
	}

	if err := res.estimate(neo, r.defaults); err != nil {
		return EnrichmentResult{}, err
	}
	return res.result(), nil
}
