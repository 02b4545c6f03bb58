package domain

import (
	"errors"
	"fmt"
)

// Overrides replace resolved enrichment values field by field. Nil means the
// resolved value is used.
type Overrides struct {
	DiameterKm  *float64 `json:"diameter_km,omitempty" validate:"omitempty,gt=0"`
	DensityGCm3 *float64 `json:"density_g_cm3,omitempty" validate:"omitempty,gt=0"`
	MassKg      *float64 `json:"mass_kg,omitempty" validate:"omitempty,gt=0"`
}

// ImpactScenario describes how and where the object strikes.
type ImpactScenario struct {
	VelocityKms float64     `json:"velocity_kms"`
	AngleDeg    float64     `json:"angle_deg"`
	Target      Target      `json:"target"`
	Overrides   Overrides   `json:"overrides"`
	Ocean       OceanParams `json:"ocean"`
	Coupling    float64     `json:"coupling"`
}

// ScenarioDefaults are the operator-configured scenario constants.
type ScenarioDefaults struct {
	RunupFactor        float64
	DispersionLengthKm float64
	Coupling           float64
}

// NewScenario returns the default scenario for a NEO: its most recent
// close-approach velocity (else DefaultVelocityKms), a 45° rock impact, and
// open-ocean parameters. Non-positive defaults fall back to package constants.
func NewScenario(neo NEORecord, d ScenarioDefaults) ImpactScenario {
	velocity, ok := neo.RecentVelocity()
	if !ok {
		velocity = DefaultVelocityKms
	}
	ocean := DefaultOceanParams()
	if d.RunupFactor > 0 {
		ocean.RunupFactor = d.RunupFactor
	}
	if d.DispersionLengthKm > 0 {
		ocean.DispersionLengthKm = d.DispersionLengthKm
	}
	coupling := d.Coupling
	if coupling <= 0 {
		coupling = DefaultCoupling
	}
	return ImpactScenario{
		VelocityKms: velocity,
		AngleDeg:    DefaultAngleDeg,
		Target:      TargetRock,
		Ocean:       ocean,
		Coupling:    coupling,
	}
}

const noteMassRederived = "mass re-derived from overridden diameter/density"

// AssessImpact merges enrichment with scenario overrides, runs the estimator,
// and attaches the ocean (water/ice targets) and seismic blocks. A seismic
// magnitude that cannot be computed is reported as a note, not an error.
func AssessImpact(e EnrichmentResult, sc ImpactScenario) (ImpactResult, error) {
	if err := ValidateStruct(sc.Overrides); err != nil {
		return ImpactResult{}, err
	}

	params, rederived := applyOverrides(e, sc)
	result, err := EstimateImpact(params)
	if err != nil {
		return ImpactResult{}, err
	}
	if rederived {
		result.Notes = append(result.Notes, noteMassRederived)
	}

	if sc.Target.IsAqueous() {
		ocean, err := EstimateOcean(result.Crater, sc.Ocean)
		if err != nil {
			return ImpactResult{}, fmt.Errorf("ocean extension: %w", err)
		}
		result.Ocean = &ocean
		result.Notes = append(result.Notes, noteOcean)
	}

	seismic, err := EstimateSeismic(result.Energy.KineticJ, sc.Coupling)
	switch {
	case err == nil:
		result.Seismic = &seismic
		result.Notes = append(result.Notes, noteSeismic)
	case errors.Is(err, ErrNotComputable):
		result.Notes = append(result.Notes, "seismic magnitude not computable: "+err.Error())
	default:
		return ImpactResult{}, err
	}

	return result, nil
}

// applyOverrides builds estimator inputs. When diameter or density is
// overridden but mass is not, mass is re-derived so the body stays consistent.
func applyOverrides(e EnrichmentResult, sc ImpactScenario) (ImpactParams, bool) {
	p := ImpactParams{
		DiameterKm:  e.DiameterKm,
		DensityGCm3: e.DensityGCm3,
		MassKg:      e.MassKg,
		VelocityKms: sc.VelocityKms,
		AngleDeg:    sc.AngleDeg,
		Target:      sc.Target,
	}
	o := sc.Overrides
	if o.DiameterKm != nil {
		p.DiameterKm = *o.DiameterKm
	}
	if o.DensityGCm3 != nil {
		p.DensityGCm3 = *o.DensityGCm3
	}
	if o.MassKg != nil {
		p.MassKg = *o.MassKg
		return p, false
	}
	if o.DiameterKm != nil || o.DensityGCm3 != nil {
		p.MassKg = SphereMass(p.DiameterKm, p.DensityGCm3)
		return p, true
	}
	return p, false
}
