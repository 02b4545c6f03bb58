package domain

import "math"

// ImpactParams are the fully resolved inputs to the impact estimator.
type ImpactParams struct {
	DiameterKm  float64 `json:"diameter_km" validate:"gt=0"`
	DensityGCm3 float64 `json:"density_g_cm3" validate:"gt=0"`
	MassKg      float64 `json:"mass_kg" validate:"gt=0"`
	VelocityKms float64 `json:"velocity_kms" validate:"gt=0"`
	AngleDeg    float64 `json:"angle_deg" validate:"gte=1,lte=90"`
	Target      Target  `json:"target" validate:"oneof=rock sedimentary crystalline water ice"`
}

// Energy is the impactor's kinetic energy, momentum, and TNT equivalents.
type Energy struct {
	KineticJ   float64 `json:"kinetic_j"`
	MomentumNs float64 `json:"momentum_Ns"`
	TNTKt      float64 `json:"tnt_kt"`
	TNTMt      float64 `json:"tnt_Mt"`
}

// CraterType classifies crater morphology.
type CraterType string

const (
	CraterSimple  CraterType = "simple"
	CraterComplex CraterType = "complex"
)

// Crater is the estimated crater geometry.
type Crater struct {
	TransientDiameterKm  float64    `json:"transient_diameter_km"`
	FinalDiameterKm      float64    `json:"final_diameter_km"`
	DepthKm              float64    `json:"depth_km"`
	Type                 CraterType `json:"type"`
	RatioFinalToImpactor float64    `json:"ratio_final_to_impactor"`
}

// ImpactResult is the merged output of the estimator and its extensions.
type ImpactResult struct {
	Inputs  ImpactParams `json:"inputs"`
	Energy  Energy       `json:"energy"`
	Crater  Crater       `json:"crater"`
	Ocean   *Ocean       `json:"ocean,omitempty"`
	Seismic *Seismic     `json:"seismic,omitempty"`
	Notes   []string     `json:"notes"`
}

const (
	noteScreening = "first-order screening estimate; not for hazard decisions"
	noteNoEntry   = "no atmospheric entry or airburst modeling; impactor assumed to reach the surface intact"
	noteFinalSize = "final crater diameter taken as 1.25 x transient for all sizes (simple-crater scaling)"
)

// EstimateImpact computes energy and crater geometry. Inputs are rejected,
// not clamped, when they are out of range.
func EstimateImpact(p ImpactParams) (ImpactResult, error) {
	if err := ValidateStruct(p); err != nil {
		return ImpactResult{}, err
	}
	targetDensity, _ := p.Target.Density()

	return ImpactResult{
		Inputs: p,
		Energy: impactEnergy(p.MassKg, p.VelocityKms),
		Crater: impactCrater(p, targetDensity),
		Notes:  []string{noteScreening, noteNoEntry, noteFinalSize},
	}, nil
}

func impactEnergy(massKg, velocityKms float64) Energy {
	v := velocityKms * 1000
	kinetic := 0.5 * massKg * v * v
	kt := kinetic / JoulesPerKilotonTNT
	return Energy{
		KineticJ:   kinetic,
		MomentumNs: massKg * v,
		TNTKt:      kt,
		TNTMt:      kt / 1000,
	}
}

// impactCrater applies Collins–Melosh–Marcus pi-scaling for the transient
// crater: D = 1.161 (ρi/ρt)^(1/3) L^0.78 v^0.44 g^-0.22 sin(θ)^(1/3), SI units.
func impactCrater(p ImpactParams, targetDensity float64) Crater {
	impactorDensity := p.DensityGCm3 * 1000
	diameterM := p.DiameterKm * 1000
	v := p.VelocityKms * 1000
	sinAngle := math.Sin(p.AngleDeg * math.Pi / 180)

	transientM := 1.161 *
		math.Cbrt(impactorDensity/targetDensity) *
		math.Pow(diameterM, 0.78) *
		math.Pow(v, 0.44) *
		math.Pow(EarthGravity, -0.22) *
		math.Cbrt(sinAngle)

	transientKm := transientM / 1000
	finalKm := FinalToTransientRatio * transientKm

	c := Crater{
		TransientDiameterKm:  transientKm,
		FinalDiameterKm:      finalKm,
		RatioFinalToImpactor: finalKm / p.DiameterKm,
	}
	if finalKm < SimpleComplexTransitionKm {
		c.Type = CraterSimple
		c.DepthKm = 0.2 * finalKm
	} else {
		c.Type = CraterComplex
		c.DepthKm = 0.4 * math.Pow(finalKm, 0.3)
	}
	return c
}
