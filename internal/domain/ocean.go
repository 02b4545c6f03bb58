package domain

import (
	"fmt"
	"math"
)

// Ocean extension defaults.
const (
	DefaultWaterDepthM        = 4000.0
	DefaultCoastDepthM        = 50.0
	DefaultRunupFactor        = 2.0
	DefaultDispersionLengthKm = 1000.0
)

// DefaultCoastDistancesKm are the far-field distances reported when the
// caller requests none.
var DefaultCoastDistancesKm = []float64{100, 500, 1000}

// OceanParams configure the tsunami estimate.
type OceanParams struct {
	WaterDepthM        float64   `json:"water_depth_m" validate:"gt=0"`
	CoastDepthM        float64   `json:"coast_depth_m" validate:"gt=0"`
	CoastDistancesKm   []float64 `json:"coast_r_km" validate:"min=1,dive,gt=0"`
	RunupFactor        float64   `json:"runup_factor" validate:"gt=0"`
	DispersionLengthKm float64   `json:"dispersion_length_km" validate:"gt=0"`
}

// DefaultOceanParams returns open-ocean defaults.
func DefaultOceanParams() OceanParams {
	return OceanParams{
		WaterDepthM:        DefaultWaterDepthM,
		CoastDepthM:        DefaultCoastDepthM,
		CoastDistancesKm:   append([]float64(nil), DefaultCoastDistancesKm...),
		RunupFactor:        DefaultRunupFactor,
		DispersionLengthKm: DefaultDispersionLengthKm,
	}
}

// FarFieldWave is the wave estimate at one distance from the impact.
type FarFieldWave struct {
	DistanceKm    float64 `json:"distance_km"`
	DeepWaterAmpM float64 `json:"deep_water_amp_m"`
	CoastalAmpM   float64 `json:"coastal_amp_m"`
	RunupM        float64 `json:"runup_m"`
}

// Ocean is the tsunami block of an ImpactResult.
type Ocean struct {
	InitialAmpM       float64        `json:"initial_amp_m"`
	NearfieldRadiusKm float64        `json:"nearfield_radius_km"`
	FarField          []FarFieldWave `json:"far_field"`
}

const noteOcean = "ocean waves assume uniform depth; no bathymetry or coastal refraction"

// EstimateOcean derives wave amplitudes from the transient crater. Beyond the
// near field, amplitude falls off as 1/r with exponential dispersion loss;
// inside it, the initial amplitude applies. Green's law shoaling scales the
// deep-water amplitude to the coast, and run-up is a fixed multiple of that.
func EstimateOcean(c Crater, p OceanParams) (Ocean, error) {
	if err := ValidateStruct(p); err != nil {
		return Ocean{}, err
	}
	if c.TransientDiameterKm <= 0 {
		return Ocean{}, fmt.Errorf("%w: transient_diameter_km must be positive (got %g)",
			ErrScenarioValidation, c.TransientDiameterKm)
	}

	initial := 0.10 * c.TransientDiameterKm * 1000
	nearfield := c.TransientDiameterKm
	shoaling := math.Pow(p.WaterDepthM/p.CoastDepthM, 0.25)

	waves := make([]FarFieldWave, 0, len(p.CoastDistancesKm))
	for _, r := range p.CoastDistancesKm {
		deep := initial
		if r > nearfield {
			deep = initial * (nearfield / r) * math.Exp(-r/p.DispersionLengthKm)
		}
		coastal := deep * shoaling
		waves = append(waves, FarFieldWave{
			DistanceKm:    r,
			DeepWaterAmpM: deep,
			CoastalAmpM:   coastal,
			RunupM:        p.RunupFactor * coastal,
		})
	}

	return Ocean{
		InitialAmpM:       initial,
		NearfieldRadiusKm: nearfield,
		FarField:          waves,
	}, nil
}
