package domain

import (
	"math"
	"sort"
	"strings"
)

// Physical constants used by the estimators (SI unless the name says otherwise).
const (
	DefaultAlbedo      = 0.14
	DefaultDensityGCm3 = 2.6

	// EarthGravity is the surface gravity used for crater scaling, m/s².
	EarthGravity = 9.81

	// JoulesPerKilotonTNT is the TNT equivalence of one kiloton.
	JoulesPerKilotonTNT = 4.184e12

	// SimpleComplexTransitionKm is the final crater diameter on Earth above
	// which a crater is classified complex.
	SimpleComplexTransitionKm = 4.0

	// FinalToTransientRatio converts transient to final crater diameter.
	FinalToTransientRatio = 1.25

	// DefaultVelocityKms applies when a NEO has no close-approach data.
	DefaultVelocityKms = 20.0
	DefaultAngleDeg    = 45.0

	// diameterFromHConstant is the 1329 km constant in D = 1329/√p · 10^(−H/5).
	diameterFromHConstant = 1329.0
)

// taxonomyDensity maps spectral classes to typical bulk densities in g/cm³.
// Subclasses (Sq, Cb, Xk, ...) fall back to their first letter.
var taxonomyDensity = map[string]float64{
	"A": 3.73,
	"B": 2.38,
	"C": 1.33,
	"D": 1.00,
	"E": 2.67,
	"K": 3.54,
	"L": 3.22,
	"M": 3.49,
	"P": 2.00,
	"Q": 2.72,
	"S": 2.72,
	"T": 2.00,
	"V": 1.93,
	"X": 1.85,
}

// TaxonomyDensity returns the typical bulk density for a spectral class.
// The exact class is tried first, then its leading letter.
func TaxonomyDensity(class string) (float64, bool) {
	class = strings.TrimSpace(class)
	if class == "" {
		return 0, false
	}
	if d, ok := taxonomyDensity[strings.ToUpper(class)]; ok {
		return d, true
	}
	d, ok := taxonomyDensity[strings.ToUpper(class[:1])]
	return d, ok
}

// TaxonomyClass is one row of the density table.
type TaxonomyClass struct {
	Class       string  `json:"class"`
	DensityGCm3 float64 `json:"density_g_cm3"`
}

// TaxonomyTable lists the density table sorted by class.
func TaxonomyTable() []TaxonomyClass {
	out := make([]TaxonomyClass, 0, len(taxonomyDensity))
	for class, d := range taxonomyDensity {
		out = append(out, TaxonomyClass{Class: class, DensityGCm3: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Class < out[j].Class })
	return out
}

// Target is the material struck by the impactor.
type Target string

const (
	TargetRock        Target = "rock"
	TargetSedimentary Target = "sedimentary"
	TargetCrystalline Target = "crystalline"
	TargetWater       Target = "water"
	TargetIce         Target = "ice"
)

// targetDensity holds reference bulk densities in kg/m³.
var targetDensity = map[Target]float64{
	TargetRock:        2700,
	TargetSedimentary: 2500,
	TargetCrystalline: 2750,
	TargetWater:       1000,
	TargetIce:         917,
}

// Density returns the reference bulk density of the target in kg/m³.
func (t Target) Density() (float64, bool) {
	d, ok := targetDensity[t]
	return d, ok
}

// IsAqueous reports whether the ocean extension applies to the target.
func (t Target) IsAqueous() bool {
	return t == TargetWater || t == TargetIce
}

// DiameterFromMagnitude estimates a diameter in km from absolute magnitude H
// and geometric albedo.
func DiameterFromMagnitude(h, albedo float64) float64 {
	return diameterFromHConstant / math.Sqrt(albedo) * math.Pow(10, -h/5)
}

// SphereMass returns the mass in kg of a sphere with the given diameter (km)
// and density (g/cm³).
func SphereMass(diameterKm, densityGCm3 float64) float64 {
	radiusM := diameterKm * 1000 / 2
	return densityGCm3 * 1000 * (4.0 / 3.0) * math.Pi * radiusM * radiusM * radiusM
}
