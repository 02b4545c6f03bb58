package domain

import (
	"fmt"
	"math"
)

// DefaultCoupling is the fraction of kinetic energy radiated seismically.
// Plausible values span 1e-5 to 1e-3; the range is not enforced.
const DefaultCoupling = 1e-4

// Seismic is the seismic block of an ImpactResult.
type Seismic struct {
	Mw       float64 `json:"Mw"`
	EnergyJ  float64 `json:"E_s_j"`
	Coupling float64 `json:"coupling"`
}

const noteSeismic = "seismic coupling is highly uncertain (typical range 1e-5 to 1e-3)"

// EstimateSeismic converts a fraction of the kinetic energy into an
// equivalent moment magnitude using Mw = (log10 E_s - 4.8) / 1.5.
func EstimateSeismic(kineticJ, coupling float64) (Seismic, error) {
	es := coupling * kineticJ
	if !(es > 0) || math.IsInf(es, 0) {
		return Seismic{}, fmt.Errorf("%w: seismic energy %g J is not positive", ErrNotComputable, es)
	}
	return Seismic{
		Mw:       (math.Log10(es) - 4.8) / 1.5,
		EnergyJ:  es,
		Coupling: coupling,
	}, nil
}
