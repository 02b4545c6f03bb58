package assessment

import "github.com/couchcryptid/neo-impact-service/internal/domain"

// ImpactRequest carries caller-supplied scenario values. Nil (or empty)
// fields take the NEO's defaults; supplied values are validated as given.
type ImpactRequest struct {
	VelocityKms *float64
	AngleDeg    *float64
	Target      *domain.Target
	Overrides   domain.Overrides

	WaterDepthM        *float64
	CoastDepthM        *float64
	CoastDistancesKm   []float64
	RunupFactor        *float64
	DispersionLengthKm *float64

	Coupling *float64
}

// Scenario merges the request over the NEO's default scenario.
func (r ImpactRequest) Scenario(neo domain.NEORecord, d domain.ScenarioDefaults) domain.ImpactScenario {
	sc := domain.NewScenario(neo, d)
	setIf(&sc.VelocityKms, r.VelocityKms)
	setIf(&sc.AngleDeg, r.AngleDeg)
	if r.Target != nil {
		sc.Target = *r.Target
	}
	sc.Overrides = r.Overrides

	setIf(&sc.Ocean.WaterDepthM, r.WaterDepthM)
	setIf(&sc.Ocean.CoastDepthM, r.CoastDepthM)
	if len(r.CoastDistancesKm) > 0 {
		sc.Ocean.CoastDistancesKm = append([]float64(nil), r.CoastDistancesKm...)
	}
	setIf(&sc.Ocean.RunupFactor, r.RunupFactor)
	setIf(&sc.Ocean.DispersionLengthKm, r.DispersionLengthKm)
	setIf(&sc.Coupling, r.Coupling)
	return sc
}

func setIf(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}
