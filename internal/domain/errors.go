package domain

import "errors"

// Error kinds reported by the resolver and the impact estimator. Callers match
// them with errors.Is; the wrapping message carries the detail.
var (
	// ErrResolution means no catalog or estimation path could produce a
	// required field (the NEO record lacks both H and a diameter range).
	ErrResolution = errors.New("resolution failed")

	// ErrScenarioValidation marks non-positive or out-of-range physical inputs.
	ErrScenarioValidation = errors.New("invalid scenario")

	// ErrUpstreamUnavailable marks transport or catalog-service failures.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrNotComputable marks a derived quantity that is undefined for the
	// given inputs, e.g. a magnitude for non-positive seismic energy.
	ErrNotComputable = errors.New("not computable")

	// ErrNotFound means the catalog has no object with the requested identifier.
	ErrNotFound = errors.New("not found")
)
