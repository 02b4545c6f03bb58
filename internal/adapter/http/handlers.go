package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/neo-impact-service/internal/adapter/upstream"
	"github.com/couchcryptid/neo-impact-service/internal/assessment"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
)

// API is the application surface served over HTTP.
type API interface {
	Enrichment(ctx context.Context, id string) (domain.EnrichmentResult, error)
	Impact(ctx context.Context, id string, req assessment.ImpactRequest) (domain.ImpactResult, error)
	Detail(ctx context.Context, id string, opts assessment.DetailOptions) (assessment.Detail, error)
	Scan(ctx context.Context, f assessment.Filter) (assessment.ScanResult, error)
	NEO(ctx context.Context, id string) (json.RawMessage, error)
	Feed(ctx context.Context, startDate, endDate string) (json.RawMessage, error)
	Browse(ctx context.Context, page, size int) (json.RawMessage, error)
}

// Error codes in JSON error payloads.
const (
	errEnrichmentFailed = "enrichment_failed"
	errImpactFailed     = "impact_estimate_failed"
	errDetailFailed     = "detail_failed"
	errScanFailed       = "scan_failed"
	errBadRequest       = "bad_request"
)

type errorBody struct {
	Error  string `json:"error,omitempty"`
	Detail string `json:"detail"`
}

// statusFor maps error kinds to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrScenarioValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrResolution):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, code string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request error",
			"path", r.URL.Path,
			"request_id", RequestID(r.Context()),
			"error", err,
		)
	}
	sharedobs.WriteJSON(w, status, errorBody{Error: code, Detail: err.Error()})
}

// writePassThroughError propagates an upstream status and body unchanged.
func (s *Server) writePassThroughError(w http.ResponseWriter, r *http.Request, err error) {
	var se *upstream.StatusError
	if errors.As(err, &se) {
		sharedobs.WriteJSON(w, se.StatusCode, errorBody{Detail: se.Body})
		return
	}
	s.writeError(w, r, "", err)
}

func writeRaw(w http.ResponseWriter, body json.RawMessage) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // client may have gone away
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start := q.Get("start_date")
	if start == "" {
		sharedobs.WriteJSON(w, http.StatusBadRequest, errorBody{Error: errBadRequest, Detail: "start_date is required (YYYY-MM-DD)"})
		return
	}
	body, err := s.api.Feed(r.Context(), start, q.Get("end_date"))
	if err != nil {
		s.writePassThroughError(w, r, err)
		return
	}
	writeRaw(w, body)
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := intParam(q, "page", 0)
	if err == nil && page < 0 {
		err = fmt.Errorf("%w: page must be >= 0", domain.ErrScenarioValidation)
	}
	if err != nil {
		s.writeError(w, r, errBadRequest, err)
		return
	}
	size, err := intParam(q, "size", 20)
	if err == nil && (size < 1 || size > 100) {
		err = fmt.Errorf("%w: size must be between 1 and 100", domain.ErrScenarioValidation)
	}
	if err != nil {
		s.writeError(w, r, errBadRequest, err)
		return
	}
	body, err := s.api.Browse(r.Context(), page, size)
	if err != nil {
		s.writePassThroughError(w, r, err)
		return
	}
	writeRaw(w, body)
}

func (s *Server) handleNEO(w http.ResponseWriter, r *http.Request) {
	body, err := s.api.NEO(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writePassThroughError(w, r, err)
		return
	}
	writeRaw(w, body)
}

func (s *Server) handleEnrichment(w http.ResponseWriter, r *http.Request) {
	e, err := s.api.Enrichment(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, errEnrichmentFailed, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, e)
}

func (s *Server) handleImpact(w http.ResponseWriter, r *http.Request) {
	req, err := parseImpactRequest(r.URL.Query())
	if err != nil {
		s.writeError(w, r, errImpactFailed, err)
		return
	}
	result, err := s.api.Impact(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeError(w, r, errImpactFailed, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := assessment.DetailOptions{Enrichment: true, Impact: true}
	if include := q.Get("include"); include != "" {
		opts.Enrichment, opts.Impact = false, false
		for _, part := range strings.Split(include, ",") {
			switch strings.TrimSpace(part) {
			case "enrichment":
				opts.Enrichment = true
			case "impact":
				opts.Impact = true
			case "":
			default:
				s.writeError(w, r, errDetailFailed,
					fmt.Errorf("%w: include accepts enrichment and impact (got %q)", domain.ErrScenarioValidation, part))
				return
			}
		}
	}
	if opts.Impact {
		req, err := parseImpactRequest(q)
		if err != nil {
			s.writeError(w, r, errDetailFailed, err)
			return
		}
		opts.Request = req
	}

	d, err := s.api.Detail(r.Context(), r.PathValue("id"), opts)
	if err != nil {
		s.writeError(w, r, errDetailFailed, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, d)
}

func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, errScanFailed, err)
		return
	}
	result, err := s.api.Scan(r.Context(), f)
	if err != nil {
		s.writeError(w, r, errScanFailed, err)
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, result)
}

// --- query parsing ---

func parseImpactRequest(q url.Values) (assessment.ImpactRequest, error) {
	var (
		req  assessment.ImpactRequest
		errs []error
	)
	float := func(name string) *float64 {
		v, err := floatParam(q, name)
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	req.VelocityKms = float("velocity_kms")
	req.AngleDeg = float("angle_deg")
	if t := q.Get("target"); t != "" {
		target := domain.Target(strings.ToLower(t))
		req.Target = &target
	}
	req.Overrides = domain.Overrides{
		DiameterKm:  float("diameter_km"),
		DensityGCm3: float("density_g_cm3"),
		MassKg:      float("mass_kg"),
	}
	req.WaterDepthM = float("water_depth_m")
	req.CoastDepthM = float("coast_depth_m")
	req.RunupFactor = float("runup_factor")
	req.DispersionLengthKm = float("dispersion_length_km")
	req.Coupling = float("coupling")

	if raw := q.Get("coast_r_km"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: coast_r_km must be a comma-separated list of numbers", domain.ErrScenarioValidation))
				break
			}
			req.CoastDistancesKm = append(req.CoastDistancesKm, v)
		}
	}

	if len(errs) > 0 {
		return assessment.ImpactRequest{}, errors.Join(errs...)
	}
	return req, nil
}

func parseFilter(q url.Values) (assessment.Filter, error) {
	var (
		f    assessment.Filter
		errs []error
	)
	if raw := q.Get("hazardous"); raw != "" {
		b, err := strconv.ParseBool(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: hazardous must be true or false", domain.ErrScenarioValidation))
		}
		f.Hazardous = &b
	}
	var err error
	if f.MinDiameterKm, err = floatParam(q, "min_diameter_km"); err != nil {
		errs = append(errs, err)
	}
	if f.MaxDiameterKm, err = floatParam(q, "max_diameter_km"); err != nil {
		errs = append(errs, err)
	}
	if f.Limit, err = intParam(q, "limit", 0); err != nil {
		errs = append(errs, err)
	}
	if f.Page, err = intParam(q, "page", 0); err != nil {
		errs = append(errs, err)
	}
	if f.MaxPages, err = intParam(q, "max_pages", 0); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return assessment.Filter{}, errors.Join(errs...)
	}
	return f, nil
}

func floatParam(q url.Values, name string) (*float64, error) {
	raw := q.Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("%w: %s must be a finite number (got %q)", domain.ErrScenarioValidation, name, raw)
	}
	return &v, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer (got %q)", domain.ErrScenarioValidation, name, raw)
	}
	return v, nil
}
