// Package sbdb looks up physical parameters in the JPL Small-Body Database.
package sbdb

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/couchcryptid/neo-impact-service/internal/adapter/upstream"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
)

// Provider is the metrics and error label for SBDB.
const Provider = "sbdb"

// GravitationalConstant in m³ kg⁻¹ s⁻².
const GravitationalConstant = 6.674e-11

// Client implements domain.PhysicalProvider.
type Client struct {
	http    *upstream.Client
	baseURL string
}

// NewClient creates an SBDB client. baseURL is the full sbdb.api endpoint.
func NewClient(http *upstream.Client, baseURL string) *Client {
	return &Client{http: http, baseURL: baseURL}
}

func (c *Client) Name() domain.Source {
	return domain.SourceSBDB
}

// Lookup returns the phys-par block for designation. Mass is derived from
// GM (km³/s²). Objects SBDB does not know, or matches it reports as
// ambiguous, yield empty fields.
func (c *Client) Lookup(ctx context.Context, designation string) (domain.PhysicalFields, error) {
	params := url.Values{
		"sstr":     {designation},
		"phys-par": {"1"},
	}
	var resp response
	err := c.http.GetJSON(ctx, c.baseURL, params, &resp)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.PhysicalFields{}, nil
	}
	if err != nil {
		return domain.PhysicalFields{}, fmt.Errorf("sbdb %q: %w", designation, err)
	}
	return resp.fields(), nil
}

// MassFromGM converts a standard gravitational parameter in km³/s² to kg.
func MassFromGM(gmKm3S2 float64) float64 {
	return gmKm3S2 * 1e9 / GravitationalConstant
}

// SBDB response types. All phys-par values arrive as strings.

type response struct {
	PhysPar []physPar `json:"phys_par"`
}

type physPar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Units string `json:"units"`
}

func (r response) fields() domain.PhysicalFields {
	var (
		f            domain.PhysicalFields
		specB, specT string
	)
	for _, p := range r.PhysPar {
		switch p.Name {
		case "diameter":
			f.DiameterKm = parsePositive(p.Value)
		case "density":
			f.DensityGCm3 = parsePositive(p.Value)
		case "GM":
			if gm := parsePositive(p.Value); gm > 0 {
				f.MassKg = MassFromGM(gm)
			}
		case "spec_B":
			specB = strings.TrimSpace(p.Value)
		case "spec_T":
			specT = strings.TrimSpace(p.Value)
		}
	}
	// SMASSII (Bus) classes map onto the density table more directly than Tholen.
	f.Taxonomy = specB
	if f.Taxonomy == "" {
		f.Taxonomy = specT
	}
	return f
}

func parsePositive(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}
