// Package ssodnet looks up physical parameters in IMCCE's SsODNet service:
// a quaero search resolves the designation to an SsODNet id, then the
// object's ssoCard supplies the parameters.
package ssodnet

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/couchcryptid/neo-impact-service/internal/adapter/upstream"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
)

// Provider is the metrics and error label for SsODNet.
const Provider = "ssodnet"

// Client implements domain.PhysicalProvider.
type Client struct {
	http    *upstream.Client
	baseURL string
}

// NewClient creates an SsODNet client.
func NewClient(http *upstream.Client, baseURL string) *Client {
	return &Client{http: http, baseURL: strings.TrimRight(baseURL, "/")}
}

func (c *Client) Name() domain.Source {
	return domain.SourceSsodnet
}

// Lookup returns the ssoCard physical parameters for designation. An object
// SsODNet does not know yields empty fields.
func (c *Client) Lookup(ctx context.Context, designation string) (domain.PhysicalFields, error) {
	id, err := c.identify(ctx, designation)
	if err != nil || id == "" {
		return domain.PhysicalFields{}, err
	}

	var card ssoCard
	err = c.http.GetJSON(ctx, c.baseURL+"/ssocard/"+url.PathEscape(id), nil, &card)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.PhysicalFields{}, nil
	}
	if err != nil {
		return domain.PhysicalFields{}, fmt.Errorf("ssocard %s: %w", id, err)
	}
	return card.fields(), nil
}

func (c *Client) identify(ctx context.Context, designation string) (string, error) {
	params := url.Values{
		"q":     {designation},
		"type":  {"Asteroid"},
		"limit": {"1"},
	}
	var resp quaeroResponse
	err := c.http.GetJSON(ctx, c.baseURL+"/quaero/1/sso", params, &resp)
	if errors.Is(err, domain.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("quaero %q: %w", designation, err)
	}
	if len(resp.Data) == 0 {
		return "", nil
	}
	return resp.Data[0].ID, nil
}

// SsODNet response types.

type quaeroResponse struct {
	Data []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"data"`
}

type ssoCard struct {
	Parameters struct {
		Physical struct {
			Diameter struct {
				Value  float64  `json:"value"`
				Bibref []bibref `json:"bibref"`
			} `json:"diameter"`
			Density struct {
				Value float64 `json:"value"` // kg/m³
			} `json:"density"`
			Mass struct {
				Value float64 `json:"value"` // kg
			} `json:"mass"`
			Taxonomy struct {
				Class string `json:"class"`
			} `json:"taxonomy"`
		} `json:"physical"`
	} `json:"parameters"`
}

type bibref struct {
	Bibcode string `json:"bibcode"`
}

func (c ssoCard) fields() domain.PhysicalFields {
	p := c.Parameters.Physical
	f := domain.PhysicalFields{
		DiameterKm:  p.Diameter.Value,
		DensityGCm3: p.Density.Value / 1000,
		MassKg:      p.Mass.Value,
		Taxonomy:    p.Taxonomy.Class,
	}
	if len(p.Diameter.Bibref) > 0 {
		f.Bibcode = p.Diameter.Bibref[0].Bibcode
	}
	return f
}
