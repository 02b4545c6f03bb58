// Package neows implements the NEO catalog on NASA's Near Earth Object Web
// Service (NeoWs).
package neows

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/neo-impact-service/internal/adapter/upstream"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
)

// Provider is the metrics and error label for NeoWs.
const Provider = "neows"

// Client implements domain.NEOCatalog and the raw feed/browse views.
type Client struct {
	http    *upstream.Client
	baseURL string
	apiKey  string
}

// NewClient creates a NeoWs client.
func NewClient(http *upstream.Client, baseURL, apiKey string) *Client {
	return &Client{
		http:    http,
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
	}
}

// FetchNEO returns the parsed record for one object.
func (c *Client) FetchNEO(ctx context.Context, id string) (domain.NEORecord, error) {
	var obj neoObject
	if err := c.http.GetJSON(ctx, c.baseURL+"/neo/"+url.PathEscape(id), c.params(), &obj); err != nil {
		return domain.NEORecord{}, fmt.Errorf("fetch neo %s: %w", id, err)
	}
	return obj.record(), nil
}

// NEO returns the unmodified catalog document for one object.
func (c *Client) NEO(ctx context.Context, id string) (json.RawMessage, error) {
	return c.http.Get(ctx, c.baseURL+"/neo/"+url.PathEscape(id), c.params())
}

// Feed returns the unmodified close-approach feed for a date range. An empty
// endDate lets NeoWs apply its default 7-day window.
func (c *Client) Feed(ctx context.Context, startDate, endDate string) (json.RawMessage, error) {
	params := c.params()
	params.Set("start_date", startDate)
	if endDate != "" {
		params.Set("end_date", endDate)
	}
	return c.http.Get(ctx, c.baseURL+"/feed", params)
}

// Browse returns one unmodified page of the full catalog.
func (c *Client) Browse(ctx context.Context, page, size int) (json.RawMessage, error) {
	return c.http.Get(ctx, c.baseURL+"/neo/browse", c.browseParams(page, size))
}

// BrowseRecords returns one parsed page of the full catalog.
func (c *Client) BrowseRecords(ctx context.Context, page, size int) (domain.NEOPage, error) {
	var resp browseResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/neo/browse", c.browseParams(page, size), &resp); err != nil {
		return domain.NEOPage{}, fmt.Errorf("browse page %d: %w", page, err)
	}
	out := domain.NEOPage{
		Records:    make([]domain.NEORecord, 0, len(resp.NearEarthObjects)),
		Number:     resp.Page.Number,
		TotalPages: resp.Page.TotalPages,
	}
	for _, obj := range resp.NearEarthObjects {
		out.Records = append(out.Records, obj.record())
	}
	return out, nil
}

func (c *Client) params() url.Values {
	return url.Values{"api_key": {c.apiKey}}
}

func (c *Client) browseParams(page, size int) url.Values {
	params := c.params()
	params.Set("page", strconv.Itoa(page))
	params.Set("size", strconv.Itoa(size))
	return params
}

// NeoWs response types. Velocities and distances arrive as decimal strings.

type browseResponse struct {
	NearEarthObjects []neoObject `json:"near_earth_objects"`
	Page             struct {
		Number     int `json:"number"`
		TotalPages int `json:"total_pages"`
	} `json:"page"`
}

type neoObject struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	AbsoluteMagnitudeH *float64 `json:"absolute_magnitude_h"`
	EstimatedDiameter  struct {
		Kilometers *struct {
			Min float64 `json:"estimated_diameter_min"`
			Max float64 `json:"estimated_diameter_max"`
		} `json:"kilometers"`
	} `json:"estimated_diameter"`
	Hazardous         bool            `json:"is_potentially_hazardous_asteroid"`
	CloseApproachData []closeApproach `json:"close_approach_data"`
}

type closeApproach struct {
	Date             string `json:"close_approach_date"`
	DateFull         string `json:"close_approach_date_full"`
	RelativeVelocity struct {
		KmPerSecond string `json:"kilometers_per_second"`
	} `json:"relative_velocity"`
	MissDistance struct {
		Kilometers string `json:"kilometers"`
	} `json:"miss_distance"`
	OrbitingBody string `json:"orbiting_body"`
}

func (o neoObject) record() domain.NEORecord {
	rec := domain.NEORecord{
		ID:                     o.ID,
		Name:                   o.Name,
		AbsoluteMagnitudeH:     o.AbsoluteMagnitudeH,
		IsPotentiallyHazardous: o.Hazardous,
	}
	if km := o.EstimatedDiameter.Kilometers; km != nil && km.Max > 0 {
		rec.EstimatedDiameter = &domain.DiameterRange{MinKm: km.Min, MaxKm: km.Max}
	}
	for _, ca := range o.CloseApproachData {
		rec.CloseApproaches = append(rec.CloseApproaches, domain.CloseApproach{
			Date:                parseApproachDate(ca.DateFull, ca.Date),
			RelativeVelocityKms: parseDecimal(ca.RelativeVelocity.KmPerSecond),
			MissDistanceKm:      parseDecimal(ca.MissDistance.Kilometers),
			OrbitingBody:        ca.OrbitingBody,
		})
	}
	return rec
}

// parseApproachDate prefers the full timestamp ("2182-Sep-24 12:00") and
// falls back to the date. Unparseable values yield the zero time.
func parseApproachDate(full, date string) time.Time {
	if t, err := time.Parse("2006-Jan-02 15:04", full); err == nil {
		return t
	}
	if t, err := time.Parse(time.DateOnly, date); err == nil {
		return t
	}
	return time.Time{}
}

func parseDecimal(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
