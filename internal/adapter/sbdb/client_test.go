package sbdb

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/neo-impact-service/internal/adapter/upstream"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := upstream.NewClient(Provider, time.Second, observability.NewMetricsForTesting(), logger)
	return NewClient(uc, srv.URL+"/sbdb.api")
}

func TestLookup_PhysPar(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sbdb.api", r.URL.Path)
		assert.Equal(t, "433", r.URL.Query().Get("sstr"))
		assert.Equal(t, "1", r.URL.Query().Get("phys-par"))
		_, _ = w.Write([]byte(`{
		  "object": {"fullname": "433 Eros (A898 PA)"},
		  "phys_par": [
		    {"name": "diameter", "value": "16.84", "units": "km"},
		    {"name": "GM", "value": "4.463e-4", "units": "km^3/s^2"},
		    {"name": "density", "value": "2.67", "units": "g/cm^3"},
		    {"name": "spec_T", "value": "S"},
		    {"name": "spec_B", "value": "Sw"}
		  ]
		}`))
	})

	f, err := c.Lookup(context.Background(), "433")
	require.NoError(t, err)
	assert.Equal(t, 16.84, f.DiameterKm)
	assert.Equal(t, 2.67, f.DensityGCm3)
	assert.InEpsilon(t, 6.687e15, f.MassKg, 1e-3)
	assert.Equal(t, "Sw", f.Taxonomy)
	assert.Empty(t, f.Bibcode)
	assert.Equal(t, domain.SourceSBDB, c.Name())
}

func TestLookup_NonFiniteValuesAreDropped(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
		  "phys_par": [
		    {"name": "diameter", "value": "Infinity"},
		    {"name": "GM", "value": "+Inf"},
		    {"name": "density", "value": "NaN"},
		    {"name": "spec_B", "value": "C"}
		  ]
		}`))
	})

	f, err := c.Lookup(context.Background(), "2000 AA")
	require.NoError(t, err)
	assert.Zero(t, f.DiameterKm)
	assert.Zero(t, f.MassKg)
	assert.Zero(t, f.DensityGCm3)
	assert.Equal(t, "C", f.Taxonomy)
}

func TestLookup_TholenFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"phys_par":[{"name":"spec_T","value":"C"},{"name":"diameter","value":"n/a"}]}`))
	})

	f, err := c.Lookup(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, domain.PhysicalFields{Taxonomy: "C"}, f)
}

func TestLookup_UnknownObject(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"message":"specified object was not found"}`))
	})

	f, err := c.Lookup(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, domain.PhysicalFields{}, f)
}

func TestLookup_NotFoundStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	f, err := c.Lookup(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Equal(t, domain.PhysicalFields{}, f)
}

func TestLookup_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Lookup(context.Background(), "433")
	assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
}

func TestMassFromGM(t *testing.T) {
	// Bennu: GM 4.892e-9 km³/s² is about 7.33e10 kg.
	assert.InEpsilon(t, 7.33e10, MassFromGM(4.892e-9), 1e-3)
}
