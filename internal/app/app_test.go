package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/neo-impact-service/internal/config"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

const neoJSON = `{
  "id": "3542519",
  "name": "(2010 PK9)",
  "absolute_magnitude_h": 21.5,
  "is_potentially_hazardous_asteroid": false,
  "close_approach_data": []
}`

func testConfig(t *testing.T, neowsURL string) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.NeoWsBaseURL = neowsURL
	cfg.SsodnetEnabled = false
	cfg.SBDBEnabled = false
	cfg.UpstreamTimeout = 2 * time.Second
	return cfg
}

func neowsStub(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/neo/3542519" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(neoJSON))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNew_MemoryBackendEstimatesWithoutCatalogs(t *testing.T) {
	cfg := testConfig(t, neowsStub(t).URL)

	a, err := New(cfg, observability.NewMetricsForTesting(), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	e, err := a.Service.Enrichment(context.Background(), "3542519")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceEstimate, e.Source)
	assert.Positive(t, e.DiameterKm)
	assert.Equal(t, cfg.DefaultDensity, e.DensityGCm3)
}

func TestNew_BadgerBackend(t *testing.T) {
	cfg := testConfig(t, neowsStub(t).URL)
	cfg.CacheBackend = config.CacheBackendBadger
	cfg.BadgerPath = filepath.Join(t.TempDir(), "cache")

	a, err := New(cfg, observability.NewMetricsForTesting(), discardLogger())
	require.NoError(t, err)

	_, err = a.Service.Enrichment(context.Background(), "3542519")
	require.NoError(t, err)
	assert.NoError(t, a.Close())
}

func TestNew_UnknownNEO(t *testing.T) {
	cfg := testConfig(t, neowsStub(t).URL)

	a, err := New(cfg, observability.NewMetricsForTesting(), discardLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	_, err = a.Service.Enrichment(context.Background(), "0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
