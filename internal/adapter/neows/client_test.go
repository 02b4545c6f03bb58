package neows

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

const bennuJSON = `{
  "id": "2101955",
  "name": "101955 Bennu (1999 RQ36)",
  "absolute_magnitude_h": 20.19,
  "estimated_diameter": {
    "kilometers": {"estimated_diameter_min": 0.2903, "estimated_diameter_max": 0.6491}
  },
  "is_potentially_hazardous_asteroid": true,
  "close_approach_data": [
    {
      "close_approach_date": "1999-09-23",
      "close_approach_date_full": "1999-Sep-23 00:00",
      "relative_velocity": {"kilometers_per_second": "6.2209"},
      "miss_distance": {"kilometers": "2201700.5"},
      "orbiting_body": "Earth"
    },
    {
      "close_approach_date": "2182-09-24",
      "relative_velocity": {"kilometers_per_second": "not-a-number"},
      "miss_distance": {"kilometers": "1"},
      "orbiting_body": "Earth"
    }
  ]
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uc := upstream.NewClient(Provider, time.Second, observability.NewMetricsForTesting(), logger)
	return NewClient(uc, srv.URL+"/", "test-key")
}

func TestFetchNEO_ParsesRecord(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/neo/2101955", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(bennuJSON))
	})

	neo, err := c.FetchNEO(context.Background(), "2101955")
	require.NoError(t, err)

	assert.Equal(t, "2101955", neo.ID)
	assert.Equal(t, "101955", neo.Designation())
	assert.True(t, neo.IsPotentiallyHazardous)
	require.NotNil(t, neo.AbsoluteMagnitudeH)
	assert.Equal(t, 20.19, *neo.AbsoluteMagnitudeH)
	require.NotNil(t, neo.EstimatedDiameter)
	assert.Equal(t, 0.2903, neo.EstimatedDiameter.MinKm)
	assert.Equal(t, 0.6491, neo.EstimatedDiameter.MaxKm)

	require.Len(t, neo.CloseApproaches, 2)
	first := neo.CloseApproaches[0]
	assert.Equal(t, time.Date(1999, time.September, 23, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, 6.2209, first.RelativeVelocityKms)
	assert.Equal(t, 2201700.5, first.MissDistanceKm)
	assert.Equal(t, "Earth", first.OrbitingBody)

	second := neo.CloseApproaches[1]
	assert.Equal(t, time.Date(2182, time.September, 24, 0, 0, 0, 0, time.UTC), second.Date)
	assert.Zero(t, second.RelativeVelocityKms, "unparseable velocity reads as absent")
}

func TestFetchNEO_NonFiniteApproachValuesReadAsAbsent(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{
		  "id": "1",
		  "name": "(2010 PK9)",
		  "close_approach_data": [{
		    "close_approach_date": "2010-07-01",
		    "relative_velocity": {"kilometers_per_second": "Infinity"},
		    "miss_distance": {"kilometers": "NaN"},
		    "orbiting_body": "Earth"
		  }]
		}`))
	})

	neo, err := c.FetchNEO(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, neo.CloseApproaches, 1)
	assert.Zero(t, neo.CloseApproaches[0].RelativeVelocityKms)
	assert.Zero(t, neo.CloseApproaches[0].MissDistanceKm)
	_, ok := neo.RecentVelocity()
	assert.False(t, ok)
}

func TestFetchNEO_MissingOptionalFields(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"1","name":"(2010 PK9)"}`))
	})

	neo, err := c.FetchNEO(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, neo.AbsoluteMagnitudeH)
	assert.Nil(t, neo.EstimatedDiameter)
	assert.Empty(t, neo.CloseApproaches)
	assert.Equal(t, "2010 PK9", neo.Designation())
}

func TestFetchNEO_NotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := c.FetchNEO(context.Background(), "0")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFeed_PassesDateRange(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/feed", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("start_date"))
		assert.Equal(t, "2024-01-03", r.URL.Query().Get("end_date"))
		_, _ = w.Write([]byte(`{"element_count":3}`))
	})

	raw, err := c.Feed(context.Background(), "2024-01-01", "2024-01-03")
	require.NoError(t, err)
	assert.JSONEq(t, `{"element_count":3}`, string(raw))
}

func TestFeed_OmitsEmptyEndDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, ok := r.URL.Query()["end_date"]
		assert.False(t, ok)
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Feed(context.Background(), "2024-01-01", "")
	require.NoError(t, err)
}

func TestBrowseRecords(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/neo/browse", r.URL.Path)
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Equal(t, "20", r.URL.Query().Get("size"))
		_, _ = w.Write([]byte(`{"near_earth_objects":[` + bennuJSON + `],"page":{"number":2,"total_pages":1900}}`))
	})

	page, err := c.BrowseRecords(context.Background(), 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 1900, page.TotalPages)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "2101955", page.Records[0].ID)
}

func TestBrowse_Raw(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"page":{"number":0}}`))
	})

	raw, err := c.Browse(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.JSONEq(t, `{"page":{"number":0}}`, string(raw))
}
