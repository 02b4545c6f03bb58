package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestCache(clock clockwork.Clock) (*Cache, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return New(NewMemoryStore(100, clock), m, discardLogger()), m
}

// failingStore reports an error on every read and write.
type failingStore struct{}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disk on fire")
}

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("disk on fire")
}

func TestCache_HitAfterMiss(t *testing.T) {
	c, m := newTestCache(clockwork.NewFakeClock())
	var calls int
	load := func(context.Context) ([]byte, error) {
		calls++
		return []byte("v"), nil
	}

	for range 3 {
		v, err := c.GetOrLoad(context.Background(), KindNEO, "1", time.Minute, load)
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
	}

	assert.Equal(t, 1, calls)
	assert.InDelta(t, 1, testutil.ToFloat64(m.CacheLookups.WithLabelValues(KindNEO, "miss")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheLookups.WithLabelValues(KindNEO, "hit")), 0)
}

func TestCache_ExpiredEntryReloads(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, _ := newTestCache(clock)
	var calls int
	load := func(context.Context) ([]byte, error) {
		calls++
		return []byte("v"), nil
	}

	_, err := c.GetOrLoad(context.Background(), KindImpact, "k", time.Minute, load)
	require.NoError(t, err)
	clock.Advance(2 * time.Minute)
	_, err = c.GetOrLoad(context.Background(), KindImpact, "k", time.Minute, load)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
}

func TestCache_ErrorsAreNotCached(t *testing.T) {
	c, _ := newTestCache(clockwork.NewFakeClock())
	var calls int
	load := func(context.Context) ([]byte, error) {
		calls++
		if calls == 1 {
			return nil, errors.New("upstream down")
		}
		return []byte("v"), nil
	}

	_, err := c.GetOrLoad(context.Background(), KindNEO, "1", time.Minute, load)
	require.Error(t, err)

	v, err := c.GetOrLoad(context.Background(), KindNEO, "1", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	assert.Equal(t, 2, calls)
}

func TestCache_KindsDoNotCollide(t *testing.T) {
	c, _ := newTestCache(clockwork.NewFakeClock())

	_, err := c.GetOrLoad(context.Background(), KindNEO, "1", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("neo"), nil
	})
	require.NoError(t, err)
	v, err := c.GetOrLoad(context.Background(), KindEnrichment, "1", time.Minute, func(context.Context) ([]byte, error) {
		return []byte("enrichment"), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("enrichment"), v)
}

func TestCache_ConcurrentMissesShareOneLoad(t *testing.T) {
	c, _ := newTestCache(clockwork.NewFakeClock())
	var calls atomic.Int32
	release := make(chan struct{})
	load := func(context.Context) ([]byte, error) {
		calls.Add(1)
		<-release
		return []byte("v"), nil
	}

	const callers = 10
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	results := make([][]byte, callers)
	for i := range callers {
		wg.Add(1)
		started.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			v, err := c.GetOrLoad(context.Background(), KindNEO, "1", time.Minute, load)
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	started.Wait()
	// Give every goroutine time to join the in-flight load.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, v := range results {
		assert.Equal(t, []byte("v"), v)
	}
}

func TestCache_CancelledCallerStillPopulates(t *testing.T) {
	c, _ := newTestCache(clockwork.NewFakeClock())
	release := make(chan struct{})
	done := make(chan struct{})
	load := func(ctx context.Context) ([]byte, error) {
		defer close(done)
		<-release
		// The detached load must not observe the caller's cancellation.
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []byte("v"), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.GetOrLoad(ctx, KindNEO, "1", time.Minute, load)
		errCh <- err
	}()

	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)

	close(release)
	<-done

	require.Eventually(t, func() bool {
		v, err := c.GetOrLoad(context.Background(), KindNEO, "1", time.Minute, func(context.Context) ([]byte, error) {
			return []byte("reloaded"), nil
		})
		return err == nil && string(v) == "v"
	}, time.Second, 10*time.Millisecond)
}

func TestCache_StoreFailuresDegradeToLoad(t *testing.T) {
	m := observability.NewMetricsForTesting()
	c := New(failingStore{}, m, discardLogger())
	var calls int

	for range 2 {
		v, err := c.GetOrLoad(context.Background(), KindNEO, "1", time.Minute, func(context.Context) ([]byte, error) {
			calls++
			return []byte("v"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, []byte("v"), v)
	}

	assert.Equal(t, 2, calls)
	assert.InDelta(t, 2, testutil.ToFloat64(m.CacheLookups.WithLabelValues(KindNEO, "error")), 0)
}

type payload struct {
	Value float64 `json:"value"`
	Label string  `json:"label"`
}

func TestFetch_ColdAndWarmAreIdentical(t *testing.T) {
	c, _ := newTestCache(clockwork.NewFakeClock())
	load := func(context.Context) (payload, error) {
		return payload{Value: 1.0 / 3.0, Label: "third"}, nil
	}

	cold, err := Fetch(context.Background(), c, KindEnrichment, "x", time.Minute, load)
	require.NoError(t, err)
	warm, err := Fetch(context.Background(), c, KindEnrichment, "x", time.Minute, func(context.Context) (payload, error) {
		t.Fatal("warm fetch must not load")
		return payload{}, nil
	})
	require.NoError(t, err)

	assert.Equal(t, cold, warm)
}
