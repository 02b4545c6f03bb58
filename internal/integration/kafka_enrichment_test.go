//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/neo-impact-service/internal/adapter/kafka"
	"github.com/couchcryptid/neo-impact-service/internal/adapter/neows"
	"github.com/couchcryptid/neo-impact-service/internal/adapter/upstream"
	"github.com/couchcryptid/neo-impact-service/internal/assessment"
	"github.com/couchcryptid/neo-impact-service/internal/cache"
	"github.com/couchcryptid/neo-impact-service/internal/config"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

const testTopic = "test-enrichments"

const apophisJSON = `{
  "id": "2099942",
  "name": "99942 Apophis (2004 MN4)",
  "absolute_magnitude_h": 19.09,
  "estimated_diameter": {
    "kilometers": {"estimated_diameter_min": 0.3, "estimated_diameter_max": 0.4}
  },
  "is_potentially_hazardous_asteroid": true,
  "close_approach_data": [
    {
      "close_approach_date": "2029-04-13",
      "close_approach_date_full": "2029-Apr-13 21:46",
      "relative_velocity": {"kilometers_per_second": "7.42"},
      "miss_distance": {"kilometers": "38012"},
      "orbiting_body": "Earth"
    }
  ]
}`

// publishedMessage holds a deserialized message read from the enrichment topic.
type publishedMessage struct {
	Enrichment domain.EnrichmentResult
	Key        string
	Headers    map[string]string
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("neo-impact-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func newConsumer(t *testing.T, broker string) *kafkago.Reader {
	t.Helper()
	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testTopic,
		GroupID:     fmt.Sprintf("test-consumer-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })
	return consumer
}

func readPublished(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedMessage {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from enrichment topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var e domain.EnrichmentResult
	require.NoError(t, json.Unmarshal(msg.Value, &e), "unmarshal enrichment message")

	return publishedMessage{Enrichment: e, Key: string(msg.Key), Headers: headers}
}

// TestWriterPublishesEnrichment verifies the producer writes key, value, and
// headers that a plain consumer can read back.
func TestWriterPublishesEnrichment(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 90*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	resolvedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	e := domain.EnrichmentResult{
		DiameterKm:  0.482,
		DensityGCm3: 1.19,
		MassKg:      7.329e10,
		Taxonomy:    "B",
		Source:      domain.SourceSsodnet,
		Note:        "diameter, density, mass from ssodnet",
	}
	require.NoError(t, writer.PublishEnrichment(ctx, "2101955", e, resolvedAt))

	msg := readPublished(ctx, t, newConsumer(t, broker))
	assert.Equal(t, "2101955", msg.Key)
	assert.Equal(t, "ssodnet", msg.Headers[kafka.HeaderSource])
	assert.Equal(t, "2025-03-01T12:00:00Z", msg.Headers[kafka.HeaderResolvedAt])
	assert.Equal(t, e, msg.Enrichment)
}

// TestServicePublishesFreshEnrichment wires NeoWs (stubbed over HTTP), the
// resolver with no catalogs, the cache, and the Kafka writer, and checks that a
// cold enrichment is published once while a warm one is not republished.
func TestServicePublishesFreshEnrichment(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	neowsStub := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/neo/2099942" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(apophisJSON))
	}))
	t.Cleanup(neowsStub.Close)

	metrics := observability.NewMetricsForTesting()
	logger := discardLogger()
	catalog := neows.NewClient(upstream.NewClient("neows", 5*time.Second, metrics, logger), neowsStub.URL, "DEMO_KEY")
	c := cache.New(cache.NewMemoryStore(100, nil), metrics, logger)
	resolver := domain.NewResolver(nil, domain.EstimationDefaults{Albedo: 0.14, DensityGCm3: 2.6}, logger)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testTopic}
	writer := kafka.NewWriter(cfg, logger)
	t.Cleanup(func() { _ = writer.Close() })

	svc := assessment.New(cache.NewCachedCatalog(catalog, c, time.Minute), catalog, resolver, c, writer, assessment.Settings{
		CatalogTTL:    time.Minute,
		EnrichmentTTL: time.Hour,
		ImpactTTL:     time.Minute,
	}, metrics, logger)

	first, err := svc.Enrichment(ctx, "2099942")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceEstimate, first.Source)
	assert.InDelta(t, 0.35, first.DiameterKm, 1e-9)

	second, err := svc.Enrichment(ctx, "2099942")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	consumer := newConsumer(t, broker)
	msg := readPublished(ctx, t, consumer)
	assert.Equal(t, "2099942", msg.Key)
	assert.Equal(t, "estimate", msg.Headers[kafka.HeaderSource])
	assert.Equal(t, first, msg.Enrichment)

	// The warm read must not have produced a second message.
	quiet, cancelQuiet := context.WithTimeout(ctx, 3*time.Second)
	defer cancelQuiet()
	_, err = consumer.ReadMessage(quiet)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
