package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/neo-impact-service/internal/config"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
)

// Header keys set on every enrichment message.
const (
	HeaderSource     = "source"
	HeaderResolvedAt = "resolved_at"
)

// Writer publishes freshly resolved enrichments to a Kafka topic.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured enrichment topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishEnrichment writes one enrichment keyed by NEO id, so every update
// for an object lands on the same partition.
func (w *Writer) PublishEnrichment(ctx context.Context, neoID string, e domain.EnrichmentResult, resolvedAt time.Time) error {
	msg, err := serializeToMessage(neoID, e, resolvedAt)
	if err != nil {
		return err
	}
	if err := w.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("publish enrichment %s: %w", neoID, err)
	}
	w.logger.Debug("enrichment published", "neo_id", neoID, "source", e.Source)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an EnrichmentResult into a Kafka message.
func serializeToMessage(neoID string, e domain.EnrichmentResult, resolvedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize enrichment: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(neoID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: HeaderSource, Value: []byte(e.Source)},
			{Key: HeaderResolvedAt, Value: []byte(resolvedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
