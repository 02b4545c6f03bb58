// Package assessment composes the NEO catalog, the enrichment resolver, the
// impact estimator, and the shared cache into the operations the HTTP API and
// CLI expose.
package assessment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/couchcryptid/neo-impact-service/internal/cache"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

// RawCatalog serves unmodified catalog documents and parsed listing pages.
type RawCatalog interface {
	NEO(ctx context.Context, id string) (json.RawMessage, error)
	Feed(ctx context.Context, startDate, endDate string) (json.RawMessage, error)
	Browse(ctx context.Context, page, size int) (json.RawMessage, error)
	BrowseRecords(ctx context.Context, page, size int) (domain.NEOPage, error)
}

// Resolver produces an EnrichmentResult for a NEO record.
type Resolver interface {
	Resolve(ctx context.Context, neo domain.NEORecord) (domain.EnrichmentResult, error)
}

// Publisher receives freshly resolved enrichments.
type Publisher interface {
	PublishEnrichment(ctx context.Context, neoID string, e domain.EnrichmentResult, resolvedAt time.Time) error
}

// Settings holds cache lifetimes and scenario defaults.
type Settings struct {
	CatalogTTL    time.Duration
	EnrichmentTTL time.Duration
	ImpactTTL     time.Duration
	Scenario      domain.ScenarioDefaults
	// Clock stamps published enrichments. Nil uses real time.
	Clock clockwork.Clock
}

// Service implements the NEO enrichment and impact operations.
type Service struct {
	records   domain.NEOCatalog
	raw       RawCatalog
	resolver  Resolver
	cache     *cache.Cache
	publisher Publisher
	settings  Settings
	metrics   *observability.Metrics
	logger    *slog.Logger
	tracer    trace.Tracer
	ready     atomic.Bool
}

// New creates a Service. records should already be cached; raw views are
// cached here. publisher may be nil.
func New(
	records domain.NEOCatalog,
	raw RawCatalog,
	resolver Resolver,
	c *cache.Cache,
	publisher Publisher,
	settings Settings,
	metrics *observability.Metrics,
	logger *slog.Logger,
) *Service {
	if settings.Clock == nil {
		settings.Clock = clockwork.NewRealClock()
	}
	return &Service{
		records:   records,
		raw:       raw,
		resolver:  resolver,
		cache:     c,
		publisher: publisher,
		settings:  settings,
		metrics:   metrics,
		logger:    logger,
		tracer:    otel.Tracer("github.com/couchcryptid/neo-impact-service/assessment"),
	}
}

// MarkReady flags the service as ready to serve traffic.
func (s *Service) MarkReady() {
	s.ready.Store(true)
}

// CheckReadiness implements the readiness probe.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("service not ready")
	}
	return nil
}

// FetchNEO returns the parsed catalog record for id.
func (s *Service) FetchNEO(ctx context.Context, id string) (domain.NEORecord, error) {
	return s.records.FetchNEO(ctx, id)
}

// Enrichment resolves physical parameters for a NEO. Results are cached by
// NEO id; a fresh resolution is published when a publisher is configured.
func (s *Service) Enrichment(ctx context.Context, id string) (domain.EnrichmentResult, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.Enrichment", trace.WithAttributes(attribute.String("neo.id", id)))
	defer span.End()

	result, err := cache.Fetch(ctx, s.cache, cache.KindEnrichment, id, s.settings.EnrichmentTTL,
		func(ctx context.Context) (domain.EnrichmentResult, error) {
			return s.resolve(ctx, id)
		})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return domain.EnrichmentResult{}, err
	}
	span.SetAttributes(attribute.String("enrichment.source", string(result.Source)))
	return result, nil
}

func (s *Service) resolve(ctx context.Context, id string) (domain.EnrichmentResult, error) {
	neo, err := s.records.FetchNEO(ctx, id)
	if err != nil {
		s.metrics.EnrichmentResults.WithLabelValues("failed").Inc()
		return domain.EnrichmentResult{}, err
	}
	result, err := s.resolver.Resolve(ctx, neo)
	if err != nil {
		s.metrics.EnrichmentResults.WithLabelValues("failed").Inc()
		return domain.EnrichmentResult{}, fmt.Errorf("resolve %s: %w", id, err)
	}
	s.metrics.EnrichmentResults.WithLabelValues(string(result.Source)).Inc()
	s.logger.Info("enrichment resolved", "neo_id", id, "source", result.Source)

	if s.publisher != nil {
		if err := s.publisher.PublishEnrichment(ctx, id, result, s.settings.Clock.Now()); err != nil {
			s.metrics.PublishErrors.Inc()
			s.logger.Error("publish enrichment failed", "neo_id", id, "error", err)
		}
	}
	return result, nil
}

// Impact estimates impact effects for a NEO under the requested scenario.
// Unset request fields take the NEO's scenario defaults. Results are cached
// by NEO id and effective scenario.
func (s *Service) Impact(ctx context.Context, id string, req ImpactRequest) (domain.ImpactResult, error) {
	ctx, span := s.tracer.Start(ctx, "assessment.Impact", trace.WithAttributes(attribute.String("neo.id", id)))
	defer span.End()

	result, err := s.impact(ctx, id, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return result, err
}

func (s *Service) impact(ctx context.Context, id string, req ImpactRequest) (domain.ImpactResult, error) {
	neo, err := s.records.FetchNEO(ctx, id)
	if err != nil {
		return domain.ImpactResult{}, err
	}
	enrichment, err := s.Enrichment(ctx, id)
	if err != nil {
		return domain.ImpactResult{}, err
	}

	sc := req.Scenario(neo, s.settings.Scenario)
	key, err := scenarioKey(id, sc)
	if err != nil {
		return domain.ImpactResult{}, err
	}

	return cache.Fetch(ctx, s.cache, cache.KindImpact, key, s.settings.ImpactTTL,
		func(context.Context) (domain.ImpactResult, error) {
			result, err := domain.AssessImpact(enrichment, sc)
			outcome := "success"
			switch {
			case errors.Is(err, domain.ErrScenarioValidation):
				outcome = "invalid"
			case err != nil:
				outcome = "error"
			}
			s.metrics.ImpactEstimates.WithLabelValues(string(sc.Target), outcome).Inc()
			return result, err
		})
}

// scenarioKey identifies an impact estimate by NEO and effective scenario.
func scenarioKey(id string, sc domain.ImpactScenario) (string, error) {
	b, err := json.Marshal(sc)
	if err != nil {
		return "", fmt.Errorf("encode scenario: %w", err)
	}
	return id + "|" + string(b), nil
}

// NEO returns the unmodified catalog document for id.
func (s *Service) NEO(ctx context.Context, id string) (json.RawMessage, error) {
	return s.rawCached(ctx, cache.KindNEORaw, id, func(ctx context.Context) ([]byte, error) {
		return s.raw.NEO(ctx, id)
	})
}

// Feed returns the unmodified close-approach feed for a date range.
func (s *Service) Feed(ctx context.Context, startDate, endDate string) (json.RawMessage, error) {
	return s.rawCached(ctx, cache.KindFeed, startDate+"|"+endDate, func(ctx context.Context) ([]byte, error) {
		return s.raw.Feed(ctx, startDate, endDate)
	})
}

// Browse returns one unmodified page of the catalog listing.
func (s *Service) Browse(ctx context.Context, page, size int) (json.RawMessage, error) {
	key := strconv.Itoa(page) + "|" + strconv.Itoa(size)
	return s.rawCached(ctx, cache.KindBrowse, key, func(ctx context.Context) ([]byte, error) {
		return s.raw.Browse(ctx, page, size)
	})
}

func (s *Service) rawCached(ctx context.Context, kind, key string, load cache.LoadFunc) (json.RawMessage, error) {
	return s.cache.GetOrLoad(ctx, kind, key, s.settings.CatalogTTL, load)
}

func (s *Service) browseRecords(ctx context.Context, page, size int) (domain.NEOPage, error) {
	key := "records|" + strconv.Itoa(page) + "|" + strconv.Itoa(size)
	return cache.Fetch(ctx, s.cache, cache.KindBrowse, key, s.settings.CatalogTTL,
		func(ctx context.Context) (domain.NEOPage, error) {
			return s.raw.BrowseRecords(ctx, page, size)
		})
}
