// Package app assembles the service's components from configuration.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	kafkaadapter "github.com/couchcryptid/neo-impact-service/internal/adapter/kafka"
	"github.com/couchcryptid/neo-impact-service/internal/adapter/neows"
	"github.com/couchcryptid/neo-impact-service/internal/adapter/sbdb"
	"github.com/couchcryptid/neo-impact-service/internal/adapter/ssodnet"
	"github.com/couchcryptid/neo-impact-service/internal/adapter/upstream"
	"github.com/couchcryptid/neo-impact-service/internal/assessment"
	"github.com/couchcryptid/neo-impact-service/internal/cache"
	"github.com/couchcryptid/neo-impact-service/internal/config"
	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

// App holds the wired service and the resources it must release.
type App struct {
	Service *assessment.Service

	closers []func() error
}

// New builds the cache store, upstream clients, resolver, optional Kafka
// publisher, and the assessment service.
func New(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*App, error) {
	a := &App{}

	store, err := a.openStore(cfg, logger)
	if err != nil {
		return nil, err
	}
	c := cache.New(store, metrics, logger)

	catalog := neows.NewClient(
		upstream.NewClient(neows.Provider, cfg.UpstreamTimeout, metrics, logger),
		cfg.NeoWsBaseURL, cfg.NASAAPIKey,
	)

	var providers []domain.PhysicalProvider
	if cfg.SsodnetEnabled {
		client := ssodnet.NewClient(upstream.NewClient(ssodnet.Provider, cfg.UpstreamTimeout, metrics, logger), cfg.SsodnetBaseURL)
		providers = append(providers, cache.NewCachedProvider(client, c, cfg.EnrichmentCacheTTL))
	}
	if cfg.SBDBEnabled {
		client := sbdb.NewClient(upstream.NewClient(sbdb.Provider, cfg.UpstreamTimeout, metrics, logger), cfg.SBDBBaseURL)
		providers = append(providers, cache.NewCachedProvider(client, c, cfg.EnrichmentCacheTTL))
	}
	logger.Info("physical catalogs configured",
		"ssodnet", cfg.SsodnetEnabled,
		"sbdb", cfg.SBDBEnabled,
		"cache_backend", cfg.CacheBackend,
	)

	resolver := domain.NewResolver(providers, domain.EstimationDefaults{
		Albedo:      cfg.DefaultAlbedo,
		DensityGCm3: cfg.DefaultDensity,
	}, logger)

	var publisher assessment.Publisher
	if cfg.KafkaEnabled {
		w := kafkaadapter.NewWriter(cfg, logger)
		a.closers = append(a.closers, w.Close)
		publisher = w
		logger.Info("enrichment publishing enabled", "topic", cfg.KafkaTopic, "brokers", cfg.KafkaBrokers)
	}

	a.Service = assessment.New(
		cache.NewCachedCatalog(catalog, c, cfg.CacheTTL),
		catalog,
		resolver,
		c,
		publisher,
		assessment.Settings{
			CatalogTTL:    cfg.CacheTTL,
			EnrichmentTTL: cfg.EnrichmentCacheTTL,
			ImpactTTL:     cfg.ImpactCacheTTL,
			Scenario: domain.ScenarioDefaults{
				RunupFactor:        cfg.DefaultRunupFactor,
				DispersionLengthKm: cfg.DefaultDispersionKm,
				Coupling:           cfg.DefaultCoupling,
			},
		},
		metrics,
		logger,
	)
	return a, nil
}

func (a *App) openStore(cfg *config.Config, logger *slog.Logger) (cache.Store, error) {
	if cfg.CacheBackend != config.CacheBackendBadger {
		return cache.NewMemoryStore(cfg.CacheSize, nil), nil
	}
	store, err := cache.OpenBadger(cache.BadgerConfig{Path: cfg.BadgerPath, Logger: logger})
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	a.closers = append(a.closers, store.Close)
	return store, nil
}

// Close releases the publisher and the cache store in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
