package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendBadger = "badger"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	// Upstream catalogs.
	NASAAPIKey      string
	NeoWsBaseURL    string
	SsodnetEnabled  bool
	SsodnetBaseURL  string
	SBDBEnabled     bool
	SBDBBaseURL     string
	UpstreamTimeout time.Duration

	// Read-through cache.
	CacheBackend       string
	CacheSize          int
	BadgerPath         string
	CacheTTL           time.Duration
	EnrichmentCacheTTL time.Duration
	ImpactCacheTTL     time.Duration

	// Estimation defaults.
	DefaultAlbedo       float64
	DefaultDensity      float64
	DefaultCoupling     float64
	DefaultRunupFactor  float64
	DefaultDispersionKm float64

	// Enrichment publishing.
	KafkaEnabled bool
	KafkaBrokers []string
	KafkaTopic   string

	// Tracing is enabled when OTelEndpoint is set.
	OTelEndpoint string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := parsePositiveDuration("UPSTREAM_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cacheTTL, err := parsePositiveDuration("CACHE_TTL", "5m")
	if err != nil {
		return nil, err
	}
	enrichmentTTL, err := parsePositiveDuration("ENRICHMENT_CACHE_TTL", "24h")
	if err != nil {
		return nil, err
	}
	impactTTL, err := parsePositiveDuration("IMPACT_CACHE_TTL", "1m")
	if err != nil {
		return nil, err
	}

	albedo, err := parsePositiveFloat("DEFAULT_ALBEDO", 0.14)
	if err != nil {
		return nil, err
	}
	density, err := parsePositiveFloat("DEFAULT_DENSITY", 2.6)
	if err != nil {
		return nil, err
	}
	coupling, err := parsePositiveFloat("DEFAULT_COUPLING", 1e-4)
	if err != nil {
		return nil, err
	}
	runup, err := parsePositiveFloat("DEFAULT_RUNUP_FACTOR", 2.0)
	if err != nil {
		return nil, err
	}
	dispersion, err := parsePositiveFloat("DEFAULT_DISPERSION_KM", 1000)
	if err != nil {
		return nil, err
	}

	cacheSize, err := parsePositiveInt("CACHE_SIZE", 10000)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		CORSOrigins:     splitList(sharedcfg.EnvOrDefault("CORS_ORIGINS", "*")),

		NASAAPIKey:      sharedcfg.EnvOrDefault("NASA_API_KEY", "DEMO_KEY"),
		NeoWsBaseURL:    sharedcfg.EnvOrDefault("NEOWS_BASE_URL", "https://api.nasa.gov/neo/rest/v1"),
		SsodnetEnabled:  parseBool("SSODNET_ENABLED", true),
		SsodnetBaseURL:  sharedcfg.EnvOrDefault("SSODNET_BASE_URL", "https://api.ssodnet.imcce.fr"),
		SBDBEnabled:     parseBool("SBDB_ENABLED", true),
		SBDBBaseURL:     sharedcfg.EnvOrDefault("SBDB_BASE_URL", "https://ssd-api.jpl.nasa.gov/sbdb.api"),
		UpstreamTimeout: upstreamTimeout,

		CacheBackend:       strings.ToLower(sharedcfg.EnvOrDefault("CACHE_BACKEND", CacheBackendMemory)),
		CacheSize:          cacheSize,
		BadgerPath:         os.Getenv("BADGER_PATH"),
		CacheTTL:           cacheTTL,
		EnrichmentCacheTTL: enrichmentTTL,
		ImpactCacheTTL:     impactTTL,

		DefaultAlbedo:       albedo,
		DefaultDensity:      density,
		DefaultCoupling:     coupling,
		DefaultRunupFactor:  runup,
		DefaultDispersionKm: dispersion,

		KafkaEnabled: parseBool("KAFKA_ENABLED", false),
		KafkaBrokers: sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaTopic:   sharedcfg.EnvOrDefault("KAFKA_TOPIC", "neo-enrichments"),

		OTelEndpoint: os.Getenv("OTEL_ENDPOINT"),
	}

	if cfg.DefaultAlbedo > 1 {
		return nil, errors.New("invalid DEFAULT_ALBEDO: must be in (0, 1]")
	}
	switch cfg.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendBadger:
		if cfg.BadgerPath == "" {
			return nil, errors.New("CACHE_BACKEND is badger but BADGER_PATH is not set")
		}
	default:
		return nil, fmt.Errorf("invalid CACHE_BACKEND %q: want memory or badger", cfg.CacheBackend)
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaTopic == "" {
			return nil, errors.New("KAFKA_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parsePositiveDuration(name, def string) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(name, def))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return d, nil
}

func parsePositiveFloat(name string, def float64) (float64, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !(v > 0) {
		return 0, fmt.Errorf("invalid %s: must be a positive number", name)
	}
	return v, nil
}

func parsePositiveInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid %s: must be a positive integer", name)
	}
	return n, nil
}

func parseBool(name string, def bool) bool {
	if v := os.Getenv(name); v != "" {
		return v == "true"
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
