// Package upstream is the shared HTTP plumbing for the external catalogs:
// timeouts, status handling, metrics, and tracing around every GET.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/couchcryptid/neo-impact-service/internal/domain"
	"github.com/couchcryptid/neo-impact-service/internal/observability"
)

// maxErrorBody caps how much of a non-200 body is kept for error reporting.
const maxErrorBody = 4096

// StatusError reports a non-200 upstream response. It unwraps to
// domain.ErrNotFound for 404 and to domain.ErrUpstreamUnavailable otherwise.
type StatusError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error: status %d: %s", e.Provider, e.StatusCode, e.Body)
}

func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return domain.ErrNotFound
	}
	return domain.ErrUpstreamUnavailable
}

// Client performs instrumented GET requests against one upstream API.
type Client struct {
	name       string
	httpClient *http.Client
	metrics    *observability.Metrics
	logger     *slog.Logger
	tracer     trace.Tracer
}

// NewClient creates a client for the named provider.
func NewClient(name string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		name: name,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		metrics: metrics,
		logger:  logger,
		tracer:  otel.Tracer("github.com/couchcryptid/neo-impact-service/upstream"),
	}
}

// Name returns the provider label used in metrics and errors.
func (c *Client) Name() string {
	return c.name
}

// Get fetches rawURL with params and returns the body of a 200 response.
// Transport failures wrap domain.ErrUpstreamUnavailable; other statuses are
// returned as *StatusError.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, c.name+" GET", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	fullURL := rawURL
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}
	span.SetAttributes(
		attribute.String("upstream.provider", c.name),
		attribute.String("url.path", urlPath(rawURL)),
	)

	start := time.Now()
	body, err := c.do(ctx, fullURL)
	c.metrics.UpstreamDuration.WithLabelValues(c.name).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		outcome = "error"
		if se, ok := err.(*StatusError); ok {
			span.SetAttributes(attribute.Int("http.response.status_code", se.StatusCode))
			if se.StatusCode == http.StatusNotFound {
				outcome = "not_found"
			}
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.logger.Debug("upstream request failed", "provider", c.name, "path", urlPath(rawURL), "error", err)
	}
	c.metrics.UpstreamRequests.WithLabelValues(c.name, outcome).Inc()
	return body, err
}

// GetJSON fetches rawURL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, out any) error {
	body, err := c.Get(ctx, rawURL, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: decode %s response: %w", domain.ErrUpstreamUnavailable, c.name, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s request: %w", domain.ErrUpstreamUnavailable, c.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{Provider: c.name, StatusCode: resp.StatusCode, Body: string(body)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s response: %w", domain.ErrUpstreamUnavailable, c.name, err)
	}
	return body, nil
}

// urlPath strips the query so API keys never reach logs or spans.
func urlPath(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Path
}
