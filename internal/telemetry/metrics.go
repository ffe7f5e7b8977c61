// Package telemetry holds the OpenTelemetry instruments for search and detail resolution.
package telemetry

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/honeycarbs/jobsearch"

// Outcome labels
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics records cache, upstream and detail-resolution counters.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	cacheLookups      metric.Int64Counter
	cacheWrites       metric.Int64Counter
	upstreamRequests  metric.Int64Counter
	detailResolutions metric.Int64Counter
	searchDuration    metric.Float64Histogram
}

// NewMetrics creates the instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	cacheLookups, err := meter.Int64Counter(
		"jobsearch.cache.lookups",
		metric.WithDescription("Result cache lookups by outcome"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: cache lookups counter: %w", err)
	}

	cacheWrites, err := meter.Int64Counter(
		"jobsearch.cache.writes",
		metric.WithDescription("Result cache writes by outcome"),
		metric.WithUnit("{write}"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: cache writes counter: %w", err)
	}

	upstreamRequests, err := meter.Int64Counter(
		"jobsearch.upstream.requests",
		metric.WithDescription("Upstream page requests by outcome"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: upstream counter: %w", err)
	}

	detailResolutions, err := meter.Int64Counter(
		"jobsearch.detail.resolutions",
		metric.WithDescription("Detail lookups by the tier that answered them"),
		metric.WithUnit("{lookup}"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: detail counter: %w", err)
	}

	searchDuration, err := meter.Float64Histogram(
		"jobsearch.search.duration_ms",
		metric.WithDescription("End-to-end search latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("telemetry: search duration histogram: %w", err)
	}

	return &Metrics{
		cacheLookups:      cacheLookups,
		cacheWrites:       cacheWrites,
		upstreamRequests:  upstreamRequests,
		detailResolutions: detailResolutions,
		searchDuration:    searchDuration,
	}, nil
}

// NewNopMetrics returns instruments backed by the no-op meter
func NewNopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider().Meter(meterName))
	return m
}

// NewMeter returns the package meter from provider
func NewMeter(provider metric.MeterProvider) metric.Meter {
	return provider.Meter(meterName)
}

// NewPrometheusProvider builds a meter provider whose readings are served by
// the returned handler in the Prometheus text format
func NewPrometheusProvider() (*sdkmetric.MeterProvider, http.Handler, error) {
	reg := prometheus.NewRegistry()
	exporter, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	return provider, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func (m *Metrics) CacheLookup(ctx context.Context, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) CacheWrite(ctx context.Context, err error) {
	if m == nil {
		return
	}
	m.cacheWrites.Add(ctx, 1, metric.WithAttributes(attribute.String("result", outcome(err))))
}

func (m *Metrics) UpstreamRequest(ctx context.Context, provider string, err error) {
	if m == nil {
		return
	}
	m.upstreamRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("result", outcome(err)),
	))
}

func (m *Metrics) DetailResolved(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.detailResolutions.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

func (m *Metrics) SearchDuration(ctx context.Context, d time.Duration, cached bool) {
	if m == nil {
		return
	}
	m.searchDuration.Record(ctx, float64(d.Microseconds())/1000.0,
		metric.WithAttributes(attribute.Bool("cached", cached)))
}

func outcome(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
