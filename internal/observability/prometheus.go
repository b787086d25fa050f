package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"

	"resuin/internal/config"
)

// PrometheusConfig holds Prometheus-specific configuration
type PrometheusConfig struct {
	Enabled  bool
	Endpoint string
}

// SetupPrometheusExporter creates a Prometheus metrics exporter backed by
// its own registry and the handler that serves it. Each manager gets a
// private registry so several can coexist in one process.
func SetupPrometheusExporter(config PrometheusConfig) (metric.Reader, http.Handler, error) {
	if !config.Enabled {
		return nil, nil, nil
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return exporter, handler, nil
}

// GetPrometheusConfig creates Prometheus configuration from provided config
func GetPrometheusConfig(cfg *config.Config) PrometheusConfig {
	if cfg != nil {
		endpoint := cfg.Observability.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		return PrometheusConfig{
			Enabled:  cfg.Observability.Prometheus.Enabled,
			Endpoint: endpoint,
		}
	}

	// Fallback to defaults if config not available
	return PrometheusConfig{
		Enabled:  true,
		Endpoint: "/metrics",
	}
}
