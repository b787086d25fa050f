package observability

import (
	"time"

	"resuin/internal/config"
)

// ObservabilityConfig holds configuration for observability
type ObservabilityConfig struct {
	ServiceName        string
	ServiceVersion     string
	ServiceInstance    string
	Enabled            bool
	TracingEnabled     bool
	MetricsEnabled     bool
	ConsoleOutput      bool
	PrettyPrint        bool
	SampleRate         float64
	CollectionInterval time.Duration
	Prometheus         PrometheusConfig
	OTLP               OTLPConfig
}

// OTLPConfig holds OTLP/HTTP exporter settings
type OTLPConfig struct {
	Enabled  bool
	Endpoint string
	Insecure bool
	Headers  map[string]string
}

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		// Fallback to defaults if config not available
		return ObservabilityConfig{
			ServiceName:        "resuin",
			ServiceVersion:     version,
			ServiceInstance:    "resuin-1",
			Enabled:            true,
			TracingEnabled:     true,
			MetricsEnabled:     true,
			PrettyPrint:        true,
			SampleRate:         1.0,
			CollectionInterval: 15 * time.Second,
			Prometheus:         GetPrometheusConfig(cfg),
		}
	}

	obsConfig := cfg.Observability

	// Use app version if service version not specified
	serviceVersion := obsConfig.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	interval := obsConfig.Metrics.CollectionInterval
	if interval <= 0 {
		interval = 15 * time.Second
	}

	return ObservabilityConfig{
		ServiceName:        obsConfig.ServiceName,
		ServiceVersion:     serviceVersion,
		ServiceInstance:    obsConfig.ServiceInstance,
		Enabled:            obsConfig.Enabled,
		TracingEnabled:     obsConfig.Tracing.Enabled,
		MetricsEnabled:     obsConfig.Metrics.Enabled,
		ConsoleOutput:      obsConfig.Console.Enabled,
		PrettyPrint:        obsConfig.Console.PrettyPrint,
		SampleRate:         obsConfig.Tracing.SampleRate,
		CollectionInterval: interval,
		Prometheus:         GetPrometheusConfig(cfg),
		OTLP: OTLPConfig{
			Enabled:  obsConfig.OTLP.Enabled,
			Endpoint: obsConfig.OTLP.Endpoint,
			Insecure: obsConfig.OTLP.Insecure,
			Headers:  obsConfig.OTLP.Headers,
		},
	}
}
