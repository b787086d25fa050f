package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	oteltrace "go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"resuin/internal/types"
)

// Metrics holds all custom metrics for resume analysis
type Metrics struct {
	// Analysis metrics
	AnalysesTotal    metric.Int64Counter
	AnalysisDuration metric.Float64Histogram
	OverallScore     metric.Int64Histogram
	ComparisonsTotal metric.Int64Counter

	// Certificate metrics
	CertReloadCount metric.Int64Counter
	CertExpiryTime  metric.Float64Gauge

	// Rate limiting metrics
	RateLimitHits metric.Int64Counter
}

// ObservabilityManager manages OpenTelemetry setup
type ObservabilityManager struct {
	config         ObservabilityConfig
	resource       *resource.Resource
	tracerProvider *trace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	metrics        *Metrics
	shutdownFuncs  []func(context.Context) error
	metricsHandler http.Handler
}

// NewObservabilityManager builds the trace and meter providers described by
// obsConfig. A disabled config yields a manager whose methods are no-ops.
func NewObservabilityManager(obsConfig ObservabilityConfig) (*ObservabilityManager, error) {
	om := &ObservabilityManager{config: obsConfig}
	if !obsConfig.Enabled {
		return om, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(obsConfig.ServiceName),
			semconv.ServiceVersion(obsConfig.ServiceVersion),
			attribute.String("service.instance.id", om.getServiceInstanceID()),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize resource: %w", err)
	}
	om.resource = res

	if obsConfig.TracingEnabled {
		if err := om.initTracing(); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}
	if obsConfig.MetricsEnabled {
		if err := om.initMetrics(); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}
	return om, nil
}

// initTracing installs a batching tracer provider. Spans go to stdout in
// console mode, to the OTLP collector when configured, and nowhere
// otherwise.
func (om *ObservabilityManager) initTracing() error {
	var (
		exporter trace.SpanExporter
		err      error
	)
	switch {
	case om.config.ConsoleOutput:
		var opts []stdouttrace.Option
		if om.config.PrettyPrint {
			opts = append(opts, stdouttrace.WithPrettyPrint())
		}
		exporter, err = stdouttrace.New(opts...)
	case om.config.OTLP.Enabled:
		exporter, err = om.createOTLPExporter()
	default:
		exporter = &noOpSpanExporter{}
	}
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(om.resource),
		trace.WithSampler(trace.TraceIDRatioBased(om.config.SampleRate)),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	om.tracerProvider = tp
	om.shutdownFuncs = append(om.shutdownFuncs, tp.Shutdown)
	return nil
}

// initMetrics installs a meter provider with every configured reader and
// creates the service instruments.
func (om *ObservabilityManager) initMetrics() error {
	readers, err := om.metricReaders()
	if err != nil {
		return err
	}

	opts := []sdkmetric.Option{sdkmetric.WithResource(om.resource)}
	for _, reader := range readers {
		opts = append(opts, sdkmetric.WithReader(reader))
	}
	mp := sdkmetric.NewMeterProvider(opts...)
	otel.SetMeterProvider(mp)

	om.meterProvider = mp
	om.shutdownFuncs = append(om.shutdownFuncs, mp.Shutdown)

	metrics, err := newMetrics(mp.Meter(om.config.ServiceName))
	if err != nil {
		return err
	}
	om.metrics = metrics
	return nil
}

// metricReaders returns the console, OTLP and Prometheus readers that are
// enabled, or a manual reader when none are.
func (om *ObservabilityManager) metricReaders() ([]sdkmetric.Reader, error) {
	var readers []sdkmetric.Reader
	interval := sdkmetric.WithInterval(om.getMetricsCollectionInterval())

	if om.config.ConsoleOutput {
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("failed to create console metric exporter: %w", err)
		}
		readers = append(readers, sdkmetric.NewPeriodicReader(exporter, interval))
	}

	if om.config.OTLP.Enabled {
		reader, err := om.createOTLPMetricsReader()
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP metrics reader: %w", err)
		}
		readers = append(readers, reader)
	}

	if om.config.Prometheus.Enabled {
		reader, handler, err := SetupPrometheusExporter(om.config.Prometheus)
		if err != nil {
			return nil, fmt.Errorf("failed to create Prometheus exporter: %w", err)
		}
		readers = append(readers, reader)
		om.metricsHandler = handler
	}

	if len(readers) == 0 {
		readers = append(readers, sdkmetric.NewManualReader())
	}
	return readers, nil
}

// newMetrics creates the analysis, certificate and rate limit instruments.
func newMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var errs []error
	check := func(name string, err error) {
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to create %s metric: %w", name, err))
		}
	}

	var err error
	m.AnalysesTotal, err = meter.Int64Counter("resuin_analyses_total",
		metric.WithDescription("Total number of resume analyses completed"))
	check("analyses total", err)

	m.AnalysisDuration, err = meter.Float64Histogram("resuin_analysis_duration_seconds",
		metric.WithDescription("Time spent analyzing or comparing resumes"),
		metric.WithUnit("s"))
	check("analysis duration", err)

	m.OverallScore, err = meter.Int64Histogram("resuin_overall_score",
		metric.WithDescription("Distribution of overall resume scores"),
		metric.WithExplicitBucketBoundaries(20, 40, 50, 60, 65, 75, 80, 85, 90, 100))
	check("overall score", err)

	m.ComparisonsTotal, err = meter.Int64Counter("resuin_comparisons_total",
		metric.WithDescription("Total number of cross-company comparisons"))
	check("comparisons total", err)

	m.CertReloadCount, err = meter.Int64Counter("resuin_cert_reloads_total",
		metric.WithDescription("Total number of certificate reloads"))
	check("certificate reload count", err)

	// Populated by the server certificate manager
	m.CertExpiryTime, err = meter.Float64Gauge("resuin_cert_expiry_seconds",
		metric.WithDescription("Seconds until certificate expiry"),
		metric.WithUnit("s"))
	check("certificate expiry time", err)

	m.RateLimitHits, err = meter.Int64Counter("resuin_rate_limit_hits_total",
		metric.WithDescription("Total number of rate limit hits"))
	check("rate limit hits", err)

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return m, nil
}

// GetMetrics returns the metrics instance
func (om *ObservabilityManager) GetMetrics() *Metrics {
	if om.metrics == nil {
		return &Metrics{} // Return empty metrics if not initialized
	}
	return om.metrics
}

// MetricsHandler serves the Prometheus scrape endpoint, or returns nil when
// Prometheus export is disabled.
func (om *ObservabilityManager) MetricsHandler() http.Handler {
	return om.metricsHandler
}

// MetricsEndpoint is the path the Prometheus handler should be mounted on.
func (om *ObservabilityManager) MetricsEndpoint() string {
	return om.config.Prometheus.Endpoint
}

// HTTPMiddleware returns HTTP middleware with OpenTelemetry instrumentation
func (om *ObservabilityManager) HTTPMiddleware() func(http.Handler) http.Handler {
	if !om.config.Enabled {
		return func(h http.Handler) http.Handler { return h }
	}

	opts := []otelhttp.Option{}
	if om.tracerProvider != nil {
		opts = append(opts, otelhttp.WithTracerProvider(om.tracerProvider))
	}
	if om.meterProvider != nil {
		opts = append(opts, otelhttp.WithMeterProvider(om.meterProvider))
	}
	return otelhttp.NewMiddleware(om.config.ServiceName, opts...)
}

// Tracer returns a tracer for the service
func (om *ObservabilityManager) Tracer(name string) oteltrace.Tracer {
	if om.tracerProvider == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return om.tracerProvider.Tracer(name)
}

// Shutdown gracefully shuts down all observability components
func (om *ObservabilityManager) Shutdown(ctx context.Context) error {
	for _, shutdown := range om.shutdownFuncs {
		if err := shutdown(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ObserveAnalysis records a completed analysis. It lets the manager be
// registered as an analyzer observer.
func (om *ObservabilityManager) ObserveAnalysis(ctx context.Context, report types.AnalysisReport) {
	m := om.GetMetrics()
	if m.AnalysesTotal == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("company", report.CompanyID),
		attribute.String("mode", string(report.Mode)),
		attribute.Bool("passes_screening", report.PassesInitialScreening),
	)
	m.AnalysesTotal.Add(ctx, 1, attrs)
	m.OverallScore.Record(ctx, int64(report.OverallScore), attrs)

	oteltrace.SpanFromContext(ctx).AddEvent("analysis.completed", oteltrace.WithAttributes(
		attribute.String("company", report.CompanyID),
		attribute.Int("overall_score", report.OverallScore),
	))
}

// TrackOperation instruments an analysis operation with a span and the
// duration histogram.
func (om *ObservabilityManager) TrackOperation(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := om.Tracer("resuin.analysis").Start(ctx, "analysis."+operation)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	duration := time.Since(start).Seconds()

	m := om.GetMetrics()
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", err == nil),
	)
	if m.AnalysisDuration != nil {
		m.AnalysisDuration.Record(ctx, duration, attrs)
	}
	if operation == "compare" && err == nil && m.ComparisonsTotal != nil {
		m.ComparisonsTotal.Add(ctx, 1)
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// RecordRateLimitHit counts a rejected request.
func (om *ObservabilityManager) RecordRateLimitHit(ctx context.Context, limitType string) {
	if m := om.GetMetrics(); m.RateLimitHits != nil {
		m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("limit_type", limitType)))
	}
}

// RecordCertReload counts a certificate reload attempt and, on success,
// updates the expiry gauge.
func (om *ObservabilityManager) RecordCertReload(ctx context.Context, err error, notAfter time.Time) {
	m := om.GetMetrics()
	if m.CertReloadCount != nil {
		m.CertReloadCount.Add(ctx, 1, metric.WithAttributes(attribute.Bool("success", err == nil)))
	}
	if err == nil && m.CertExpiryTime != nil && !notAfter.IsZero() {
		m.CertExpiryTime.Record(ctx, time.Until(notAfter).Seconds())
	}
}

// No-op exporter for when no trace exporter is configured
type noOpSpanExporter struct{}

func (n *noOpSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

func (n *noOpSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// createOTLPExporter creates an OTLP HTTP trace exporter
func (om *ObservabilityManager) createOTLPExporter() (trace.SpanExporter, error) {
	otlpConfig := om.config.OTLP

	opts := []otlptracehttp.Option{
		otlptracehttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlptracehttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlptracehttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	return exporter, nil
}

// createOTLPMetricsReader creates an OTLP HTTP metrics reader
func (om *ObservabilityManager) createOTLPMetricsReader() (sdkmetric.Reader, error) {
	otlpConfig := om.config.OTLP

	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpointURL(otlpConfig.Endpoint),
	}
	if otlpConfig.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	if len(otlpConfig.Headers) > 0 {
		opts = append(opts, otlpmetrichttp.WithHeaders(otlpConfig.Headers))
	}

	exporter, err := otlpmetrichttp.New(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	return sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(om.getMetricsCollectionInterval())), nil
}

// getServiceInstanceID returns the configured service instance ID
func (om *ObservabilityManager) getServiceInstanceID() string {
	if om.config.ServiceInstance != "" {
		return om.config.ServiceInstance
	}
	return om.config.ServiceName + "-1"
}

// getMetricsCollectionInterval returns the configured metrics collection interval
func (om *ObservabilityManager) getMetricsCollectionInterval() time.Duration {
	if om.config.CollectionInterval > 0 {
		return om.config.CollectionInterval
	}
	return 15 * time.Second
}
