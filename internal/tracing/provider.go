package tracing

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

// Provider manages the OpenTelemetry trace provider lifecycle
type Provider struct {
	tp     *sdktrace.TracerProvider
	logger *slog.Logger
}

// TracerConfig holds configuration for trace provider initialization
type TracerConfig struct {
	Enabled        bool
	Exporter       string  // otlp | stdout
	Endpoint       string  // Exporter endpoint
	SampleRate     float64 // 0.0-1.0; <= 0 samples nothing, >= 1 samples everything
	ServiceName    string  // Service name for traces
	Version        string  // Service version for traces
	UseTLS         bool    // Enable TLS for production (default: false for development)
	TickIntervalMS int     // the running supervisor's scheduler tick interval, carried as a resource attribute
}

// NewProvider creates and initializes a new OpenTelemetry trace provider
func NewProvider(ctx context.Context, cfg TracerConfig, logger *slog.Logger) (*Provider, error) {
	if !cfg.Enabled {
		logger.Debug("job supervisor tracing disabled")
		return &Provider{logger: logger}, nil
	}

	logger.Info("initializing job supervisor tracing",
		slog.String("exporter", cfg.Exporter),
		slog.String("endpoint", cfg.Endpoint),
		slog.Float64("sample_rate", cfg.SampleRate),
		slog.String("service", cfg.ServiceName))

	// Create trace exporter
	exporter, err := createExporter(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	// Create resource with service information, plus the scheduler's own
	// tick cadence — useful at the collector for correlating observed
	// scheduling jitter against the configured tick interval, something a
	// managed-process tracer has no equivalent attribute for.
	version := cfg.Version
	if version == "" {
		version = "unknown"
	}
	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceNameKey.String(cfg.ServiceName),
		semconv.ServiceVersionKey.String(version),
		attribute.Int("jobsupervisor.tick_interval_ms", cfg.TickIntervalMS),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	// Create sampler based on sample rate
	var sampler sdktrace.Sampler
	if cfg.SampleRate >= 1.0 {
		sampler = sdktrace.AlwaysSample()
	} else if cfg.SampleRate <= 0.0 {
		sampler = sdktrace.NeverSample()
	} else {
		sampler = sdktrace.TraceIDRatioBased(cfg.SampleRate)
	}

	// Create trace provider. The batch export timeout is floored at 5s and
	// otherwise scaled off the scheduler's own tick interval, so a slow or
	// unreachable collector backs off on a cadence related to how often
	// this process actually generates spans rather than the exporter
	// library's fixed default.
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithExportTimeout(exportTimeout(cfg.TickIntervalMS))),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sampler),
	)

	// Set global trace provider
	otel.SetTracerProvider(tp)

	logger.Info("job supervisor tracing initialized",
		slog.Int("tick_interval_ms", cfg.TickIntervalMS))

	return &Provider{
		tp:     tp,
		logger: logger,
	}, nil
}

// createExporter creates the appropriate trace exporter based on
// configuration. Only the two exporters internal/config/validation.go
// accepts for tracing_exporter are supported; "otlp" is the canonical
// name, "otlp-grpc" kept as an accepted alias for it.
func createExporter(ctx context.Context, cfg TracerConfig, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	switch cfg.Exporter {
	case "otlp", "otlp-grpc":
		return createOTLPGRPCExporter(ctx, cfg.Endpoint, cfg.UseTLS, logger)
	case "stdout":
		return createStdoutExporter()
	default:
		return nil, fmt.Errorf("unsupported trace exporter: %s (supported: otlp, stdout)", cfg.Exporter)
	}
}

// createOTLPGRPCExporter creates an OTLP gRPC trace exporter.
func createOTLPGRPCExporter(ctx context.Context, endpoint string, useTLS bool, logger *slog.Logger) (sdktrace.SpanExporter, error) {
	logger.Debug("creating OTLP gRPC exporter",
		slog.String("endpoint", endpoint),
		slog.Bool("tls", useTLS))

	var opts []grpc.DialOption
	if useTLS {
		tlsConfig := &tls.Config{
			MinVersion: tls.VersionTLS12,
		}
		creds := credentials.NewTLS(tlsConfig)
		opts = append(opts, grpc.WithTransportCredentials(creds))
		logger.Info("OTLP gRPC exporter configured with TLS (production mode)")
	} else {
		opts = append(opts, grpc.WithTransportCredentials(insecure.NewCredentials()))
		logger.Warn("OTLP gRPC exporter configured without TLS (development mode)")
	}

	conn, err := grpc.NewClient(endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC connection: %w", err)
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithGRPCConn(conn),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP gRPC exporter: %w", err)
	}

	return exporter, nil
}

// exportTimeout scales the batch span processor's export timeout off the
// scheduler's tick interval (5x, floored at 5s) instead of hardcoding the
// exporter library's default.
func exportTimeout(tickIntervalMS int) time.Duration {
	const floor = 5 * time.Second
	scaled := time.Duration(tickIntervalMS) * 5 * time.Millisecond
	if scaled < floor {
		return floor
	}
	return scaled
}

// createStdoutExporter creates a stdout trace exporter for development
func createStdoutExporter() (sdktrace.SpanExporter, error) {
	return stdouttrace.New(
		stdouttrace.WithPrettyPrint(),
	)
}

// Tracer returns a tracer for the given component name
func (p *Provider) Tracer(name string) trace.Tracer {
	if p.tp == nil {
		return noop.NewTracerProvider().Tracer(name)
	}
	return p.tp.Tracer(name)
}

// Shutdown gracefully shuts down the trace provider
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}

	p.logger.Info("shutting down job supervisor tracing")
	if err := p.tp.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown trace provider: %w", err)
	}

	p.logger.Debug("job supervisor tracing shutdown complete")
	return nil
}

// Enabled returns whether tracing is enabled
func (p *Provider) Enabled() bool {
	return p.tp != nil
}
