package tracer

import (
	"context"
	"log"
	"os"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const (
	DefaultServiceName = "flashly-retrieval"
	defaultEndpoint    = "localhost:4318"
)

// Settings are read from OTEL_* variables.
type Settings struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
	// SampleRatio in [0,1]; parent-based so a sampled request keeps its children.
	SampleRatio float64
}

func SettingsFromEnv(serviceName string) Settings {
	s := Settings{
		Enabled:     os.Getenv("OTEL_ENABLED") == "true",
		Endpoint:    os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName: serviceName,
		SampleRatio: 1,
	}
	if s.Endpoint == "" {
		s.Endpoint = defaultEndpoint
	}
	if s.ServiceName == "" {
		s.ServiceName = DefaultServiceName
	}
	if raw := os.Getenv("OTEL_SAMPLE_RATIO"); raw != "" {
		if ratio, err := strconv.ParseFloat(raw, 64); err == nil && ratio >= 0 && ratio <= 1 {
			s.SampleRatio = ratio
		}
	}
	return s
}

// InitTracer installs an OTLP/HTTP tracer provider when OTEL_ENABLED=true and
// returns its shutdown func. Otherwise the global no-op provider stays.
func InitTracer(serviceName string) func(context.Context) error {
	return Start(SettingsFromEnv(serviceName))
}

func Start(s Settings) func(context.Context) error {
	noop := func(context.Context) error { return nil }
	if !s.Enabled {
		log.Println("[INFO] Tracing disabled (set OTEL_ENABLED=true to enable)")
		return noop
	}

	exporter, err := otlptracehttp.New(context.Background(),
		otlptracehttp.WithEndpoint(s.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		log.Printf("[WARN] Failed to create OTLP exporter: %v. Tracing disabled", err)
		return noop
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(s.SampleRatio))),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(s.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	log.Printf("[INFO] Tracing enabled (service: %s, endpoint: %s, ratio: %.2f)", s.ServiceName, s.Endpoint, s.SampleRatio)

	return tp.Shutdown
}
