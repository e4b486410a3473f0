package tracer

import (
	"context"
	"log"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const serviceName = "regassist-backend"

// InitTracer wires OpenTelemetry with an OTLP HTTP exporter. Off by default;
// set OTEL_ENABLED=true to turn it on. The otelfiber middleware opens a span
// per request and the pipeline steps show up underneath it, so a slow ask is
// attributable to a single stage (golden lookup, cache, model call, tools).
//
// Returns the provider shutdown, which flushes pending spans on exit.
func InitTracer() func(context.Context) error {
	if os.Getenv("OTEL_ENABLED") != "true" {
		log.Println("[TRACER] disabled (set OTEL_ENABLED=true to enable)")
		return func(context.Context) error { return nil }
	}

	ctx := context.Background()

	// Jaeger and most collectors accept OTLP over HTTP on 4318.
	endpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if endpoint == "" {
		endpoint = "localhost:4318"
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		// A dead collector should not take the API down with it.
		log.Printf("[TRACER] OTLP exporter unavailable: %v (tracing disabled)", err)
		return func(context.Context) error { return nil }
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.DeploymentEnvironmentKey.String(env()),
		)),
	)

	otel.SetTracerProvider(tp)
	log.Printf("[TRACER] OpenTelemetry initialized (endpoint: %s, env: %s)", endpoint, env())

	return tp.Shutdown
}

func env() string {
	if v := os.Getenv("GO_ENV"); v != "" {
		return v
	}
	return "development"
}
