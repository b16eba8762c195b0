package tracing

import (
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
)

const (
	collectorSuffix  = "/api/traces"
	defaultCollector = "http://localhost:14268" + collectorSuffix
)

// InitTracer wires the global tracer provider to a Jaeger collector and tags
// every span with the service name and deployment environment, so traces from
// the local and deployed instances stay distinguishable.
func InitTracer(serviceName, env, collector string) (*tracesdk.TracerProvider, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(
		jaeger.WithEndpoint(collectorEndpoint(collector)),
	))
	if err != nil {
		return nil, err
	}

	tp := tracesdk.NewTracerProvider(
		tracesdk.WithBatcher(exp),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.DeploymentEnvironment(env),
		)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, nil
}

// collectorEndpoint accepts a bare host, host:port, or full URL and returns
// the collector's traces endpoint.
func collectorEndpoint(value string) string {
	endpoint := strings.TrimSpace(value)
	if endpoint == "" {
		return defaultCollector
	}

	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	endpoint = strings.TrimSuffix(endpoint, "/")
	if !strings.HasSuffix(endpoint, collectorSuffix) {
		endpoint += collectorSuffix
	}
	return endpoint
}
