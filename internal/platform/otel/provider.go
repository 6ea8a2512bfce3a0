// Package otel wires OpenTelemetry tracing for the commands.
package otel

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/louisbranch/creaturebattle/internal/platform/config"
)

const (
	// EndpointEnv holds the OTLP HTTP collector URL.
	EndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"
	// EnabledEnv set to "false" disables tracing even with an endpoint.
	EnabledEnv = "CREATUREBATTLE_OTEL_ENABLED"
	// SampleRatioEnv holds the fraction of root traces kept.
	SampleRatioEnv = "CREATUREBATTLE_OTEL_SAMPLE_RATIO"

	namespace           = "creaturebattle"
	instrumentationName = "github.com/louisbranch/creaturebattle"
)

// Settings is the tracing configuration read from the environment.
type Settings struct {
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Enabled     string  `env:"CREATUREBATTLE_OTEL_ENABLED"`
	SampleRatio float64 `env:"CREATUREBATTLE_OTEL_SAMPLE_RATIO" envDefault:"1"`
}

// Active reports whether spans should be exported.
func (s Settings) Active() bool {
	return !strings.EqualFold(strings.TrimSpace(s.Enabled), "false") && strings.TrimSpace(s.Endpoint) != ""
}

// LoadSettings reads Settings from the process environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := config.ParseEnv(&s); err != nil {
		return Settings{}, fmt.Errorf("otel settings: %w", err)
	}
	return s, nil
}

// Setup initialises OpenTelemetry tracing for serviceName.
//
// Tracing is opt-in: with no endpoint, or with tracing disabled, Setup returns
// a no-op shutdown and leaves the global provider alone. The returned
// shutdown flushes pending spans.
func Setup(ctx context.Context, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	settings, err := LoadSettings()
	if err != nil {
		return noop, err
	}
	if !settings.Active() {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(strings.TrimSpace(settings.Endpoint)))
	if err != nil {
		return noop, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(Attributes(serviceName)...))
	if err != nil {
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(Sampler(settings.SampleRatio)),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Shutdown, nil
}

// Attributes describes the running command: its name, the project namespace
// and the module version stamped at build time.
func Attributes(serviceName string) []attribute.KeyValue {
	return []attribute.KeyValue{
		semconv.ServiceName(serviceName),
		semconv.ServiceNamespace(namespace),
		semconv.ServiceVersion(version()),
	}
}

// Sampler keeps every trace at a ratio of 1 or more and none at 0 or less.
// Anything between samples root traces by id and follows the parent otherwise.
func Sampler(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func version() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "devel"
	}
	return info.Main.Version
}

// Tracer returns the named tracer from the global provider. It is a no-op
// tracer until Setup installs a provider.
func Tracer(component string) trace.Tracer {
	return otel.Tracer(instrumentationName + "/" + component)
}
