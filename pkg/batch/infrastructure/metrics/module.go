package metrics

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.uber.org/fx"

	config "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// RecorderResult contributes a backend to the metrics.RecorderGroup value group.
type RecorderResult struct {
	fx.Out
	Recorder metrics.MetricRecorder `group:"metricRecorders"`
}

// BackendParams is the input of the metric backend providers.
type BackendParams struct {
	fx.In
	Lifecycle fx.Lifecycle
	Config    *config.Config
}

func serviceResource(cfg *config.Config) *resource.Resource {
	name := cfg.Surfin.Observability.Tracing.ServiceName
	if name == "" {
		name = cfg.Surfin.Batch.JobName
	}
	return resource.NewSchemaless(attribute.String("service.name", name))
}

// NewPrometheusRecorderProvider provides the Prometheus backend, or nil when metrics are disabled.
func NewPrometheusRecorderProvider(p BackendParams) (*PrometheusRecorder, RecorderResult) {
	mc := p.Config.Surfin.Observability.Metrics
	if !mc.Enabled {
		return nil, RecorderResult{}
	}
	r := NewPrometheusRecorder(p.Config.Surfin.Batch.JobName, mc.PushgatewayURL)
	return r, RecorderResult{Recorder: r}
}

// NewOtelRecorderProvider provides the OTLP metric backend when an endpoint is configured.
func NewOtelRecorderProvider(p BackendParams) (RecorderResult, error) {
	mc := p.Config.Surfin.Observability.Metrics
	if !mc.Enabled || mc.OTLP.Endpoint == "" {
		return RecorderResult{}, nil
	}
	r, err := NewOtelRecorder(context.Background(), mc.OTLP, serviceResource(p.Config))
	if err != nil {
		return RecorderResult{}, err
	}
	p.Lifecycle.Append(fx.Hook{OnStop: r.Shutdown})
	logger.Infof("Metrics: exporting OTLP metrics to %s (%s).", mc.OTLP.Endpoint, mc.OTLP.Protocol)
	return RecorderResult{Recorder: r}, nil
}

// NewTracerProvider provides the OTLP tracer when tracing is enabled, otherwise a no-op tracer.
func NewTracerProvider(p BackendParams) (metrics.Tracer, error) {
	tc := p.Config.Surfin.Observability.Tracing
	if !tc.Enabled || tc.OTLP.Endpoint == "" {
		return metrics.NewNoOpTracer(), nil
	}
	t, err := NewOpenTelemetryTracer(context.Background(), tc.OTLP, serviceResource(p.Config))
	if err != nil {
		return nil, err
	}
	p.Lifecycle.Append(fx.Hook{OnStop: t.Shutdown})
	logger.Infof("Tracer: exporting OTLP traces to %s (%s).", tc.OTLP.Endpoint, tc.OTLP.Protocol)
	return t, nil
}

// Module provides the configured metric backends and the Tracer.
var Module = fx.Options(
	fx.Provide(NewPrometheusRecorderProvider),
	fx.Provide(NewOtelRecorderProvider),
	fx.Provide(NewTracerProvider),
)
