package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"

	config "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
)

const meterName = "github.com/tigerroll/weather-etl/pkg/batch"

// OtelRecorder is an OpenTelemetry implementation of metrics.MetricRecorder that exports
// through OTLP.
type OtelRecorder struct {
	provider *sdkmetric.MeterProvider

	jobs       otelmetric.Int64Counter
	jobSeconds otelmetric.Float64Histogram
	steps      otelmetric.Int64Counter
	reads      otelmetric.Int64Counter
	writes     otelmetric.Int64Counter
	skips      otelmetric.Int64Counter
	retries    otelmetric.Int64Counter
	durations  otelmetric.Float64Histogram
}

// NewOtelRecorder builds the OTLP exporter described by cfg and registers the instruments.
func NewOtelRecorder(ctx context.Context, cfg config.OTLPConfig, res *resource.Resource) (*OtelRecorder, error) {
	exporter, err := newMetricExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter)),
		sdkmetric.WithResource(res),
	)
	r, err := newOtelRecorder(provider)
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, err
	}
	return r, nil
}

func newMetricExporter(ctx context.Context, cfg config.OTLPConfig) (sdkmetric.Exporter, error) {
	switch cfg.Protocol {
	case "grpc":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetricgrpc.WithInsecure())
		}
		return otlpmetricgrpc.New(ctx, opts...)
	case "http", "":
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlpmetrichttp.WithInsecure())
		}
		return otlpmetrichttp.New(ctx, opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol: %q", cfg.Protocol)
	}
}

func newOtelRecorder(provider *sdkmetric.MeterProvider) (*OtelRecorder, error) {
	meter := provider.Meter(meterName)
	r := &OtelRecorder{provider: provider}

	var err error
	if r.jobs, err = meter.Int64Counter("batch.job.executions", otelmetric.WithDescription("Finished job executions by status.")); err != nil {
		return nil, err
	}
	if r.jobSeconds, err = meter.Float64Histogram("batch.job.duration", otelmetric.WithUnit("s")); err != nil {
		return nil, err
	}
	if r.steps, err = meter.Int64Counter("batch.step.executions", otelmetric.WithDescription("Finished step executions by status.")); err != nil {
		return nil, err
	}
	if r.reads, err = meter.Int64Counter("batch.item.read"); err != nil {
		return nil, err
	}
	if r.writes, err = meter.Int64Counter("batch.item.write"); err != nil {
		return nil, err
	}
	if r.skips, err = meter.Int64Counter("batch.item.skip"); err != nil {
		return nil, err
	}
	if r.retries, err = meter.Int64Counter("batch.retry"); err != nil {
		return nil, err
	}
	if r.durations, err = meter.Float64Histogram("batch.operation.duration", otelmetric.WithUnit("s")); err != nil {
		return nil, err
	}
	return r, nil
}

// Shutdown flushes pending metrics and stops the exporter.
func (r *OtelRecorder) Shutdown(ctx context.Context) error {
	return r.provider.Shutdown(ctx)
}

func (r *OtelRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {}

func (r *OtelRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	attrs := otelmetric.WithAttributes(
		attribute.String("job_name", execution.JobName),
		attribute.String("status", execution.Status.String()),
	)
	r.jobs.Add(ctx, 1, attrs)
	r.jobSeconds.Record(ctx, execution.Duration().Seconds(), attrs)
}

func (r *OtelRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {}

func (r *OtelRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution) {
	r.steps.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("step_name", execution.StepName),
		attribute.String("status", execution.Status.String()),
	))
}

func (r *OtelRecorder) RecordItemRead(ctx context.Context, stepName string) {
	r.reads.Add(ctx, 1, otelmetric.WithAttributes(attribute.String("step_name", stepName)))
}

func (r *OtelRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
	r.writes.Add(ctx, int64(count), otelmetric.WithAttributes(attribute.String("step_name", stepName)))
}

func (r *OtelRecorder) RecordItemSkip(ctx context.Context, stepName string, reason string) {
	r.skips.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("step_name", stepName),
		attribute.String("reason", reason),
	))
}

func (r *OtelRecorder) RecordRetry(ctx context.Context, operation string, reason string) {
	r.retries.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("reason", reason),
	))
}

func (r *OtelRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	attrs := make([]attribute.KeyValue, 0, len(tags)+1)
	attrs = append(attrs, attribute.String("operation", name))
	for k, v := range tags {
		attrs = append(attrs, attribute.String(k, v))
	}
	r.durations.Record(ctx, duration.Seconds(), otelmetric.WithAttributes(attrs...))
}

var _ metrics.MetricRecorder = (*OtelRecorder)(nil)
