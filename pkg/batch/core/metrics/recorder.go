// Package metrics defines the observability ports of the batch engine.
// Backends live in pkg/batch/infrastructure/metrics.
package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

// MetricRecorder records metrics for job, step and item events.
// Implementations must be safe for concurrent use: items are recorded from fetch goroutines.
type MetricRecorder interface {
	// RecordJobStart records the start of a JobExecution.
	RecordJobStart(ctx context.Context, execution *model.JobExecution)
	// RecordJobEnd records the end of a JobExecution.
	RecordJobEnd(ctx context.Context, execution *model.JobExecution)
	// RecordStepStart records the start of a StepExecution.
	RecordStepStart(ctx context.Context, execution *model.StepExecution)
	// RecordStepEnd records the end of a StepExecution.
	RecordStepEnd(ctx context.Context, execution *model.StepExecution)

	// RecordItemRead records one item successfully read (a fetched location).
	RecordItemRead(ctx context.Context, stepName string)
	// RecordItemWrite records count items written (rows loaded).
	RecordItemWrite(ctx context.Context, stepName string, count int)
	// RecordItemSkip records one skipped item. reason is a short classifier such as "not_found".
	RecordItemSkip(ctx context.Context, stepName string, reason string)
	// RecordRetry records one retry of a batch-level operation such as "warehouse_load".
	RecordRetry(ctx context.Context, operation string, reason string)

	// RecordDuration records the duration of an operation, e.g. "weather_fetch" with {"status": "ok"}.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}
