package metrics

import (
	"context"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

// Tracer is the distributed tracing port.
type Tracer interface {
	// StartJobSpan starts a span for a JobExecution and returns the context carrying it
	// together with the function that ends it.
	StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func())
	// StartStepSpan starts a span for a StepExecution, normally as a child of the job span.
	StartStepSpan(ctx context.Context, execution *model.StepExecution) (context.Context, func())
	// StartSpan starts a span for an arbitrary operation (a location fetch, the warehouse load).
	StartSpan(ctx context.Context, name string, attributes map[string]interface{}) (context.Context, func())
	// RecordError records err on the current span.
	RecordError(ctx context.Context, module string, err error)
	// RecordEvent records an event on the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
