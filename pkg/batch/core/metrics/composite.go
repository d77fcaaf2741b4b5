package metrics

import (
	"context"
	"time"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

// CompositeRecorder fans every call out to a list of recorders.
type CompositeRecorder struct {
	recorders []MetricRecorder
}

// NewCompositeRecorder creates a CompositeRecorder. Nil entries are dropped.
// With no recorders left it returns a NoOpMetricRecorder.
func NewCompositeRecorder(recorders ...MetricRecorder) MetricRecorder {
	kept := make([]MetricRecorder, 0, len(recorders))
	for _, r := range recorders {
		if r != nil {
			kept = append(kept, r)
		}
	}
	switch len(kept) {
	case 0:
		return NewNoOpMetricRecorder()
	case 1:
		return kept[0]
	}
	return &CompositeRecorder{recorders: kept}
}

func (c *CompositeRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution) {
	for _, r := range c.recorders {
		r.RecordJobStart(ctx, execution)
	}
}

func (c *CompositeRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution) {
	for _, r := range c.recorders {
		r.RecordJobEnd(ctx, execution)
	}
}

func (c *CompositeRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {
	for _, r := range c.recorders {
		r.RecordStepStart(ctx, execution)
	}
}

func (c *CompositeRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution) {
	for _, r := range c.recorders {
		r.RecordStepEnd(ctx, execution)
	}
}

func (c *CompositeRecorder) RecordItemRead(ctx context.Context, stepName string) {
	for _, r := range c.recorders {
		r.RecordItemRead(ctx, stepName)
	}
}

func (c *CompositeRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
	for _, r := range c.recorders {
		r.RecordItemWrite(ctx, stepName, count)
	}
}

func (c *CompositeRecorder) RecordItemSkip(ctx context.Context, stepName string, reason string) {
	for _, r := range c.recorders {
		r.RecordItemSkip(ctx, stepName, reason)
	}
}

func (c *CompositeRecorder) RecordRetry(ctx context.Context, operation string, reason string) {
	for _, r := range c.recorders {
		r.RecordRetry(ctx, operation, reason)
	}
}

func (c *CompositeRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	for _, r := range c.recorders {
		r.RecordDuration(ctx, name, duration, tags)
	}
}

var _ MetricRecorder = (*CompositeRecorder)(nil)
