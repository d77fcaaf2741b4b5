package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	"github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
)

type boundaryRecorder struct {
	metrics.NoOpMetricRecorder
	events []string
}

func (r *boundaryRecorder) RecordJobStart(ctx context.Context, je *model.JobExecution) {
	r.events = append(r.events, "job-start")
}

func (r *boundaryRecorder) RecordJobEnd(ctx context.Context, je *model.JobExecution) {
	r.events = append(r.events, "job-end")
}

func (r *boundaryRecorder) RecordStepStart(ctx context.Context, se *model.StepExecution) {
	r.events = append(r.events, "step-start")
}

func (r *boundaryRecorder) RecordStepEnd(ctx context.Context, se *model.StepExecution) {
	r.events = append(r.events, "step-end")
}

func TestMetricsListenersForwardBoundaries(t *testing.T) {
	rec := &boundaryRecorder{}
	jl := NewMetricsJobListener(rec)
	sl := NewMetricsStepListener(rec)
	ctx := context.Background()
	je := model.NewJobExecution("weatherDataETLJob", model.NewJobParameters())
	se := model.NewStepExecution(je, "weatherETLStep")

	jl.BeforeJob(ctx, je)
	sl.BeforeStep(ctx, se)
	sl.AfterStep(ctx, se)
	jl.AfterJob(ctx, je)

	assert.Equal(t, []string{"job-start", "step-start", "step-end", "job-end"}, rec.events)
}
