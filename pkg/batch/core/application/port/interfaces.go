// Package port defines the contracts between the batch engine and the components it runs.
package port

import (
	"context"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
)

// Job is an executable batch job made of ordered steps.
type Job interface {
	// Run executes the job's steps against jobExecution. The returned error is the
	// failure of the job itself; the final status is recorded on jobExecution.
	Run(ctx context.Context, jobExecution *model.JobExecution, jobParameters model.JobParameters) error
	// JobName returns the logical name of the job.
	JobName() string
	// Steps returns the steps in execution order.
	Steps() []Step
}

// JobRunner drives one JobExecution of a Job to a finished state.
type JobRunner interface {
	Run(ctx context.Context, job Job, jobExecution *model.JobExecution)
}

// JobLauncher launches a job by name and waits for it to finish.
type JobLauncher interface {
	// Launch creates a JobExecution, runs it to completion and returns it.
	// The error covers the launch itself; job failures are reported on the returned execution.
	Launch(ctx context.Context, jobName string, params model.JobParameters) (*model.JobExecution, error)
}

// JobParametersIncrementer derives the parameters of the next run from the previous ones.
type JobParametersIncrementer interface {
	GetNext(params model.JobParameters) model.JobParameters
}

// Step is a single unit of work within a job.
type Step interface {
	// Execute runs the step and records its outcome on stepExecution.
	Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error
	// StepName returns the logical name of the step.
	StepName() string
	// SetMetricRecorder replaces the recorder used by the step.
	SetMetricRecorder(recorder metrics.MetricRecorder)
	// SetTracer replaces the tracer used by the step.
	SetTracer(tracer metrics.Tracer)
}

// Tasklet is the business logic of a tasklet-oriented step.
type Tasklet interface {
	// Execute runs the business logic and returns ExitStatusCompleted on success.
	Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error)
	// Close releases resources.
	Close(ctx context.Context) error
	// SetExecutionContext hands the step's ExecutionContext to the tasklet before Execute.
	SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error
	// GetExecutionContext returns the tasklet's ExecutionContext after Execute.
	GetExecutionContext(ctx context.Context) (model.ExecutionContext, error)
}

// StepExecutionListener observes step boundaries.
type StepExecutionListener interface {
	// BeforeStep is called just before a step execution starts.
	BeforeStep(ctx context.Context, stepExecution *model.StepExecution)
	// AfterStep is called after a step execution completes (regardless of success or failure).
	AfterStep(ctx context.Context, stepExecution *model.StepExecution)
}

// JobExecutionListener observes job boundaries.
type JobExecutionListener interface {
	// BeforeJob is called just before a job execution starts.
	BeforeJob(ctx context.Context, jobExecution *model.JobExecution)
	// AfterJob is called after a job execution completes (regardless of success or failure).
	AfterJob(ctx context.Context, jobExecution *model.JobExecution)
}

type contextKey string

// StepExecutionKey is the context key under which the running StepExecution is stored.
const StepExecutionKey contextKey = "stepExecution"

// GetContextWithStepExecution stores a StepExecution in the Context.
func GetContextWithStepExecution(ctx context.Context, se *model.StepExecution) context.Context {
	return context.WithValue(ctx, StepExecutionKey, se)
}

// GetStepExecutionFromContext retrieves a StepExecution from the Context. Returns nil if not found.
func GetStepExecutionFromContext(ctx context.Context) *model.StepExecution {
	if se, ok := ctx.Value(StepExecutionKey).(*model.StepExecution); ok {
		return se
	}
	return nil
}
