// Package runner provides the sequential Job implementation and the JobRunner that drives it.
package runner

import (
	"context"
	"time"

	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/weather-etl/pkg/batch/core/domain/repository"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
	exception "github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// SimpleJob is an implementation of port.Job that runs its steps in order and stops at the
// first failing step.
type SimpleJob struct {
	name          string
	steps         []port.Step
	jobRepository repository.JobRepository
	jobListeners  []port.JobExecutionListener
	tracer        metrics.Tracer
}

// Verify that SimpleJob implements the port.Job interface.
var _ port.Job = (*SimpleJob)(nil)

// NewSimpleJob creates a new instance of SimpleJob.
func NewSimpleJob(
	name string,
	steps []port.Step,
	jobRepository repository.JobRepository,
	jobListeners []port.JobExecutionListener,
	tracer metrics.Tracer,
) *SimpleJob {
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	return &SimpleJob{
		name:          name,
		steps:         steps,
		jobRepository: jobRepository,
		jobListeners:  jobListeners,
		tracer:        tracer,
	}
}

// JobName returns the job name.
func (j *SimpleJob) JobName() string {
	return j.name
}

// Steps returns the steps in execution order.
func (j *SimpleJob) Steps() []port.Step {
	return j.steps
}

func (j *SimpleJob) notifyBeforeJob(ctx context.Context, jobExecution *model.JobExecution) {
	for _, l := range j.jobListeners {
		l.BeforeJob(ctx, jobExecution)
	}
}

func (j *SimpleJob) notifyAfterJob(ctx context.Context, jobExecution *model.JobExecution) {
	for _, l := range j.jobListeners {
		l.AfterJob(ctx, jobExecution)
	}
}

// Run executes the steps sequentially.
func (j *SimpleJob) Run(ctx context.Context, jobExecution *model.JobExecution, jobParameters model.JobParameters) (err error) {
	logger.Infof("Starting Job '%s' (Execution ID: %s).", j.name, jobExecution.ID)

	ctx, finishSpan := j.tracer.StartJobSpan(ctx, jobExecution)
	defer finishSpan()

	j.notifyBeforeJob(ctx, jobExecution)

	defer func() {
		if jobExecution.EndTime == nil {
			now := time.Now()
			jobExecution.EndTime = &now
		}
		j.notifyAfterJob(ctx, jobExecution)
		logger.Infof("Job '%s' (Execution ID: %s) finished. Final Status: %s, Exit Status: %s",
			j.name, jobExecution.ID, jobExecution.Status, jobExecution.ExitStatus)
	}()

	if len(j.steps) == 0 {
		err = exception.NewBatchErrorf(j.name, "Job '%s' has no steps", j.name)
		jobExecution.MarkAsFailed(err)
		return err
	}

	for _, step := range j.steps {
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Warnf("Context cancelled, interrupting execution of Job '%s': %v", j.name, ctxErr)
			jobExecution.AddFailureException(ctxErr)
			jobExecution.MarkAsStopped()
			j.tracer.RecordError(ctx, "job_runner", ctxErr)
			return ctxErr
		}

		stepExecution := model.NewStepExecution(jobExecution, step.StepName())
		if saveErr := j.jobRepository.SaveStepExecution(ctx, stepExecution); saveErr != nil {
			err = exception.NewBatchError(j.name, "Failed to save StepExecution", saveErr, false, false)
			jobExecution.MarkAsFailed(err)
			return err
		}

		if stepErr := step.Execute(ctx, jobExecution, stepExecution); stepErr != nil {
			logger.Errorf("Job '%s': Step '%s' failed: %v", j.name, step.StepName(), stepErr)
			j.tracer.RecordError(ctx, "job_runner", stepErr)
			if stepExecution.Status == model.BatchStatusStopped {
				jobExecution.AddFailureException(stepErr)
				jobExecution.MarkAsStopped()
			} else {
				jobExecution.MarkAsFailed(stepErr)
			}
			return stepErr
		}

		// Step counters and context are visible at job level once the step completes.
		for k, v := range stepExecution.ExecutionContext {
			jobExecution.ExecutionContext.Put(k, v)
		}
	}

	jobExecution.MarkAsCompleted()
	return nil
}
