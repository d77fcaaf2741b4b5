package runner

import (
	"context"
	"time"

	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/weather-etl/pkg/batch/core/domain/repository"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// SimpleJobRunner is an implementation of port.JobRunner that executes the flow by calling the Job's Run method.
type SimpleJobRunner struct {
	jobRepository repository.JobRepository
}

// NewSimpleJobRunner creates an instance of SimpleJobRunner.
func NewSimpleJobRunner(repo repository.JobRepository) *SimpleJobRunner {
	return &SimpleJobRunner{jobRepository: repo}
}

// Run executes the Job and persists the final state of jobExecution.
func (r *SimpleJobRunner) Run(ctx context.Context, job port.Job, jobExecution *model.JobExecution) {
	if jobExecution.Status == model.BatchStatusStarting {
		jobExecution.MarkAsStarted()
		if err := r.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
			logger.Errorf("JobRunner: Failed to update JobExecution (ID: %s) status to STARTED: %v", jobExecution.ID, err)
		}
	}

	err := r.runSafely(ctx, job, jobExecution)

	if err != nil {
		if jobExecution.Status.IsFinished() {
			logger.Debugf("JobRunner: Job execution finished with error, status already set to %s.", jobExecution.Status)
		} else {
			jobExecution.MarkAsFailed(err)
		}
	} else if !jobExecution.Status.IsFinished() {
		jobExecution.MarkAsCompleted()
	}

	if jobExecution.EndTime == nil {
		now := time.Now()
		jobExecution.EndTime = &now
	}

	// Persist with a fresh context so a cancelled run is still recorded.
	if updateErr := r.jobRepository.UpdateJobExecution(context.WithoutCancel(ctx), jobExecution); updateErr != nil {
		logger.Errorf("JobRunner: Failed to update final JobExecution (ID: %s) state: %v", jobExecution.ID, updateErr)
	}
}

// runSafely converts a panic in job code into a failure of the execution.
func (r *SimpleJobRunner) runSafely(ctx context.Context, job port.Job, jobExecution *model.JobExecution) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = panicError{value: rec}
			logger.Errorf("JobRunner: Job '%s' panicked: %v", job.JobName(), rec)
		}
	}()
	return job.Run(ctx, jobExecution, jobExecution.Parameters)
}

var _ port.JobRunner = (*SimpleJobRunner)(nil)
