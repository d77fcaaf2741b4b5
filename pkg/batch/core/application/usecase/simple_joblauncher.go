package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/weather-etl/pkg/batch/core/domain/repository"
	exception "github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// ErrJobAlreadyRunning is returned when a job is launched while a previous execution is unfinished.
var ErrJobAlreadyRunning = errors.New("job is already running")

// SimpleJobLauncher launches registered jobs and runs them to completion on the caller's goroutine.
type SimpleJobLauncher struct {
	jobRepository repository.JobRepository
	registry      *JobRegistry
	jobRunner     port.JobRunner
	// activeJobCancellations holds the cancel functions for running jobs.
	activeJobCancellations map[string]context.CancelFunc
	mu                     sync.Mutex
}

// NewSimpleJobLauncher creates a new SimpleJobLauncher.
func NewSimpleJobLauncher(
	repo repository.JobRepository,
	registry *JobRegistry,
	runner port.JobRunner,
) *SimpleJobLauncher {
	return &SimpleJobLauncher{
		jobRepository:          repo,
		registry:               registry,
		jobRunner:              runner,
		activeJobCancellations: make(map[string]context.CancelFunc),
	}
}

// RegisterCancelFunc registers the cancel function for a running job execution.
func (l *SimpleJobLauncher) RegisterCancelFunc(executionID string, cancelFunc context.CancelFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.activeJobCancellations[executionID] = cancelFunc
	logger.Debugf("Registered CancelFunc for JobExecution (ID: %s).", executionID)
}

// UnregisterCancelFunc unregisters the cancel function for a running job execution.
func (l *SimpleJobLauncher) UnregisterCancelFunc(executionID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.activeJobCancellations[executionID]; ok {
		delete(l.activeJobCancellations, executionID)
		logger.Debugf("Unregistered CancelFunc for JobExecution (ID: %s).", executionID)
	}
}

// Stop implements JobOperator.
func (l *SimpleJobLauncher) Stop(ctx context.Context, executionID string) error {
	l.mu.Lock()
	cancel, ok := l.activeJobCancellations[executionID]
	l.mu.Unlock()
	if !ok {
		return exception.NewBatchErrorf("job_operator", "JobExecution (ID: %s) is not running", executionID)
	}
	logger.Infof("Stopping JobExecution (ID: %s).", executionID)
	cancel()
	return nil
}

// Launch creates a JobExecution for jobName, runs it and returns it once finished.
// The returned error covers only the launch; the job outcome is on the execution.
func (l *SimpleJobLauncher) Launch(ctx context.Context, jobName string, jobParameters model.JobParameters) (*model.JobExecution, error) {
	const op = "SimpleJobLauncher.Launch"
	logger.Infof("Launching Job '%s' using JobLauncher. Parameters: %s", jobName, jobParameters.String())

	job, ok := l.registry.Get(jobName)
	if !ok {
		return nil, exception.NewBatchErrorf(op, "No job registered under name '%s'", jobName)
	}

	latest, err := l.jobRepository.FindLatestJobExecution(ctx, jobName)
	if err != nil && !errors.Is(err, repository.ErrJobExecutionNotFound) {
		return nil, exception.NewBatchError(op, "Failed to search for previous JobExecution", err, false, false)
	}
	if latest != nil && !latest.Status.IsFinished() {
		return nil, exception.NewBatchError(op,
			fmt.Sprintf("JobExecution (ID: %s, Status: %s) of '%s' has not finished", latest.ID, latest.Status, jobName),
			ErrJobAlreadyRunning, false, false)
	}

	jobExecution := model.NewJobExecution(jobName, jobParameters)

	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	jobExecution.CancelFunc = cancel
	l.RegisterCancelFunc(jobExecution.ID, cancel)
	defer l.UnregisterCancelFunc(jobExecution.ID)

	if err := l.jobRepository.SaveJobExecution(jobCtx, jobExecution); err != nil {
		logger.Errorf("Failed to persist JobExecution (ID: %s) initially: %v", jobExecution.ID, err)
		return nil, exception.NewBatchError(op, "Failed to save JobExecution initially", err, false, false)
	}
	logger.Infof("Starting Job '%s' (Execution ID: %s).", jobName, jobExecution.ID)

	l.jobRunner.Run(jobCtx, job, jobExecution)
	return jobExecution, nil
}

var (
	_ port.JobLauncher = (*SimpleJobLauncher)(nil)
	_ JobOperator      = (*SimpleJobLauncher)(nil)
)
