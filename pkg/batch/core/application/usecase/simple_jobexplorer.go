package usecase

import (
	"context"
	"fmt"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/weather-etl/pkg/batch/core/domain/repository"
	exception "github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// SimpleJobExplorer queries execution metadata through the JobRepository.
type SimpleJobExplorer struct {
	jobRepository repository.JobRepository
	registry      *JobRegistry
}

// Verify that SimpleJobExplorer implements the JobExplorer interface.
var _ JobExplorer = (*SimpleJobExplorer)(nil)

// NewSimpleJobExplorer creates a new instance of SimpleJobExplorer.
func NewSimpleJobExplorer(jobRepository repository.JobRepository, registry *JobRegistry) *SimpleJobExplorer {
	return &SimpleJobExplorer{
		jobRepository: jobRepository,
		registry:      registry,
	}
}

// GetJobExecution retrieves a JobExecution by its ID.
func (e *SimpleJobExplorer) GetJobExecution(ctx context.Context, executionID string) (*model.JobExecution, error) {
	jobExecution, err := e.jobRepository.FindJobExecutionByID(ctx, executionID)
	if err != nil {
		return nil, exception.NewBatchError("job_explorer", fmt.Sprintf("Failed to retrieve JobExecution (ID: %s)", executionID), err, false, false)
	}
	logger.Debugf("Retrieved JobExecution (ID: %s) from JobRepository.", executionID)
	return jobExecution, nil
}

// GetLastJobExecution retrieves the latest JobExecution of jobName.
func (e *SimpleJobExplorer) GetLastJobExecution(ctx context.Context, jobName string) (*model.JobExecution, error) {
	jobExecution, err := e.jobRepository.FindLatestJobExecution(ctx, jobName)
	if err != nil {
		return nil, exception.NewBatchError("job_explorer", fmt.Sprintf("Failed to retrieve latest JobExecution of '%s'", jobName), err, false, false)
	}
	return jobExecution, nil
}

// GetJobNames retrieves all registered job names.
func (e *SimpleJobExplorer) GetJobNames(ctx context.Context) ([]string, error) {
	return e.registry.Names(), nil
}
