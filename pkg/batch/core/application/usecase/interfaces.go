package usecase

import (
	"context"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

// JobOperator performs operations on running jobs.
type JobOperator interface {
	// Stop cancels the context of the specified running JobExecution.
	Stop(ctx context.Context, executionID string) error
}

// JobExplorer queries execution metadata.
type JobExplorer interface {
	// GetJobExecution retrieves a JobExecution by its ID.
	GetJobExecution(ctx context.Context, executionID string) (*model.JobExecution, error)
	// GetLastJobExecution retrieves the latest JobExecution of a job.
	GetLastJobExecution(ctx context.Context, jobName string) (*model.JobExecution, error)
	// GetJobNames retrieves all registered job names.
	GetJobNames(ctx context.Context) ([]string, error)
}
