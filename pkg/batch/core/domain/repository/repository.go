// Package repository defines how batch execution metadata is stored.
package repository

import (
	"context"
	"errors"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

// ErrJobExecutionNotFound is returned when no JobExecution matches the lookup.
var ErrJobExecutionNotFound = errors.New("job execution not found")

// ErrStepExecutionNotFound is returned when no StepExecution matches the lookup.
var ErrStepExecutionNotFound = errors.New("step execution not found")

// JobExecution persists job executions.
type JobExecution interface {
	SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error
	UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error
	FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error)
	// FindLatestJobExecution returns the most recently started execution of jobName.
	FindLatestJobExecution(ctx context.Context, jobName string) (*model.JobExecution, error)
}

// StepExecution persists step executions.
type StepExecution interface {
	SaveStepExecution(ctx context.Context, stepExecution *model.StepExecution) error
	UpdateStepExecution(ctx context.Context, stepExecution *model.StepExecution) error
	FindStepExecutionByID(ctx context.Context, id string) (*model.StepExecution, error)
}

// JobRepository stores the metadata of job runs. Nothing survives the process:
// each run of the ETL is an independent execution.
type JobRepository interface {
	JobExecution
	StepExecution

	// Close releases resources used by the repository.
	Close() error
}
