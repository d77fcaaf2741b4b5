// Package inmemory provides the in-process JobRepository. Execution metadata lives only
// as long as the process; in scheduled mode the oldest executions are evicted.
package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	"github.com/tigerroll/weather-etl/pkg/batch/core/domain/repository"
)

// DefaultRetention is the number of job executions kept before the oldest is evicted.
const DefaultRetention = 100

// InMemoryJobRepository is an in-memory implementation of repository.JobRepository.
type InMemoryJobRepository struct {
	mu             sync.RWMutex
	retention      int
	order          []string // job execution IDs, oldest first
	jobExecutions  map[string]*model.JobExecution
	stepExecutions map[string]*model.StepExecution
}

// NewInMemoryJobRepository creates a repository with DefaultRetention.
func NewInMemoryJobRepository() *InMemoryJobRepository {
	return NewInMemoryJobRepositoryWithRetention(DefaultRetention)
}

// NewInMemoryJobRepositoryWithRetention creates a repository keeping at most retention job executions.
func NewInMemoryJobRepositoryWithRetention(retention int) *InMemoryJobRepository {
	if retention < 1 {
		retention = 1
	}
	return &InMemoryJobRepository{
		retention:      retention,
		jobExecutions:  make(map[string]*model.JobExecution),
		stepExecutions: make(map[string]*model.StepExecution),
	}
}

// SaveJobExecution stores a new JobExecution.
func (r *InMemoryJobRepository) SaveJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobExecutions[jobExecution.ID]; exists {
		return fmt.Errorf("JobExecution with ID %s already exists", jobExecution.ID)
	}
	r.jobExecutions[jobExecution.ID] = jobExecution
	r.order = append(r.order, jobExecution.ID)
	r.evictLocked()
	return nil
}

// evictLocked drops the oldest job executions and their steps beyond the retention limit.
func (r *InMemoryJobRepository) evictLocked() {
	for len(r.order) > r.retention {
		oldest := r.order[0]
		r.order = r.order[1:]
		delete(r.jobExecutions, oldest)
		for id, se := range r.stepExecutions {
			if se.JobExecutionID == oldest {
				delete(r.stepExecutions, id)
			}
		}
	}
}

// UpdateJobExecution replaces an existing JobExecution.
func (r *InMemoryJobRepository) UpdateJobExecution(ctx context.Context, jobExecution *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobExecutions[jobExecution.ID]; !exists {
		return fmt.Errorf("JobExecution with ID %s not found for update: %w", jobExecution.ID, repository.ErrJobExecutionNotFound)
	}
	r.jobExecutions[jobExecution.ID] = jobExecution
	return nil
}

// FindJobExecutionByID returns a copy of the JobExecution so that callers cannot
// mutate stored state.
func (r *InMemoryJobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	je, ok := r.jobExecutions[id]
	if !ok {
		return nil, repository.ErrJobExecutionNotFound
	}
	clone := *je
	clone.StepExecutions = append([]*model.StepExecution(nil), je.StepExecutions...)
	clone.Failures = append(model.FailureList(nil), je.Failures...)
	clone.ExecutionContext = je.ExecutionContext.Copy()
	return &clone, nil
}

// FindLatestJobExecution returns the most recently saved execution of jobName.
func (r *InMemoryJobRepository) FindLatestJobExecution(ctx context.Context, jobName string) (*model.JobExecution, error) {
	r.mu.RLock()
	var latestID string
	for i := len(r.order) - 1; i >= 0; i-- {
		if r.jobExecutions[r.order[i]].JobName == jobName {
			latestID = r.order[i]
			break
		}
	}
	r.mu.RUnlock()

	if latestID == "" {
		return nil, repository.ErrJobExecutionNotFound
	}
	return r.FindJobExecutionByID(ctx, latestID)
}

// SaveStepExecution stores a new StepExecution.
func (r *InMemoryJobRepository) SaveStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stepExecutions[stepExecution.ID]; exists {
		return fmt.Errorf("StepExecution with ID %s already exists", stepExecution.ID)
	}
	r.stepExecutions[stepExecution.ID] = stepExecution
	return nil
}

// UpdateStepExecution replaces an existing StepExecution.
func (r *InMemoryJobRepository) UpdateStepExecution(ctx context.Context, stepExecution *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.stepExecutions[stepExecution.ID]; !exists {
		return fmt.Errorf("StepExecution with ID %s not found for update: %w", stepExecution.ID, repository.ErrStepExecutionNotFound)
	}
	r.stepExecutions[stepExecution.ID] = stepExecution
	return nil
}

// FindStepExecutionByID returns the StepExecution with the given ID.
func (r *InMemoryJobRepository) FindStepExecutionByID(ctx context.Context, id string) (*model.StepExecution, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	se, ok := r.stepExecutions[id]
	if !ok {
		return nil, repository.ErrStepExecutionNotFound
	}
	clone := *se
	clone.ExecutionContext = se.ExecutionContext.Copy()
	return &clone, nil
}

// Close holds no external resources and always returns nil.
func (r *InMemoryJobRepository) Close() error {
	return nil
}

var _ repository.JobRepository = (*InMemoryJobRepository)(nil)
