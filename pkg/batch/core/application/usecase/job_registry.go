package usecase

import (
	"fmt"
	"sort"
	"sync"

	"go.uber.org/fx"

	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
)

// JobRegistry holds the jobs that can be launched by name.
type JobRegistry struct {
	mu   sync.RWMutex
	jobs map[string]port.Job
}

// JobRegistryParams receives every job contributed to the "jobs" value group.
type JobRegistryParams struct {
	fx.In
	Jobs []port.Job `group:"jobs"`
}

// NewJobRegistry creates a JobRegistry from the contributed jobs.
func NewJobRegistry(p JobRegistryParams) (*JobRegistry, error) {
	r := &JobRegistry{jobs: make(map[string]port.Job)}
	for _, j := range p.Jobs {
		if err := r.Register(j); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a job. Names must be unique.
func (r *JobRegistry) Register(job port.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.jobs[job.JobName()]; exists {
		return fmt.Errorf("job '%s' is already registered", job.JobName())
	}
	r.jobs[job.JobName()] = job
	return nil
}

// Get returns the job registered under name.
func (r *JobRegistry) Get(name string) (port.Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[name]
	return j, ok
}

// Names returns the registered job names in sorted order.
func (r *JobRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.jobs))
	for name := range r.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
