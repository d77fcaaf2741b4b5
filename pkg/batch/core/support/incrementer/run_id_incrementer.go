// Package incrementer derives per-run job parameters so that consecutive runs of the
// same job are distinguishable.
package incrementer

import (
	"fmt"

	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// DefaultRunIDKey is the parameter key used when none is given.
const DefaultRunIDKey = "run.id"

// RunIDIncrementer sets key to 1 when absent and increments it otherwise.
type RunIDIncrementer struct {
	key string
}

// NewRunIDIncrementer creates a RunIDIncrementer for key. An empty key means DefaultRunIDKey.
func NewRunIDIncrementer(key string) *RunIDIncrementer {
	if key == "" {
		key = DefaultRunIDKey
	}
	return &RunIDIncrementer{key: key}
}

// Key returns the parameter key the incrementer maintains.
func (i *RunIDIncrementer) Key() string {
	return i.key
}

// GetNext returns a copy of params with the run id advanced. params is not modified.
func (i *RunIDIncrementer) GetNext(params model.JobParameters) model.JobParameters {
	next := model.NewJobParameters()
	for k, v := range params.Params {
		next.Put(k, v)
	}

	current, ok := params.GetInt(i.key)
	if !ok {
		next.Put(i.key, 1)
		logger.Debugf("RunIDIncrementer: '%s' not set, starting at 1.", i.key)
		return next
	}
	next.Put(i.key, current+1)
	logger.Debugf("RunIDIncrementer: '%s' %d -> %d.", i.key, current, current+1)
	return next
}

func (i *RunIDIncrementer) String() string {
	return fmt.Sprintf("RunIDIncrementer[key=%s]", i.key)
}

var _ port.JobParametersIncrementer = (*RunIDIncrementer)(nil)
