// Package listener aggregates the job and step listeners of the batch engine.
package listener

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
)

// JobListenerGroup and StepListenerGroup are the fx value groups listeners are contributed to.
const (
	JobListenerGroup  = `group:"jobListeners"`
	StepListenerGroup = `group:"stepListeners"`
)

// Listeners receives every contributed listener.
type Listeners struct {
	fx.In
	JobListeners  []port.JobExecutionListener  `group:"jobListeners"`
	StepListeners []port.StepExecutionListener `group:"stepListeners"`
}

// AsJobListener annotates a constructor so its result joins JobListenerGroup.
func AsJobListener(f interface{}) interface{} {
	return fx.Annotate(f, fx.As(new(port.JobExecutionListener)), fx.ResultTags(JobListenerGroup))
}

// AsStepListener annotates a constructor so its result joins StepListenerGroup.
func AsStepListener(f interface{}) interface{} {
	return fx.Annotate(f, fx.As(new(port.StepExecutionListener)), fx.ResultTags(StepListenerGroup))
}
