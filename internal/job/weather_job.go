// Package job assembles the weather ETL job from its single step.
package job

import (
	"go.uber.org/fx"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
	"github.com/tigerroll/weather-etl/internal/step"
	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	repository "github.com/tigerroll/weather-etl/pkg/batch/core/domain/repository"
	"github.com/tigerroll/weather-etl/pkg/batch/core/job/runner"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
	"github.com/tigerroll/weather-etl/pkg/batch/engine/step/tasklet"
	"github.com/tigerroll/weather-etl/pkg/batch/listener"
)

// StepName is the name of the collect-and-load step.
const StepName = "weatherETLStep"

// JobParams defines the dependencies of NewWeatherETLJob.
type JobParams struct {
	fx.In
	Execution  *appConfig.ExecutionConfig
	Tasklet    *step.WeatherETLTasklet
	Repository repository.JobRepository
	Recorder   metrics.MetricRecorder
	Tracer     metrics.Tracer
	Listeners  listener.Listeners
}

// NewWeatherETLJob builds the job named by the execution configuration.
func NewWeatherETLJob(p JobParams) *runner.SimpleJob {
	etlStep := tasklet.NewTaskletStep(StepName, p.Tasklet, p.Repository, p.Listeners.StepListeners, p.Recorder, p.Tracer)
	return runner.NewSimpleJob(p.Execution.JobName, []port.Step{etlStep}, p.Repository, p.Listeners.JobListeners, p.Tracer)
}

// Module contributes the job to the "jobs" group.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewWeatherETLJob,
		fx.As(new(port.Job)),
		fx.ResultTags(`group:"jobs"`),
	)),
)
