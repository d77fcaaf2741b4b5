package usecase

import (
	"go.uber.org/fx"

	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
)

// Module is the Fx module for JobRegistry, JobLauncher, JobOperator and JobExplorer.
// Jobs are contributed with fx.ResultTags(`group:"jobs"`).
var Module = fx.Options(
	fx.Provide(NewJobRegistry),
	fx.Provide(fx.Annotate(
		NewSimpleJobExplorer,
		fx.As(new(JobExplorer)),
	)),
	fx.Provide(NewSimpleJobLauncher),
	fx.Provide(func(launcher *SimpleJobLauncher) port.JobLauncher { return launcher }),
	fx.Provide(func(launcher *SimpleJobLauncher) JobOperator { return launcher }),
)
