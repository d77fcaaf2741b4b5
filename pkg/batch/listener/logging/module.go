package logging

import (
	"go.uber.org/fx"

	"github.com/tigerroll/weather-etl/pkg/batch/listener"
)

// Module contributes the logging listeners.
var Module = fx.Options(
	fx.Provide(listener.AsJobListener(NewLoggingJobListener)),
	fx.Provide(listener.AsStepListener(NewLoggingStepListener)),
)
