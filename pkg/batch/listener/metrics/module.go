package metrics

import (
	"go.uber.org/fx"

	"github.com/tigerroll/weather-etl/pkg/batch/listener"
)

// Module contributes the metrics listeners.
var Module = fx.Options(
	fx.Provide(listener.AsJobListener(NewMetricsJobListener)),
	fx.Provide(listener.AsStepListener(NewMetricsStepListener)),
)
