package config

import "go.uber.org/fx"

// Module provides *WeatherETLConfig and *ExecutionConfig.
var Module = fx.Options(
	fx.Provide(NewWeatherETLConfig),
	fx.Provide(NewExecutionConfig),
)
