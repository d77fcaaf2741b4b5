package weather

import (
	"go.uber.org/fx"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
)

// NewFetcher builds the Client from the job configuration.
func NewFetcher(cfg *appConfig.WeatherETLConfig) Fetcher {
	api := cfg.Weather
	if api.Timeout <= 0 {
		api.Timeout = DefaultTimeout
	}
	return NewClient(api)
}

// Module provides Fetcher.
var Module = fx.Options(
	fx.Provide(NewFetcher),
)
