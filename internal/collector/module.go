package collector

import (
	"go.uber.org/fx"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
	"github.com/tigerroll/weather-etl/internal/weather"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
)

// NewCollectorProvider builds the Collector from the job configuration.
func NewCollectorProvider(cfg *appConfig.WeatherETLConfig, fetcher weather.Fetcher, recorder metrics.MetricRecorder, tracer metrics.Tracer) *Collector {
	return NewCollector(fetcher, cfg.Concurrency, recorder, tracer)
}

// Module provides *Collector.
var Module = fx.Options(
	fx.Provide(NewCollectorProvider),
)
