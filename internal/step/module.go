package step

import (
	"go.uber.org/fx"

	"github.com/tigerroll/weather-etl/internal/collector"
	"github.com/tigerroll/weather-etl/internal/warehouse"
)

// Module provides *WeatherETLTasklet.
var Module = fx.Options(
	fx.Provide(func(c *collector.Collector) RecordCollector { return c }),
	fx.Provide(func(s *warehouse.Sink) WarehouseSink { return s }),
	fx.Provide(NewWeatherETLTasklet),
)
