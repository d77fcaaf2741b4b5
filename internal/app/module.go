package app

import (
	"go.uber.org/fx"

	"github.com/tigerroll/weather-etl/internal/collector"
	appConfig "github.com/tigerroll/weather-etl/internal/config"
	"github.com/tigerroll/weather-etl/internal/gcp"
	"github.com/tigerroll/weather-etl/internal/job"
	"github.com/tigerroll/weather-etl/internal/runner"
	"github.com/tigerroll/weather-etl/internal/secret"
	"github.com/tigerroll/weather-etl/internal/step"
	"github.com/tigerroll/weather-etl/internal/warehouse"
	"github.com/tigerroll/weather-etl/internal/weather"
	storage "github.com/tigerroll/weather-etl/pkg/batch/adapter/storage"
	"github.com/tigerroll/weather-etl/pkg/batch/adapter/storage/gcs"
	"github.com/tigerroll/weather-etl/pkg/batch/adapter/storage/local"
	usecase "github.com/tigerroll/weather-etl/pkg/batch/core/application/usecase"
	config "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	"github.com/tigerroll/weather-etl/pkg/batch/core/config/bootstrap"
	jobRunner "github.com/tigerroll/weather-etl/pkg/batch/core/job/runner"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
	infraMetrics "github.com/tigerroll/weather-etl/pkg/batch/infrastructure/metrics"
	"github.com/tigerroll/weather-etl/pkg/batch/infrastructure/repository/inmemory"
	loggingListener "github.com/tigerroll/weather-etl/pkg/batch/listener/logging"
	metricsListener "github.com/tigerroll/weather-etl/pkg/batch/listener/metrics"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// FrameworkModule is the batch engine: configuration, repository, observability,
// listeners, storage adapters, runner and launcher.
var FrameworkModule = fx.Options(
	logger.Module,
	config.Module,
	inmemory.Module,
	metrics.Module,
	infraMetrics.Module,
	loggingListener.Module,
	metricsListener.Module,
	storage.Module,
	local.Module,
	gcs.Module,
	jobRunner.Module,
	usecase.Module,
	bootstrap.Module,
)

// JobModule is the weather ETL job and everything it is made of.
var JobModule = fx.Options(
	appConfig.Module,
	gcp.Module,
	secret.Module,
	weather.Module,
	collector.Module,
	warehouse.Module,
	step.Module,
	job.Module,
	runner.Module,
)

// Module is the whole application.
var Module = fx.Options(
	FrameworkModule,
	JobModule,
)
