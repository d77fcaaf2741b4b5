package warehouse

import (
	"context"

	"go.uber.org/fx"
	"google.golang.org/api/option"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
	"github.com/tigerroll/weather-etl/pkg/batch/adapter/storage"
	config "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
	"github.com/tigerroll/weather-etl/pkg/batch/engine/step/retry"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// SinkParams defines the dependencies of NewSinkProvider.
type SinkParams struct {
	fx.In
	Lifecycle     fx.Lifecycle
	ETL           *appConfig.WeatherETLConfig
	Execution     *appConfig.ExecutionConfig
	Retry         *config.RetryConfig
	Resolver      *storage.ConnectionResolver
	Recorder      metrics.MetricRecorder
	Tracer        metrics.Tracer
	ClientOptions []option.ClientOption `name:"gcpClientOptions" optional:"true"`
}

// NewSinkProvider opens the BigQuery client and builds the Sink.
func NewSinkProvider(p SinkParams) (*Sink, error) {
	loader, err := NewBigQueryLoader(context.Background(), p.ETL.GCPProject, p.ETL.DatasetLocation, p.ClientOptions...)
	if err != nil {
		return nil, exception.NewBatchError("warehouse_sink", "failed to create BigQuery client", err, false, false)
	}
	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Debugf("Closing BigQuery client.")
			return loader.Close()
		},
	})
	return NewSink(loader, SinkOptions{
		Resolver: p.Resolver,
		TempPath: p.Execution.TempPath,
		JobName:  p.Execution.JobName,
		Policy:   retry.NewDefaultRetryPolicyFactory().Create(*p.Retry),
		Recorder: p.Recorder,
		Tracer:   p.Tracer,
	}), nil
}

// Module provides *Sink.
var Module = fx.Options(
	fx.Provide(NewSinkProvider),
)
