// Package step holds the tasklet that collects the weather of every location and loads it.
package step

import (
	"context"

	"github.com/tigerroll/weather-etl/internal/collector"
	appConfig "github.com/tigerroll/weather-etl/internal/config"
	domain "github.com/tigerroll/weather-etl/internal/domain/weather"
	"github.com/tigerroll/weather-etl/internal/secret"
	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// Execution context keys written by the tasklet.
const (
	KeyLocations = "locations"
	KeyRecords   = "records"
	KeySkipped   = "skipped"
	KeyNotFound  = "not_found"
	KeyMalformed = "malformed"
)

// RecordCollector gathers records for the locations.
type RecordCollector interface {
	Collect(ctx context.Context, locations []string, credential string) ([]domain.WeatherRecord, collector.Summary, error)
}

// WarehouseSink appends records to a table.
type WarehouseSink interface {
	Load(ctx context.Context, records []domain.WeatherRecord, table string) error
}

// WeatherETLTasklet resolves the credential, collects the records and loads them.
type WeatherETLTasklet struct {
	cfg       *appConfig.WeatherETLConfig
	secrets   secret.Provider
	collector RecordCollector
	sink      WarehouseSink
	ec        model.ExecutionContext
}

// Verify that WeatherETLTasklet implements the port.Tasklet interface.
var _ port.Tasklet = (*WeatherETLTasklet)(nil)

// NewWeatherETLTasklet creates a WeatherETLTasklet.
func NewWeatherETLTasklet(cfg *appConfig.WeatherETLConfig, secrets secret.Provider, c RecordCollector, sink WarehouseSink) *WeatherETLTasklet {
	return &WeatherETLTasklet{
		cfg:       cfg,
		secrets:   secrets,
		collector: c,
		sink:      sink,
		ec:        model.NewExecutionContext(),
	}
}

// Execute runs one collect-then-load pass. A credential or load failure fails the step;
// locations that fail are dropped and counted.
func (t *WeatherETLTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	credential, err := t.secrets.Resolve(ctx, t.cfg.SecretPath)
	if err != nil {
		return model.ExitStatusFailed, err
	}

	records, summary, err := t.collector.Collect(ctx, t.cfg.Locations, credential)
	if err != nil {
		return model.ExitStatusFailed, err
	}
	stepExecution.ReadCount = summary.Collected
	stepExecution.SkipReadCount = summary.Skipped()

	t.ec.Put(KeyLocations, summary.Requested)
	t.ec.Put(KeySkipped, summary.Skipped())
	t.ec.Put(KeyNotFound, summary.NotFound)
	t.ec.Put(KeyMalformed, summary.Malformed)

	if len(records) == 0 {
		logger.Warnf("No weather records were collected; loading an empty batch into %s.", t.cfg.DestinationTable)
	}
	if err := t.sink.Load(ctx, records, t.cfg.DestinationTable); err != nil {
		return model.ExitStatusFailed, err
	}
	stepExecution.WriteCount = len(records)
	t.ec.Put(KeyRecords, len(records))

	return model.ExitStatusCompleted, nil
}

func (t *WeatherETLTasklet) Close(ctx context.Context) error {
	return nil
}

func (t *WeatherETLTasklet) SetExecutionContext(ctx context.Context, ec model.ExecutionContext) error {
	if ec == nil {
		ec = model.NewExecutionContext()
	}
	t.ec = ec
	return nil
}

func (t *WeatherETLTasklet) GetExecutionContext(ctx context.Context) (model.ExecutionContext, error) {
	return t.ec, nil
}
