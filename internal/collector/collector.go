// Package collector fetches the weather of every configured location with bounded
// concurrency and returns the records in list order.
package collector

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	domain "github.com/tigerroll/weather-etl/internal/domain/weather"
	"github.com/tigerroll/weather-etl/internal/weather"
	"github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

const moduleName = "collector"

// Skip reasons recorded with RecordItemSkip.
const (
	ReasonNotFound  = "not_found"
	ReasonMalformed = "malformed"
	ReasonTransport = "transport"
)

// Summary counts the outcome of one collection.
type Summary struct {
	Requested int
	Collected int
	NotFound  int
	Malformed int
	Failed    int
}

// Skipped is the number of locations that produced no record.
func (s Summary) Skipped() int {
	return s.NotFound + s.Malformed + s.Failed
}

type outcome struct {
	record *domain.WeatherRecord
	reason string
}

// Collector fans lookups out over a Fetcher.
type Collector struct {
	fetcher     weather.Fetcher
	concurrency int
	recorder    metrics.MetricRecorder
	tracer      metrics.Tracer
}

// NewCollector creates a Collector running at most concurrency lookups at once.
func NewCollector(fetcher weather.Fetcher, concurrency int, recorder metrics.MetricRecorder, tracer metrics.Tracer) *Collector {
	if concurrency < 1 {
		concurrency = 1
	}
	if recorder == nil {
		recorder = metrics.NewNoOpMetricRecorder()
	}
	if tracer == nil {
		tracer = metrics.NewNoOpTracer()
	}
	return &Collector{fetcher: fetcher, concurrency: concurrency, recorder: recorder, tracer: tracer}
}

// Collect looks up every location. A location that fails is logged, counted and dropped;
// the rest keep their list order. The error is non-nil only when ctx is cancelled.
func (c *Collector) Collect(ctx context.Context, locations []string, credential string) ([]domain.WeatherRecord, Summary, error) {
	summary := Summary{Requested: len(locations)}
	outcomes := make([]outcome, len(locations))

	var g errgroup.Group
	g.SetLimit(c.concurrency)
	for i, location := range locations {
		if ctx.Err() != nil {
			break
		}
		i, location := i, location
		g.Go(func() error {
			outcomes[i] = c.fetchOne(ctx, location, credential)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, summary, exception.NewBatchError(moduleName, "weather collection was cancelled", err, false, false)
	}

	records := make([]domain.WeatherRecord, 0, len(locations))
	for _, o := range outcomes {
		switch o.reason {
		case "":
			records = append(records, *o.record)
		case ReasonNotFound:
			summary.NotFound++
		case ReasonMalformed:
			summary.Malformed++
		default:
			summary.Failed++
		}
	}
	summary.Collected = len(records)
	logger.Infof("Collected weather for %d of %d locations (not found: %d, malformed: %d, failed: %d).",
		summary.Collected, summary.Requested, summary.NotFound, summary.Malformed, summary.Failed)
	return records, summary, nil
}

func (c *Collector) fetchOne(ctx context.Context, location, credential string) outcome {
	ctx, end := c.tracer.StartSpan(ctx, "fetch "+location, map[string]interface{}{"location": location})
	defer end()

	stepName := stepNameFrom(ctx)
	start := time.Now()
	res, err := c.fetcher.Fetch(ctx, location, credential)

	var o outcome
	switch {
	case err != nil:
		o.reason = ReasonTransport
		if errors.Is(err, domain.ErrMalformedResponse) {
			o.reason = ReasonMalformed
		}
		c.tracer.RecordError(ctx, moduleName, err)
		logger.Warnf("Failed to get weather data for %s: %v", location, err)
	case !res.Found():
		o.reason = ReasonNotFound
		logger.Warnf("Failed to get weather data for %s: status %d", location, res.Status)
	default:
		rec := res.Record
		o.record = &rec
		logger.Infof("Fetched weather data for %s.", location)
	}

	status := "ok"
	if o.reason != "" {
		status = o.reason
		c.recorder.RecordItemSkip(ctx, stepName, o.reason)
	} else {
		c.recorder.RecordItemRead(ctx, stepName)
	}
	c.recorder.RecordDuration(ctx, "weather_fetch", time.Since(start), map[string]string{"status": status})
	return o
}

func stepNameFrom(ctx context.Context) string {
	if se := port.GetStepExecutionFromContext(ctx); se != nil {
		return se.StepName
	}
	return moduleName
}
