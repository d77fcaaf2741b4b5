// Package warehouse appends weather records to the destination table.
package warehouse

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	domain "github.com/tigerroll/weather-etl/internal/domain/weather"
	"github.com/tigerroll/weather-etl/pkg/batch/adapter/storage"
	"github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	config "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
	"github.com/tigerroll/weather-etl/pkg/batch/engine/step/retry"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

const operationName = "warehouse_load"

var noRetry = config.RetryConfig{MaxAttempts: 1}

// LocationResolver resolves a storage connection for a staging location.
type LocationResolver interface {
	ResolveLocation(ctx context.Context, loc storage.Location) (storage.StorageConnection, error)
}

// Sink loads batches of records into the warehouse.
type Sink struct {
	loader   Loader
	resolver LocationResolver
	tempPath string
	jobName  string
	policy   retry.RetryPolicy
	recorder metrics.MetricRecorder
	tracer   metrics.Tracer
}

// SinkOptions holds the optional collaborators of a Sink.
type SinkOptions struct {
	// Resolver and TempPath enable staging. Without them the file is loaded inline.
	Resolver LocationResolver
	TempPath string
	// JobName prefixes staged object names.
	JobName  string
	Policy   retry.RetryPolicy
	Recorder metrics.MetricRecorder
	Tracer   metrics.Tracer
}

// NewSink creates a Sink over loader.
func NewSink(loader Loader, opts SinkOptions) *Sink {
	s := &Sink{
		loader:   loader,
		resolver: opts.Resolver,
		tempPath: opts.TempPath,
		jobName:  opts.JobName,
		policy:   opts.Policy,
		recorder: opts.Recorder,
		tracer:   opts.Tracer,
	}
	if s.jobName == "" {
		s.jobName = "weather"
	}
	if s.policy == nil {
		s.policy = retry.NewDefaultRetryPolicyFactory().Create(noRetry)
	}
	if s.recorder == nil {
		s.recorder = metrics.NewNoOpMetricRecorder()
	}
	if s.tracer == nil {
		s.tracer = metrics.NewNoOpTracer()
	}
	return s
}

// Load appends records to table and blocks until the load job finishes.
// An empty batch still runs a load job. Every failure is a fatal LoadJobError.
func (s *Sink) Load(ctx context.Context, records []domain.WeatherRecord, table string) (err error) {
	ctx, end := s.tracer.StartSpan(ctx, operationName, map[string]interface{}{
		"table":   table,
		"records": len(records),
	})
	defer end()
	defer func() {
		if err != nil {
			s.tracer.RecordError(ctx, operationName, err)
		}
	}()

	ref, err := ParseTable(table)
	if err != nil {
		return domain.NewLoadJobError(table, err, false)
	}

	data, err := EncodeParquet(records)
	if err != nil {
		return domain.NewLoadJobError(table, err, false)
	}
	logger.Infof("Encoded %d records (%d bytes) for %s.", len(records), len(data), ref)

	src := LoadSource{Data: data}
	if s.tempPath != "" && s.resolver != nil {
		staged, cleanup, err := s.stage(ctx, data)
		if err != nil {
			return domain.NewLoadJobError(table, err, exception.IsTemporary(err))
		}
		defer cleanup()
		src = staged
	}

	start := time.Now()
	err = retry.Do(ctx, s.policy, operationName, func(ctx context.Context, attempt int, err error) {
		s.recorder.RecordRetry(ctx, operationName, retryReason(err))
	}, func(ctx context.Context) error {
		return s.loader.Load(ctx, ref, src)
	})
	status := "ok"
	if err != nil {
		status = "failed"
	}
	s.recorder.RecordDuration(ctx, operationName, time.Since(start), map[string]string{"status": status})
	if err != nil {
		if !exception.IsErrorOfType(err, "LoadJobError") {
			err = domain.NewLoadJobError(table, err, false)
		}
		return err
	}

	s.recorder.RecordItemWrite(ctx, stepNameFrom(ctx), len(records))
	logger.Infof("Loaded %d records into %s.", len(records), ref)
	return nil
}

// stage uploads data under tempPath. A GCS stage is loaded by URI; with a local stage
// the same bytes are loaded inline. The returned cleanup deletes the staged object.
func (s *Sink) stage(ctx context.Context, data []byte) (LoadSource, func(), error) {
	loc, err := storage.ParseLocation(s.tempPath)
	if err != nil {
		return LoadSource{}, nil, err
	}
	conn, err := s.resolver.ResolveLocation(ctx, loc)
	if err != nil {
		return LoadSource{}, nil, fmt.Errorf("failed to resolve staging location %s: %w", loc, err)
	}

	objectName := loc.ObjectName(fmt.Sprintf("%s-%s.parquet", s.jobName, uuid.NewString()))
	if err := conn.Upload(ctx, loc.Bucket, objectName, bytes.NewReader(data), ParquetContentType); err != nil {
		return LoadSource{}, nil, fmt.Errorf("failed to stage load file %s: %w", loc.URI(objectName), err)
	}
	uri := loc.URI(objectName)
	logger.Infof("Staged load file %s.", uri)

	cleanup := func() {
		if err := conn.DeleteObject(context.WithoutCancel(ctx), loc.Bucket, objectName); err != nil {
			logger.Warnf("Failed to delete staged load file %s: %v", uri, err)
			return
		}
		logger.Debugf("Deleted staged load file %s.", uri)
	}

	if loc.Type == "gcs" {
		return LoadSource{URI: uri}, cleanup, nil
	}
	return LoadSource{Data: data}, cleanup, nil
}

// retryReason maps a failed load attempt to one of a fixed set of label values.
func retryReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "deadline_exceeded"
	case errors.Is(err, io.ErrUnexpectedEOF):
		return "unexpected_eof"
	case exception.IsTemporary(err):
		return "transient"
	default:
		return "other"
	}
}

func stepNameFrom(ctx context.Context) string {
	if se := port.GetStepExecutionFromContext(ctx); se != nil {
		return se.StepName
	}
	return operationName
}
