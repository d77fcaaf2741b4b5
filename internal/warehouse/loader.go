package warehouse

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	domain "github.com/tigerroll/weather-etl/internal/domain/weather"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// LoadSource is what a load job reads: a staged object URI, or the file bytes inline.
type LoadSource struct {
	URI  string
	Data []byte
}

// Loader runs one append-only load job and waits for it to finish.
type Loader interface {
	Load(ctx context.Context, table TableRef, src LoadSource) error
	Close() error
}

// BigQueryLoader is the Loader backed by BigQuery load jobs.
type BigQueryLoader struct {
	client   *bigquery.Client
	location string
}

// NewBigQueryLoader opens a BigQuery client billed to project. location pins the load job's region.
func NewBigQueryLoader(ctx context.Context, project, location string, opts ...option.ClientOption) (*BigQueryLoader, error) {
	client, err := bigquery.NewClient(ctx, project, opts...)
	if err != nil {
		return nil, err
	}
	return &BigQueryLoader{client: client, location: location}, nil
}

// Load appends src to table. The table must exist and is never created or altered.
func (l *BigQueryLoader) Load(ctx context.Context, table TableRef, src LoadSource) error {
	var source bigquery.LoadSource
	if src.URI != "" {
		ref := bigquery.NewGCSReference(src.URI)
		ref.SourceFormat = bigquery.Parquet
		ref.Schema = Schema()
		source = ref
	} else {
		rs := bigquery.NewReaderSource(bytes.NewReader(src.Data))
		rs.SourceFormat = bigquery.Parquet
		rs.Schema = Schema()
		source = rs
	}

	loader := l.client.DatasetInProject(table.Project, table.Dataset).Table(table.Table).LoaderFrom(source)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateNever
	loader.Location = l.location

	job, err := loader.Run(ctx)
	if err != nil {
		return domain.NewLoadJobError(table.String(), err, isTransient(err))
	}
	logger.Infof("Load job %s submitted for %s.", job.ID(), table)

	status, err := job.Wait(ctx)
	if err != nil {
		return domain.NewLoadJobError(table.String(), err, isTransient(err))
	}
	if err := status.Err(); err != nil {
		return domain.NewLoadJobError(table.String(), err, isTransient(err))
	}
	logger.Infof("Load job %s completed.", job.ID())
	return nil
}

func (l *BigQueryLoader) Close() error {
	return l.client.Close()
}

// isTransient reports warehouse conditions worth another attempt.
func isTransient(err error) bool {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true
		}
	}
	var bqErr *bigquery.Error
	if errors.As(err, &bqErr) {
		switch bqErr.Reason {
		case "backendError", "internalError", "rateLimitExceeded":
			return true
		}
	}
	return false
}
