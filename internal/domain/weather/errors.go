package weather

import (
	"errors"
	"fmt"

	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
)

// Sentinels of the error taxonomy. Use errors.Is against them.
var (
	// ErrCredential: the API credential could not be read. Fatal for the run.
	ErrCredential = errors.New("credential error")
	// ErrFetchFailure: a location returned a non-success status. Absorbed per location.
	ErrFetchFailure = errors.New("fetch failure")
	// ErrMalformedResponse: a success response lacked required fields. Absorbed per location.
	ErrMalformedResponse = errors.New("malformed response")
	// ErrLoadJob: the warehouse load job failed. Fatal for the run.
	ErrLoadJob = errors.New("load job error")
)

func init() {
	exception.RegisterErrorType("CredentialError", ErrCredential)
	exception.RegisterErrorType("FetchFailure", ErrFetchFailure)
	exception.RegisterErrorType("MalformedResponseError", ErrMalformedResponse)
	exception.RegisterErrorType("LoadJobError", ErrLoadJob)
}

// NewCredentialError wraps cause as a fatal credential error.
func NewCredentialError(secretPath string, cause error) error {
	return exception.NewBatchError("secret_provider",
		fmt.Sprintf("failed to access secret %s", secretPath),
		wrap(ErrCredential, cause), false, false)
}

// NewFetchFailure reports a non-success status for location.
func NewFetchFailure(location string, status int) error {
	return exception.NewBatchError("weather_client",
		fmt.Sprintf("weather lookup for %s returned status %d", location, status),
		ErrFetchFailure, true, false)
}

// NewMalformedResponseError reports a success payload that could not be decoded.
func NewMalformedResponseError(location string, cause error) error {
	return exception.NewBatchError("weather_client",
		fmt.Sprintf("malformed weather payload for %s", location),
		wrap(ErrMalformedResponse, cause), true, false)
}

// NewTransportError reports a request that never produced a status (timeout, refused connection).
// It is absorbed like a fetch failure.
func NewTransportError(location string, cause error) error {
	return exception.NewBatchError("weather_client",
		fmt.Sprintf("weather request for %s failed", location),
		wrap(ErrFetchFailure, cause), true, false)
}

// NewLoadJobError reports a failed load into table. retryable marks transient warehouse conditions.
func NewLoadJobError(table string, cause error, retryable bool) error {
	return exception.NewBatchError("warehouse_sink",
		fmt.Sprintf("load job into %s failed", table),
		wrap(ErrLoadJob, cause), false, retryable)
}

func wrap(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %w", sentinel, cause)
}
