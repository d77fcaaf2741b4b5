// Package storage defines the common interfaces for the storage adapters.
// These interfaces abstract object storage operations, so staging files can live
// on the local file system or in a GCS bucket behind the same API.
package storage

import (
	"context"
	"io"

	storageConfig "github.com/tigerroll/weather-etl/pkg/batch/adapter/storage/config"
)

// StorageExecutor defines generic storage operations.
type StorageExecutor interface {
	// Upload uploads data to the specified bucket and object name.
	// 'data' is the stream of data to upload. 'contentType' is the MIME type of the data.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// DeleteObject deletes the specified object from the bucket. Deleting a missing object is not an error.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// StorageConnection represents a generic data storage connection.
type StorageConnection interface {
	StorageExecutor

	// Close releases the connection's resources.
	Close() error
	// Type returns the provider type ("local", "gcs").
	Type() string
	// Name returns the connection name.
	Name() string
	// Config returns the storage configuration associated with this connection.
	Config() storageConfig.StorageConfig
}

// StorageProvider manages the acquisition and lifecycle of connections of one type.
type StorageProvider interface {
	// GetConnection returns the connection called name, creating it from cfg on first use.
	GetConnection(ctx context.Context, name string, cfg storageConfig.StorageConfig) (StorageConnection, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
	// Type returns the type of storage handled by this provider.
	Type() string
}
