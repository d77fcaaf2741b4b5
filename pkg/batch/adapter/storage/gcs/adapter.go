// Package gcs provides a Google Cloud Storage implementation of the storage adapter interfaces.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/hashicorp/go-multierror"
	"google.golang.org/api/option"

	storageAdapter "github.com/tigerroll/weather-etl/pkg/batch/adapter/storage"
	storageConfig "github.com/tigerroll/weather-etl/pkg/batch/adapter/storage/config"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// ProviderType defines the type identifier for this provider.
const ProviderType = "gcs"

type gcsAdapter struct {
	cfg    storageConfig.StorageConfig
	name   string
	client *storage.Client
}

var _ storageAdapter.StorageConnection = (*gcsAdapter)(nil)

// NewGCSAdapter wraps an existing client.
func NewGCSAdapter(client *storage.Client, cfg storageConfig.StorageConfig, name string) storageAdapter.StorageConnection {
	return &gcsAdapter{cfg: cfg, name: name, client: client}
}

func (a *gcsAdapter) Close() error {
	logger.Debugf("GCS storage adapter '%s' closed.", a.name)
	return a.client.Close()
}

func (a *gcsAdapter) Type() string {
	return ProviderType
}

func (a *gcsAdapter) Name() string {
	return a.name
}

func (a *gcsAdapter) Config() storageConfig.StorageConfig {
	return a.cfg
}

func (a *gcsAdapter) bucket(bucket string) (*storage.BucketHandle, error) {
	if bucket == "" {
		bucket = a.cfg.BucketName
	}
	if bucket == "" {
		return nil, fmt.Errorf("gcs adapter '%s': no bucket specified", a.name)
	}
	return a.client.Bucket(bucket), nil
}

// Upload streams data to gs://bucket/objectName.
func (a *gcsAdapter) Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	w := b.Object(objectName).NewWriter(ctx)
	w.ContentType = contentType
	if _, err := io.Copy(w, data); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write object '%s': %w", objectName, err)
	}
	// The object is committed on Close.
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize object '%s': %w", objectName, err)
	}
	logger.Debugf("Uploaded object '%s' (gcs adapter '%s').", objectName, a.name)
	return nil
}

// DeleteObject deletes gs://bucket/objectName. A missing object is not an error.
func (a *gcsAdapter) DeleteObject(ctx context.Context, bucket, objectName string) error {
	b, err := a.bucket(bucket)
	if err != nil {
		return err
	}
	if err := b.Object(objectName).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			logger.Warnf("Attempted to delete non-existent object '%s' (gcs adapter '%s').", objectName, a.name)
			return nil
		}
		return fmt.Errorf("failed to delete object '%s': %w", objectName, err)
	}
	return nil
}

// GCSProvider implements storage.StorageProvider for GCS buckets.
type GCSProvider struct {
	baseOptions []option.ClientOption
	connections map[string]storageAdapter.StorageConnection
	mu          sync.Mutex
}

// NewGCSProvider creates a provider. baseOptions apply to every client and take precedence
// over StorageConfig.CredentialsFile.
func NewGCSProvider(baseOptions ...option.ClientOption) *GCSProvider {
	return &GCSProvider{
		baseOptions: baseOptions,
		connections: make(map[string]storageAdapter.StorageConnection),
	}
}

// GetConnection returns the connection called name, creating its client on first use.
func (p *GCSProvider) GetConnection(ctx context.Context, name string, cfg storageConfig.StorageConfig) (storageAdapter.StorageConnection, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if conn, ok := p.connections[name]; ok {
		return conn, nil
	}
	if cfg.Type != ProviderType {
		return nil, fmt.Errorf("storage config type mismatch for '%s': expected '%s', got '%s'", name, ProviderType, cfg.Type)
	}

	// Base options already carry the job's identity, including an impersonated
	// service account, so a per-connection credentials file applies only without them.
	opts := append([]option.ClientOption{}, p.baseOptions...)
	if cfg.CredentialsFile != "" && len(p.baseOptions) == 0 {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client for '%s': %w", name, err)
	}

	conn := NewGCSAdapter(client, cfg, name)
	p.connections[name] = conn
	logger.Debugf("Created new GCS storage connection '%s' (bucket '%s').", name, cfg.BucketName)
	return conn, nil
}

// CloseAll closes all clients.
func (p *GCSProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result *multierror.Error
	for name, conn := range p.connections {
		if err := conn.Close(); err != nil {
			result = multierror.Append(result, fmt.Errorf("failed to close GCS connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	return result.ErrorOrNil()
}

// Type returns "gcs".
func (p *GCSProvider) Type() string {
	return ProviderType
}

var _ storageAdapter.StorageProvider = (*GCSProvider)(nil)
