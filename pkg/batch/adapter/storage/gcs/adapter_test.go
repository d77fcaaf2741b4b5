package gcs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	storageConfig "github.com/tigerroll/weather-etl/pkg/batch/adapter/storage/config"
)

func TestGCSProvider_RejectsForeignType(t *testing.T) {
	p := NewGCSProvider()
	_, err := p.GetConnection(context.Background(), "tmp", storageConfig.StorageConfig{Type: "local", BaseDir: "/tmp"})
	assert.ErrorContains(t, err, "type mismatch")
	assert.Equal(t, ProviderType, p.Type())
}

func TestGCSProvider_CachesConnections(t *testing.T) {
	ctx := context.Background()
	p := NewGCSProvider(option.WithoutAuthentication(), option.WithEndpoint("http://127.0.0.1:1/storage/v1/"))
	cfg := storageConfig.StorageConfig{Type: ProviderType, BucketName: "dataflow-pipeline-poc-bucket"}

	a, err := p.GetConnection(ctx, "gs://dataflow-pipeline-poc-bucket/staging", cfg)
	require.NoError(t, err)
	b, err := p.GetConnection(ctx, "gs://dataflow-pipeline-poc-bucket/staging", cfg)
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Equal(t, "dataflow-pipeline-poc-bucket", a.Config().BucketName)

	assert.NoError(t, p.CloseAll())
}

func TestGCSProvider_BaseOptionsOverrideCredentialsFile(t *testing.T) {
	ctx := context.Background()
	cfg := storageConfig.StorageConfig{
		Type:            ProviderType,
		BucketName:      "dataflow-pipeline-poc-bucket",
		CredentialsFile: "/nonexistent/key.json",
	}

	// The job identity comes from the base options; the key file is never read.
	p := NewGCSProvider(option.WithoutAuthentication(), option.WithEndpoint("http://127.0.0.1:1/storage/v1/"))
	conn, err := p.GetConnection(ctx, "gs://dataflow-pipeline-poc-bucket/tmp", cfg)
	require.NoError(t, err)
	assert.Equal(t, "/nonexistent/key.json", conn.Config().CredentialsFile)
	assert.NoError(t, p.CloseAll())

	// Without base options the connection's own key file is used.
	_, err = NewGCSProvider().GetConnection(ctx, "gs://dataflow-pipeline-poc-bucket/tmp", cfg)
	assert.ErrorContains(t, err, "failed to create GCS client")
}
