package local

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storageConfig "github.com/tigerroll/weather-etl/pkg/batch/adapter/storage/config"
)

func newTestConnection(t *testing.T) (*LocalProvider, string) {
	t.Helper()
	return NewLocalProvider(), t.TempDir()
}

func TestLocalAdapter_UploadAndDelete(t *testing.T) {
	ctx := context.Background()
	p, dir := newTestConnection(t)
	conn, err := p.GetConnection(ctx, "tmp", storageConfig.StorageConfig{Type: ProviderType, BaseDir: dir})
	require.NoError(t, err)

	require.NoError(t, conn.Upload(ctx, "", "weather/run-1.parquet", bytes.NewBufferString("PAR1"), "application/octet-stream"))
	data, err := os.ReadFile(filepath.Join(dir, "weather", "run-1.parquet"))
	require.NoError(t, err)
	assert.Equal(t, "PAR1", string(data))

	entries, err := os.ReadDir(filepath.Join(dir, "weather"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temporary files are left behind")

	require.NoError(t, conn.DeleteObject(ctx, "", "weather/run-1.parquet"))
	require.NoError(t, conn.DeleteObject(ctx, "", "weather/run-1.parquet"), "deleting twice is not an error")
	assert.NoFileExists(t, filepath.Join(dir, "weather", "run-1.parquet"))
}

func TestLocalAdapter_FailedUploadLeavesNothing(t *testing.T) {
	ctx := context.Background()
	p, dir := newTestConnection(t)
	conn, err := p.GetConnection(ctx, "tmp", storageConfig.StorageConfig{Type: ProviderType, BaseDir: dir})
	require.NoError(t, err)

	err = conn.Upload(ctx, "", "weather/run-2.parquet", iotest.ErrReader(errors.New("connection reset")), "application/octet-stream")
	assert.ErrorContains(t, err, "connection reset")

	entries, err := os.ReadDir(filepath.Join(dir, "weather"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalAdapter_RejectsPathTraversal(t *testing.T) {
	ctx := context.Background()
	p, dir := newTestConnection(t)
	conn, err := p.GetConnection(ctx, "tmp", storageConfig.StorageConfig{Type: ProviderType, BaseDir: dir})
	require.NoError(t, err)

	err = conn.Upload(ctx, "", "../escape.txt", bytes.NewBufferString("x"), "text/plain")
	assert.ErrorContains(t, err, "outside of BaseDir")
}

func TestLocalProvider_CachesAndValidates(t *testing.T) {
	ctx := context.Background()
	p, dir := newTestConnection(t)
	cfg := storageConfig.StorageConfig{Type: ProviderType, BaseDir: dir}

	a, err := p.GetConnection(ctx, "tmp", cfg)
	require.NoError(t, err)
	b, err := p.GetConnection(ctx, "tmp", cfg)
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = p.GetConnection(ctx, "bucket", storageConfig.StorageConfig{Type: "gcs", BucketName: "b"})
	assert.Error(t, err)

	_, err = p.GetConnection(ctx, "nobase", storageConfig.StorageConfig{Type: ProviderType})
	assert.Error(t, err)

	assert.NoError(t, p.CloseAll())
}
