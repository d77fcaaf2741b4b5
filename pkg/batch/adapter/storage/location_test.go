package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLocation(t *testing.T) {
	loc, err := ParseLocation("gs://dataflow-pipeline-poc-bucket/staging/")
	require.NoError(t, err)
	assert.Equal(t, Location{Type: "gcs", Bucket: "dataflow-pipeline-poc-bucket", Prefix: "staging"}, loc)
	assert.Equal(t, "staging/run.parquet", loc.ObjectName("run.parquet"))
	assert.Equal(t, "gs://dataflow-pipeline-poc-bucket/staging/run.parquet", loc.URI(loc.ObjectName("run.parquet")))
	assert.Equal(t, "gs://dataflow-pipeline-poc-bucket/staging", loc.String())

	loc, err = ParseLocation("/tmp")
	require.NoError(t, err)
	assert.Equal(t, Location{Type: "local", Prefix: "/tmp"}, loc)
	assert.Equal(t, "run.parquet", loc.ObjectName("run.parquet"))
	assert.Equal(t, "/tmp/run.parquet", loc.URI("run.parquet"))

	for _, bad := range []string{"", "gs://", "s3://bucket/x"} {
		_, err := ParseLocation(bad)
		assert.Error(t, err, bad)
	}
}
