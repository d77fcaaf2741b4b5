package gcp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
)

const authorizedUserKey = `{
  "type": "authorized_user",
  "client_id": "etl-client.apps.googleusercontent.com",
  "client_secret": "not-a-secret",
  "refresh_token": "not-a-token"
}`

func writeKeyFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, []byte(authorizedUserKey), 0600))
	return path
}

func TestClientOptions_NoCredentials(t *testing.T) {
	opts, err := ClientOptions(context.Background(), "", "")
	require.NoError(t, err)
	assert.Empty(t, opts)
}

func TestClientOptions_CredentialsFile(t *testing.T) {
	opts, err := ClientOptions(context.Background(), "/etc/keys/sa.json", "")
	require.NoError(t, err)
	assert.Len(t, opts, 1)
}

func TestClientOptions_ImpersonatesServiceAccount(t *testing.T) {
	keyFile := writeKeyFile(t)

	opts, err := ClientOptions(context.Background(), keyFile, "917426886994-compute@developer.gserviceaccount.com")
	require.NoError(t, err)
	// The key file is folded into the impersonated token source.
	assert.Len(t, opts, 1)
}

func TestClientOptions_ImpersonationFailure(t *testing.T) {
	_, err := ClientOptions(context.Background(), "/nonexistent/key.json", "917426886994-compute@developer.gserviceaccount.com")
	require.Error(t, err)
	assert.ErrorContains(t, err, "failed to impersonate service account")

	var be *exception.BatchError
	require.ErrorAs(t, err, &be)
	assert.False(t, be.IsRetryable())
}
