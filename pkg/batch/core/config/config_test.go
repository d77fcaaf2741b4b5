package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testYAML = `
surfin:
  batch:
    job_name: weatherDataETLJob
    retry:
      max_attempts: 5
  system:
    logging:
      level: ${TEST_LOG_LEVEL:-WARN}
  observability:
    metrics:
      enabled: true
      pushgateway_url: ${TEST_PUSHGATEWAY}
  adaptor:
    storage:
      type: gcs
application:
  country_code: IN
  locations:
    - Mumbai
    - Pune
`

func TestLoadConfig_YAMLOverDefaults(t *testing.T) {
	t.Setenv("TEST_PUSHGATEWAY", "http://pushgateway:9091")

	cfg, err := LoadConfig("testdata/does-not-exist.env", EmbeddedConfig(testYAML))
	require.NoError(t, err)

	assert.Equal(t, "weatherDataETLJob", cfg.Surfin.Batch.JobName)
	assert.Equal(t, 5, cfg.Surfin.Batch.Retry.MaxAttempts)
	// Unset in YAML, kept from defaults.
	assert.Equal(t, 1000, cfg.Surfin.Batch.Retry.InitialInterval)
	assert.Equal(t, 2.0, cfg.Surfin.Batch.Retry.Factor)
	assert.Equal(t, "UTC", cfg.Surfin.System.Timezone)

	assert.Equal(t, "WARN", cfg.Surfin.System.Logging.Level)
	assert.Equal(t, "http://pushgateway:9091", cfg.Surfin.Observability.Metrics.PushgatewayURL)
	assert.True(t, cfg.Surfin.Observability.Metrics.Enabled)

	storage, ok := cfg.Surfin.AdaptorConfigs["storage"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "gcs", storage["type"])
	assert.Equal(t, "IN", cfg.Application["country_code"])
	assert.Equal(t, []interface{}{"Mumbai", "Pune"}, cfg.Application["locations"])
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	t.Setenv("SURFIN_BATCH_JOB_NAME", "fromEnv")
	t.Setenv("SURFIN_BATCH_RETRY_FACTOR", "1.5")
	t.Setenv("SURFIN_OBSERVABILITY_TRACING_ENABLED", "true")
	t.Setenv("SURFIN_SECURITY_MASKED_PARAMETER_KEYS", "token, api_key")

	cfg, err := LoadConfig("", EmbeddedConfig(testYAML))
	require.NoError(t, err)

	assert.Equal(t, "fromEnv", cfg.Surfin.Batch.JobName)
	assert.Equal(t, 1.5, cfg.Surfin.Batch.Retry.Factor)
	assert.True(t, cfg.Surfin.Observability.Tracing.Enabled)
	assert.Equal(t, []string{"token", "api_key"}, cfg.Surfin.Security.MaskedParameterKeys)
}

func TestLoadConfig_InvalidEnvValue(t *testing.T) {
	t.Setenv("SURFIN_BATCH_RETRY_MAX_ATTEMPTS", "three")

	_, err := LoadConfig("", EmbeddedConfig(testYAML))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SURFIN_BATCH_RETRY_MAX_ATTEMPTS")
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	_, err := LoadConfig("", EmbeddedConfig("surfin: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal embedded config")
}

func TestValidate(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, Validate(cfg))

	cfg.Surfin.Batch.Retry.RetryableExceptions = []string{"not.Registered"}
	assert.Error(t, Validate(cfg))

	cfg = NewConfig()
	cfg.Surfin.Batch.Retry.MaxAttempts = 0
	assert.Error(t, Validate(cfg))

	cfg = NewConfig()
	cfg.Surfin.Observability.Tracing.OTLP = OTLPConfig{Endpoint: "collector:4317", Protocol: "udp"}
	assert.Error(t, Validate(cfg))
}

func TestOsEnvironmentExpander(t *testing.T) {
	t.Setenv("EXPANDER_SET", "value")

	out, err := NewOsEnvironmentExpander().Expand([]byte("a=${EXPANDER_SET} b=${EXPANDER_UNSET:-fallback} c=${EXPANDER_UNSET}"))
	require.NoError(t, err)
	assert.Equal(t, "a=value b=fallback c=", string(out))
}
