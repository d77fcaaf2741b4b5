package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreConfig "github.com/tigerroll/weather-etl/pkg/batch/core/config"
)

func newCoreConfig(app map[string]interface{}) *coreConfig.Config {
	cfg := coreConfig.NewConfig()
	cfg.Application = app
	return cfg
}

func TestNewWeatherETLConfig_Defaults(t *testing.T) {
	cfg := newCoreConfig(map[string]interface{}{
		"weather_etl": map[string]interface{}{
			"secret_path":       "env://WEATHER_API_KEY",
			"locations":         []interface{}{"Mumbai", "Pune"},
			"destination_table": "p.d.t",
			"gcp_project":       "p",
		},
	})

	got, err := NewWeatherETLConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mumbai", "Pune"}, got.Locations)
	assert.Equal(t, 4, got.Concurrency)
	assert.Equal(t, "IN", got.Weather.Country)
	assert.Equal(t, "metric", got.Weather.Units)
	assert.Equal(t, 10*time.Second, got.Weather.Timeout)
}

func TestNewWeatherETLConfig_WeakTypes(t *testing.T) {
	cfg := newCoreConfig(map[string]interface{}{
		"weather_etl": map[string]interface{}{
			"secret_path":       "env://WEATHER_API_KEY",
			"locations":         "Mumbai,Pune,Nagpur",
			"destination_table": "p.d.t",
			"gcp_project":       "p",
			"concurrency":       "8",
			"weather":           map[string]interface{}{"timeout": "3s"},
		},
	})

	got, err := NewWeatherETLConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mumbai", "Pune", "Nagpur"}, got.Locations)
	assert.Equal(t, 8, got.Concurrency)
	assert.Equal(t, 3*time.Second, got.Weather.Timeout)
	assert.Equal(t, "http://api.openweathermap.org/data/2.5/weather", got.Weather.BaseURL)
}

func TestNewWeatherETLConfig_Invalid(t *testing.T) {
	cases := map[string]map[string]interface{}{
		"zero concurrency": {
			"secret_path": "env://K", "locations": []interface{}{"Pune"},
			"destination_table": "p.d.t", "gcp_project": "p", "concurrency": 0,
		},
		"no locations": {
			"secret_path": "env://K", "destination_table": "p.d.t", "gcp_project": "p",
		},
		"missing table": {
			"secret_path": "env://K", "locations": []interface{}{"Pune"}, "gcp_project": "p",
		},
	}
	for name, section := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewWeatherETLConfig(newCoreConfig(map[string]interface{}{"weather_etl": section}))
			assert.Error(t, err)
		})
	}
}

func TestNewExecutionConfig(t *testing.T) {
	cfg := newCoreConfig(map[string]interface{}{
		"execution": map[string]interface{}{
			"staging_path":    "gs://bucket/staging",
			"temp_path":       "gs://bucket/tmp",
			"region":          "us-east4",
			"worker_region":   "us-east4",
			"service_account": "svc@project.iam.gserviceaccount.com",
			"use_public_ips":  "false",
		},
	})
	cfg.Surfin.Batch.JobName = "weatherdataetl"

	got, err := NewExecutionConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, TargetLocal, got.ExecutionTarget)
	assert.Equal(t, "weatherdataetl", got.JobName)
	assert.Equal(t, "gs://bucket/tmp", got.TempPath)
	assert.False(t, got.UsePublicIPs)
}

func TestNewExecutionConfig_Invalid(t *testing.T) {
	_, err := NewExecutionConfig(newCoreConfig(map[string]interface{}{
		"execution": map[string]interface{}{"execution_target": "dataflow"},
	}))
	assert.Error(t, err)

	_, err = NewExecutionConfig(newCoreConfig(map[string]interface{}{
		"execution": map[string]interface{}{"execution_target": "scheduled"},
	}))
	assert.Error(t, err, "scheduled target requires a schedule")

	got, err := NewExecutionConfig(newCoreConfig(map[string]interface{}{
		"execution": map[string]interface{}{"execution_target": "scheduled", "schedule": "0 * * * *"},
	}))
	require.NoError(t, err)
	assert.Equal(t, TargetScheduled, got.ExecutionTarget)
}
