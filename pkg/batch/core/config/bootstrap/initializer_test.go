package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	"github.com/tigerroll/weather-etl/pkg/batch/core/application/usecase"
	"github.com/tigerroll/weather-etl/pkg/batch/core/config"
	"github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

type namedJob struct{ name string }

func (j namedJob) Run(context.Context, *model.JobExecution, model.JobParameters) error { return nil }
func (j namedJob) JobName() string                                                      { return j.name }
func (j namedJob) Steps() []port.Step                                                   { return nil }

func TestVerifyJobs(t *testing.T) {
	registry, err := usecase.NewJobRegistry(usecase.JobRegistryParams{Jobs: []port.Job{namedJob{name: "weatherdataetl"}}})
	require.NoError(t, err)

	cfg := config.NewConfig()
	cfg.Surfin.Batch.JobName = "weatherdataetl"
	assert.NoError(t, onStartVerifyJobs(cfg, registry)(context.Background()))

	cfg.Surfin.Batch.JobName = "otherjob"
	assert.Error(t, onStartVerifyJobs(cfg, registry)(context.Background()))
}

func TestApplySecurityConfig(t *testing.T) {
	defer model.SetMaskedParameterKeys([]string{"password", "api_key", "secret", "credential"})

	cfg := config.NewConfig()
	cfg.Surfin.Security.MaskedParameterKeys = []string{"service_account"}
	ApplySecurityConfigHook(cfg)

	params := model.NewJobParameters()
	params.Put("service_account", "svc@example.iam.gserviceaccount.com")
	params.Put("region", "us-east4")
	assert.NotContains(t, params.String(), "svc@example")
	assert.Contains(t, params.String(), "us-east4")
}
