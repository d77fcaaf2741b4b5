// Package bootstrap applies process-wide settings from the loaded configuration and
// checks the job wiring before anything runs.
package bootstrap

import (
	"context"
	"strings"

	"go.uber.org/fx"

	"github.com/tigerroll/weather-etl/pkg/batch/core/application/usecase"
	"github.com/tigerroll/weather-etl/pkg/batch/core/config"
	"github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// ApplySecurityConfigHook installs the parameter keys masked in logs.
func ApplySecurityConfigHook(cfg *config.Config) {
	keys := cfg.Surfin.Security.MaskedParameterKeys
	if len(keys) == 0 {
		return
	}
	model.SetMaskedParameterKeys(keys)
	logger.Debugf("Masked job parameter keys: %s", strings.Join(keys, ", "))
}

// VerifyJobsHook registers an OnStart hook that fails startup when the configured
// job is not registered.
func VerifyJobsHook(lc fx.Lifecycle, cfg *config.Config, registry *usecase.JobRegistry) {
	lc.Append(fx.Hook{
		OnStart: onStartVerifyJobs(cfg, registry),
	})
}

func onStartVerifyJobs(cfg *config.Config, registry *usecase.JobRegistry) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		names := registry.Names()
		logger.Infof("Registered jobs: %s", strings.Join(names, ", "))
		jobName := cfg.Surfin.Batch.JobName
		if jobName == "" {
			return nil
		}
		if _, ok := registry.Get(jobName); !ok {
			return exception.NewBatchErrorf("bootstrap", "configured job '%s' is not registered (registered: %v)", jobName, names)
		}
		return nil
	}
}
