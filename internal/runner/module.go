package runner

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	"github.com/tigerroll/weather-etl/pkg/batch/core/application/usecase"
	"github.com/tigerroll/weather-etl/pkg/batch/core/support/incrementer"
	infraMetrics "github.com/tigerroll/weather-etl/pkg/batch/infrastructure/metrics"
)

// RunnerParams defines the dependencies of NewRunnerProvider.
type RunnerParams struct {
	fx.In
	Execution  *appConfig.ExecutionConfig
	Launcher   port.JobLauncher
	Explorer   usecase.JobExplorer
	Prometheus *infraMetrics.PrometheusRecorder `optional:"true"`
}

// NewRunnerProvider builds the Runner and, for the scheduled target, its OpsServer.
func NewRunnerProvider(p RunnerParams) *Runner {
	var ops *OpsServer
	if p.Execution.ExecutionTarget == appConfig.TargetScheduled {
		var gatherer prometheus.Gatherer
		if p.Prometheus != nil {
			gatherer = p.Prometheus.GetRegistry()
		}
		ops = NewOpsServer(p.Execution.OpsAddr, p.Execution.JobName, p.Explorer, gatherer)
	}
	return NewRunner(p.Execution, p.Launcher, ops).
		WithRunHistory(p.Explorer, incrementer.NewRunIDIncrementer(ParamRunID))
}

// Module provides *Runner.
var Module = fx.Options(
	fx.Provide(NewRunnerProvider),
)
