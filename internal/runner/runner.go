// Package runner submits the weather ETL job on the configured execution target and
// turns its outcome into a process exit code.
package runner

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	"github.com/tigerroll/weather-etl/pkg/batch/core/application/usecase"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

const moduleName = "job_runner"

// Job parameter keys recorded for every submission.
const (
	ParamExecutionTarget = "execution_target"
	ParamStagingPath     = "staging_path"
	ParamTempPath        = "temp_path"
	ParamRegion          = "region"
	ParamWorkerRegion    = "worker_region"
	ParamNetworkSubnet   = "network_subnet"
	ParamServiceAccount  = "service_account"
	ParamUsePublicIPs    = "use_public_ips"
	ParamSubmittedAt     = "submitted_at"
	ParamRunID           = "run.id"
)

// Runner drives the job on the configured execution target.
type Runner struct {
	exec        *appConfig.ExecutionConfig
	launcher    port.JobLauncher
	ops         *OpsServer
	explorer    usecase.JobExplorer
	incrementer port.JobParametersIncrementer
}

// NewRunner creates a Runner. ops may be nil; it is only served on the scheduled target.
func NewRunner(exec *appConfig.ExecutionConfig, launcher port.JobLauncher, ops *OpsServer) *Runner {
	return &Runner{exec: exec, launcher: launcher, ops: ops}
}

// WithRunHistory numbers every submission: the run id of the job's last execution,
// looked up with explorer, is advanced by incrementer.
func (r *Runner) WithRunHistory(explorer usecase.JobExplorer, incrementer port.JobParametersIncrementer) *Runner {
	r.explorer = explorer
	r.incrementer = incrementer
	return r
}

// Run executes the job and returns the process exit code.
// local runs once and returns the outcome; scheduled runs on every cron tick until ctx is done.
func (r *Runner) Run(ctx context.Context) (int, error) {
	switch r.exec.ExecutionTarget {
	case appConfig.TargetLocal, "":
		return r.RunOnce(ctx)
	case appConfig.TargetScheduled:
		return r.runScheduled(ctx)
	default:
		return 1, exception.NewBatchErrorf(moduleName, "unsupported execution target '%s'", r.exec.ExecutionTarget)
	}
}

// RunOnce submits the job, waits for it and maps its status to an exit code.
func (r *Runner) RunOnce(ctx context.Context) (int, error) {
	params := r.jobParameters(ctx)
	logger.Infof("Submitting job '%s' (target: %s). Parameters: %s", r.exec.JobName, r.exec.ExecutionTarget, params.String())

	je, err := r.launcher.Launch(ctx, r.exec.JobName, params)
	if err != nil {
		return 1, err
	}

	code := je.Status.ProcessExitCode()
	if je.Status != model.BatchStatusCompleted {
		return code, exception.NewBatchErrorf(moduleName, "job '%s' (ID: %s) finished with status %s: %v",
			r.exec.JobName, je.ID, je.Status, je.Failures)
	}
	logger.Infof("Job '%s' (ID: %s) completed in %s.", r.exec.JobName, je.ID, je.Duration().Round(time.Millisecond))
	return code, nil
}

func (r *Runner) runScheduled(ctx context.Context) (int, error) {
	cronLog := cronLogger{}
	c := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := c.AddFunc(r.exec.Schedule, func() {
		if _, err := r.RunOnce(ctx); err != nil {
			logger.Errorf("Scheduled run of '%s' failed: %v", r.exec.JobName, err)
		}
	}); err != nil {
		return 1, exception.NewBatchError(moduleName, fmt.Sprintf("invalid schedule '%s'", r.exec.Schedule), err, false, false)
	}

	if r.ops != nil {
		if err := r.ops.Start(); err != nil {
			return 1, err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			if err := r.ops.Shutdown(shutdownCtx); err != nil {
				logger.Warnf("Ops server shutdown: %v", err)
			}
		}()
	}

	c.Start()
	logger.Infof("Job '%s' scheduled with '%s'.", r.exec.JobName, r.exec.Schedule)
	<-ctx.Done()

	logger.Infof("Stopping scheduler; waiting for a running job to finish.")
	<-c.Stop().Done()
	return 0, nil
}

func (r *Runner) jobParameters(ctx context.Context) model.JobParameters {
	params := model.NewJobParameters()
	params.Put(ParamExecutionTarget, r.exec.ExecutionTarget)
	params.Put(ParamStagingPath, r.exec.StagingPath)
	params.Put(ParamTempPath, r.exec.TempPath)
	params.Put(ParamRegion, r.exec.Region)
	params.Put(ParamWorkerRegion, r.exec.WorkerRegion)
	params.Put(ParamNetworkSubnet, r.exec.NetworkSubnet)
	params.Put(ParamServiceAccount, r.exec.ServiceAccount)
	params.Put(ParamUsePublicIPs, r.exec.UsePublicIPs)
	params.Put(ParamSubmittedAt, time.Now().UTC().Format(time.RFC3339))
	if r.incrementer == nil {
		return params
	}
	if r.explorer != nil {
		if last, err := r.explorer.GetLastJobExecution(ctx, r.exec.JobName); err == nil && last != nil {
			if id, ok := last.Parameters.GetInt(ParamRunID); ok {
				params.Put(ParamRunID, id)
			}
		}
	}
	return r.incrementer.GetNext(params)
}

// cronLogger routes cron's logging through the batch logger.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.Debugf("cron: %s %s", msg, formatKV(keysAndValues))
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	logger.Errorf("cron: %s: %v %s", msg, err, formatKV(keysAndValues))
}

func formatKV(kv []interface{}) string {
	out := ""
	for i := 0; i+1 < len(kv); i += 2 {
		if out != "" {
			out += " "
		}
		out += fmt.Sprint(kv[i]) + "=" + fmt.Sprint(kv[i+1])
	}
	return out
}
