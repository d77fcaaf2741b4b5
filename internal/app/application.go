// Package app wires the weather ETL job into an fx application and runs it.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"

	"github.com/tigerroll/weather-etl/internal/runner"
	config "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

const stopTimeout = 30 * time.Second

// jobResult carries the outcome of the run out of the fx lifecycle.
type jobResult struct {
	done chan struct{}
	code int
	err  error
}

// JobRunner runs the job on its execution target and returns the process exit code.
type JobRunner interface {
	Run(ctx context.Context) (int, error)
}

// RunApplication builds the application, runs the job on its execution target and
// returns the process exit code. Cancelling appCtx stops a running job.
func RunApplication(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig) int {
	return run(appCtx,
		fx.Supply(
			embeddedConfig,
			fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
		),
		Module,
		fx.Provide(func(r *runner.Runner) JobRunner { return r }),
	)
}

// run starts an application assembled from opts, which must provide a JobRunner, and
// waits for the job to finish.
func run(appCtx context.Context, opts ...fx.Option) int {
	result := &jobResult{done: make(chan struct{}), code: 1}

	app := fx.New(
		fx.Supply(
			fx.Annotate(appCtx, fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
			result,
		),
		fx.Options(opts...),
		fx.Invoke(fx.Annotate(startJobExecution, fx.ParamTags(
			"",              // lc fx.Lifecycle
			"",              // shutdowner fx.Shutdowner
			"",              // runner JobRunner
			"",              // result *jobResult
			`name:"appCtx"`, // appCtx context.Context
		))),
	)

	startCtx, cancelStart := context.WithTimeout(context.Background(), app.StartTimeout())
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		logger.Errorf("Application start failed: %v", err)
		return 1
	}

	sig := <-app.Wait()
	logger.Debugf("Application received shutdown signal: %s", sig)

	stopCtx, cancelStop := context.WithTimeout(context.Background(), stopTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		logger.Errorf("Application stop failed: %v", err)
	}

	select {
	case <-result.done:
		if result.err != nil {
			logger.Errorf("Job run failed: %v", result.err)
		}
		return result.code
	default:
		if sig.ExitCode != 0 {
			return sig.ExitCode
		}
		return 1
	}
}

// startJobExecution runs the job once the application has started and shuts the
// application down with the job's exit code when it returns.
func startJobExecution(lc fx.Lifecycle, shutdowner fx.Shutdowner, r JobRunner, result *jobResult, appCtx context.Context) {
	runCtx, cancel := context.WithCancel(appCtx)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				defer close(result.done)
				defer func() {
					if rec := recover(); rec != nil {
						result.code, result.err = 1, fmt.Errorf("panic in job execution: %v", rec)
						logger.Errorf("Panic recovered in job execution: %v", rec)
					}
					logger.Infof("Requesting application shutdown after job completion.")
					if err := shutdowner.Shutdown(fx.ExitCode(result.code)); err != nil {
						logger.Errorf("Failed to shutdown application: %v", err)
					}
				}()
				result.code, result.err = r.Run(runCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case <-result.done:
			case <-ctx.Done():
				logger.Warnf("Job did not stop before the shutdown deadline.")
			}
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}
