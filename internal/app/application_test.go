package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"

	"github.com/tigerroll/weather-etl/internal/runner"
	config "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

type stubRunner struct {
	started chan struct{}
	run     func(ctx context.Context) (int, error)
}

func newStubRunner(run func(ctx context.Context) (int, error)) *stubRunner {
	return &stubRunner{started: make(chan struct{}), run: run}
}

func (s *stubRunner) Run(ctx context.Context) (int, error) {
	close(s.started)
	return s.run(ctx)
}

func runWithStub(ctx context.Context, stub *stubRunner) int {
	return run(ctx,
		fx.NopLogger,
		fx.Supply(fx.Annotate(stub, fx.As(new(JobRunner)))),
	)
}

func TestRun_ExitCodeFollowsJobOutcome(t *testing.T) {
	cases := []struct {
		name string
		run  func(ctx context.Context) (int, error)
		want int
	}{
		{
			name: "completed",
			run: func(ctx context.Context) (int, error) {
				return model.BatchStatusCompleted.ProcessExitCode(), nil
			},
			want: 0,
		},
		{
			name: "failed",
			run: func(ctx context.Context) (int, error) {
				return model.BatchStatusFailed.ProcessExitCode(), nil
			},
			want: 1,
		},
		{
			name: "launch error",
			run: func(ctx context.Context) (int, error) {
				return 1, errors.New("job 'weatherdataetl' is not registered")
			},
			want: 1,
		},
		{
			name: "panic",
			run: func(ctx context.Context) (int, error) {
				panic("tasklet exploded")
			},
			want: 1,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stub := newStubRunner(tc.run)
			assert.Equal(t, tc.want, runWithStub(context.Background(), stub))
		})
	}
}

func TestRun_CancelledJobExitsWithStoppedCode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stub := newStubRunner(func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return model.BatchStatusStopped.ProcessExitCode(), nil
	})
	go func() {
		select {
		case <-stub.started:
			cancel()
		case <-time.After(5 * time.Second):
		}
	}()

	assert.Equal(t, 130, runWithStub(ctx, stub))
}

func TestModule_GraphIsComplete(t *testing.T) {
	embedded := config.EmbeddedConfig(`
surfin:
  batch:
    job_name: weatherdataetl
application:
  weather_etl:
    secret_path: env://OPENWEATHER_API_KEY
    destination_table: p.d.t
    locations: [Pune]
  execution:
    execution_target: local
`)
	err := fx.ValidateApp(
		fx.Supply(
			embedded,
			fx.Annotate("", fx.ResultTags(`name:"envFilePath"`)),
			fx.Annotate(context.Background(), fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
			&jobResult{done: make(chan struct{})},
		),
		Module,
		fx.Provide(func(r *runner.Runner) JobRunner { return r }),
		fx.Invoke(fx.Annotate(startJobExecution, fx.ParamTags("", "", "", "", `name:"appCtx"`))),
	)
	assert.NoError(t, err)
}
