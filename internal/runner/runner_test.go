package runner

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appConfig "github.com/tigerroll/weather-etl/internal/config"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
	"github.com/tigerroll/weather-etl/pkg/batch/core/support/incrementer"
)

type fakeLauncher struct {
	mu     sync.Mutex
	params []model.JobParameters
	status model.JobStatus
	err    error
	calls  atomic.Int32
}

func (f *fakeLauncher) Launch(ctx context.Context, jobName string, params model.JobParameters) (*model.JobExecution, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.params = append(f.params, params)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	je := model.NewJobExecution(jobName, params)
	je.MarkAsStarted()
	if f.status == model.BatchStatusFailed {
		je.MarkAsFailed(errors.New("load job error"))
	} else {
		je.MarkAsCompleted()
	}
	return je, nil
}

func execConfig() *appConfig.ExecutionConfig {
	cfg := appConfig.DefaultExecutionConfig()
	cfg.StagingPath = "gs://dataflow-pipeline-poc-bucket/staging"
	cfg.TempPath = "gs://dataflow-pipeline-poc-bucket/tmp"
	cfg.Region = "us-east4"
	cfg.WorkerRegion = "us-east4"
	cfg.ServiceAccount = "917426886994-compute@developer.gserviceaccount.com"
	return &cfg
}

func TestRun_LocalCompleted(t *testing.T) {
	launcher := &fakeLauncher{}

	code, err := NewRunner(execConfig(), launcher, nil).Run(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	require.Len(t, launcher.params, 1)
	p := launcher.params[0]
	region, _ := p.GetString(ParamRegion)
	assert.Equal(t, "us-east4", region)
	temp, _ := p.GetString(ParamTempPath)
	assert.Equal(t, "gs://dataflow-pipeline-poc-bucket/tmp", temp)
	public, ok := p.GetBool(ParamUsePublicIPs)
	assert.True(t, ok)
	assert.False(t, public)
}

func TestRun_LocalFailedGivesNonZeroExit(t *testing.T) {
	code, err := NewRunner(execConfig(), &fakeLauncher{status: model.BatchStatusFailed}, nil).Run(context.Background())

	assert.Error(t, err)
	assert.NotEqual(t, 0, code)
}

func TestRun_LaunchError(t *testing.T) {
	code, err := NewRunner(execConfig(), &fakeLauncher{err: errors.New("job not registered")}, nil).Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestRun_UnsupportedTarget(t *testing.T) {
	cfg := execConfig()
	cfg.ExecutionTarget = "dataflow"

	code, err := NewRunner(cfg, &fakeLauncher{}, nil).Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

func TestRun_ScheduledRunsUntilCancelled(t *testing.T) {
	cfg := execConfig()
	cfg.ExecutionTarget = appConfig.TargetScheduled
	cfg.Schedule = "@every 1s"
	launcher := &fakeLauncher{}

	ctx, cancel := context.WithTimeout(context.Background(), 2500*time.Millisecond)
	defer cancel()
	code, err := NewRunner(cfg, launcher, nil).Run(ctx)

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.GreaterOrEqual(t, launcher.calls.Load(), int32(1))
}

func TestRun_ScheduledInvalidSchedule(t *testing.T) {
	cfg := execConfig()
	cfg.ExecutionTarget = appConfig.TargetScheduled
	cfg.Schedule = "every now and then"

	code, err := NewRunner(cfg, &fakeLauncher{}, nil).Run(context.Background())

	assert.Error(t, err)
	assert.Equal(t, 1, code)
}

type fakeExplorer struct {
	last *model.JobExecution
}

func (f *fakeExplorer) GetJobExecution(ctx context.Context, id string) (*model.JobExecution, error) {
	return f.last, nil
}

func (f *fakeExplorer) GetLastJobExecution(ctx context.Context, jobName string) (*model.JobExecution, error) {
	return f.last, nil
}

func (f *fakeExplorer) GetJobNames(ctx context.Context) ([]string, error) {
	return []string{"weatherdataetl"}, nil
}

func TestOpsServer_Healthz(t *testing.T) {
	je := model.NewJobExecution("weatherdataetl", model.NewJobParameters())
	je.MarkAsStarted()
	je.MarkAsCompleted()
	srv := httptest.NewServer(NewOpsServer(":0", "weatherdataetl", &fakeExplorer{last: je}, nil).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body healthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, je.ID, body.LastExecution)
	assert.Equal(t, "COMPLETED", body.LastStatus)
}

func TestOpsServer_Metrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{Name: "weather_test_total", Help: "test"})
	registry.MustRegister(counter)
	counter.Inc()

	srv := httptest.NewServer(NewOpsServer(":0", "weatherdataetl", nil, registry).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	noMetrics := httptest.NewServer(NewOpsServer(":0", "weatherdataetl", nil, nil).Handler())
	defer noMetrics.Close()
	resp2, err := http.Get(noMetrics.URL + "/metrics")
	require.NoError(t, err)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}

func TestRun_NumbersRunsFromHistory(t *testing.T) {
	previous := model.NewJobParameters()
	previous.Put(ParamRunID, 4)
	launcher := &fakeLauncher{}
	r := NewRunner(execConfig(), launcher, nil).
		WithRunHistory(&fakeExplorer{last: model.NewJobExecution("weatherdataetl", previous)}, incrementer.NewRunIDIncrementer(ParamRunID))

	_, err := r.Run(context.Background())
	require.NoError(t, err)

	id, ok := launcher.params[0].GetInt(ParamRunID)
	require.True(t, ok)
	assert.Equal(t, 5, id)

	first := NewRunner(execConfig(), launcher, nil).
		WithRunHistory(&fakeExplorer{}, incrementer.NewRunIDIncrementer(ParamRunID))
	_, err = first.Run(context.Background())
	require.NoError(t, err)
	id, _ = launcher.params[1].GetInt(ParamRunID)
	assert.Equal(t, 1, id)
}
