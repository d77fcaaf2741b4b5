package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	port "github.com/tigerroll/weather-etl/pkg/batch/core/application/port"
	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

func TestPrometheusRecorder_ItemCounters(t *testing.T) {
	r := NewPrometheusRecorder("weatherdataetl", "")
	je := model.NewJobExecution("weatherDataETLJob", model.NewJobParameters())
	se := model.NewStepExecution(je, "weatherETLStep")
	ctx := port.GetContextWithStepExecution(context.Background(), se)

	r.RecordItemRead(ctx, "weatherETLStep")
	r.RecordItemRead(ctx, "weatherETLStep")
	r.RecordItemSkip(ctx, "weatherETLStep", "not_found")
	r.RecordItemWrite(ctx, "weatherETLStep", 2)
	r.RecordRetry(ctx, "warehouse_load", "timeout")
	r.RecordDuration(ctx, "weather_fetch", 250*time.Millisecond, map[string]string{"status": "ok"})

	assert.Equal(t, 2.0, testutil.ToFloat64(r.stepReadCount.WithLabelValues("weatherDataETLJob", "weatherETLStep")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.itemSkipCounter.WithLabelValues("weatherDataETLJob", "weatherETLStep", "not_found")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.stepWriteCount.WithLabelValues("weatherDataETLJob", "weatherETLStep")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.retryCounter.WithLabelValues("warehouse_load", "timeout")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.operationDurationSeconds))
}

func TestPrometheusRecorder_PushesOnJobEnd(t *testing.T) {
	var pushes atomic.Int32
	var path atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		pushes.Add(1)
		path.Store(req.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	r := NewPrometheusRecorder("weatherdataetl", server.URL)
	je := model.NewJobExecution("weatherDataETLJob", model.NewJobParameters())
	je.MarkAsStarted()
	r.RecordJobStart(context.Background(), je)
	je.MarkAsCompleted()
	r.RecordJobEnd(context.Background(), je)

	require.Equal(t, int32(1), pushes.Load())
	assert.True(t, strings.HasSuffix(path.Load().(string), "/job/weatherdataetl"))
	assert.Equal(t, 1, testutil.CollectAndCount(r.jobDurationSeconds))
}

func TestPrometheusRecorder_PushFailureIsNotFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	r := NewPrometheusRecorder("weatherdataetl", server.URL)
	je := model.NewJobExecution("weatherDataETLJob", model.NewJobParameters())
	je.MarkAsFailed(assert.AnError)
	assert.NotPanics(t, func() { r.RecordJobEnd(context.Background(), je) })
}
