package model_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

func TestJobExecution_Lifecycle(t *testing.T) {
	params := model.NewJobParameters()
	params.Put("region", "us-east4")

	je := model.NewJobExecution("weatherDataETLJob", params)
	require.NotEmpty(t, je.ID)
	assert.Equal(t, model.BatchStatusStarting, je.Status)
	assert.Equal(t, model.ExitStatusUnknown, je.ExitStatus)
	assert.Zero(t, je.Duration())

	je.MarkAsStarted()
	assert.Equal(t, model.BatchStatusStarted, je.Status)

	je.MarkAsCompleted()
	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	assert.Equal(t, model.ExitStatusCompleted, je.ExitStatus)
	require.NotNil(t, je.EndTime)
	assert.True(t, je.Status.IsFinished())
	assert.Equal(t, 0, je.Status.ProcessExitCode())
}

func TestJobExecution_FailureDeduplicated(t *testing.T) {
	je := model.NewJobExecution("job", model.NewJobParameters())
	je.MarkAsStarted()

	err := errors.New("load job failed")
	je.MarkAsFailed(err)
	je.AddFailureException(err)
	je.AddFailureException(nil)

	assert.Equal(t, model.BatchStatusFailed, je.Status)
	assert.Equal(t, model.ExitStatusFailed, je.ExitStatus)
	assert.Equal(t, model.FailureList{"load job failed"}, je.Failures)
	assert.Equal(t, 1, je.Status.ProcessExitCode())
}

func TestTransitions(t *testing.T) {
	je := model.NewJobExecution("job", model.NewJobParameters())
	assert.Error(t, je.TransitionTo(model.BatchStatusCompleted), "STARTING -> COMPLETED is not allowed")
	require.NoError(t, je.TransitionTo(model.BatchStatusStarted))
	require.NoError(t, je.TransitionTo(model.BatchStatusCompleted))
	assert.Error(t, je.TransitionTo(model.BatchStatusStarted), "finished executions are terminal")
}

func TestStepExecution_AttachesToJob(t *testing.T) {
	je := model.NewJobExecution("job", model.NewJobParameters())
	se := model.NewStepExecution(je, "weatherETLStep")

	assert.Equal(t, je.ID, se.JobExecutionID)
	assert.Same(t, je, se.JobExecution)
	assert.Equal(t, "weatherETLStep", je.CurrentStepName)
	require.Len(t, je.StepExecutions, 1)

	se.MarkAsStarted()
	se.MarkAsFailed(errors.New("boom"))
	assert.Equal(t, model.ExitStatusFailed, se.ExitStatus)
	assert.Equal(t, model.FailureList{"boom"}, se.Failures)
}

func TestExecutionContext(t *testing.T) {
	ec := model.NewExecutionContext()
	ec.Put("records", 28)
	ec.Put("table", "weather_data.maharashtra_weather_report")
	ec.Put("ratio", float64(3))

	n, ok := ec.GetInt("records")
	assert.True(t, ok)
	assert.Equal(t, 28, n)

	n, ok = ec.GetInt("ratio")
	assert.True(t, ok)
	assert.Equal(t, 3, n)

	s, ok := ec.GetString("table")
	assert.True(t, ok)
	assert.Equal(t, "weather_data.maharashtra_weather_report", s)

	_, ok = ec.GetString("records")
	assert.False(t, ok)

	cp := ec.Copy()
	cp.Remove("records")
	_, stillThere := ec.Get("records")
	assert.True(t, stillThere)
}

func TestJobParameters_StringMasksSecrets(t *testing.T) {
	params := model.NewJobParameters()
	params.Put("secret_path", "projects/p/secrets/weather_api_key/versions/latest")
	params.Put("region", "us-east4")

	out := params.String()
	assert.Contains(t, out, `"region":"us-east4"`)
	assert.Contains(t, out, `"secret_path":"********"`)

	model.SetMaskedParameterKeys([]string{"region"})
	defer model.SetMaskedParameterKeys([]string{"password", "api_key", "secret", "credential"})
	assert.Contains(t, params.String(), `"region":"********"`)
}
