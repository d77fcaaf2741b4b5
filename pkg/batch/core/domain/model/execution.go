package model

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// NewID generates a new UUID string.
func NewID() string {
	return uuid.New().String()
}

// FailureList holds the distinct failure messages recorded on an execution.
type FailureList []string

func (fl FailureList) add(err error) (FailureList, bool) {
	msg := exception.ExtractErrorMessage(err)
	for _, existing := range fl {
		if existing == msg {
			return fl, false
		}
	}
	return append(fl, msg), true
}

// JobExecution is a single run of a job.
type JobExecution struct {
	ID               string
	JobName          string
	Parameters       JobParameters
	StartTime        time.Time
	EndTime          *time.Time
	Status           JobStatus
	ExitStatus       ExitStatus
	Failures         FailureList
	CreateTime       time.Time
	LastUpdated      time.Time
	StepExecutions   []*StepExecution
	ExecutionContext ExecutionContext
	CurrentStepName  string
	CancelFunc       context.CancelFunc
}

// NewJobExecution creates a JobExecution in STARTING state.
func NewJobExecution(jobName string, params JobParameters) *JobExecution {
	now := time.Now()
	return &JobExecution{
		ID:               NewID(),
		JobName:          jobName,
		Parameters:       params,
		StartTime:        now,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		CreateTime:       now,
		LastUpdated:      now,
		Failures:         make(FailureList, 0),
		StepExecutions:   make([]*StepExecution, 0),
		ExecutionContext: NewExecutionContext(),
	}
}

// TransitionTo changes the status if the transition is valid.
func (je *JobExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidTransition(je.Status, newStatus) {
		return fmt.Errorf("JobExecution (ID: %s): invalid state transition: %s -> %s", je.ID, je.Status, newStatus)
	}
	je.Status = newStatus
	je.LastUpdated = time.Now()
	return nil
}

func (je *JobExecution) forceStatus(status JobStatus) {
	if err := je.TransitionTo(status); err != nil {
		logger.Warnf("Could not update JobExecution status: %v", err)
		je.Status = status
	}
}

func (je *JobExecution) finish(status JobStatus) {
	je.forceStatus(status)
	je.ExitStatus = status.ToExitStatus()
	now := time.Now()
	je.EndTime = &now
	je.LastUpdated = now
}

// MarkAsStarted updates the status to STARTED and resets the start time.
func (je *JobExecution) MarkAsStarted() {
	je.forceStatus(BatchStatusStarted)
	je.StartTime = time.Now()
}

// MarkAsCompleted updates the status to COMPLETED.
func (je *JobExecution) MarkAsCompleted() {
	je.finish(BatchStatusCompleted)
}

// MarkAsFailed updates the status to FAILED and records err.
func (je *JobExecution) MarkAsFailed(err error) {
	je.finish(BatchStatusFailed)
	je.AddFailureException(err)
}

// MarkAsStopped updates the status to STOPPED.
func (je *JobExecution) MarkAsStopped() {
	je.finish(BatchStatusStopped)
}

// AddFailureException records err once.
func (je *JobExecution) AddFailureException(err error) {
	if err == nil {
		return
	}
	var added bool
	if je.Failures, added = je.Failures.add(err); added {
		je.LastUpdated = time.Now()
	}
}

// AddStepExecution attaches a StepExecution.
func (je *JobExecution) AddStepExecution(se *StepExecution) {
	je.StepExecutions = append(je.StepExecutions, se)
	je.CurrentStepName = se.StepName
}

// Duration returns the elapsed run time, or zero if not finished.
func (je *JobExecution) Duration() time.Duration {
	if je.EndTime == nil {
		return 0
	}
	return je.EndTime.Sub(je.StartTime)
}

// StepExecution is a single run of a step inside a JobExecution.
type StepExecution struct {
	ID               string
	StepName         string
	JobExecution     *JobExecution
	JobExecutionID   string
	StartTime        time.Time
	EndTime          *time.Time
	Status           JobStatus
	ExitStatus       ExitStatus
	Failures         FailureList
	ReadCount        int
	WriteCount       int
	FilterCount      int
	SkipReadCount    int
	ExecutionContext ExecutionContext
	LastUpdated      time.Time
}

// NewStepExecution creates a StepExecution in STARTING state and attaches it to jobExecution.
func NewStepExecution(jobExecution *JobExecution, stepName string) *StepExecution {
	now := time.Now()
	se := &StepExecution{
		ID:               NewID(),
		StepName:         stepName,
		JobExecution:     jobExecution,
		JobExecutionID:   jobExecution.ID,
		StartTime:        now,
		Status:           BatchStatusStarting,
		ExitStatus:       ExitStatusUnknown,
		Failures:         make(FailureList, 0),
		ExecutionContext: NewExecutionContext(),
		LastUpdated:      now,
	}
	jobExecution.AddStepExecution(se)
	return se
}

// TransitionTo changes the status if the transition is valid.
func (se *StepExecution) TransitionTo(newStatus JobStatus) error {
	if !isValidTransition(se.Status, newStatus) {
		return fmt.Errorf("StepExecution (ID: %s): invalid state transition: %s -> %s", se.ID, se.Status, newStatus)
	}
	se.Status = newStatus
	se.LastUpdated = time.Now()
	return nil
}

func (se *StepExecution) forceStatus(status JobStatus) {
	if err := se.TransitionTo(status); err != nil {
		logger.Warnf("Could not update StepExecution status: %v", err)
		se.Status = status
	}
}

func (se *StepExecution) finish(status JobStatus) {
	se.forceStatus(status)
	se.ExitStatus = status.ToExitStatus()
	now := time.Now()
	se.EndTime = &now
	se.LastUpdated = now
}

// MarkAsStarted updates the status to STARTED.
func (se *StepExecution) MarkAsStarted() {
	se.forceStatus(BatchStatusStarted)
	se.StartTime = time.Now()
}

// MarkAsCompleted updates the status to COMPLETED.
func (se *StepExecution) MarkAsCompleted() {
	se.finish(BatchStatusCompleted)
}

// MarkAsFailed updates the status to FAILED and records err.
func (se *StepExecution) MarkAsFailed(err error) {
	se.finish(BatchStatusFailed)
	se.AddFailureException(err)
}

// MarkAsStopped updates the status to STOPPED.
func (se *StepExecution) MarkAsStopped() {
	se.finish(BatchStatusStopped)
}

// AddFailureException records err once.
func (se *StepExecution) AddFailureException(err error) {
	if err == nil {
		return
	}
	var added bool
	if se.Failures, added = se.Failures.add(err); added {
		se.LastUpdated = time.Now()
	}
}
