// Package retry provides the retry policy used around batch-level operations.
package retry

import (
	"context"
	"errors"
	"math"
	"time"

	config "github.com/tigerroll/weather-etl/pkg/batch/core/config"
	"github.com/tigerroll/weather-etl/pkg/batch/support/util/exception"
	logger "github.com/tigerroll/weather-etl/pkg/batch/support/util/logger"
)

// RetryPolicy is an interface that defines retry logic.
type RetryPolicy interface {
	// ShouldRetry determines if a given error is retryable.
	ShouldRetry(err error) bool
	// GetBackoffInterval returns the wait before the attempt following attempt (starting from 1).
	GetBackoffInterval(attempt int) time.Duration
	// GetMaxAttempts returns the total number of attempts, including the first one.
	GetMaxAttempts() int
}

// DefaultRetryPolicyFactory is a factory for creating RetryPolicy.
type DefaultRetryPolicyFactory struct{}

// NewDefaultRetryPolicyFactory creates a new DefaultRetryPolicyFactory.
func NewDefaultRetryPolicyFactory() *DefaultRetryPolicyFactory {
	return &DefaultRetryPolicyFactory{}
}

// Create builds a RetryPolicy from the retry section of the configuration.
func (f *DefaultRetryPolicyFactory) Create(cfg config.RetryConfig) RetryPolicy {
	p := &defaultRetryPolicy{
		maxAttempts:         cfg.MaxAttempts,
		initialInterval:     time.Duration(cfg.InitialInterval) * time.Millisecond,
		maxInterval:         time.Duration(cfg.MaxInterval) * time.Millisecond,
		factor:              cfg.Factor,
		retryableExceptions: cfg.RetryableExceptions,
	}
	if p.maxAttempts < 1 {
		p.maxAttempts = 1
	}
	if p.factor < 1 {
		p.factor = 1
	}
	return p
}

// defaultRetryPolicy retries BatchErrors flagged retryable and errors matching a registered
// type name, with exponential backoff capped at maxInterval.
type defaultRetryPolicy struct {
	maxAttempts         int
	initialInterval     time.Duration
	maxInterval         time.Duration
	factor              float64
	retryableExceptions []string
}

func (p *defaultRetryPolicy) GetMaxAttempts() int {
	return p.maxAttempts
}

func (p *defaultRetryPolicy) ShouldRetry(err error) bool {
	if err == nil {
		return false
	}

	// 1. Check BatchError flag
	if be, ok := exception.AsBatchError(err); ok && be.IsRetryable() {
		return true
	}

	// 2. Match against configured retryable exceptions list
	for _, typeName := range p.retryableExceptions {
		if exception.IsErrorOfType(err, typeName) {
			return true
		}
	}
	return false
}

func (p *defaultRetryPolicy) GetBackoffInterval(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	interval := float64(p.initialInterval) * math.Pow(p.factor, float64(attempt-1))
	if p.maxInterval > 0 && interval > float64(p.maxInterval) {
		return p.maxInterval
	}
	return time.Duration(interval)
}

// Listener is notified before every retry.
type Listener func(ctx context.Context, attempt int, err error)

// Do runs op until it succeeds, fails with a non-retryable error, or the policy's attempts are used up.
// The last error is returned. Waiting between attempts honours ctx cancellation.
func Do(ctx context.Context, policy RetryPolicy, name string, onRetry Listener, op func(ctx context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= policy.GetMaxAttempts() || !policy.ShouldRetry(err) {
			return err
		}

		wait := policy.GetBackoffInterval(attempt)
		logger.Warnf("Retry: '%s' failed on attempt %d/%d, retrying in %s: %v", name, attempt, policy.GetMaxAttempts(), wait, err)
		if onRetry != nil {
			onRetry(ctx, attempt, err)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
	}
}

// Verify interfaces
var _ RetryPolicy = (*defaultRetryPolicy)(nil)
