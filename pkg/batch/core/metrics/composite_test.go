package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

type countingRecorder struct {
	NoOpMetricRecorder
	reads, skips int
	written      int
}

func (c *countingRecorder) RecordItemRead(ctx context.Context, stepName string) { c.reads++ }

func (c *countingRecorder) RecordItemSkip(ctx context.Context, stepName string, reason string) {
	c.skips++
}

func (c *countingRecorder) RecordItemWrite(ctx context.Context, stepName string, count int) {
	c.written += count
}

func TestCompositeRecorder_FansOut(t *testing.T) {
	a, b := &countingRecorder{}, &countingRecorder{}
	rec := NewCompositeRecorder(a, nil, b)
	ctx := context.Background()

	rec.RecordItemRead(ctx, "weatherETLStep")
	rec.RecordItemSkip(ctx, "weatherETLStep", "not_found")
	rec.RecordItemWrite(ctx, "weatherETLStep", 29)
	rec.RecordDuration(ctx, "weather_fetch", time.Second, nil)
	rec.RecordJobStart(ctx, model.NewJobExecution("job", model.NewJobParameters()))

	for _, r := range []*countingRecorder{a, b} {
		assert.Equal(t, 1, r.reads)
		assert.Equal(t, 1, r.skips)
		assert.Equal(t, 29, r.written)
	}
}

func TestNewCompositeRecorder_Degenerate(t *testing.T) {
	assert.IsType(t, &NoOpMetricRecorder{}, NewCompositeRecorder())
	single := &countingRecorder{}
	assert.Same(t, single, NewCompositeRecorder(nil, single))
	assert.IsType(t, &NoOpMetricRecorder{}, NewMetricRecorder(RecorderParams{}))
}
