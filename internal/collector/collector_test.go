package collector

import (
	"context"
	"errors"
	"math/rand"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/tigerroll/weather-etl/internal/domain/weather"
	"github.com/tigerroll/weather-etl/internal/weather"
	metrics "github.com/tigerroll/weather-etl/pkg/batch/core/metrics"
)

type fakeFetcher struct {
	missing   map[string]int
	malformed map[string]bool
	delay     func() time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32
}

func (f *fakeFetcher) Fetch(ctx context.Context, location, credential string) (weather.FetchResult, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay != nil {
		select {
		case <-time.After(f.delay()):
		case <-ctx.Done():
			return weather.FetchResult{}, domain.NewTransportError(location, ctx.Err())
		}
	}
	if status, ok := f.missing[location]; ok {
		return weather.NotFound(status), nil
	}
	if f.malformed[location] {
		return weather.FetchResult{}, domain.NewMalformedResponseError(location, errors.New("missing main"))
	}
	return weather.Ok(domain.WeatherRecord{LocationName: location, TemperatureCelsius: "28.5"}), nil
}

type countingRecorder struct {
	metrics.NoOpMetricRecorder
	mu      sync.Mutex
	reads   int
	skips   map[string]int
	timings int
}

func (r *countingRecorder) RecordItemRead(ctx context.Context, stepName string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reads++
}

func (r *countingRecorder) RecordItemSkip(ctx context.Context, stepName, reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.skips == nil {
		r.skips = map[string]int{}
	}
	r.skips[reason]++
}

func (r *countingRecorder) RecordDuration(ctx context.Context, name string, d time.Duration, tags map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timings++
}

func names(records []domain.WeatherRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.LocationName
	}
	return out
}

func TestCollect_PreservesOrderAndDropsFailures(t *testing.T) {
	fetcher := &fakeFetcher{
		missing: map[string]int{"Atlantis": http.StatusNotFound},
		delay:   func() time.Duration { return time.Duration(rand.Intn(5)) * time.Millisecond },
	}
	recorder := &countingRecorder{}
	c := NewCollector(fetcher, 4, recorder, nil)

	records, summary, err := c.Collect(context.Background(), []string{"Mumbai", "Atlantis", "Pune"}, "k")

	require.NoError(t, err)
	assert.Equal(t, []string{"Mumbai", "Pune"}, names(records))
	assert.Equal(t, Summary{Requested: 3, Collected: 2, NotFound: 1}, summary)
	assert.Equal(t, 1, summary.Skipped())
	assert.Equal(t, 2, recorder.reads)
	assert.Equal(t, map[string]int{ReasonNotFound: 1}, recorder.skips)
	assert.Equal(t, 3, recorder.timings)
}

func TestCollect_OrderUnderConcurrency(t *testing.T) {
	locations := []string{
		"Mumbai", "Pune", "Nagpur", "Thane", "Nashik", "Aurangabad", "Solapur", "Kolhapur",
		"Amravati", "Jalgaon", "Akola", "Latur", "Dhule", "Ahmednagar", "Chandrapur",
	}
	fetcher := &fakeFetcher{
		malformed: map[string]bool{"Thane": true},
		missing:   map[string]int{"Latur": http.StatusInternalServerError},
		delay:     func() time.Duration { return time.Duration(rand.Intn(10)) * time.Millisecond },
	}

	records, summary, err := NewCollector(fetcher, 3, nil, nil).Collect(context.Background(), locations, "k")

	require.NoError(t, err)
	want := make([]string, 0, len(locations))
	for _, l := range locations {
		if l != "Thane" && l != "Latur" {
			want = append(want, l)
		}
	}
	assert.Equal(t, want, names(records))
	assert.Equal(t, 1, summary.Malformed)
	assert.Equal(t, 1, summary.NotFound)
	assert.LessOrEqual(t, fetcher.peak.Load(), int32(3))
}

func TestCollect_AllFail(t *testing.T) {
	fetcher := &fakeFetcher{missing: map[string]int{"A": 404, "B": 401}}

	records, summary, err := NewCollector(fetcher, 2, nil, nil).Collect(context.Background(), []string{"A", "B"}, "k")

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NotNil(t, records)
	assert.Equal(t, 2, summary.Skipped())
}

func TestCollect_Cancelled(t *testing.T) {
	fetcher := &fakeFetcher{delay: func() time.Duration { return time.Second }}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	records, _, err := NewCollector(fetcher, 2, nil, nil).Collect(ctx, []string{"A", "B", "C", "D"}, "k")

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Nil(t, records)
}
