package incrementer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/weather-etl/pkg/batch/core/domain/model"
)

func TestRunIDIncrementer(t *testing.T) {
	inc := NewRunIDIncrementer("")
	assert.Equal(t, DefaultRunIDKey, inc.Key())

	params := model.NewJobParameters()
	params.Put("region", "us-east4")

	first := inc.GetNext(params)
	id, ok := first.GetInt(DefaultRunIDKey)
	assert.True(t, ok)
	assert.Equal(t, 1, id)
	region, _ := first.GetString("region")
	assert.Equal(t, "us-east4", region)
	_, ok = params.GetInt(DefaultRunIDKey)
	assert.False(t, ok, "input must not be modified")

	second := inc.GetNext(first)
	id, _ = second.GetInt(DefaultRunIDKey)
	assert.Equal(t, 2, id)

	// Parameters read back from JSON carry numbers as float64.
	decoded := model.NewJobParameters()
	decoded.Put(DefaultRunIDKey, float64(41))
	id, _ = inc.GetNext(decoded).GetInt(DefaultRunIDKey)
	assert.Equal(t, 42, id)
}
