package metrics

import (
	"go.uber.org/fx"
)

// RecorderGroup is the fx value group that backends contribute their recorders to.
const RecorderGroup = "metricRecorders"

// RecorderParams collects every recorder contributed to RecorderGroup.
type RecorderParams struct {
	fx.In
	Recorders []MetricRecorder `group:"metricRecorders"`
}

// NewMetricRecorder combines the contributed recorders. With none it is a no-op.
func NewMetricRecorder(p RecorderParams) MetricRecorder {
	return NewCompositeRecorder(p.Recorders...)
}

// Module provides the MetricRecorder built from RecorderGroup.
// The Tracer is provided by the infrastructure module.
var Module = fx.Options(
	fx.Provide(NewMetricRecorder),
)
