package pipeline

import (
	"context"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
)

// Store is the key-path-addressed remote telemetry store. Implementations
// wrap unreachability as store_unavailable; the pipeline then degrades to the
// in-memory buffer instead of failing the run.
type Store interface {
	AppendSample(ctx context.Context, sample telemetry.Sample) error
	SaveLatestSample(ctx context.Context, sample telemetry.Sample) error
	LatestSample(ctx context.Context, deviceID string) (telemetry.Sample, bool, error)
	RecentSamples(ctx context.Context, deviceID string, limit int) ([]telemetry.Sample, error)
	SavePrediction(ctx context.Context, record forecast.PredictionRecord) error
	LatestPrediction(ctx context.Context, deviceID string) (forecast.PredictionRecord, bool, error)
	Ping(ctx context.Context) error
}

// AngleCommander dispatches the recommended tilt to the physical device.
type AngleCommander interface {
	SendAngle(ctx context.Context, deviceID string, angle float64, confidence float64) error
}

// Queue schedules one background pipeline run per ingestion event. Runs for
// the same device are serialized; ingestion never waits for them.
type Queue interface {
	Enqueue(ctx context.Context, deviceID string) error
}
