package telemetrystore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
)

func storedSample(voltage float64) telemetry.Sample {
	return telemetry.Sample{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		DeviceID:  "panel-01",
		Voltage:   voltage,
	}
}

func TestMemoryStoreCapsRawLog(t *testing.T) {
	store := NewMemoryStore(3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, store.AppendSample(ctx, storedSample(float64(i))))
	}

	samples, err := store.RecentSamples(ctx, "panel-01", 0)
	require.NoError(t, err)
	require.Len(t, samples, 3)
	require.Equal(t, 3.0, samples[0].Voltage)
	require.Equal(t, 5.0, samples[2].Voltage)
}

func TestMemoryStoreRecentSamplesLimit(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	for i := 1; i <= 10; i++ {
		require.NoError(t, store.AppendSample(ctx, storedSample(float64(i))))
	}

	samples, err := store.RecentSamples(ctx, "panel-01", 4)
	require.NoError(t, err)
	require.Len(t, samples, 4)
	require.Equal(t, 7.0, samples[0].Voltage)
}

func TestMemoryStoreLatestSampleOverwrites(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	require.NoError(t, store.SaveLatestSample(ctx, storedSample(11)))
	require.NoError(t, store.SaveLatestSample(ctx, storedSample(12)))

	latest, ok, err := store.LatestSample(ctx, "panel-01")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 12.0, latest.Voltage)

	_, ok, err = store.LatestSample(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestMemoryStorePredictionRoundTrip(t *testing.T) {
	store := NewMemoryStore(100)
	ctx := context.Background()

	record := forecast.PredictionRecord{
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		DeviceID:  "panel-01",
		ModelTag:  "seq_daily_v1",
		ShortTerm: forecast.ShortTermResult{PredictedVoltage: 12.5, RecommendedAngle: 35},
		DailyForecast: forecast.DailyForecast{
			{Day: 1, PredictedVoltage: 12.6},
		},
	}
	require.NoError(t, store.SavePrediction(ctx, record))

	got, ok, err := store.LatestPrediction(ctx, "panel-01")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, record, got)

	_, ok, err = store.LatestPrediction(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, ok)
}
