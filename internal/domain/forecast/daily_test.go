package forecast

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

// fakeDailyModel echoes selected input features so tests can observe what the
// forecaster fed it.
type fakeDailyModel struct {
	fn    func(features []float64) float64
	calls int
}

func (m *fakeDailyModel) Predict(features []float64) (float64, error) {
	m.calls++
	return m.fn(features), nil
}

func newTestForecaster(t *testing.T, model Regressor) *DailyForecaster {
	t.Helper()
	norm, err := NewNormalizer(DailyFeatureOrder, identityStats(DailyFeatureOrder))
	require.NoError(t, err)
	return NewDailyForecaster(model, norm)
}

func dailyFeatureIndex(t *testing.T, name string) int {
	t.Helper()
	for i, n := range DailyFeatureOrder {
		if n == name {
			return i
		}
	}
	t.Fatalf("unknown daily feature %q", name)
	return -1
}

func TestDailyForecastProducesHorizonPointsInOrder(t *testing.T) {
	model := &fakeDailyModel{fn: func([]float64) float64 { return 12.5 }}
	f := newTestForecaster(t, model)

	forecast, err := f.Forecast([]telemetry.Sample{sampleAt(12, 30)}, 7)
	require.NoError(t, err)
	require.Len(t, forecast, 7)
	for i, point := range forecast {
		require.Equal(t, i+1, point.Day)
		require.Equal(t, 12.5, point.PredictedVoltage)
	}
	require.Equal(t, 7, model.calls)
}

func TestDailyForecastFeedsPredictionBack(t *testing.T) {
	meanIdx := dailyFeatureIndex(t, "mean_voltage")
	maxIdx := dailyFeatureIndex(t, "max_voltage")
	model := &fakeDailyModel{fn: func(features []float64) float64 {
		require.Equal(t, features[meanIdx], features[maxIdx])
		return features[meanIdx] + 1
	}}
	f := newTestForecaster(t, model)

	forecast, err := f.Forecast([]telemetry.Sample{sampleAt(12, 30)}, 3)
	require.NoError(t, err)
	require.Equal(t, DailyForecast{
		{Day: 1, PredictedVoltage: 13},
		{Day: 2, PredictedVoltage: 14},
		{Day: 3, PredictedVoltage: 15},
	}, forecast)
}

func TestDailyForecastIsDeterministicForSameWindow(t *testing.T) {
	model := &fakeDailyModel{fn: func(features []float64) float64 {
		var sum float64
		for _, v := range features {
			sum += v
		}
		return sum / 100
	}}
	f := newTestForecaster(t, model)
	window := []telemetry.Sample{sampleAt(11.5, 28), sampleAt(12.5, 33)}

	first, err := f.Forecast(window, 5)
	require.NoError(t, err)
	second, err := f.Forecast(window, 5)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestDailyForecastEmptyWindowUsesDefaults(t *testing.T) {
	meanIdx := dailyFeatureIndex(t, "mean_voltage")
	samplesIdx := dailyFeatureIndex(t, "samples")
	model := &fakeDailyModel{fn: func(features []float64) float64 {
		require.Equal(t, 0.0, features[samplesIdx])
		return features[meanIdx]
	}}
	f := newTestForecaster(t, model)

	forecast, err := f.Forecast(nil, 1)
	require.NoError(t, err)
	require.Equal(t, float64(defaultVoltage), forecast[0].PredictedVoltage)
}

func TestDailyForecastRejectsNonPositiveHorizon(t *testing.T) {
	f := newTestForecaster(t, &fakeDailyModel{fn: func([]float64) float64 { return 0 }})

	for _, horizon := range []int{0, -3} {
		_, err := f.Forecast([]telemetry.Sample{sampleAt(12, 30)}, horizon)
		require.Error(t, err)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidRequest))
	}
}
