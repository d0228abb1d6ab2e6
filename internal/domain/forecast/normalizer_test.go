package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

func identityStats(order []string) map[string]Stats {
	params := make(map[string]Stats, len(order))
	for _, name := range order {
		params[name] = Stats{Mean: 0, Scale: 1}
	}
	return params
}

func sampleAt(voltage, angle float64) telemetry.Sample {
	return telemetry.Sample{
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		DeviceID:     "panel-01",
		Voltage:      voltage,
		Illumination: 700,
		Temperature:  31,
		Humidity:     45,
		TiltAngle:    angle,
		Current:      1.1,
	}
}

func TestNewNormalizerRejectsMissingFeature(t *testing.T) {
	params := identityStats(SequenceFeatureOrder)
	delete(params, FeatureHumidity)

	_, err := NewNormalizer(SequenceFeatureOrder, params)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeFeatureMismatch))
}

func TestNewNormalizerRejectsZeroScale(t *testing.T) {
	params := identityStats(SequenceFeatureOrder)
	params[FeatureVoltage] = Stats{Mean: 12, Scale: 0}

	_, err := NewNormalizer(SequenceFeatureOrder, params)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeFeatureMismatch))
}

func TestNormalizeRowAppliesFittedStats(t *testing.T) {
	params := identityStats(SequenceFeatureOrder)
	params[FeatureVoltage] = Stats{Mean: 10, Scale: 2}
	norm, err := NewNormalizer(SequenceFeatureOrder, params)
	require.NoError(t, err)

	idx, err := norm.Index(FeatureVoltage)
	require.NoError(t, err)

	row := make([]float64, len(SequenceFeatureOrder))
	row[idx] = 14
	scaled := norm.NormalizeRow(row)
	require.Equal(t, 2.0, scaled[idx])

	back, err := norm.Denormalize(FeatureVoltage, scaled[idx])
	require.NoError(t, err)
	require.Equal(t, 14.0, back)
}

func TestBuildWindowPadsByReplicatingEarliestSample(t *testing.T) {
	samples := []telemetry.Sample{sampleAt(11, 20), sampleAt(12, 25)}

	window, err := BuildWindow(samples, 5, SequenceFeatureOrder)
	require.NoError(t, err)
	require.Len(t, window, 5)

	first := featureRow(samples[0], SequenceFeatureOrder)
	for i := 0; i < 3; i++ {
		require.Equal(t, first, window[i], "pad row %d", i)
	}
	require.Equal(t, featureRow(samples[1], SequenceFeatureOrder), window[4])
}

func TestBuildWindowKeepsMostRecentWhenOversized(t *testing.T) {
	samples := make([]telemetry.Sample, 0, 8)
	for i := 0; i < 8; i++ {
		samples = append(samples, sampleAt(float64(10+i), 30))
	}

	window, err := BuildWindow(samples, 5, SequenceFeatureOrder)
	require.NoError(t, err)
	require.Len(t, window, 5)
	require.Equal(t, featureRow(samples[3], SequenceFeatureOrder), window[0])
	require.Equal(t, featureRow(samples[7], SequenceFeatureOrder), window[4])
}

func TestBuildWindowRejectsEmptyInput(t *testing.T) {
	_, err := BuildWindow(nil, 5, SequenceFeatureOrder)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInsufficientData))
}
