package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
	"github.com/praju435/ml-based-solar-tracking-system/pkg/logger"
)

type fakeStore struct {
	samples       map[string][]telemetry.Sample
	predictions   map[string]forecast.PredictionRecord
	readFails     bool
	writeFails    bool
	appendedCount int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		samples:     make(map[string][]telemetry.Sample),
		predictions: make(map[string]forecast.PredictionRecord),
	}
}

func (s *fakeStore) unavailable() error {
	return apperrors.Wrap(apperrors.CodeStoreUnavailable, "store offline", nil)
}

func (s *fakeStore) AppendSample(_ context.Context, sample telemetry.Sample) error {
	if s.writeFails {
		return s.unavailable()
	}
	s.appendedCount++
	s.samples[sample.DeviceID] = append(s.samples[sample.DeviceID], sample)
	return nil
}

func (s *fakeStore) SaveLatestSample(_ context.Context, sample telemetry.Sample) error {
	if s.writeFails {
		return s.unavailable()
	}
	return nil
}

func (s *fakeStore) LatestSample(_ context.Context, deviceID string) (telemetry.Sample, bool, error) {
	if s.readFails {
		return telemetry.Sample{}, false, s.unavailable()
	}
	window := s.samples[deviceID]
	if len(window) == 0 {
		return telemetry.Sample{}, false, nil
	}
	return window[len(window)-1], true, nil
}

func (s *fakeStore) RecentSamples(_ context.Context, deviceID string, limit int) ([]telemetry.Sample, error) {
	if s.readFails {
		return nil, s.unavailable()
	}
	window := s.samples[deviceID]
	if limit > 0 && len(window) > limit {
		window = window[len(window)-limit:]
	}
	return window, nil
}

func (s *fakeStore) SavePrediction(_ context.Context, record forecast.PredictionRecord) error {
	if s.writeFails {
		return s.unavailable()
	}
	s.predictions[record.DeviceID] = record
	return nil
}

func (s *fakeStore) LatestPrediction(_ context.Context, deviceID string) (forecast.PredictionRecord, bool, error) {
	if s.readFails {
		return forecast.PredictionRecord{}, false, s.unavailable()
	}
	record, ok := s.predictions[deviceID]
	return record, ok, nil
}

func (s *fakeStore) Ping(_ context.Context) error {
	if s.readFails {
		return s.unavailable()
	}
	return nil
}

type fakeActuator struct {
	calls []float64
	err   error
}

func (a *fakeActuator) SendAngle(_ context.Context, _ string, angle, _ float64) error {
	a.calls = append(a.calls, angle)
	return a.err
}

type constSeqModel struct{ v float64 }

func (m constSeqModel) PredictSequence(windows [][][]float64) ([]float64, error) {
	out := make([]float64, len(windows))
	for i := range out {
		out[i] = m.v
	}
	return out, nil
}

type constDailyModel struct{ v float64 }

func (m constDailyModel) Predict([]float64) (float64, error) { return m.v, nil }

func identityStats(order []string) map[string]forecast.Stats {
	params := make(map[string]forecast.Stats, len(order))
	for _, name := range order {
		params[name] = forecast.Stats{Mean: 0, Scale: 1}
	}
	return params
}

func testModels(t *testing.T) (*forecast.ShortTermPredictor, *forecast.DailyForecaster) {
	t.Helper()
	seqNorm, err := forecast.NewNormalizer(forecast.SequenceFeatureOrder, identityStats(forecast.SequenceFeatureOrder))
	require.NoError(t, err)
	shortTerm, err := forecast.NewShortTermPredictor(constSeqModel{v: 12.5}, seqNorm)
	require.NoError(t, err)

	dailyNorm, err := forecast.NewNormalizer(forecast.DailyFeatureOrder, identityStats(forecast.DailyFeatureOrder))
	require.NoError(t, err)
	daily := forecast.NewDailyForecaster(constDailyModel{v: 12.8}, dailyNorm)
	return shortTerm, daily
}

func testSample(deviceID string, voltage float64) telemetry.Sample {
	return telemetry.Sample{
		Timestamp:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		DeviceID:     deviceID,
		Voltage:      voltage,
		Illumination: 650,
		Temperature:  30,
		Humidity:     48,
		TiltAngle:    32,
		Current:      1.0,
	}
}

func newTestOrchestrator(t *testing.T, store Store, actuator AngleCommander) (*Orchestrator, *telemetry.SequenceBuffer) {
	t.Helper()
	shortTerm, daily := testModels(t)
	buffer := telemetry.NewSequenceBuffer(24)
	orch := NewOrchestrator(Config{MinWindow: 5, Horizon: 7, ModelTag: "seq_daily_v1", Confidence: 0.85},
		store, buffer, shortTerm, daily, actuator, logger.New())
	return orch, buffer
}

func TestRunSkipsWhenWindowTooShort(t *testing.T) {
	store := newFakeStore()
	actuator := &fakeActuator{}
	orch, _ := newTestOrchestrator(t, store, actuator)

	for i := 0; i < 4; i++ {
		require.NoError(t, store.AppendSample(context.Background(), testSample("panel-01", 12)))
	}

	result := orch.Run(context.Background(), "panel-01")
	require.Equal(t, OutcomeSkipped, result.Outcome)
	require.Empty(t, actuator.calls)
	require.Empty(t, store.predictions)
}

func TestRunCompletesAndPersistsRecord(t *testing.T) {
	store := newFakeStore()
	actuator := &fakeActuator{}
	orch, _ := newTestOrchestrator(t, store, actuator)

	for i := 0; i < 6; i++ {
		require.NoError(t, store.AppendSample(context.Background(), testSample("panel-01", 12)))
	}

	result := orch.Run(context.Background(), "panel-01")
	require.Equal(t, OutcomeDone, result.Outcome)
	require.Equal(t, StageDone, result.Stage)
	require.False(t, result.Degraded)
	require.NotEmpty(t, result.RunID)

	record, ok := store.predictions["panel-01"]
	require.True(t, ok)
	require.Equal(t, "seq_daily_v1", record.ModelTag)
	require.Equal(t, 12.5, record.ShortTerm.PredictedVoltage)
	require.Len(t, record.DailyForecast, 7)
	require.Len(t, actuator.calls, 1)

	counts := orch.Runs()
	require.Equal(t, int64(1), counts.Done)
}

func TestRunActuatorFailureIsNotFatal(t *testing.T) {
	store := newFakeStore()
	actuator := &fakeActuator{err: apperrors.Wrap(apperrors.CodeActuatorUnreachable, "device offline", nil)}
	orch, _ := newTestOrchestrator(t, store, actuator)

	for i := 0; i < 6; i++ {
		require.NoError(t, store.AppendSample(context.Background(), testSample("panel-01", 12)))
	}

	result := orch.Run(context.Background(), "panel-01")
	require.Equal(t, OutcomeDone, result.Outcome)
	require.Contains(t, store.predictions, "panel-01")
}

func TestRunDegradesToBufferWhenStoreUnreadable(t *testing.T) {
	store := newFakeStore()
	store.readFails = true
	orch, buffer := newTestOrchestrator(t, store, &fakeActuator{})

	for i := 0; i < 6; i++ {
		buffer.Push("panel-01", testSample("panel-01", 12))
	}

	result := orch.Run(context.Background(), "panel-01")
	require.Equal(t, OutcomeDone, result.Outcome)
	require.True(t, result.Degraded)
}

func TestRunKeepsRecordInMemoryWhenPersistFails(t *testing.T) {
	store := newFakeStore()
	orch, buffer := newTestOrchestrator(t, store, &fakeActuator{})

	for i := 0; i < 6; i++ {
		require.NoError(t, store.AppendSample(context.Background(), testSample("panel-01", 12)))
	}
	store.writeFails = true
	for i := 0; i < 6; i++ {
		buffer.Push("panel-01", testSample("panel-01", 12))
	}

	result := orch.Run(context.Background(), "panel-01")
	require.Equal(t, OutcomeDone, result.Outcome)
	require.True(t, result.Degraded)

	cached, ok := orch.CachedPrediction("panel-01")
	require.True(t, ok)
	require.Equal(t, result.Record.Timestamp, cached.Timestamp)
}
