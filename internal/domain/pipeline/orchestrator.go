package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	"github.com/praju435/ml-based-solar-tracking-system/pkg/metrics"
	"github.com/praju435/ml-based-solar-tracking-system/pkg/util"
)

// Stage names of the per-run state machine.
type Stage string

const (
	StageFetchWindow      Stage = "FETCH_WINDOW"
	StagePredictShortTerm Stage = "PREDICT_SHORT_TERM"
	StageActuate          Stage = "ACTUATE"
	StageForecastDaily    Stage = "FORECAST_DAILY"
	StagePersist          Stage = "PERSIST"
	StageDone             Stage = "DONE"
	StageFailed           Stage = "FAILED"
)

// Outcome classifies how a run ended.
type Outcome string

const (
	// OutcomeDone is a completed run with a persisted record.
	OutcomeDone Outcome = "done"
	// OutcomeSkipped means the window was too short; not an error.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed is a terminal stage failure. It is logged, never
	// surfaced to the ingestion caller.
	OutcomeFailed Outcome = "failed"
)

// RunResult reports a single pipeline run for logging and tests.
type RunResult struct {
	RunID    string
	DeviceID string
	Outcome  Outcome
	Stage    Stage
	Degraded bool
	Record   *forecast.PredictionRecord
	Err      error
}

// Config carries the orchestrator's runtime knobs.
type Config struct {
	WindowLimit int
	MinWindow   int
	Horizon     int
	ModelTag    string
	Confidence  float64
}

// Orchestrator sequences one pipeline run per ingested sample:
// FETCH_WINDOW, PREDICT_SHORT_TERM, ACTUATE, FORECAST_DAILY, PERSIST. Any
// stage failure ends the run; actuation is best-effort and never fatal.
type Orchestrator struct {
	cfg       Config
	store     Store
	buffer    *telemetry.SequenceBuffer
	shortTerm *forecast.ShortTermPredictor
	daily     *forecast.DailyForecaster
	actuator  AngleCommander
	logger    *slog.Logger
	now       func() time.Time
	tally     metrics.RunTally

	// Latest records kept in-process so forecast queries still answer when
	// the remote store is unreachable.
	mu     sync.RWMutex
	latest map[string]forecast.PredictionRecord
}

// NewOrchestrator wires the pipeline stages.
func NewOrchestrator(cfg Config, store Store, buffer *telemetry.SequenceBuffer, shortTerm *forecast.ShortTermPredictor, daily *forecast.DailyForecaster, actuator AngleCommander, logger *slog.Logger) *Orchestrator {
	if cfg.WindowLimit <= 0 {
		cfg.WindowLimit = 24
	}
	if cfg.MinWindow <= 0 {
		cfg.MinWindow = 5
	}
	if cfg.Horizon <= 0 {
		cfg.Horizon = 7
	}
	if cfg.ModelTag == "" {
		cfg.ModelTag = "seq_daily_v1"
	}
	if cfg.Confidence <= 0 {
		cfg.Confidence = 0.85
	}
	return &Orchestrator{
		cfg:       cfg,
		store:     store,
		buffer:    buffer,
		shortTerm: shortTerm,
		daily:     daily,
		actuator:  actuator,
		logger:    logger.With("component", "pipeline.orchestrator"),
		now:       util.NowUTC,
		latest:    make(map[string]forecast.PredictionRecord),
	}
}

// Run executes one pipeline pass for a device. It never panics outward and
// never returns an error to its caller; the result carries the outcome.
func (o *Orchestrator) Run(ctx context.Context, deviceID string) RunResult {
	result := RunResult{RunID: uuid.NewString(), DeviceID: deviceID, Stage: StageFetchWindow}

	samples, degraded := o.fetchWindow(ctx, deviceID)
	result.Degraded = degraded
	if degraded {
		o.tally.AddDegraded()
	}
	if len(samples) < o.cfg.MinWindow {
		result.Outcome = OutcomeSkipped
		o.tally.AddSkipped()
		o.logger.Info("pipeline skipped, not enough data",
			"run", result.RunID, "device", deviceID, "samples", len(samples), "min", o.cfg.MinWindow)
		return result
	}

	result.Stage = StagePredictShortTerm
	shortTerm, err := o.shortTerm.Run(samples)
	if err != nil {
		return o.fail(result, err)
	}

	result.Stage = StageActuate
	if o.actuator != nil {
		if err := o.actuator.SendAngle(ctx, deviceID, float64(shortTerm.RecommendedAngle), o.cfg.Confidence); err != nil {
			o.logger.Warn("actuator send failed", "device", deviceID, "error", err)
		}
	}

	result.Stage = StageForecastDaily
	daily, err := o.daily.Forecast(samples, o.cfg.Horizon)
	if err != nil {
		return o.fail(result, err)
	}

	record := forecast.PredictionRecord{
		Timestamp:     o.now(),
		DeviceID:      deviceID,
		ModelTag:      o.cfg.ModelTag,
		ShortTerm:     shortTerm,
		DailyForecast: daily,
	}

	result.Stage = StagePersist
	o.rememberLatest(record)
	if err := o.store.SavePrediction(ctx, record); err != nil {
		result.Degraded = true
		o.tally.AddDegraded()
		o.logger.Warn("prediction persist failed, keeping in-memory only",
			"device", deviceID, "error", err)
	}

	result.Stage = StageDone
	result.Outcome = OutcomeDone
	o.tally.AddDone()
	result.Record = &record
	o.logger.Info("pipeline done",
		"run", result.RunID,
		"device", deviceID,
		"predicted_voltage", shortTerm.PredictedVoltage,
		"recommended_angle", shortTerm.RecommendedAngle,
		"horizon", len(daily),
		"degraded", result.Degraded)
	return result
}

// fetchWindow reads the recent window from the store, falling back to the
// in-memory buffer when the store is unreachable.
func (o *Orchestrator) fetchWindow(ctx context.Context, deviceID string) ([]telemetry.Sample, bool) {
	samples, err := o.store.RecentSamples(ctx, deviceID, o.cfg.WindowLimit)
	if err != nil {
		o.logger.Warn("store window read failed, using in-memory buffer",
			"device", deviceID, "error", err)
		return o.buffer.Snapshot(deviceID), true
	}
	return samples, false
}

func (o *Orchestrator) fail(result RunResult, err error) RunResult {
	result.Outcome = OutcomeFailed
	result.Err = err
	o.tally.AddFailed()
	o.logger.Error("pipeline failed", "run", result.RunID, "device", result.DeviceID, "stage", string(result.Stage), "error", err)
	result.Stage = StageFailed
	return result
}

func (o *Orchestrator) rememberLatest(record forecast.PredictionRecord) {
	o.mu.Lock()
	o.latest[record.DeviceID] = record
	o.mu.Unlock()
}

// Runs reports the run outcome counters accumulated since startup.
func (o *Orchestrator) Runs() metrics.RunCounts {
	return o.tally.Snapshot()
}

// CachedPrediction returns the in-process copy of the device's latest record.
func (o *Orchestrator) CachedPrediction(deviceID string) (forecast.PredictionRecord, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	record, ok := o.latest[deviceID]
	return record, ok
}
