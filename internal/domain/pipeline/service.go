package pipeline

import (
	"context"
	"log/slog"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
	"github.com/praju435/ml-based-solar-tracking-system/pkg/metrics"
)

// Service is the application-facing API over the pipeline: ingestion,
// forecast queries, the dashboard aggregate and the synchronous predict call.
type Service struct {
	orch      *Orchestrator
	queue     Queue
	store     Store
	buffer    *telemetry.SequenceBuffer
	shortTerm *forecast.ShortTermPredictor
	daily     *forecast.DailyForecaster
	ensemble  *forecast.Combiner
	logger    *slog.Logger
}

// NewService wires the pipeline service. ensemble may be nil when only the
// primary models are configured.
func NewService(orch *Orchestrator, queue Queue, store Store, buffer *telemetry.SequenceBuffer, shortTerm *forecast.ShortTermPredictor, daily *forecast.DailyForecaster, ensemble *forecast.Combiner, logger *slog.Logger) *Service {
	return &Service{
		orch:      orch,
		queue:     queue,
		store:     store,
		buffer:    buffer,
		shortTerm: shortTerm,
		daily:     daily,
		ensemble:  ensemble,
		logger:    logger.With("component", "pipeline.service"),
	}
}

// Ingest records one sample and schedules a background pipeline run. Store
// and queue failures are logged but never propagated: ingestion always
// acknowledges success to its caller.
func (s *Service) Ingest(ctx context.Context, sample telemetry.Sample) {
	s.buffer.Push(sample.DeviceID, sample)

	if err := s.store.AppendSample(ctx, sample); err != nil {
		s.logger.Warn("raw sample persist failed", "device", sample.DeviceID, "error", err)
	}
	if err := s.store.SaveLatestSample(ctx, sample); err != nil {
		s.logger.Warn("latest sample persist failed", "device", sample.DeviceID, "error", err)
	}

	if err := s.queue.Enqueue(ctx, sample.DeviceID); err != nil {
		s.logger.Warn("pipeline enqueue failed", "device", sample.DeviceID, "error", err)
	}
}

// Forecast returns the most recently persisted daily forecast truncated to
// days, or an empty forecast when none exists yet. A missing record is not an
// error.
func (s *Service) Forecast(ctx context.Context, deviceID string, days int) forecast.DailyForecast {
	record, ok := s.latestPrediction(ctx, deviceID)
	if !ok {
		return forecast.DailyForecast{}
	}
	return record.DailyForecast.Truncate(days)
}

// DashboardData aggregates the latest telemetry and prediction for a device.
type DashboardData struct {
	Telemetry       *telemetry.Sample          `json:"telemetry"`
	TodayVoltage    *float64                   `json:"today_voltage_prediction"`
	TomorrowVoltage *forecast.ForecastPoint    `json:"tomorrow_voltage_prediction"`
	NextSevenDays   forecast.DailyForecast     `json:"next_7_days_prediction"`
	PredictionRaw   *forecast.PredictionRecord `json:"prediction_raw"`
}

// Dashboard builds the aggregate view served to the frontend.
func (s *Service) Dashboard(ctx context.Context, deviceID string) DashboardData {
	data := DashboardData{NextSevenDays: forecast.DailyForecast{}}

	if latest, ok, err := s.store.LatestSample(ctx, deviceID); err == nil && ok {
		data.Telemetry = &latest
	} else if window := s.buffer.Snapshot(deviceID); len(window) > 0 {
		last := window[len(window)-1]
		data.Telemetry = &last
	}

	if record, ok := s.latestPrediction(ctx, deviceID); ok {
		data.PredictionRaw = &record
		v := record.ShortTerm.PredictedVoltage
		data.TodayVoltage = &v
		data.NextSevenDays = record.DailyForecast.Truncate(7)
		if len(record.DailyForecast) > 0 {
			point := record.DailyForecast[0]
			data.TomorrowVoltage = &point
		}
	}
	return data
}

// PredictSync is the alternate synchronous interface: same predict steps as
// the orchestrator, without persistence or actuation side effects. When an
// ensemble is configured its combined result is returned alongside the
// primary models; ensemble failure falls through silently since the primary
// prediction already succeeded.
func (s *Service) PredictSync(ctx context.Context, samples []telemetry.Sample, horizon int) (forecast.ShortTermResult, forecast.DailyForecast, *forecast.EnsembleResult, error) {
	if len(samples) == 0 {
		return forecast.ShortTermResult{}, nil, nil,
			apperrors.Wrap(apperrors.CodeInvalidRequest, "sequence cannot be empty", nil)
	}
	shortTerm, err := s.shortTerm.Run(samples)
	if err != nil {
		return forecast.ShortTermResult{}, nil, nil, err
	}
	daily, err := s.daily.Forecast(samples, horizon)
	if err != nil {
		return forecast.ShortTermResult{}, nil, nil, err
	}

	var combined *forecast.EnsembleResult
	if s.ensemble != nil {
		if result, err := s.ensemble.Combine(samples); err == nil {
			combined = &result
		} else {
			s.logger.Warn("ensemble combine failed", "error", err)
		}
	}
	return shortTerm, daily, combined, nil
}

// Health reports store connectivity, run counters and the devices seen this
// process.
type Health struct {
	Status  string            `json:"status"`
	Store   bool              `json:"store"`
	Devices []string          `json:"devices"`
	Runs    metrics.RunCounts `json:"runs"`
}

// HealthCheck probes the store and lists known devices.
func (s *Service) HealthCheck(ctx context.Context) Health {
	return Health{
		Status:  "ok",
		Store:   s.store.Ping(ctx) == nil,
		Devices: s.buffer.Devices(),
		Runs:    s.orch.Runs(),
	}
}

func (s *Service) latestPrediction(ctx context.Context, deviceID string) (forecast.PredictionRecord, bool) {
	record, ok, err := s.store.LatestPrediction(ctx, deviceID)
	if err == nil && ok {
		return record, true
	}
	if err != nil {
		s.logger.Warn("latest prediction read failed, using in-memory copy", "device", deviceID, "error", err)
	}
	return s.orch.CachedPrediction(deviceID)
}
