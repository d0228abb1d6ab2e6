package forecast

import (
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

// Defaults used when a daily snapshot has no observed sample to draw from.
// They mirror the values the daily model was fitted around.
const (
	defaultIllumination = 600
	defaultTemperature  = 30
	defaultMaxTemp      = 32
	defaultHumidity     = 50
	defaultAngle        = 30
	defaultVoltage      = 12
	defaultCurrent      = 1.2
)

// snapshotStdAngle is a fixed constant in the snapshot, not derived from the
// window.
const snapshotStdAngle = 2

// DailyForecaster predicts voltage H days ahead by recursion: each day's
// prediction overwrites the snapshot's mean_voltage and max_voltage before
// the next day is computed, so errors compound additively across the horizon.
// Every other feature stays frozen at its last-observed value.
type DailyForecaster struct {
	model Regressor
	norm  *Normalizer
}

// NewDailyForecaster wires the daily-granularity model with its normalizer.
func NewDailyForecaster(model Regressor, norm *Normalizer) *DailyForecaster {
	return &DailyForecaster{model: model, norm: norm}
}

// Forecast produces exactly horizon points with day indices 1..horizon.
func (f *DailyForecaster) Forecast(samples []telemetry.Sample, horizon int) (DailyForecast, error) {
	if horizon <= 0 {
		return nil, apperrors.Wrap(apperrors.CodeInvalidRequest, "horizon must be positive", nil)
	}

	snapshot := buildSnapshot(samples)
	forecast := make(DailyForecast, 0, horizon)

	for day := 1; day <= horizon; day++ {
		row := make([]float64, len(f.norm.Order()))
		for i, name := range f.norm.Order() {
			row[i] = snapshot[name]
		}
		pred, err := f.model.Predict(f.norm.NormalizeRow(row))
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodePredictorUnavailable, "daily model failed", err)
		}
		forecast = append(forecast, ForecastPoint{Day: day, PredictedVoltage: round3(pred)})

		// Feedback rule: the prediction seeds the next day's input.
		snapshot["mean_voltage"] = pred
		snapshot["max_voltage"] = pred
	}
	return forecast, nil
}

// buildSnapshot aggregates the most recent sample into the daily feature set.
// Aggregate fields collapse to the last observation (avg = max = last); this
// is a deliberate simplification carried over from training.
func buildSnapshot(samples []telemetry.Sample) map[string]float64 {
	if len(samples) == 0 {
		return map[string]float64{
			"avg_illumination": defaultIllumination,
			"max_illumination": defaultIllumination,
			"avg_temperature":  defaultTemperature,
			"max_temperature":  defaultMaxTemp,
			"avg_humidity":     defaultHumidity,
			"avg_angle":        defaultAngle,
			"std_angle":        snapshotStdAngle,
			"mean_voltage":     defaultVoltage,
			"max_voltage":      defaultVoltage,
			"sum_current":      defaultCurrent,
			"mean_current":     defaultCurrent,
			"samples":          0,
		}
	}
	last := samples[len(samples)-1]
	return map[string]float64{
		"avg_illumination": last.Illumination,
		"max_illumination": last.Illumination,
		"avg_temperature":  last.Temperature,
		"max_temperature":  last.Temperature,
		"avg_humidity":     last.Humidity,
		"avg_angle":        last.TiltAngle,
		"std_angle":        snapshotStdAngle,
		"mean_voltage":     last.Voltage,
		"max_voltage":      last.Voltage,
		"sum_current":      last.Current,
		"mean_current":     last.Current,
		"samples":          float64(len(samples)),
	}
}
