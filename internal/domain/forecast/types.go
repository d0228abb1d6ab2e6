package forecast

import "time"

// ForecastPoint is one day of the recursive daily forecast.
type ForecastPoint struct {
	Day              int     `json:"day"`
	PredictedVoltage float64 `json:"predicted_voltage"`
}

// DailyForecast is an ordered sequence of H forecast points, day 1..H.
type DailyForecast []ForecastPoint

// ShortTermResult bundles the next-step voltage estimate with the angle that
// maximizes it.
type ShortTermResult struct {
	PredictedVoltage          float64 `json:"predicted_voltage"`
	RecommendedAngle          int     `json:"recommended_angle"`
	VoltageAtRecommendedAngle float64 `json:"pred_voltage_at_recommended_angle"`
}

// PredictionRecord is the aggregate written once per pipeline run. It
// overwrites the device's previous latest record; the store keeps no history
// beyond that.
type PredictionRecord struct {
	Timestamp     time.Time       `json:"ts"`
	DeviceID      string          `json:"device_id"`
	ModelTag      string          `json:"model"`
	ShortTerm     ShortTermResult `json:"short_term"`
	DailyForecast DailyForecast   `json:"daily_forecast"`
}

// Truncate returns at most n leading points of the forecast.
func (f DailyForecast) Truncate(n int) DailyForecast {
	if n < 0 {
		n = 0
	}
	if n > len(f) {
		n = len(f)
	}
	return f[:n]
}
