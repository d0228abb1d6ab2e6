package forecast

// Regressor is an opaque trained model mapping one feature vector to a
// scalar. Backends are loaded from artifacts at startup and are read-only for
// the process lifetime.
type Regressor interface {
	Predict(features []float64) (float64, error)
}

// SequenceRegressor evaluates a batch of feature windows in one call. The
// angle search depends on batched evaluation: all 91 candidate windows go to
// the model together rather than as 91 separate calls.
type SequenceRegressor interface {
	PredictSequence(windows [][][]float64) ([]float64, error)
}

// Short-horizon feature names, in the order the sequence model's
// normalization parameters were fitted.
const (
	FeatureIllumination = "illumination"
	FeatureTemperature  = "temperature"
	FeatureHumidity     = "humidity"
	FeatureTiltAngle    = "tilt_angle"
	FeatureVoltage      = "voltage"
	FeatureCurrent      = "current"
)

// SequenceFeatureOrder is the contract between ingestion and the sequence
// model; it must match the order used when the model's scaler was fitted.
var SequenceFeatureOrder = []string{
	FeatureIllumination,
	FeatureTemperature,
	FeatureHumidity,
	FeatureTiltAngle,
	FeatureVoltage,
	FeatureCurrent,
}

// DailyFeatureOrder is the per-day aggregate feature set of the daily model.
var DailyFeatureOrder = []string{
	"avg_illumination", "max_illumination",
	"avg_temperature", "max_temperature",
	"avg_humidity",
	"avg_angle", "std_angle",
	"mean_voltage", "max_voltage",
	"sum_current", "mean_current",
	"samples",
}
