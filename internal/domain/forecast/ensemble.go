package forecast

import (
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

// ErrNoPrediction is returned when every configured backend failed. It is a
// distinct outcome from a zero-valued prediction.
var ErrNoPrediction = apperrors.Wrap(apperrors.CodePredictorUnavailable, "no prediction available", nil)

// EnsembleBackend is one independently failing predictor over a device
// window.
type EnsembleBackend interface {
	Name() string
	Predict(samples []telemetry.Sample) (float64, error)
}

// AngleSearcher searches the discrete angle domain for the best tilt.
type AngleSearcher interface {
	RecommendAngle(samples []telemetry.Sample) (int, float64, error)
}

// EnsembleResult aggregates whichever backends succeeded.
type EnsembleResult struct {
	PredictedVoltage float64            `json:"predicted_voltage"`
	RecommendedAngle int                `json:"recommended_angle"`
	Backends         map[string]float64 `json:"backends"`
	Diagnostics      map[string]string  `json:"diagnostics,omitempty"`
}

// Combiner attempts each backend independently and averages the successes.
// A backend failure is recorded in the diagnostics map, never aborting the
// combination.
type Combiner struct {
	backends     []EnsembleBackend
	angler       AngleSearcher
	defaultAngle int
}

// NewCombiner builds a combiner; angler may be nil, in which case the fixed
// default angle is reported.
func NewCombiner(backends []EnsembleBackend, angler AngleSearcher) *Combiner {
	return &Combiner{
		backends:     backends,
		angler:       angler,
		defaultAngle: defaultAngle,
	}
}

// Combine produces the mean of all successful backend predictions plus a
// recommended angle. It returns ErrNoPrediction when no backend succeeded.
func (c *Combiner) Combine(samples []telemetry.Sample) (EnsembleResult, error) {
	result := EnsembleResult{
		Backends:    make(map[string]float64),
		Diagnostics: make(map[string]string),
	}

	var sum float64
	for _, backend := range c.backends {
		pred, err := backend.Predict(samples)
		if err != nil {
			result.Diagnostics[backend.Name()] = err.Error()
			continue
		}
		result.Backends[backend.Name()] = round3(pred)
		sum += pred
	}
	if len(result.Backends) == 0 {
		return EnsembleResult{}, ErrNoPrediction
	}
	result.PredictedVoltage = round3(sum / float64(len(result.Backends)))

	result.RecommendedAngle = c.defaultAngle
	if c.angler != nil {
		if angle, _, err := c.angler.RecommendAngle(samples); err == nil {
			result.RecommendedAngle = angle
		} else {
			result.Diagnostics["angle_search"] = err.Error()
		}
	}
	return result, nil
}

// SequenceBackend exposes the short-horizon sequence predictor to the
// ensemble. It refuses windows shorter than its required length instead of
// padding, matching how the model was evaluated offline.
type SequenceBackend struct {
	predictor *ShortTermPredictor
	minLen    int
}

// NewSequenceBackend wraps the sequence predictor for ensemble use.
func NewSequenceBackend(predictor *ShortTermPredictor, minLen int) *SequenceBackend {
	if minLen <= 0 {
		minLen = ShortTermSeqLen
	}
	return &SequenceBackend{predictor: predictor, minLen: minLen}
}

func (b *SequenceBackend) Name() string { return "sequence" }

func (b *SequenceBackend) Predict(samples []telemetry.Sample) (float64, error) {
	if len(samples) < b.minLen {
		return 0, apperrors.Wrap(apperrors.CodeInsufficientData, "window shorter than sequence length", nil)
	}
	return b.predictor.Predict(samples)
}

// tabularFeatures are the raw last-sample inputs of the tree models.
func tabularFeatures(s telemetry.Sample) []float64 {
	return []float64{s.Illumination, s.Temperature, s.Humidity, s.TiltAngle}
}

// TabularBackend evaluates a tree model on the latest sample's raw features.
// It also runs the exhaustive angle search used for the ensemble's angle
// recommendation.
type TabularBackend struct {
	name  string
	model Regressor
}

// NewTabularBackend wraps a tabular tree model.
func NewTabularBackend(name string, model Regressor) *TabularBackend {
	return &TabularBackend{name: name, model: model}
}

func (b *TabularBackend) Name() string { return b.name }

func (b *TabularBackend) Predict(samples []telemetry.Sample) (float64, error) {
	if len(samples) == 0 {
		return 0, apperrors.Wrap(apperrors.CodeInsufficientData, "empty sample window", nil)
	}
	return b.model.Predict(tabularFeatures(samples[len(samples)-1]))
}

// RecommendAngle enumerates angles 0..90 over the last sample's features,
// keeping the first maximum.
func (b *TabularBackend) RecommendAngle(samples []telemetry.Sample) (int, float64, error) {
	if len(samples) == 0 {
		return 0, 0, apperrors.Wrap(apperrors.CodeInsufficientData, "empty sample window", nil)
	}
	features := tabularFeatures(samples[len(samples)-1])

	bestAngle := angleMin
	bestVoltage := 0.0
	found := false
	for angle := angleMin; angle <= angleMax; angle++ {
		features[3] = float64(angle)
		v, err := b.model.Predict(features)
		if err != nil {
			return 0, 0, err
		}
		if !found || v > bestVoltage {
			found = true
			bestVoltage = v
			bestAngle = angle
		}
	}
	return bestAngle, bestVoltage, nil
}

// FlattenedBackend evaluates a tree model over the flattened recent window,
// the shape the gradient-boosted model was trained on.
type FlattenedBackend struct {
	name   string
	model  Regressor
	seqLen int
}

// NewFlattenedBackend wraps a tree model trained on flattened windows.
func NewFlattenedBackend(name string, model Regressor, seqLen int) *FlattenedBackend {
	if seqLen <= 0 {
		seqLen = ShortTermSeqLen
	}
	return &FlattenedBackend{name: name, model: model, seqLen: seqLen}
}

func (b *FlattenedBackend) Name() string { return b.name }

func (b *FlattenedBackend) Predict(samples []telemetry.Sample) (float64, error) {
	if len(samples) < b.seqLen {
		return 0, apperrors.Wrap(apperrors.CodeInsufficientData, "window shorter than flattened length", nil)
	}
	recent := samples[len(samples)-b.seqLen:]
	flat := make([]float64, 0, b.seqLen*4)
	for _, s := range recent {
		flat = append(flat, tabularFeatures(s)...)
	}
	return b.model.Predict(flat)
}
