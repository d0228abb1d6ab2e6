package forecast

import (
	"math"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

const (
	// ShortTermSeqLen is the sequence model's window length.
	ShortTermSeqLen = 5

	angleMin = 0
	angleMax = 90
)

// ShortTermPredictor estimates the next voltage value from the recent window
// and searches the discrete angle domain for the tilt that maximizes it.
type ShortTermPredictor struct {
	model    SequenceRegressor
	norm     *Normalizer
	seqLen   int
	angleIdx int
}

// NewShortTermPredictor wires the sequence model with its fitted normalizer.
func NewShortTermPredictor(model SequenceRegressor, norm *Normalizer) (*ShortTermPredictor, error) {
	angleIdx, err := norm.Index(FeatureTiltAngle)
	if err != nil {
		return nil, err
	}
	if _, err := norm.Index(FeatureVoltage); err != nil {
		return nil, err
	}
	return &ShortTermPredictor{
		model:    model,
		norm:     norm,
		seqLen:   ShortTermSeqLen,
		angleIdx: angleIdx,
	}, nil
}

// Predict returns the de-normalized next-step voltage estimate. The output is
// not clamped to any physical range.
func (p *ShortTermPredictor) Predict(samples []telemetry.Sample) (float64, error) {
	window, err := BuildWindow(samples, p.seqLen, p.norm.Order())
	if err != nil {
		return 0, err
	}
	preds, err := p.predictBatch([][][]float64{window})
	if err != nil {
		return 0, err
	}
	return preds[0], nil
}

// RecommendAngle enumerates every integer angle in [0, 90], rewrites the tilt
// feature at the last timestep of the window and evaluates all candidates in
// a single batched model call. The first angle achieving the maximum wins.
func (p *ShortTermPredictor) RecommendAngle(samples []telemetry.Sample) (int, float64, error) {
	base, err := BuildWindow(samples, p.seqLen, p.norm.Order())
	if err != nil {
		return 0, 0, err
	}

	candidates := make([][][]float64, 0, angleMax-angleMin+1)
	for angle := angleMin; angle <= angleMax; angle++ {
		w := copyWindow(base)
		w[len(w)-1][p.angleIdx] = float64(angle)
		candidates = append(candidates, w)
	}

	preds, err := p.predictBatch(candidates)
	if err != nil {
		return 0, 0, err
	}

	bestAngle := angleMin
	bestVoltage := preds[0]
	for i, v := range preds {
		if v > bestVoltage {
			bestVoltage = v
			bestAngle = angleMin + i
		}
	}
	return bestAngle, bestVoltage, nil
}

// Run combines Predict and RecommendAngle into the short-term result.
func (p *ShortTermPredictor) Run(samples []telemetry.Sample) (ShortTermResult, error) {
	voltage, err := p.Predict(samples)
	if err != nil {
		return ShortTermResult{}, err
	}
	angle, voltageAtAngle, err := p.RecommendAngle(samples)
	if err != nil {
		return ShortTermResult{}, err
	}
	return ShortTermResult{
		PredictedVoltage:          round3(voltage),
		RecommendedAngle:          angle,
		VoltageAtRecommendedAngle: round3(voltageAtAngle),
	}, nil
}

func (p *ShortTermPredictor) predictBatch(windows [][][]float64) ([]float64, error) {
	scaled := make([][][]float64, len(windows))
	for i, w := range windows {
		scaled[i] = p.norm.NormalizeWindow(w)
	}
	raw, err := p.model.PredictSequence(scaled)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodePredictorUnavailable, "sequence model failed", err)
	}
	out := make([]float64, len(raw))
	for i, v := range raw {
		denorm, err := p.norm.Denormalize(FeatureVoltage, v)
		if err != nil {
			return nil, err
		}
		out[i] = denorm
	}
	return out, nil
}

func copyWindow(w [][]float64) [][]float64 {
	out := make([][]float64, len(w))
	for i, row := range w {
		out[i] = append([]float64(nil), row...)
	}
	return out
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
