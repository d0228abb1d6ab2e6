package forecast

import (
	"fmt"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

// Stats is one feature's affine transform, fitted offline alongside the model.
type Stats struct {
	Mean  float64 `json:"mean"`
	Scale float64 `json:"scale"`
}

// Normalizer applies per-feature (x - mean) / scale over a fixed feature
// order. Construction fails when a required feature has no parameters, so a
// mismatch surfaces at startup rather than mid-run.
type Normalizer struct {
	order []string
	stats []Stats
	index map[string]int
}

// NewNormalizer validates the parameter set against the feature order.
func NewNormalizer(order []string, params map[string]Stats) (*Normalizer, error) {
	n := &Normalizer{
		order: order,
		stats: make([]Stats, len(order)),
		index: make(map[string]int, len(order)),
	}
	for i, name := range order {
		st, ok := params[name]
		if !ok {
			return nil, apperrors.Wrap(apperrors.CodeFeatureMismatch,
				fmt.Sprintf("no normalization parameters for feature %q", name), nil)
		}
		if st.Scale == 0 {
			return nil, apperrors.Wrap(apperrors.CodeFeatureMismatch,
				fmt.Sprintf("zero scale for feature %q", name), nil)
		}
		n.stats[i] = st
		n.index[name] = i
	}
	return n, nil
}

// Order returns the feature order the normalizer was built with.
func (n *Normalizer) Order() []string { return n.order }

// Index returns the position of a feature within the order.
func (n *Normalizer) Index(feature string) (int, error) {
	i, ok := n.index[feature]
	if !ok {
		return 0, apperrors.Wrap(apperrors.CodeFeatureMismatch,
			fmt.Sprintf("unknown feature %q", feature), nil)
	}
	return i, nil
}

// NormalizeRow scales one raw feature row.
func (n *Normalizer) NormalizeRow(row []float64) []float64 {
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = (v - n.stats[i].Mean) / n.stats[i].Scale
	}
	return out
}

// NormalizeWindow scales every timestep of a raw window.
func (n *Normalizer) NormalizeWindow(window [][]float64) [][]float64 {
	out := make([][]float64, len(window))
	for i, row := range window {
		out[i] = n.NormalizeRow(row)
	}
	return out
}

// Denormalize maps a scaled model output back to the feature's raw unit.
func (n *Normalizer) Denormalize(feature string, v float64) (float64, error) {
	i, err := n.Index(feature)
	if err != nil {
		return 0, err
	}
	return v*n.stats[i].Scale + n.stats[i].Mean, nil
}

// BuildWindow extracts the raw feature rows for the given order and pads
// windows shorter than seqLen by replicating the earliest sample backward.
// The result always has exactly seqLen rows.
func BuildWindow(samples []telemetry.Sample, seqLen int, order []string) ([][]float64, error) {
	if len(samples) == 0 {
		return nil, apperrors.Wrap(apperrors.CodeInsufficientData, "empty sample window", nil)
	}
	if len(samples) > seqLen {
		samples = samples[len(samples)-seqLen:]
	}
	window := make([][]float64, 0, seqLen)
	for pad := seqLen - len(samples); pad > 0; pad-- {
		window = append(window, featureRow(samples[0], order))
	}
	for _, s := range samples {
		window = append(window, featureRow(s, order))
	}
	return window, nil
}

func featureRow(s telemetry.Sample, order []string) []float64 {
	row := make([]float64, len(order))
	for i, name := range order {
		row[i] = featureValue(s, name)
	}
	return row
}

func featureValue(s telemetry.Sample, name string) float64 {
	switch name {
	case FeatureIllumination:
		return s.Illumination
	case FeatureTemperature:
		return s.Temperature
	case FeatureHumidity:
		return s.Humidity
	case FeatureTiltAngle:
		return s.TiltAngle
	case FeatureVoltage:
		return s.Voltage
	case FeatureCurrent:
		return s.Current
	default:
		return 0
	}
}
