package model

import (
	"encoding/json"
	"fmt"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
)

// Artifacts are trained offline and exported as JSON. They are loaded once at
// process start and treated as immutable afterwards.

// denseLayer is one fully connected layer of the sequence network.
type denseLayer struct {
	Weights    [][]float64 `json:"weights"` // [out][in]
	Biases     []float64   `json:"biases"`
	Activation string      `json:"activation"` // "relu" or "linear"
}

// sequenceArtifact holds the sequence regressor plus the scaler it was
// fitted with.
type sequenceArtifact struct {
	SeqLen   int          `json:"seq_len"`
	Features []string     `json:"features"`
	Mean     []float64    `json:"mean"`
	Scale    []float64    `json:"scale"`
	Layers   []denseLayer `json:"layers"`
}

// treeNode is one node of a binary regression tree. Left/Right of -1 marks a
// leaf whose Value is the prediction.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// treesArtifact holds a tree ensemble. Kind "forest" averages the trees;
// "boosted" sums them with shrinkage on top of a base score. The scaler
// fields are optional: the ensemble's tabular models run on raw features.
type treesArtifact struct {
	Kind      string       `json:"kind"`
	Features  []string     `json:"features"`
	Mean      []float64    `json:"mean,omitempty"`
	Scale     []float64    `json:"scale,omitempty"`
	Trees     [][]treeNode `json:"trees"`
	BaseScore float64      `json:"base_score,omitempty"`
	Shrinkage float64      `json:"shrinkage,omitempty"`
}

func decodeSequenceArtifact(data []byte) (*sequenceArtifact, error) {
	var art sequenceArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode sequence artifact: %w", err)
	}
	if art.SeqLen <= 0 || len(art.Features) == 0 || len(art.Layers) == 0 {
		return nil, fmt.Errorf("sequence artifact incomplete")
	}
	if len(art.Mean) != len(art.Features) || len(art.Scale) != len(art.Features) {
		return nil, fmt.Errorf("sequence artifact scaler shape mismatch")
	}
	return &art, nil
}

func decodeTreesArtifact(data []byte) (*treesArtifact, error) {
	var art treesArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode trees artifact: %w", err)
	}
	if len(art.Trees) == 0 {
		return nil, fmt.Errorf("trees artifact has no trees")
	}
	return &art, nil
}

// scalerParams converts parallel mean/scale arrays to the normalizer's input.
func scalerParams(features []string, mean, scale []float64) map[string]forecast.Stats {
	params := make(map[string]forecast.Stats, len(features))
	for i, name := range features {
		if i < len(mean) && i < len(scale) {
			params[name] = forecast.Stats{Mean: mean[i], Scale: scale[i]}
		}
	}
	return params
}
