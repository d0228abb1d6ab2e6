package model

import (
	"fmt"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
)

// SequenceNetwork evaluates a feedforward network over flattened feature
// windows. It implements forecast.SequenceRegressor with true batch
// evaluation, which the angle search relies on.
type SequenceNetwork struct {
	seqLen   int
	features int
	layers   []denseLayer
}

func newSequenceNetwork(art *sequenceArtifact) (*SequenceNetwork, error) {
	inputDim := art.SeqLen * len(art.Features)
	for i, layer := range art.Layers {
		if len(layer.Weights) == 0 || len(layer.Weights) != len(layer.Biases) {
			return nil, fmt.Errorf("layer %d shape mismatch", i)
		}
		for _, row := range layer.Weights {
			if len(row) != inputDim {
				return nil, fmt.Errorf("layer %d expects input %d, got %d", i, len(row), inputDim)
			}
		}
		inputDim = len(layer.Weights)
	}
	if inputDim != 1 {
		return nil, fmt.Errorf("final layer must output a scalar, got %d", inputDim)
	}
	return &SequenceNetwork{
		seqLen:   art.SeqLen,
		features: len(art.Features),
		layers:   art.Layers,
	}, nil
}

// SeqLen returns the window length this network was trained on.
func (n *SequenceNetwork) SeqLen() int { return n.seqLen }

// PredictSequence evaluates every window in the batch.
func (n *SequenceNetwork) PredictSequence(windows [][][]float64) ([]float64, error) {
	out := make([]float64, len(windows))
	for i, window := range windows {
		flat, err := n.flatten(window)
		if err != nil {
			return nil, err
		}
		out[i] = n.forward(flat)
	}
	return out, nil
}

func (n *SequenceNetwork) flatten(window [][]float64) ([]float64, error) {
	if len(window) != n.seqLen {
		return nil, fmt.Errorf("window length %d, model expects %d", len(window), n.seqLen)
	}
	flat := make([]float64, 0, n.seqLen*n.features)
	for _, row := range window {
		if len(row) != n.features {
			return nil, fmt.Errorf("feature row length %d, model expects %d", len(row), n.features)
		}
		flat = append(flat, row...)
	}
	return flat, nil
}

func (n *SequenceNetwork) forward(input []float64) float64 {
	current := input
	for _, layer := range n.layers {
		next := make([]float64, len(layer.Weights))
		for j, row := range layer.Weights {
			sum := layer.Biases[j]
			for k, w := range row {
				sum += w * current[k]
			}
			if layer.Activation == "relu" && sum < 0 {
				sum = 0
			}
			next[j] = sum
		}
		current = next
	}
	return current[0]
}

var _ forecast.SequenceRegressor = (*SequenceNetwork)(nil)
