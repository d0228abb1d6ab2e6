package model

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
	"github.com/praju435/ml-based-solar-tracking-system/pkg/logger"
)

// tinySequenceArtifact is a 2-step, 2-feature network whose single linear
// layer sums the flattened input.
func tinySequenceArtifact() sequenceArtifact {
	return sequenceArtifact{
		SeqLen:   2,
		Features: []string{"tilt_angle", "voltage"},
		Mean:     []float64{0, 0},
		Scale:    []float64{1, 1},
		Layers: []denseLayer{
			{
				Weights:    [][]float64{{1, 1, 1, 1}},
				Biases:     []float64{0.5},
				Activation: "linear",
			},
		},
	}
}

func writeArtifact(t *testing.T, dir, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func TestLoaderSequenceModel(t *testing.T) {
	dir := t.TempDir()
	writeArtifact(t, dir, SequenceArtifact, tinySequenceArtifact())

	loader := NewLoader(NewDirSource(dir), logger.New())
	network, norm, err := loader.SequenceModel(context.Background(), SequenceArtifact)
	require.NoError(t, err)
	require.Equal(t, 2, network.SeqLen())
	require.Equal(t, []string{"tilt_angle", "voltage"}, norm.Order())

	preds, err := network.PredictSequence([][][]float64{{{1, 2}, {3, 4}}})
	require.NoError(t, err)
	require.Equal(t, []float64{10.5}, preds)
}

func TestLoaderSequenceModelMissing(t *testing.T) {
	loader := NewLoader(NewDirSource(t.TempDir()), logger.New())

	_, _, err := loader.SequenceModel(context.Background(), SequenceArtifact)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodePredictorUnavailable))
}

func TestLoaderOptionalModelAbsentIsNotAnError(t *testing.T) {
	loader := NewLoader(NewDirSource(t.TempDir()), logger.New())

	ensemble, err := loader.OptionalTreeModel(context.Background(), EnsembleRFArtifact)
	require.NoError(t, err)
	require.Nil(t, ensemble)
}

func TestLoaderDailyModel(t *testing.T) {
	dir := t.TempDir()
	art := treesArtifact{
		Kind:     "forest",
		Features: []string{"mean_voltage"},
		Mean:     []float64{0},
		Scale:    []float64{1},
		Trees: [][]treeNode{
			{{Feature: 0, Threshold: 10, Left: 1, Right: 2}, {Left: -1, Right: -1, Value: 8}, {Left: -1, Right: -1, Value: 14}},
			{{Left: -1, Right: -1, Value: 12}},
		},
	}
	writeArtifact(t, dir, DailyArtifact, art)

	loader := NewLoader(NewDirSource(dir), logger.New())
	ensemble, norm, err := loader.DailyModel(context.Background(), DailyArtifact)
	require.NoError(t, err)
	require.NotNil(t, norm)

	v, err := ensemble.Predict([]float64{15})
	require.NoError(t, err)
	require.Equal(t, 13.0, v)
}

func TestDecodeSequenceArtifactRejectsScalerMismatch(t *testing.T) {
	art := tinySequenceArtifact()
	art.Scale = []float64{1}
	data, err := json.Marshal(art)
	require.NoError(t, err)

	_, err = decodeSequenceArtifact(data)
	require.Error(t, err)
}
