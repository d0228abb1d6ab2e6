package model

import (
	"fmt"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
)

// TreeEnsemble evaluates a set of binary regression trees. A random forest
// averages its trees; a gradient-boosted model sums shrunken tree outputs on
// top of a base score.
type TreeEnsemble struct {
	trees     [][]treeNode
	boosted   bool
	baseScore float64
	shrinkage float64
}

func newTreeEnsemble(art *treesArtifact) (*TreeEnsemble, error) {
	boosted := art.Kind == "boosted"
	if !boosted && art.Kind != "forest" && art.Kind != "" {
		return nil, fmt.Errorf("unknown tree ensemble kind %q", art.Kind)
	}
	shrinkage := art.Shrinkage
	if shrinkage == 0 {
		shrinkage = 1
	}
	return &TreeEnsemble{
		trees:     art.Trees,
		boosted:   boosted,
		baseScore: art.BaseScore,
		shrinkage: shrinkage,
	}, nil
}

// Predict implements forecast.Regressor.
func (e *TreeEnsemble) Predict(features []float64) (float64, error) {
	var sum float64
	for _, tree := range e.trees {
		v, err := evalTree(tree, features)
		if err != nil {
			return 0, err
		}
		sum += v
	}
	if e.boosted {
		return e.baseScore + e.shrinkage*sum, nil
	}
	return sum / float64(len(e.trees)), nil
}

func evalTree(nodes []treeNode, features []float64) (float64, error) {
	idx := 0
	for {
		if idx < 0 || idx >= len(nodes) {
			return 0, fmt.Errorf("tree node index %d out of range", idx)
		}
		node := nodes[idx]
		if node.Left < 0 {
			return node.Value, nil
		}
		if node.Feature < 0 || node.Feature >= len(features) {
			return 0, fmt.Errorf("tree references feature %d of %d", node.Feature, len(features))
		}
		if features[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}

var _ forecast.Regressor = (*TreeEnsemble)(nil)
