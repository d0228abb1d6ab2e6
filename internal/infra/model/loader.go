package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

// Default artifact names within the model source.
const (
	SequenceArtifact    = "shortterm_seq.json"
	DailyArtifact       = "daily_rf.json"
	EnsembleGBTArtifact = "ensemble_gbt.json"
	EnsembleRFArtifact  = "ensemble_rf.json"
)

// Loader reads model artifacts once at startup. The sequence and daily
// models are required; the ensemble's extra backends are optional and absent
// ones simply don't join the ensemble.
type Loader struct {
	source Source
	logger *slog.Logger
}

// NewLoader constructs the loader.
func NewLoader(source Source, logger *slog.Logger) *Loader {
	return &Loader{source: source, logger: logger.With("component", "model.loader")}
}

// SequenceModel loads the short-horizon network and its fitted normalizer.
func (l *Loader) SequenceModel(ctx context.Context, name string) (*SequenceNetwork, *forecast.Normalizer, error) {
	data, ok, err := l.source.ReadArtifact(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	if !ok {
		return nil, nil, apperrors.Wrap(apperrors.CodePredictorUnavailable,
			fmt.Sprintf("sequence model artifact %q missing", name), nil)
	}
	art, err := decodeSequenceArtifact(data)
	if err != nil {
		return nil, nil, err
	}
	network, err := newSequenceNetwork(art)
	if err != nil {
		return nil, nil, err
	}
	norm, err := forecast.NewNormalizer(art.Features, scalerParams(art.Features, art.Mean, art.Scale))
	if err != nil {
		return nil, nil, err
	}
	l.logger.Info("sequence model loaded", "artifact", name, "seq_len", art.SeqLen, "features", len(art.Features))
	return network, norm, nil
}

// DailyModel loads the daily tree ensemble and its fitted normalizer.
func (l *Loader) DailyModel(ctx context.Context, name string) (*TreeEnsemble, *forecast.Normalizer, error) {
	data, ok, err := l.source.ReadArtifact(ctx, name)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", name, err)
	}
	if !ok {
		return nil, nil, apperrors.Wrap(apperrors.CodePredictorUnavailable,
			fmt.Sprintf("daily model artifact %q missing", name), nil)
	}
	art, err := decodeTreesArtifact(data)
	if err != nil {
		return nil, nil, err
	}
	ensemble, err := newTreeEnsemble(art)
	if err != nil {
		return nil, nil, err
	}
	norm, err := forecast.NewNormalizer(art.Features, scalerParams(art.Features, art.Mean, art.Scale))
	if err != nil {
		return nil, nil, err
	}
	l.logger.Info("daily model loaded", "artifact", name, "trees", len(art.Trees))
	return ensemble, norm, nil
}

// OptionalTreeModel loads an ensemble backend if its artifact exists. A
// missing artifact returns (nil, nil): the backend just stays out of the
// ensemble.
func (l *Loader) OptionalTreeModel(ctx context.Context, name string) (*TreeEnsemble, error) {
	data, ok, err := l.source.ReadArtifact(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if !ok {
		l.logger.Info("optional model artifact absent", "artifact", name)
		return nil, nil
	}
	art, err := decodeTreesArtifact(data)
	if err != nil {
		return nil, err
	}
	ensemble, err := newTreeEnsemble(art)
	if err != nil {
		return nil, err
	}
	l.logger.Info("ensemble model loaded", "artifact", name, "kind", art.Kind, "trees", len(art.Trees))
	return ensemble, nil
}
