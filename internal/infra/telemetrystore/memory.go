package telemetrystore

import (
	"context"
	"sync"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/pipeline"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
)

// MemoryStore is the in-process store used for tests/dev and as the degraded
// mode when no remote store is configured. Cross-process visibility is lost;
// everything else behaves like the remote store.
type MemoryStore struct {
	mu          sync.RWMutex
	maxRaw      int
	raw         map[string][]telemetry.Sample
	latest      map[string]telemetry.Sample
	predictions map[string]forecast.PredictionRecord
}

// NewMemoryStore constructs a store backed by process memory. maxRaw caps the
// per-device raw log.
func NewMemoryStore(maxRaw int) *MemoryStore {
	if maxRaw <= 0 {
		maxRaw = 3000
	}
	return &MemoryStore{
		maxRaw:      maxRaw,
		raw:         make(map[string][]telemetry.Sample),
		latest:      make(map[string]telemetry.Sample),
		predictions: make(map[string]forecast.PredictionRecord),
	}
}

func (s *MemoryStore) AppendSample(_ context.Context, sample telemetry.Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := append(s.raw[sample.DeviceID], sample)
	if len(log) > s.maxRaw {
		log = log[len(log)-s.maxRaw:]
	}
	s.raw[sample.DeviceID] = log
	return nil
}

func (s *MemoryStore) SaveLatestSample(_ context.Context, sample telemetry.Sample) error {
	s.mu.Lock()
	s.latest[sample.DeviceID] = sample
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LatestSample(_ context.Context, deviceID string) (telemetry.Sample, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sample, ok := s.latest[deviceID]
	return sample, ok, nil
}

func (s *MemoryStore) RecentSamples(_ context.Context, deviceID string, limit int) ([]telemetry.Sample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.raw[deviceID]
	if limit > 0 && len(log) > limit {
		log = log[len(log)-limit:]
	}
	out := make([]telemetry.Sample, len(log))
	copy(out, log)
	return out, nil
}

func (s *MemoryStore) SavePrediction(_ context.Context, record forecast.PredictionRecord) error {
	s.mu.Lock()
	s.predictions[record.DeviceID] = record
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LatestPrediction(_ context.Context, deviceID string) (forecast.PredictionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.predictions[deviceID]
	return record, ok, nil
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

var _ pipeline.Store = (*MemoryStore)(nil)
