package telemetrystore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/valkey-io/valkey-go"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/pipeline"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

// ValkeyStore persists telemetry in a Valkey-compatible database using
// key-path addressing: raw samples in a per-device sorted set scored by
// timestamp, latest sample and latest prediction as overwrite keys.
type ValkeyStore struct {
	client valkey.Client
	prefix string
	maxRaw int
}

// NewValkeyStore constructs the store. maxRaw caps each device's raw set.
func NewValkeyStore(client valkey.Client, prefix string, maxRaw int) *ValkeyStore {
	if prefix == "" {
		prefix = "telemetry"
	}
	if maxRaw <= 0 {
		maxRaw = 3000
	}
	return &ValkeyStore{client: client, prefix: prefix, maxRaw: maxRaw}
}

func (s *ValkeyStore) AppendSample(ctx context.Context, sample telemetry.Sample) error {
	payload, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	key := s.rawKey(sample.DeviceID)
	score := float64(sample.Timestamp.UnixMilli())
	cmd := s.client.B().Zadd().Key(key).ScoreMember().ScoreMember(score, string(payload)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return unavailable("append raw sample", err)
	}
	trim := s.client.B().Zremrangebyrank().Key(key).Start(0).Stop(int64(-s.maxRaw - 1)).Build()
	if err := s.client.Do(ctx, trim).Error(); err != nil {
		return unavailable("trim raw samples", err)
	}
	return nil
}

func (s *ValkeyStore) SaveLatestSample(ctx context.Context, sample telemetry.Sample) error {
	return s.setJSON(ctx, s.latestKey(sample.DeviceID), sample)
}

func (s *ValkeyStore) LatestSample(ctx context.Context, deviceID string) (telemetry.Sample, bool, error) {
	var sample telemetry.Sample
	ok, err := s.getJSON(ctx, s.latestKey(deviceID), &sample)
	return sample, ok, err
}

func (s *ValkeyStore) RecentSamples(ctx context.Context, deviceID string, limit int) ([]telemetry.Sample, error) {
	if limit <= 0 {
		limit = 24
	}
	cmd := s.client.B().Zrange().Key(s.rawKey(deviceID)).Min(fmt.Sprintf("%d", -limit)).Max("-1").Build()
	resp := s.client.Do(ctx, cmd)
	values, err := resp.AsStrSlice()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, nil
		}
		return nil, unavailable("read raw samples", err)
	}
	samples := make([]telemetry.Sample, 0, len(values))
	for _, raw := range values {
		var sample telemetry.Sample
		if err := json.Unmarshal([]byte(raw), &sample); err != nil {
			continue
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (s *ValkeyStore) SavePrediction(ctx context.Context, record forecast.PredictionRecord) error {
	if err := s.setJSON(ctx, s.predictionKey(record.DeviceID), record); err != nil {
		return err
	}
	// Mirrored under the latest path so dashboard readers find it next to
	// the latest sample.
	return s.setJSON(ctx, s.latestKey(record.DeviceID)+":prediction", record)
}

func (s *ValkeyStore) LatestPrediction(ctx context.Context, deviceID string) (forecast.PredictionRecord, bool, error) {
	var record forecast.PredictionRecord
	ok, err := s.getJSON(ctx, s.predictionKey(deviceID), &record)
	return record, ok, err
}

func (s *ValkeyStore) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *ValkeyStore) setJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	cmd := s.client.B().Set().Key(key).Value(string(payload)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return unavailable("write "+key, err)
	}
	return nil
}

func (s *ValkeyStore) getJSON(ctx context.Context, key string, v any) (bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	payload, err := resp.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return false, nil
		}
		return false, unavailable("read "+key, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, err
	}
	return true, nil
}

func (s *ValkeyStore) rawKey(deviceID string) string {
	return fmt.Sprintf("%s:raw:%s", s.prefix, deviceID)
}

func (s *ValkeyStore) latestKey(deviceID string) string {
	return fmt.Sprintf("%s:latest:%s", s.prefix, deviceID)
}

func (s *ValkeyStore) predictionKey(deviceID string) string {
	return fmt.Sprintf("%s:predictions:%s:latest", s.prefix, deviceID)
}

func unavailable(op string, err error) error {
	return apperrors.Wrap(apperrors.CodeStoreUnavailable, "valkey store "+op, err)
}

var _ pipeline.Store = (*ValkeyStore)(nil)
