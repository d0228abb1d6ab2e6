package telemetrystore

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/pipeline"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	apperrors "github.com/praju435/ml-based-solar-tracking-system/pkg/errors"
)

// PostgresStore is the durable store variant. Raw samples go to an
// append-only table; the latest sample and prediction are per-device upserts.
//
// Expected schema:
//
//	CREATE TABLE telemetry_samples (
//	    device_id    TEXT        NOT NULL,
//	    ts           TIMESTAMPTZ NOT NULL,
//	    voltage      DOUBLE PRECISION NOT NULL,
//	    illumination DOUBLE PRECISION NOT NULL,
//	    temperature  DOUBLE PRECISION NOT NULL,
//	    humidity     DOUBLE PRECISION NOT NULL,
//	    tilt_angle   DOUBLE PRECISION NOT NULL,
//	    current      DOUBLE PRECISION NOT NULL
//	);
//	CREATE INDEX ON telemetry_samples (device_id, ts);
//	CREATE TABLE latest_samples (
//	    device_id TEXT PRIMARY KEY,
//	    payload   JSONB NOT NULL
//	);
//	CREATE TABLE latest_predictions (
//	    device_id TEXT PRIMARY KEY,
//	    payload   JSONB NOT NULL
//	);
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) AppendSample(ctx context.Context, sample telemetry.Sample) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO telemetry_samples (device_id, ts, voltage, illumination, temperature, humidity, tilt_angle, current)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, sample.DeviceID, sample.Timestamp, sample.Voltage, sample.Illumination,
		sample.Temperature, sample.Humidity, sample.TiltAngle, sample.Current)
	if err != nil {
		return pgUnavailable("append raw sample", err)
	}
	return nil
}

func (s *PostgresStore) SaveLatestSample(ctx context.Context, sample telemetry.Sample) error {
	return s.upsertJSON(ctx, "latest_samples", sample.DeviceID, sample)
}

func (s *PostgresStore) LatestSample(ctx context.Context, deviceID string) (telemetry.Sample, bool, error) {
	var sample telemetry.Sample
	ok, err := s.selectJSON(ctx, "latest_samples", deviceID, &sample)
	return sample, ok, err
}

func (s *PostgresStore) RecentSamples(ctx context.Context, deviceID string, limit int) ([]telemetry.Sample, error) {
	if limit <= 0 {
		limit = 24
	}
	rows, err := s.pool.Query(ctx, `
		SELECT device_id, ts, voltage, illumination, temperature, humidity, tilt_angle, current
		FROM telemetry_samples
		WHERE device_id = $1
		ORDER BY ts DESC
		LIMIT $2
	`, deviceID, limit)
	if err != nil {
		return nil, pgUnavailable("read raw samples", err)
	}
	defer rows.Close()

	var samples []telemetry.Sample
	for rows.Next() {
		var sample telemetry.Sample
		if err := rows.Scan(&sample.DeviceID, &sample.Timestamp, &sample.Voltage, &sample.Illumination,
			&sample.Temperature, &sample.Humidity, &sample.TiltAngle, &sample.Current); err != nil {
			return nil, pgUnavailable("scan raw sample", err)
		}
		samples = append(samples, sample)
	}
	if err := rows.Err(); err != nil {
		return nil, pgUnavailable("read raw samples", err)
	}
	// Query returns newest first; the pipeline wants chronological order.
	for i, j := 0, len(samples)-1; i < j; i, j = i+1, j-1 {
		samples[i], samples[j] = samples[j], samples[i]
	}
	return samples, nil
}

func (s *PostgresStore) SavePrediction(ctx context.Context, record forecast.PredictionRecord) error {
	return s.upsertJSON(ctx, "latest_predictions", record.DeviceID, record)
}

func (s *PostgresStore) LatestPrediction(ctx context.Context, deviceID string) (forecast.PredictionRecord, bool, error) {
	var record forecast.PredictionRecord
	ok, err := s.selectJSON(ctx, "latest_predictions", deviceID, &record)
	return record, ok, err
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return pgUnavailable("ping", err)
	}
	return nil
}

func (s *PostgresStore) upsertJSON(ctx context.Context, table, deviceID string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO `+table+` (device_id, payload)
		VALUES ($1, $2)
		ON CONFLICT (device_id) DO UPDATE SET payload = EXCLUDED.payload
	`, deviceID, payload)
	if err != nil {
		return pgUnavailable("upsert "+table, err)
	}
	return nil
}

func (s *PostgresStore) selectJSON(ctx context.Context, table, deviceID string, v any) (bool, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT payload FROM `+table+` WHERE device_id = $1 LIMIT 1
	`, deviceID)
	if err != nil {
		return false, pgUnavailable("read "+table, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return false, rows.Err()
	}
	var payload []byte
	if err := rows.Scan(&payload); err != nil {
		return false, pgUnavailable("scan "+table, err)
	}
	if err := json.Unmarshal(payload, v); err != nil {
		return false, err
	}
	return true, rows.Err()
}

func pgUnavailable(op string, err error) error {
	return apperrors.Wrap(apperrors.CodeStoreUnavailable, "postgres store "+op, err)
}

var _ pipeline.Store = (*PostgresStore)(nil)
