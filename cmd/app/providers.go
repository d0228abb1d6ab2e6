package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/valkey-io/valkey-go"

	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/forecast"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/pipeline"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/telemetry"
	"github.com/praju435/ml-based-solar-tracking-system/internal/infra/actuator"
	"github.com/praju435/ml-based-solar-tracking-system/internal/infra/config"
	"github.com/praju435/ml-based-solar-tracking-system/internal/infra/model"
	"github.com/praju435/ml-based-solar-tracking-system/internal/infra/queue"
	"github.com/praju435/ml-based-solar-tracking-system/internal/infra/telemetrystore"
)

func provideOrchestratorConfig(cfg *config.Config) pipeline.Config {
	return pipeline.Config{
		WindowLimit: cfg.Telemetry.WindowSize,
		MinWindow:   cfg.Telemetry.MinWindow,
		Horizon:     cfg.Forecast.Horizon,
		ModelTag:    cfg.Models.Tag,
		Confidence:  cfg.Actuator.Confidence,
	}
}

func provideSequenceBuffer(cfg *config.Config) *telemetry.SequenceBuffer {
	return telemetry.NewSequenceBuffer(cfg.Telemetry.WindowSize)
}

func provideModelSource(cfg *config.Config, logger *slog.Logger) (model.Source, error) {
	obj := cfg.Models.ObjectStore
	if obj.Enabled {
		source, err := model.NewObjectSource(obj.Endpoint, obj.AccessKey, obj.SecretKey, obj.Bucket, obj.Prefix)
		if err != nil {
			return nil, err
		}
		logger.Info("model artifacts served from object store", "bucket", obj.Bucket)
		return source, nil
	}
	return model.NewDirSource(cfg.Models.Dir), nil
}

func provideModelLoader(source model.Source, logger *slog.Logger) *model.Loader {
	return model.NewLoader(source, logger)
}

func provideShortTermPredictor(loader *model.Loader) (*forecast.ShortTermPredictor, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	network, norm, err := loader.SequenceModel(ctx, model.SequenceArtifact)
	if err != nil {
		return nil, err
	}
	return forecast.NewShortTermPredictor(network, norm)
}

func provideDailyForecaster(loader *model.Loader) (*forecast.DailyForecaster, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	ensemble, norm, err := loader.DailyModel(ctx, model.DailyArtifact)
	if err != nil {
		return nil, err
	}
	return forecast.NewDailyForecaster(ensemble, norm), nil
}

// provideCombiner assembles the ensemble from whichever optional tree models
// are present next to the required ones. No optional model means the service
// runs without an ensemble.
func provideCombiner(loader *model.Loader, shortTerm *forecast.ShortTermPredictor, logger *slog.Logger) *forecast.Combiner {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	backends := []forecast.EnsembleBackend{
		forecast.NewSequenceBackend(shortTerm, forecast.ShortTermSeqLen),
	}
	var angler forecast.AngleSearcher

	if gbt, err := loader.OptionalTreeModel(ctx, model.EnsembleGBTArtifact); err != nil {
		logger.Warn("ensemble gbt model unreadable, skipping", "error", err)
	} else if gbt != nil {
		backends = append(backends, forecast.NewFlattenedBackend("gbt", gbt, forecast.ShortTermSeqLen))
	}

	if rf, err := loader.OptionalTreeModel(ctx, model.EnsembleRFArtifact); err != nil {
		logger.Warn("ensemble rf model unreadable, skipping", "error", err)
	} else if rf != nil {
		tabular := forecast.NewTabularBackend("rf", rf)
		backends = append(backends, tabular)
		angler = tabular
	}

	if len(backends) == 1 && angler == nil {
		return nil
	}
	logger.Info("ensemble enabled", "backends", len(backends))
	return forecast.NewCombiner(backends, angler)
}

// provideStore selects the telemetry store: valkey when configured and
// reachable, then postgres, then the in-memory fallback.
func provideStore(cfg *config.Config, logger *slog.Logger) pipeline.Store {
	if cfg.Store.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Store.Valkey.Addr)
		if err != nil {
			logger.Error("invalid valkey configuration, trying next store", "error", err)
		} else if client, err := valkey.NewClient(opt); err != nil {
			logger.Error("failed to create valkey client, trying next store", "error", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
				logger.Error("valkey ping failed, trying next store", "error", err)
			} else {
				logger.Info("valkey telemetry store enabled", "addr", cfg.Store.Valkey.Addr)
				return telemetrystore.NewValkeyStore(client, cfg.Store.Valkey.Prefix, cfg.Telemetry.MaxRawLog)
			}
		}
	}

	dsn := strings.TrimSpace(cfg.Store.Postgres.DSN)
	if dsn != "" {
		pool, err := buildPostgresPool(cfg, dsn)
		if err != nil {
			logger.Error("postgres unavailable, using memory store", "error", err)
		} else {
			logger.Info("postgres telemetry store enabled")
			return telemetrystore.NewPostgresStore(pool)
		}
	}

	logger.Info("no remote store configured, using memory store")
	return telemetrystore.NewMemoryStore(cfg.Telemetry.MaxRawLog)
}

func buildPostgresPool(cfg *config.Config, dsn string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.Store.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Store.Postgres.MaxConns
	}
	if cfg.Store.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Store.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// provideQueue prefers the cross-process valkey queue when enabled, falling
// back to the in-process per-device workers.
func provideQueue(cfg *config.Config, orch *pipeline.Orchestrator, logger *slog.Logger) queue.HandlerQueue {
	var q queue.HandlerQueue
	if cfg.Queue.Valkey.Enabled && cfg.Store.Valkey.Enabled {
		if opt, err := buildValkeyOptions(cfg.Store.Valkey.Addr); err != nil {
			logger.Error("invalid valkey queue configuration, using in-process queue", "error", err)
		} else if client, err := valkey.NewClient(opt); err != nil {
			logger.Error("failed to create valkey queue client, using in-process queue", "error", err)
		} else {
			logger.Info("valkey pipeline queue enabled", "key", cfg.Queue.Valkey.Key)
			q = queue.NewValkeyQueue(client, cfg.Queue.Valkey.Key, logger)
		}
	}
	if q == nil {
		q = queue.NewDeviceQueue(cfg.Queue.Backlog, logger)
	}

	q.SetHandler(func(ctx context.Context, deviceID string) {
		orch.Run(ctx, deviceID)
	})
	return q
}

func providePipelineQueue(q queue.HandlerQueue) pipeline.Queue {
	return q
}

func provideActuator(cfg *config.Config) pipeline.AngleCommander {
	return actuator.NewClient(cfg.Actuator.CommandURL, cfg.Actuator.Timeout)
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}
