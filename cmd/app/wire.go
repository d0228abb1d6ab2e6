//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/praju435/ml-based-solar-tracking-system/internal/bootstrap"
	"github.com/praju435/ml-based-solar-tracking-system/internal/domain/pipeline"
	"github.com/praju435/ml-based-solar-tracking-system/internal/infra/config"
	httpiface "github.com/praju435/ml-based-solar-tracking-system/internal/interface/http"
	"github.com/praju435/ml-based-solar-tracking-system/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideOrchestratorConfig,
		provideSequenceBuffer,
		provideModelSource,
		provideModelLoader,
		provideShortTermPredictor,
		provideDailyForecaster,
		provideCombiner,
		provideStore,
		provideActuator,
		provideQueue,
		providePipelineQueue,
		pipeline.NewOrchestrator,
		pipeline.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
