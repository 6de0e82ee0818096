//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/voyora/tripweaver/internal/bootstrap"
	"github.com/voyora/tripweaver/internal/domain/activity"
	"github.com/voyora/tripweaver/internal/domain/advisor"
	"github.com/voyora/tripweaver/internal/domain/logistics"
	"github.com/voyora/tripweaver/internal/domain/meals"
	"github.com/voyora/tripweaver/internal/domain/planner"
	"github.com/voyora/tripweaver/internal/domain/validate"
	"github.com/voyora/tripweaver/internal/infra/config"
	httpiface "github.com/voyora/tripweaver/internal/interface/http"
	"github.com/voyora/tripweaver/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAdvisorConfig,
		provideAdvisorChatClient,
		provideAdvisorStore,
		provideCatalogRepository,
		providePlannerConfig,
		provideMealsConfig,
		provideActivityConfig,
		provideLogisticsConfig,
		provideValidateConfig,
		advisor.NewFactory,
		meals.NewScheduler,
		activity.NewPlanner,
		logistics.NewHandler,
		validate.New,
		planner.NewService,
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
