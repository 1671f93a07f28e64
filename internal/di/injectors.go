//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"portal/internal"
	"portal/internal/archive"
	"portal/internal/controllers"
	"portal/internal/persistence"
	"portal/internal/providers"
	"portal/internal/services"
	"portal/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewTreeStore,
		providers.NewIdentityProvider,
		providers.NewAssetStore,
		providers.NewAuthMiddleware,

		archive.NewManager,
		wire.Bind(new(archive.ManagerInterface), new(*archive.Manager)),
		services.NewArchiveService,
		persistence.NewSchedulerProvider,
		controllers.NewArchiveController,
		controllers.NewTreeController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}
