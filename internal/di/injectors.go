//go:build wireinject
// +build wireinject

package di

import (
	"epd/internal"
	"epd/internal/controllers"
	"epd/internal/providers"
	"epd/internal/services"
	"epd/internal/structures"
	"epd/internal/vault"

	wire "github.com/google/wire"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		services.NewProfileService,
		vault.NewZstdCompressor,
		vault.NewKeyring,
		vault.NewVaultCipher,
		vault.NewUsageLog,
		vault.NewFileManager,
		vault.NewScheduler,
		controllers.NewApiController,
		controllers.NewBannerController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
