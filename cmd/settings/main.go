package main

import (
	cataloghandler "shopbooking/internal/catalog/handler"
	catalogrepository "shopbooking/internal/catalog/repository"
	catalogservice "shopbooking/internal/catalog/service"
	catalogvalidator "shopbooking/internal/catalog/validator"
	"shopbooking/internal/settings/handler"
	"shopbooking/internal/settings/repository"
	"shopbooking/internal/settings/service"
	"shopbooking/internal/settings/validator"
	"shopbooking/pkg/app"
	"shopbooking/pkg/config"
	"shopbooking/pkg/metrics"
)

const ServiceName = "settings"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	cfg.LogConfiguration()

	cfg.Log.Info("Starting Settings service")
	cfg.SetMongo()
	cfg.SetRedis()
	m := metrics.New(ServiceName)

	settingsService := initSettings(cfg)
	catalogValidator := catalogvalidator.NewCatalogValidator(cfg.Log)
	services := catalogservice.NewServiceCatalog(catalogrepository.NewServicesRepository(cfg), catalogValidator, cfg)
	pricing := catalogservice.NewPricingCatalog(catalogrepository.NewPricingRepository(cfg), catalogValidator, cfg)
	cfg.Log.Info("Catalog services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication(cfg, m)
	serverApp.SetApp(
		handler.NewSettingsHandler(settingsService, cfg.Log),
		cataloghandler.NewServicesHandler(services, cfg.Log),
		cataloghandler.NewPricingHandler(pricing, cfg.Log),
	)
	serverApp.Run()
}

func initSettings(cfg *config.Config) service.SettingsService {
	settingsRepo := repository.NewCachedSettingsRepository(
		repository.NewMongoSettingsRepository(cfg),
		cfg.Client.Redis,
		cfg.SettingsCacheTTL,
		cfg.Log,
	)
	settingsService := service.NewSettingsService(settingsRepo, validator.NewSettingsValidator(cfg.Log), cfg)

	cfg.Log.Info("Settings service initialized", "cached", cfg.Client.Redis != nil)
	return settingsService
}
