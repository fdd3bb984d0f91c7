package main

import (
	availabilityhandler "shopbooking/internal/availability/handler"
	availabilityservice "shopbooking/internal/availability/service"
	"shopbooking/internal/bookings/handler"
	"shopbooking/internal/bookings/repository"
	"shopbooking/internal/bookings/service"
	"shopbooking/internal/bookings/validator"
	"shopbooking/internal/notifications/publisher"
	settingsrepository "shopbooking/internal/settings/repository"
	settingsservice "shopbooking/internal/settings/service"
	settingsvalidator "shopbooking/internal/settings/validator"
	"shopbooking/pkg/app"
	"shopbooking/pkg/config"
	"shopbooking/pkg/kafka"
	kafka_config "shopbooking/pkg/kafka/config"
	kafka_middleware "shopbooking/pkg/kafka/middleware"
	"shopbooking/pkg/metrics"
)

const ServiceName = "bookings"

const streamPath = "/api/v1/availability/stream"

func main() {
	cfg := config.Load(ServiceName)
	kafkaCfg := kafka_config.Load(ServiceName)

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}

	// Log all configuration values
	cfg.LogConfiguration()
	kafkaCfg.LogConfiguration(cfg.Log)

	cfg.Log.Info("Starting Bookings service")
	cfg.SetMongo()
	cfg.SetRedis()
	m := metrics.New(ServiceName)

	producer := initProducer(cfg, kafkaCfg, m)
	notifier := publisher.NewPublisher(producer, ServiceName, cfg.NotificationTimeout, m, cfg.Log)

	settings := initSettings(cfg)
	slotRepo := repository.NewMongoSlotRepository(cfg)
	bookingService := initServices(cfg, slotRepo, settings, notifier, m)
	availability := availabilityservice.NewAvailabilityService(settings, slotRepo, cfg)

	serverApp := app.NewApplication(cfg, m)
	serverApp.SetStream(streamPath, availabilityhandler.NewStreamHandler(
		availability,
		slotRepo,
		m,
		cfg.CORSAllowedOrigins,
		cfg.SettingsCacheTTL,
		cfg.Log,
	))
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availability, cfg.Log),
	)
	serverApp.OnShutdown(func() {
		notifier.Wait()
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	})
	serverApp.Run()
}

func initProducer(cfg *config.Config, kafkaCfg *kafka_config.Config, m *metrics.Metrics) *kafka.Producer {
	producer, err := kafka.NewProducer(kafkaCfg, cfg.BookingEventsTopic, "", cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.MetricsProducerMiddleware(m))
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Kafka producer initialized", "topic", cfg.BookingEventsTopic)
	return producer
}

func initSettings(cfg *config.Config) settingsservice.SettingsService {
	settingsRepo := settingsrepository.NewCachedSettingsRepository(
		settingsrepository.NewMongoSettingsRepository(cfg),
		cfg.Client.Redis,
		cfg.SettingsCacheTTL,
		cfg.Log,
	)
	return settingsservice.NewSettingsService(settingsRepo, settingsvalidator.NewSettingsValidator(cfg.Log), cfg)
}

func initServices(
	cfg *config.Config,
	slotRepo repository.SlotRepository,
	settings service.SettingsProvider,
	notifier service.Notifier,
	m *metrics.Metrics,
) service.ReservationService {
	bookingValidator := validator.NewBookingValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	bookingService := service.NewReservationService(
		bookingRepo,
		slotRepo,
		settings,
		notifier,
		bookingValidator,
		m,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized", "database", cfg.MongoDatabaseName)
	return bookingService
}
