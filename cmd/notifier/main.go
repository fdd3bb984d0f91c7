package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"shopbooking/internal/notifications/consumer"
	"shopbooking/internal/notifications/email"
	"shopbooking/pkg/app"
	"shopbooking/pkg/config"
	"shopbooking/pkg/kafka"
	kafka_config "shopbooking/pkg/kafka/config"
	kafka_middleware "shopbooking/pkg/kafka/middleware"
	"shopbooking/pkg/metrics"
)

const ServiceName = "notifier"

func main() {
	cfg := config.Load(ServiceName)
	kafkaCfg := kafka_config.Load(ServiceName)

	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	cfg.LogConfiguration()
	kafkaCfg.LogConfiguration(cfg.Log)

	cfg.Log.Info("Starting Notifier service")
	m := metrics.New(ServiceName)

	renderer, err := email.NewRenderer(cfg.ShopName)
	if err != nil {
		cfg.Log.Fatal("Failed to load email templates", "error", err)
	}
	sender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handler := consumer.NewHandler(renderer, sender, cfg.NotificationTimeout, m, cfg.Log)

	eventsConsumer, err := kafka.NewConsumer(kafkaCfg, cfg.BookingEventsTopic, cfg.NotifierGroupID, cfg.NotifierDLQTopic, handler.Handle, cfg.Log)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	eventsConsumer.Use(kafka_middleware.MetricsConsumerMiddleware(m))
	if kafkaCfg.EnableMiddleware {
		eventsConsumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		cfg.Log.Info("Consuming booking events",
			"topic", cfg.BookingEventsTopic,
			"group_id", cfg.NotifierGroupID,
			"smtp", cfg.SMTPHost+":"+cfg.SMTPPort,
		)
		if err := eventsConsumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			cfg.Log.Fatal("Kafka consumer stopped", "error", err)
		}
	}()

	// Health and metrics only; the notifier has no API routes.
	serverApp := app.NewApplication(cfg, m)
	serverApp.SetApp()
	serverApp.OnShutdown(func() {
		stop()
		if err := eventsConsumer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka consumer", "error", err)
		}
	})
	serverApp.Run()
}
