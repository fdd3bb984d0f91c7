package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017/?replicaSet=rs0"
	DefaultMongoDatabaseName = "shopbooking"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultSettingsCacheTTL = 5 * time.Minute

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 30
	DefaultRateLimitWindow   = 1 * time.Minute
	DefaultTrustProxyHeaders = false

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultPaginationLimit = 100

	DefaultBookingEventsTopic  = "booking-events"
	DefaultNotifierGroupID     = "booking-notifier"
	DefaultNotifierDLQTopic    = "booking-events-dlq"
	DefaultNotificationTimeout = 5 * time.Second

	DefaultSMTPHost = "localhost"
	DefaultSMTPPort = "1025"
	DefaultSMTPFrom = "onboarding@fastboysgarage.ca"

	DefaultShopName     = "Fast Boys Garage"
	DefaultShopTimeZone = "America/Toronto"
)
