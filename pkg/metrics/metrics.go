// Package metrics exposes the Prometheus collectors shared by every service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "shopbooking"

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	Reservations *prometheus.CounterVec

	NotificationsPublished *prometheus.CounterVec
	EmailsSent             *prometheus.CounterVec

	KafkaMessages *prometheus.CounterVec
	KafkaDuration *prometheus.HistogramVec

	AvailabilityStreams prometheus.Gauge
}

// New builds a registry holding the process collectors and the service's own
// metrics, each labelled with the service name.
func New(service string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	constLabels := prometheus.Labels{"service": service}

	m := &Metrics{
		registry: reg,
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "http_requests_total",
			Help:        "HTTP requests by method, route and status code.",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		Reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "reservation_operations_total",
			Help:        "Reservation operations by operation and outcome code.",
			ConstLabels: constLabels,
		}, []string{"operation", "outcome"}),
		NotificationsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "notifications_published_total",
			Help:        "Booking events handed to the notification topic.",
			ConstLabels: constLabels,
		}, []string{"kind", "outcome"}),
		EmailsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "emails_sent_total",
			Help:        "Notification emails by kind and outcome.",
			ConstLabels: constLabels,
		}, []string{"kind", "outcome"}),
		KafkaMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "kafka_messages_total",
			Help:        "Kafka messages by direction, topic and outcome.",
			ConstLabels: constLabels,
		}, []string{"direction", "topic", "outcome"}),
		KafkaDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "kafka_message_duration_seconds",
			Help:        "Time spent publishing or handling a Kafka message.",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"direction", "topic"}),
		AvailabilityStreams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "availability_streams",
			Help:        "Open live availability connections.",
			ConstLabels: constLabels,
		}),
	}

	reg.MustRegister(
		m.HTTPRequests,
		m.HTTPDuration,
		m.Reservations,
		m.NotificationsPublished,
		m.EmailsSent,
		m.KafkaMessages,
		m.KafkaDuration,
		m.AvailabilityStreams,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveReservation counts one reservation call. outcome is an error code or
// OutcomeSuccess.
func (m *Metrics) ObserveReservation(operation, outcome string) {
	if m == nil {
		return
	}
	m.Reservations.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) ObserveNotification(kind, outcome string) {
	if m == nil {
		return
	}
	m.NotificationsPublished.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveEmail(kind, outcome string) {
	if m == nil {
		return
	}
	m.EmailsSent.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveKafka(direction, topic, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.KafkaMessages.WithLabelValues(direction, topic, outcome).Inc()
	m.KafkaDuration.WithLabelValues(direction, topic).Observe(elapsed.Seconds())
}

func (m *Metrics) StreamOpened() {
	if m == nil {
		return
	}
	m.AvailabilityStreams.Inc()
}

func (m *Metrics) StreamClosed() {
	if m == nil {
		return
	}
	m.AvailabilityStreams.Dec()
}
