package publisher

import (
	"context"
	"sync"
	"time"

	"shopbooking/pkg/kafka"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/metrics"
	"shopbooking/pkg/model"
)

const schemaVersion = "1"

type eventProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// Publisher sends booking events to Kafka in the background. Notify never
// blocks the caller and never reports failure; errors are logged and counted.
type Publisher struct {
	producer eventProducer
	source   string
	timeout  time.Duration
	metrics  *metrics.Metrics
	log      *logger.Logger
	wg       sync.WaitGroup
}

func NewPublisher(producer eventProducer, source string, timeout time.Duration, m *metrics.Metrics, log *logger.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		source:   source,
		timeout:  timeout,
		metrics:  m,
		log:      log.Component("notification_publisher"),
	}
}

func (p *Publisher) Notify(ctx context.Context, event model.BookingEvent) {
	msg, err := kafka.NewMessage().
		WithKey(event.BookingID).
		WithValue(event).
		WithEventType(string(event.Kind)).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		p.log.Error("Failed to encode booking event", "kind", event.Kind, "booking_id", event.BookingID, "error", err)
		p.metrics.ObserveNotification(string(event.Kind), metrics.OutcomeError)
		return
	}

	// The request context ends with the response; the publish must outlive it.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		defer cancel()

		if err := p.producer.Publish(pubCtx, msg); err != nil {
			p.log.Error("Failed to publish booking event", "kind", event.Kind, "booking_id", event.BookingID, "error", err)
			p.metrics.ObserveNotification(string(event.Kind), metrics.OutcomeError)
			return
		}
		p.log.Debug("Booking event published", "kind", event.Kind, "booking_id", event.BookingID)
		p.metrics.ObserveNotification(string(event.Kind), metrics.OutcomeSuccess)
	}()
}

// Wait blocks until every in-flight publish has finished.
func (p *Publisher) Wait() {
	p.wg.Wait()
}
