package publisher

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"shopbooking/pkg/kafka"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/metrics"
	"shopbooking/pkg/model"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

type mockProducer struct {
	mu          sync.Mutex
	messages    []kafka.Message
	publishFunc func(ctx context.Context, msg kafka.Message) error
}

func (m *mockProducer) Publish(ctx context.Context, msg kafka.Message) error {
	m.mu.Lock()
	m.messages = append(m.messages, msg)
	m.mu.Unlock()
	if m.publishFunc != nil {
		return m.publishFunc(ctx, msg)
	}
	return nil
}

func newTestPublisher(producer *mockProducer) (*Publisher, *metrics.Metrics) {
	m := metrics.New("test")
	log := logger.New(logger.Config{Level: "error", Output: io.Discard})
	return NewPublisher(producer, "bookings", time.Second, m, log), m
}

func testEvent() model.BookingEvent {
	return model.BookingEvent{
		Kind:      model.EventBooked,
		BookingID: "b-1",
		Payload: model.NotificationPayload{
			Name:  "Ada",
			Email: "ada@example.com",
			Date:  "2024-06-04",
			Time:  "09:00",
		},
		OccurredAt: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestNotify_PublishesKeyedEvent(t *testing.T) {
	producer := &mockProducer{}
	p, m := newTestPublisher(producer)

	p.Notify(context.Background(), testEvent())
	p.Wait()

	if len(producer.messages) != 1 {
		t.Fatalf("expected one message, got %d", len(producer.messages))
	}
	msg := producer.messages[0]
	if msg.Key != "b-1" || msg.GetEventType() != "booked" {
		t.Errorf("unexpected message %+v", msg)
	}

	var decoded model.BookingEvent
	if err := msg.DecodeValue(&decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Payload.Email != "ada@example.com" || decoded.Kind != model.EventBooked {
		t.Errorf("unexpected payload %+v", decoded)
	}
	if got := testutil.ToFloat64(m.NotificationsPublished.WithLabelValues("booked", metrics.OutcomeSuccess)); got != 1 {
		t.Errorf("expected success to be counted, got %v", got)
	}
}

func TestNotify_OutlivesCancelledRequest(t *testing.T) {
	producer := &mockProducer{
		publishFunc: func(ctx context.Context, msg kafka.Message) error {
			return ctx.Err()
		},
	}
	p, m := newTestPublisher(producer)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p.Notify(ctx, testEvent())
	p.Wait()

	if got := testutil.ToFloat64(m.NotificationsPublished.WithLabelValues("booked", metrics.OutcomeSuccess)); got != 1 {
		t.Errorf("publish should not inherit the request cancellation, success count %v", got)
	}
}

func TestNotify_SwallowsFailure(t *testing.T) {
	producer := &mockProducer{
		publishFunc: func(ctx context.Context, msg kafka.Message) error {
			return errors.New("broker down")
		},
	}
	p, m := newTestPublisher(producer)

	p.Notify(context.Background(), testEvent())
	p.Wait()

	if got := testutil.ToFloat64(m.NotificationsPublished.WithLabelValues("booked", metrics.OutcomeError)); got != 1 {
		t.Errorf("expected failure to be counted, got %v", got)
	}
}
