package kafka

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"shopbooking/pkg/logger"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	mu       sync.Mutex
	messages []kafka.Message
	err      error
}

func (f *fakeWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func header(km kafka.Message, key string) string {
	for _, h := range km.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Output: io.Discard})
}

func newTestProducer(w, dlq *fakeWriter) *Producer {
	p := &Producer{writer: w, topic: "booking-events", dlqTopic: "booking-events-dlq", log: testLogger()}
	if dlq != nil {
		p.dlqWriter = dlq
	}
	return p
}

func TestProducer_PublishRunsMiddlewareInOrder(t *testing.T) {
	w := &fakeWriter{}
	p := newTestProducer(w, nil)

	var order []string
	for _, name := range []string{"first", "second"} {
		name := name
		p.Use(func(ctx context.Context, msg Message, next MessageHandler) error {
			order = append(order, name)
			if msg.Topic != "booking-events" {
				t.Errorf("middleware should see the producer topic, got %q", msg.Topic)
			}
			return next(ctx, msg)
		})
	}

	msg, err := NewMessage().WithKey("b-1").WithValue(map[string]string{"kind": "booked"}).WithEventType("booked").Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := p.Publish(context.Background(), msg); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Errorf("unexpected middleware order %v", order)
	}
	if len(w.messages) != 1 || string(w.messages[0].Key) != "b-1" {
		t.Fatalf("expected one message keyed b-1, got %+v", w.messages)
	}
	if header(w.messages[0], HeaderEventType) != "booked" || header(w.messages[0], HeaderEventID) == "" {
		t.Errorf("expected event headers, got %+v", w.messages[0].Headers)
	}
}

func TestProducer_PublishRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		msg  Message
		want error
	}{
		{"empty key", Message{Value: []byte("{}")}, ErrEmptyKey},
		{"empty value", Message{Key: "b-1"}, ErrEmptyValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestProducer(&fakeWriter{}, nil)
			if err := p.Publish(context.Background(), tt.msg); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestProducer_FailedWriteGoesToDLQ(t *testing.T) {
	writeErr := errors.New("leader not available")
	dlq := &fakeWriter{}
	p := newTestProducer(&fakeWriter{err: writeErr}, dlq)

	msg, _ := NewMessage().WithKey("b-1").WithValue("x").Build()
	err := p.Publish(context.Background(), msg)

	if !errors.Is(err, writeErr) {
		t.Fatalf("expected original error, got %v", err)
	}
	if len(dlq.messages) != 1 {
		t.Fatalf("expected one DLQ message, got %d", len(dlq.messages))
	}
	if header(dlq.messages[0], HeaderOriginalTopic) != "booking-events" {
		t.Errorf("expected original topic header, got %+v", dlq.messages[0].Headers)
	}
	if _, ok := msg.Headers[HeaderDLQError]; ok {
		t.Errorf("DLQ headers must not leak into the caller's message")
	}
}

func TestProducer_Closed(t *testing.T) {
	p := newTestProducer(&fakeWriter{}, nil)
	_ = p.Close()

	msg, _ := NewMessage().WithKey("b-1").WithValue("x").Build()
	if err := p.Publish(context.Background(), msg); !errors.Is(err, ErrProducerClosed) {
		t.Errorf("expected ErrProducerClosed, got %v", err)
	}
}

func TestMessageBuilder_InvalidValue(t *testing.T) {
	_, err := NewMessage().WithKey("b-1").WithValue(make(chan int)).Build()
	if !errors.Is(err, ErrInvalidMessage) {
		t.Errorf("expected ErrInvalidMessage, got %v", err)
	}
}

func TestMessage_RetryCount(t *testing.T) {
	msg := Message{}
	for i := 0; i < 11; i++ {
		msg.IncrementRetryCount()
	}
	if got := msg.GetRetryCount(); got != 11 {
		t.Errorf("expected 11, got %d", got)
	}
}
