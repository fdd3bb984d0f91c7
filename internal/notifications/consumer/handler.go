package consumer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shopbooking/internal/notifications/email"
	"shopbooking/pkg/kafka"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/metrics"
	"shopbooking/pkg/model"
)

type renderer interface {
	Render(event model.BookingEvent) (subject string, body string, err error)
}

// Handler turns booking events from the topic into customer emails.
type Handler struct {
	renderer renderer
	sender   email.Sender
	timeout  time.Duration
	metrics  *metrics.Metrics
	log      *logger.Logger
}

func NewHandler(r renderer, sender email.Sender, timeout time.Duration, m *metrics.Metrics, log *logger.Logger) *Handler {
	return &Handler{
		renderer: r,
		sender:   sender,
		timeout:  timeout,
		metrics:  m,
		log:      log,
	}
}

// Handle satisfies kafka.MessageHandler. Events without an email address are acknowledged and skipped.
func (h *Handler) Handle(ctx context.Context, msg kafka.Message) error {
	var event model.BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if !event.Kind.Valid() {
		return kafka.NewPermanentError(fmt.Sprintf("unknown event kind %q", event.Kind), kafka.ErrInvalidMessage)
	}

	to := strings.TrimSpace(event.Payload.Email)
	if to == "" {
		h.log.Debug("No email on booking, skipping notification",
			"booking_id", event.BookingID,
			"kind", event.Kind,
		)
		h.metrics.ObserveEmail(string(event.Kind), "skipped")
		return nil
	}

	subject, body, err := h.renderer.Render(event)
	if err != nil {
		h.metrics.ObserveEmail(string(event.Kind), metrics.OutcomeError)
		return kafka.NewPermanentError("failed to render email", err)
	}

	sendCtx := ctx
	if h.timeout > 0 {
		var cancel context.CancelFunc
		sendCtx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	if err := h.sender.Send(sendCtx, to, subject, body); err != nil {
		h.metrics.ObserveEmail(string(event.Kind), metrics.OutcomeError)
		return kafka.NewTransientError("failed to send email", err)
	}

	h.metrics.ObserveEmail(string(event.Kind), metrics.OutcomeSuccess)
	h.log.Info("Notification email sent",
		"booking_id", event.BookingID,
		"kind", event.Kind,
	)
	return nil
}
