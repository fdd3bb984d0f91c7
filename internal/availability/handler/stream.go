package handler

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"shopbooking/internal/availability/service"
	apperrors "shopbooking/pkg/errors"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/metrics"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

const (
	CommandWatch    = "watch"
	CommandSelect   = "select"
	CommandReserved = "reserved"

	MessageState = "state"
	MessageError = "error"
)

type ClientMessage struct {
	Type    string `json:"type"`
	Date    string `json:"date,omitempty"`
	Exclude string `json:"exclude,omitempty"`
	Time    string `json:"time,omitempty"`
}

type ServerMessage struct {
	Type  string                   `json:"type"`
	State *service.State           `json:"state,omitempty"`
	Error *apperrors.ErrorResponse `json:"error,omitempty"`
}

// StreamHandler serves live availability over a websocket. Each connection
// owns one View; the client drives it with watch, select and reserved
// commands and receives the view state after every change.
type StreamHandler struct {
	service         service.AvailabilityService
	source          service.TakenSource
	metrics         *metrics.Metrics
	log             *logger.Logger
	upgrader        websocket.Upgrader
	settingsRefresh time.Duration
}

func NewStreamHandler(
	svc service.AvailabilityService,
	source service.TakenSource,
	m *metrics.Metrics,
	allowedOrigins []string,
	settingsRefresh time.Duration,
	log *logger.Logger,
) *StreamHandler {
	return &StreamHandler{
		service:         svc,
		source:          source,
		metrics:         m,
		log:             log,
		settingsRefresh: settingsRefresh,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || len(allowed) == 0 {
			return true
		}
		return slices.Contains(allowed, "*") || slices.Contains(allowed, origin)
	}
}

func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("WebSocket upgrade failed", "error", err, "remote_addr", r.RemoteAddr)
		return
	}
	defer conn.Close()

	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	updates := make(chan service.State, 1)
	outbox := make(chan ServerMessage, 8)

	view := service.NewView(h.source, h.log, func(s service.State) {
		// Keep only the newest state for a slow reader.
		select {
		case updates <- s:
		default:
			select {
			case <-updates:
			default:
			}
			select {
			case updates <- s:
			default:
			}
		}
	})
	defer view.Close()

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		h.writeLoop(ctx, conn, view, updates, outbox)
		cancel()
		conn.Close()
	}()

	h.readLoop(ctx, conn, view, outbox)
	cancel()
	<-writerDone
}

func (h *StreamHandler) readLoop(ctx context.Context, conn *websocket.Conn, view *service.View, outbox chan<- ServerMessage) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("Availability stream read failed", "error", err)
			}
			return
		}

		if err := h.handleCommand(ctx, view, msg); err != nil {
			appErr := apperrors.AsAppError(err)
			select {
			case outbox <- ServerMessage{Type: MessageError, Error: &apperrors.ErrorResponse{
				Code:    appErr.Code,
				Message: appErr.Message,
				Details: appErr.Details,
			}}:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *StreamHandler) handleCommand(ctx context.Context, view *service.View, msg ClientMessage) error {
	switch msg.Type {
	case CommandWatch:
		if err := h.service.ValidateQuery(msg.Date, msg.Exclude); err != nil {
			return err
		}
		settings, err := h.service.Settings(ctx)
		if err != nil {
			return err
		}
		if err := view.Watch(ctx, msg.Date, settings, msg.Exclude); err != nil {
			h.log.Error("Failed to subscribe to availability", "date", msg.Date, "error", err)
			return apperrors.Unavailable("Live availability")
		}
		return nil

	case CommandSelect:
		err := view.Select(msg.Time)
		switch {
		case errors.Is(err, service.ErrNotWatching):
			return apperrors.InvalidInput("send a watch command first")
		case errors.Is(err, service.ErrNotBookable):
			return apperrors.Conflict("That time is no longer available. Pick another.")
		}
		return err

	case CommandReserved:
		err := view.MarkPending(msg.Time)
		switch {
		case errors.Is(err, service.ErrNotWatching):
			return apperrors.InvalidInput("send a watch command first")
		case errors.Is(err, service.ErrNotOffered):
			return apperrors.InvalidInput("reserved time is not offered on the watched date")
		}
		return err

	default:
		return apperrors.InvalidInput("unknown command: " + msg.Type)
	}
}

func (h *StreamHandler) writeLoop(
	ctx context.Context,
	conn *websocket.Conn,
	view *service.View,
	updates <-chan service.State,
	outbox <-chan ServerMessage,
) {
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var refresh <-chan time.Time
	if h.settingsRefresh > 0 {
		ticker := time.NewTicker(h.settingsRefresh)
		defer ticker.Stop()
		refresh = ticker.C
	}

	write := func(msg ServerMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			h.log.Debug("Availability stream write failed", "error", err)
			return false
		}
		return true
	}

	for {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return

		case state := <-updates:
			if !write(ServerMessage{Type: MessageState, State: &state}) {
				return
			}

		case msg := <-outbox:
			if !write(msg) {
				return
			}

		case <-refresh:
			h.refreshSettings(ctx, view)

		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *StreamHandler) refreshSettings(ctx context.Context, view *service.View) {
	current := view.Settings()
	if current == nil {
		return
	}
	fresh, err := h.service.Settings(ctx)
	if err != nil {
		return
	}
	if fresh.UpdatedAt.Equal(current.UpdatedAt) {
		return
	}
	if err := view.SetSettings(fresh); err != nil {
		h.log.Warn("Failed to resubscribe after settings change", "error", err)
	}
}

func (h *StreamHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/availability/stream", h.Stream)
}
