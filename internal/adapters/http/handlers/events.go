package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/jsamuelsen/quote-manager/internal/domain"
	"github.com/jsamuelsen/quote-manager/internal/platform/logging"
)

const (
	defaultEventBuffer = 16
	eventWriteTimeout  = 5 * time.Second
	eventPingInterval  = 30 * time.Second
)

// SyncEvent is one message on the sync event stream.
type SyncEvent struct {
	Type    string             `json:"type"`
	Summary domain.SyncSummary `json:"summary"`
}

// EventHubConfig configures the sync event hub.
type EventHubConfig struct {
	// Buffer is the number of undelivered events kept per subscriber. When
	// a subscriber falls behind, new events for it are dropped.
	Buffer int

	PingInterval time.Duration

	// CheckOrigin overrides the websocket origin check. Nil allows same-origin only.
	CheckOrigin func(r *http.Request) bool

	Logger *slog.Logger
}

// EventHub fans sync summaries out to websocket subscribers.
// It implements ports.SyncNotifier.
type EventHub struct {
	upgrader     websocket.Upgrader
	buffer       int
	pingInterval time.Duration
	logger       *slog.Logger

	mu     sync.Mutex
	subs   map[chan []byte]struct{}
	closed bool
	done   chan struct{}
}

// NewEventHub creates an event hub.
func NewEventHub(cfg EventHubConfig) *EventHub {
	buffer := cfg.Buffer
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}

	ping := cfg.PingInterval
	if ping <= 0 {
		ping = eventPingInterval
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &EventHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     cfg.CheckOrigin,
		},
		buffer:       buffer,
		pingInterval: ping,
		logger:       logger.With(slog.String("component", "http.EventHub")),
		subs:         make(map[chan []byte]struct{}),
		done:         make(chan struct{}),
	}
}

// NotifySync broadcasts the summary to every subscriber without blocking.
func (h *EventHub) NotifySync(ctx context.Context, summary domain.SyncSummary) {
	data, err := json.Marshal(SyncEvent{Type: "sync", Summary: summary})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode sync event", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- data:
		default:
			h.logger.WarnContext(ctx, "subscriber buffer full, dropping sync event")
		}
	}
}

// Subscribers returns the number of connected subscribers.
func (h *EventHub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.subs)
}

// Close disconnects every subscriber and rejects new ones.
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.closed = true
	close(h.done)
}

func (h *EventHub) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.closed
}

func (h *EventHub) subscribe() (chan []byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, false
	}

	ch := make(chan []byte, h.buffer)
	h.subs[ch] = struct{}{}

	return ch, true
}

func (h *EventHub) unsubscribe(ch chan []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.subs, ch)
}

// Stream handles GET /sync/events by upgrading to a websocket and writing
// one JSON SyncEvent per sync attempt until the client goes away.
func (h *EventHub) Stream(c *gin.Context) {
	logger := logging.FromContext(c.Request.Context())

	if h.isClosed() {
		c.Status(http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logger.DebugContext(c.Request.Context(), "websocket upgrade failed", slog.Any("error", err))
		return
	}
	defer conn.Close()

	ch, ok := h.subscribe()
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(eventWriteTimeout))

		return
	}
	defer h.unsubscribe(ch)

	logger.InfoContext(c.Request.Context(), "sync event subscriber connected")

	gone := make(chan struct{})

	// Reads only detect the close; clients send nothing.
	go func() {
		defer close(gone)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-gone:
			logger.InfoContext(c.Request.Context(), "sync event subscriber disconnected")
			return

		case <-h.done:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(eventWriteTimeout))

			return

		case data := <-ch:
			_ = conn.SetWriteDeadline(time.Now().Add(eventWriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.DebugContext(c.Request.Context(), "sync event write failed", slog.Any("error", err))
				return
			}

		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, []byte("keepalive"), time.Now().Add(eventWriteTimeout)); err != nil {
				logger.DebugContext(c.Request.Context(), "failed to send ping", slog.Any("error", err))
				return
			}
		}
	}
}
