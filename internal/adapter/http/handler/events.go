package handler

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tasklist/internal/core/model/response"
	"tasklist/internal/core/port"
	"tasklist/internal/core/telemetry"
	"tasklist/pkg/config"
	. "tasklist/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
)

// EventsHandler streams task change events to shells over a websocket, so
// they know when to re-list.
type EventsHandler struct {
	events         port.TaskEvents
	metrics        *telemetry.AppMetrics
	allowedOrigins []string
	upgrader       websocket.Upgrader
	Logger         *config.LokiLogger
}

func NewEventsHandler(events port.TaskEvents, metrics *telemetry.AppMetrics, logger *config.LokiLogger, allowedOrigins []string) *EventsHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	h := &EventsHandler{
		events:         events,
		metrics:        metrics,
		allowedOrigins: allowedOrigins,
		Logger:         logger,
	}

	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin accepts clients that send no Origin, the API's own host and
// the configured origins. "*" allows any origin.
func (h *EventsHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		return false
	}

	if strings.EqualFold(u.Host, r.Host) {
		return true
	}

	for _, allowed := range h.allowedOrigins {
		if allowed == "*" || strings.EqualFold(strings.TrimRight(allowed, "/"), origin) {
			return true
		}
	}

	return false
}

func (h *EventsHandler) Stream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)

	if err != nil {
		h.Logger.WarnWithTrace(c.Request.Context(), "Websocket upgrade failed",
			zap.String("origin", c.GetHeader("Origin")),
			zap.Error(err))
		return
	}

	defer conn.Close()

	// the request context stays alive for a hijacked connection, so the
	// reader cancels it on disconnect
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	ctx, span := CreateChildSpan(ctx, "handler.task.StreamEvents", []attribute.KeyValue{
		attribute.String("handler.operation", "StreamEvents"),
	})
	defer span.End()

	feed, err := h.events.Subscribe(ctx)

	if err != nil {
		AddSpanError(span, err)
		h.Logger.Logger.Ctx(ctx).Error("Failed to subscribe to task events", zap.Error(err))
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "events unavailable"),
			time.Now().Add(writeWait))
		return
	}

	if h.metrics != nil {
		h.metrics.IncrementEventSubscribers(ctx)
		defer h.metrics.DecrementEventSubscribers(context.Background())
	}

	go h.readPump(conn, cancel)

	if err := h.write(conn, response.EventMessage{Type: "ready"}); err != nil {
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	delivered := 0

	for {
		select {
		case <-ctx.Done():
			span.SetAttributes(attribute.Int("events.delivered", delivered))
			return
		case event, ok := <-feed:
			if !ok {
				return
			}

			if err := h.write(conn, response.EventMessage{Type: "task.changed", Event: &event}); err != nil {
				return
			}

			AddSpanEvent(span, "task.changed", []attribute.KeyValue{
				attribute.String("task.action", string(event.Action)),
				attribute.Int64("task.id", event.TaskID),
			})

			delivered++
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))

			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *EventsHandler) write(conn *websocket.Conn, msg response.EventMessage) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// readPump only serves control frames. Shells never send data on the feed.
func (h *EventsHandler) readPump(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()

	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
