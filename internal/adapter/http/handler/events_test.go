package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasklist/internal/adapter/events/memory"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/response"
	"tasklist/internal/core/telemetry"
)

func serveEvents(t *testing.T, h *EventsHandler) string {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/tasks/events", h.Stream)

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)

	return server.URL
}

func dial(t *testing.T, serverURL string, header http.Header) (*websocket.Conn, *http.Response, error) {
	url := "ws" + strings.TrimPrefix(serverURL, "http") + "/tasks/events"
	conn, resp, err := websocket.DefaultDialer.Dial(url, header)

	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}

	return conn, resp, err
}

func dialEvents(t *testing.T, h *EventsHandler) *websocket.Conn {
	conn, _, err := dial(t, serveEvents(t, h), nil)
	require.NoError(t, err)

	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) response.EventMessage {
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	var msg response.EventMessage
	require.NoError(t, conn.ReadJSON(&msg))

	return msg
}

func TestEventsHandler_Stream(t *testing.T) {
	broker := memory.NewBroker(4)
	defer broker.Close()

	metrics := telemetry.NewAppMetrics(prometheus.NewRegistry())
	conn := dialEvents(t, NewEventsHandler(broker, metrics, nil, nil))

	ready := readMessage(t, conn)
	assert.Equal(t, "ready", ready.Type)

	published := domain.TaskEvent{Action: domain.TaskCompletionSet, TaskID: 5, At: time.Now().UTC()}
	require.NoError(t, broker.Publish(context.Background(), published))

	msg := readMessage(t, conn)
	assert.Equal(t, "task.changed", msg.Type)
	require.NotNil(t, msg.Event)
	assert.Equal(t, domain.TaskCompletionSet, msg.Event.Action)
	assert.Equal(t, int64(5), msg.Event.TaskID)
}

func TestEventsHandler_ClosedBroker(t *testing.T) {
	broker := memory.NewBroker(1)
	broker.Close()

	conn := dialEvents(t, NewEventsHandler(broker, nil, nil, nil))
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	_, _, err := conn.ReadMessage()

	assert.True(t, websocket.IsCloseError(err, websocket.CloseInternalServerErr))
}

func TestEventsHandler_Origins(t *testing.T) {
	broker := memory.NewBroker(1)
	defer broker.Close()

	serverURL := serveEvents(t, NewEventsHandler(broker, nil, nil, []string{"http://shell.example/"}))

	t.Run("should reject a foreign origin", func(t *testing.T) {
		_, resp, err := dial(t, serverURL, http.Header{"Origin": {"http://evil.example"}})

		assert.ErrorIs(t, err, websocket.ErrBadHandshake)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("should accept the API's own host", func(t *testing.T) {
		conn, _, err := dial(t, serverURL, http.Header{"Origin": {serverURL}})
		require.NoError(t, err)

		assert.Equal(t, "ready", readMessage(t, conn).Type)
	})

	t.Run("should accept a configured origin", func(t *testing.T) {
		conn, _, err := dial(t, serverURL, http.Header{"Origin": {"http://shell.example"}})
		require.NoError(t, err)

		assert.Equal(t, "ready", readMessage(t, conn).Type)
	})
}
