package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"

	"tasklist/internal/adapter/events/memory"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/telemetry"
	"tasklist/pkg/config"
	. "tasklist/pkg/test"
)

func newTestServer(t *testing.T) (*Container, nethttp.Handler) {
	db := InitTestDB()
	t.Cleanup(func() { db.Close() })

	metrics := telemetry.NewAppMetrics(prometheus.NewRegistry())
	logger := config.NewNopLogger()

	cfg := config.GetDefaultConfig()
	cfg.RateLimitRequests = 1000

	container := NewContainer(db, memory.NewBroker(4), telemetry.NewNoOpProbe(), metrics, logger, nil)
	t.Cleanup(func() { container.Events.Close() })

	return container, NewServer(container, metrics, logger, cfg).Handler
}

func TestServer_TaskLifecycle(t *testing.T) {
	RegisterTestingT(t)
	container, handler := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	feed, _ := container.Events.Subscribe(ctx)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodPost, "/tasks", strings.NewReader(`{"description":"Buy milk","deadline":"2099-01-01"}`))
	req.Header.Set("Content-Type", "application/json")
	handler.ServeHTTP(w, req)

	Expect(w.Code).To(Equal(nethttp.StatusCreated))
	Expect(w.Header().Get("X-Request-ID")).NotTo(BeEmpty())
	Expect(w.Header().Get("X-RateLimit-Limit")).To(Equal("500"))
	Eventually(feed).Should(Receive())

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/tasks", nil))

	Expect(w.Code).To(Equal(nethttp.StatusOK))

	var body struct {
		Data []map[string]any `json:"data"`
	}
	Expect(json.Unmarshal(w.Body.Bytes(), &body)).To(Succeed())
	Expect(body.Data).To(HaveLen(1))
	Expect(body.Data[0]["description"]).To(Equal("Buy milk"))
	Expect(body.Data[0]["deadline"]).To(Equal("2099-01-01"))
	Expect(body.Data[0]["completed"]).To(Equal(false))
}

func TestServer_Health(t *testing.T) {
	RegisterTestingT(t)
	_, handler := newTestServer(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/health", nil))

	Expect(w.Code).To(Equal(nethttp.StatusOK))
	Expect(w.Body.String()).To(MatchJSON(`{"data":{"status":"ok","database":"sqlite"}}`))
}

func TestServer_CORSPreflight(t *testing.T) {
	_, handler := newTestServer(t)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(nethttp.MethodOptions, "/tasks", nil))

	assert.Equal(t, nethttp.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewEvents(t *testing.T) {
	t.Run("should fall back to the in-process broker", func(t *testing.T) {
		events, err := NewEvents(context.Background(), config.RedisConfig{}, config.NewNopLogger())

		assert.NoError(t, err)
		assert.IsType(t, &memory.Broker{}, events)
	})

	t.Run("should use redis when configured", func(t *testing.T) {
		mr := miniredis.RunT(t)

		events, err := NewEvents(context.Background(), config.RedisConfig{Addr: mr.Addr()}, config.NewNopLogger())
		assert.NoError(t, err)
		defer events.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		feed, err := events.Subscribe(ctx)
		assert.NoError(t, err)
		assert.NoError(t, events.Publish(ctx, domain.TaskEvent{Action: domain.TaskDeleted, TaskID: 3}))

		select {
		case event := <-feed:
			assert.Equal(t, int64(3), event.TaskID)
		case <-time.After(2 * time.Second):
			t.Fatal("event not delivered")
		}
	})

	t.Run("should fail when redis is unreachable", func(t *testing.T) {
		_, err := NewEvents(context.Background(), config.RedisConfig{Addr: "127.0.0.1:1"}, config.NewNopLogger())

		assert.Error(t, err)
	})
}

func TestStartServer_StopsOnCancel(t *testing.T) {
	container, _ := newTestServer(t)
	cfg := config.GetDefaultConfig()
	cfg.Port = "0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- StartServer(ctx, container, nil, config.NewNopLogger(), cfg)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
