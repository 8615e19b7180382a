package handler

import (
	"context"
	"net/http"
	"time"

	. "tasklist/internal/adapter/http/helper"
	"tasklist/internal/core/port"

	"github.com/gin-gonic/gin"
)

type HealthHandler struct {
	store  port.TaskStore
	system string
}

func NewHealthHandler(store port.TaskStore, system string) *HealthHandler {
	return &HealthHandler{store: store, system: system}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		SendError(c, http.StatusServiceUnavailable, "UNAVAILABLE", nil, map[string]string{
			"status":   "degraded",
			"database": h.system,
		})
		return
	}

	SendSuccess(c, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": h.system,
	})
}
