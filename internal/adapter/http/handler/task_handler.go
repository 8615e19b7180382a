package handler

import (
	"context"
	"errors"
	"net/http"

	. "tasklist/internal/adapter/http/helper"
	. "tasklist/internal/adapter/http/validation"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/model/request"
	"tasklist/internal/core/model/response"
	"tasklist/internal/core/port"
	"tasklist/internal/core/util"
	"tasklist/pkg/config"
	. "tasklist/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// RowDispatcher runs a row action against the task service.
type RowDispatcher interface {
	Dispatch(ctx context.Context, action domain.RowAction) error
}

type TaskHandler struct {
	svc        port.TaskService
	dispatcher RowDispatcher
	Logger     *config.LokiLogger
}

func NewTaskHandler(svc port.TaskService, dispatcher RowDispatcher, logger *config.LokiLogger) *TaskHandler {
	if logger == nil {
		logger = config.NewNopLogger()
	}

	return &TaskHandler{
		svc:        svc,
		dispatcher: dispatcher,
		Logger:     logger,
	}
}

// fail logs store failures only, rejected input is not worth an error line.
func (t *TaskHandler) fail(c *gin.Context, ctx context.Context, msg string, err error) {
	var validationErr *domain.ValidationError

	if !errors.As(err, &validationErr) {
		t.Logger.Logger.Ctx(ctx).Error(msg, zap.Error(err))
	}

	SendServiceError(c, err)
}

func (t *TaskHandler) ListTasks(c *gin.Context) {
	ctx, span := CreateChildSpan(c.Request.Context(), "handler.task.ListTasks", []attribute.KeyValue{
		attribute.String("handler.operation", "ListTasks"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})

	defer span.End()

	tasks, err := t.svc.List(ctx)

	if err != nil {
		AddSpanError(span, err)
		t.fail(c, ctx, "Failed to list tasks", err)
		return
	}

	span.SetAttributes(
		attribute.Int("http.status_code", http.StatusOK),
		attribute.Int("task.count", len(tasks)),
	)

	SendSuccess(c, http.StatusOK, response.NewTaskListResponse(tasks))
}

func (t *TaskHandler) CreateTask(c *gin.Context) {
	ctx := c.Request.Context()

	params, err := util.ParamsToMap[request.AddTaskRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	if err := t.svc.Add(ctx, params.Description, params.Deadline); err != nil {
		t.fail(c, ctx, "Failed to add task", err)
		return
	}

	SendSuccess(c, http.StatusCreated, nil, "Task added")
}

func (t *TaskHandler) SetCompleted(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := util.ParamID(c, "id")

	if !ok {
		SendBadRequestError(c, "id", domain.MsgInvalidID)
		return
	}

	params, err := util.ParamsToMap[request.SetCompletedRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	if err := t.svc.SetCompleted(ctx, id, *params.Completed); err != nil {
		t.fail(c, ctx, "Failed to update task status", err)
		return
	}

	SendSuccess(c, http.StatusOK, nil, "Task updated")
}

func (t *TaskHandler) UpdateDeadline(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := util.ParamID(c, "id")

	if !ok {
		SendBadRequestError(c, "id", domain.MsgInvalidID)
		return
	}

	params, err := util.ParamsToMap[request.UpdateDeadlineRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	if err := t.svc.UpdateDeadline(ctx, id, params.Deadline); err != nil {
		t.fail(c, ctx, "Failed to update task deadline", err)
		return
	}

	SendSuccess(c, http.StatusOK, nil, "Deadline updated")
}

func (t *TaskHandler) DeleteTask(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := util.ParamID(c, "id")

	if !ok {
		SendBadRequestError(c, "id", domain.MsgInvalidID)
		return
	}

	if err := t.svc.Delete(ctx, id); err != nil {
		t.fail(c, ctx, "Failed to delete task", err)
		return
	}

	SendSuccess(c, http.StatusOK, nil, "Task deleted")
}

// RowAction accepts the same action a table row button would emit.
func (t *TaskHandler) RowAction(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := util.ParamID(c, "id")

	if !ok {
		SendBadRequestError(c, "id", domain.MsgInvalidID)
		return
	}

	params, err := util.ParamsToMap[request.RowActionRequest](c)

	if err != nil {
		SendBadRequestError(c, "request", "Invalid request parameters")
		return
	}

	if err := Validator.Struct(params); err != nil {
		SendValidationError(c, err)
		return
	}

	action := domain.RowAction{
		TaskID:    id,
		Kind:      domain.RowActionKind(params.Action),
		Completed: params.Completed,
		Deadline:  params.Deadline,
	}

	if err := t.dispatcher.Dispatch(ctx, action); err != nil {
		t.fail(c, ctx, "Failed to run row action", err)
		return
	}

	SendSuccess(c, http.StatusOK, nil, "Action applied")
}
