package service

import (
	"context"
	"strconv"
	"time"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
	tel "tasklist/internal/core/telemetry"
)

const serviceName = "task"

// TaskService validates user input before it reaches the store and announces
// every successful mutation on the event feed.
type TaskService struct {
	store     port.TaskStore
	telemetry port.Telemetry
	events    port.TaskEvents
	metrics   *tel.AppMetrics
	now       func() time.Time
}

type Option func(*TaskService)

func WithEvents(events port.TaskEvents) Option {
	return func(ts *TaskService) {
		ts.events = events
	}
}

func WithMetrics(metrics *tel.AppMetrics) Option {
	return func(ts *TaskService) {
		ts.metrics = metrics
	}
}

// WithClock replaces time.Now when deciding whether a deadline is in the past.
func WithClock(now func() time.Time) Option {
	return func(ts *TaskService) {
		ts.now = now
	}
}

func NewTaskService(store port.TaskStore, telemetry port.Telemetry, opts ...Option) *TaskService {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	ts := &TaskService{
		store:     store,
		telemetry: telemetry,
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(ts)
	}

	return ts
}

// observe wraps fn in a service span and records its outcome.
func (ts *TaskService) observe(ctx context.Context, operation string, attrs map[string]interface{}, fn func(ctx context.Context) error) error {
	ctx, span := ts.telemetry.StartServiceSpan(ctx, serviceName, operation, attrs)
	defer span.End()

	startTime := time.Now()
	err := fn(ctx)

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
	} else {
		span.SetStatus("ok", "")
	}

	ts.telemetry.RecordServiceOperation(ctx, serviceName, operation, time.Since(startTime), err)

	if ts.metrics != nil {
		ts.metrics.RecordTaskOperation(ctx, operation, err)
	}

	return err
}

func (ts *TaskService) List(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task

	err := ts.observe(ctx, "List", nil, func(ctx context.Context) error {
		var err error
		tasks, err = ts.store.List(ctx)
		return err
	})

	if err != nil {
		return nil, err
	}

	return tasks, nil
}

func (ts *TaskService) Add(ctx context.Context, description string, deadline string) error {
	return ts.observe(ctx, "Add", nil, func(ctx context.Context) error {
		task, err := domain.NewTaskInput(description, deadline, ts.now())

		if err != nil {
			return err
		}

		if err := ts.store.Add(ctx, task); err != nil {
			return err
		}

		ts.announce(ctx, domain.TaskAdded, 0)
		return nil
	})
}

func (ts *TaskService) SetCompleted(ctx context.Context, id int64, completed bool) error {
	attrs := map[string]interface{}{"task.id": id, "task.completed": completed}

	return ts.observe(ctx, "SetCompleted", attrs, func(ctx context.Context) error {
		if err := domain.ValidateID(id); err != nil {
			return err
		}

		if err := ts.store.SetCompleted(ctx, id, completed); err != nil {
			return err
		}

		ts.announce(ctx, domain.TaskCompletionSet, id)
		return nil
	})
}

func (ts *TaskService) Delete(ctx context.Context, id int64) error {
	return ts.observe(ctx, "Delete", map[string]interface{}{"task.id": id}, func(ctx context.Context) error {
		if err := domain.ValidateID(id); err != nil {
			return err
		}

		if err := ts.store.Delete(ctx, id); err != nil {
			return err
		}

		ts.announce(ctx, domain.TaskDeleted, id)
		return nil
	})
}

func (ts *TaskService) UpdateDeadline(ctx context.Context, id int64, deadline string) error {
	return ts.observe(ctx, "UpdateDeadline", map[string]interface{}{"task.id": id}, func(ctx context.Context) error {
		if err := domain.ValidateID(id); err != nil {
			return err
		}

		date, err := domain.ValidateDeadline(deadline, ts.now())

		if err != nil {
			return err
		}

		if err := ts.store.UpdateDeadline(ctx, id, date); err != nil {
			return err
		}

		ts.announce(ctx, domain.TaskDeadlineUpdated, id)
		return nil
	})
}

// announce publishes a change event. A failed publish is logged and never
// undoes or fails the mutation that already happened.
func (ts *TaskService) announce(ctx context.Context, action domain.TaskAction, id int64) {
	ts.telemetry.RecordBusinessEvent(ctx, string(action), serviceName, strconv.FormatInt(id, 10), nil)

	if ts.events == nil {
		return
	}

	event := domain.TaskEvent{Action: action, TaskID: id, At: ts.now()}

	if err := ts.events.Publish(ctx, event); err != nil {
		ts.telemetry.RecordError(ctx, "PublishTaskEvent", err, map[string]interface{}{
			"action":  string(action),
			"task.id": id,
		})
		return
	}

	if ts.metrics != nil {
		ts.metrics.RecordTaskEvent(ctx, string(action))
	}
}
