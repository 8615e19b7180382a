package service

import (
	"context"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
)

// Dispatcher turns a row action emitted by a shell into the matching
// service call.
type Dispatcher struct {
	tasks port.TaskService
}

func NewDispatcher(tasks port.TaskService) *Dispatcher {
	return &Dispatcher{tasks: tasks}
}

func (d *Dispatcher) Dispatch(ctx context.Context, action domain.RowAction) error {
	if err := action.Validate(); err != nil {
		return err
	}

	switch action.Kind {
	case domain.RowActionToggle:
		return d.tasks.SetCompleted(ctx, action.TaskID, *action.Completed)
	case domain.RowActionDelete:
		return d.tasks.Delete(ctx, action.TaskID)
	default:
		return d.tasks.UpdateDeadline(ctx, action.TaskID, action.Deadline)
	}
}
