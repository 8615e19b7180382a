package port

import (
	"context"

	"tasklist/internal/core/domain"
)

// TaskStore is the only writer of the tasks table. Every method runs a single
// statement and is safe for concurrent use.
type TaskStore interface {
	EnsureSchema(ctx context.Context) error
	Ping(ctx context.Context) error
	List(ctx context.Context) ([]domain.Task, error)
	Add(ctx context.Context, task domain.NewTask) error
	SetCompleted(ctx context.Context, id int64, completed bool) error
	Delete(ctx context.Context, id int64) error
	UpdateDeadline(ctx context.Context, id int64, deadline domain.Date) error
}

type TaskService interface {
	List(ctx context.Context) ([]domain.Task, error)
	Add(ctx context.Context, description string, deadline string) error
	SetCompleted(ctx context.Context, id int64, completed bool) error
	Delete(ctx context.Context, id int64) error
	UpdateDeadline(ctx context.Context, id int64, deadline string) error
}

type TaskEvents interface {
	Publish(ctx context.Context, event domain.TaskEvent) error
	// Subscribe delivers events until ctx is done, then closes the channel.
	Subscribe(ctx context.Context) (<-chan domain.TaskEvent, error)
	Close() error
}
