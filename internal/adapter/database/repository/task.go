package repository

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"

	"tasklist/internal/adapter/database"
	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
	tel "tasklist/internal/core/telemetry"
)

const (
	tasksTable = "tasks"
	entity     = "task"
)

var taskColumns = []string{"id", "description", "is_complete", "deadline", "created_at"}

type TaskRepository struct {
	db        *database.DB
	telemetry port.Telemetry
	metrics   *tel.AppMetrics
}

type Option func(*TaskRepository)

// WithMetrics counts successful statements in database_operations_total.
func WithMetrics(metrics *tel.AppMetrics) Option {
	return func(tr *TaskRepository) {
		tr.metrics = metrics
	}
}

func NewTaskRepository(db *database.DB, telemetry port.Telemetry, opts ...Option) port.TaskStore {
	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	tr := &TaskRepository{
		db:        db,
		telemetry: telemetry,
	}

	for _, opt := range opts {
		opt(tr)
	}

	return tr
}

func (tr *TaskRepository) startSpan(ctx context.Context, operation string, attrs map[string]interface{}) (context.Context, port.Span) {
	base := map[string]interface{}{
		"db.system": tr.db.System,
		"db.table":  tasksTable,
	}

	for k, v := range attrs {
		base[k] = v
	}

	return tr.telemetry.StartRepositorySpan(ctx, operation, entity, base)
}

// fail marks the span and wraps err so callers only ever see PersistenceError.
func (tr *TaskRepository) fail(ctx context.Context, span port.Span, operation string, startTime time.Time, err error) error {
	span.SetStatus("error", err.Error())
	span.RecordError(err)
	tr.telemetry.RecordRepositoryOperation(ctx, operation, entity, time.Since(startTime), err)

	return domain.NewPersistenceError(operation, err)
}

func (tr *TaskRepository) succeed(ctx context.Context, span port.Span, operation string, startTime time.Time) {
	span.SetStatus("ok", "")
	tr.telemetry.RecordRepositoryOperation(ctx, operation, entity, time.Since(startTime), nil)

	if tr.metrics != nil {
		tr.metrics.RecordDatabaseOperation(ctx, operation, tasksTable)
	}
}

func (tr *TaskRepository) EnsureSchema(ctx context.Context) error {
	ctx, span := tr.startSpan(ctx, "EnsureSchema", nil)
	defer span.End()

	startTime := time.Now()

	if err := tr.db.EnsureSchema(ctx); err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.telemetry.RecordRepositoryOperation(ctx, "EnsureSchema", entity, time.Since(startTime), err)
		return err
	}

	tr.succeed(ctx, span, "EnsureSchema", startTime)
	return nil
}

func (tr *TaskRepository) Ping(ctx context.Context) error {
	if err := tr.db.PingContext(ctx); err != nil {
		return domain.NewPersistenceError("Ping", err)
	}

	return nil
}

// List returns every task by deadline ascending. Tasks without a deadline
// come last and ties keep insertion order.
func (tr *TaskRepository) List(ctx context.Context) ([]domain.Task, error) {
	ctx, span := tr.startSpan(ctx, "List", nil)
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Select(taskColumns...).
		From(tasksTable).
		OrderBy("deadline IS NULL", "deadline ASC", "id ASC").
		ToSql()

	if err != nil {
		return nil, tr.fail(ctx, span, "List", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "List", entity, query, args)

	rows, err := tr.db.QueryContext(ctx, query, args...)

	if err != nil {
		return nil, tr.fail(ctx, span, "List", startTime, err)
	}

	defer rows.Close()

	tasks := []domain.Task{}

	for rows.Next() {
		var task domain.Task

		if err := rows.Scan(&task.ID, &task.Description, &task.Completed, &task.Deadline, &task.CreatedAt); err != nil {
			return nil, tr.fail(ctx, span, "List", startTime, err)
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, tr.fail(ctx, span, "List", startTime, err)
	}

	span.SetAttributes(map[string]interface{}{
		"db.rows_returned": len(tasks),
	})

	tr.succeed(ctx, span, "List", startTime)
	return tasks, nil
}

func (tr *TaskRepository) Add(ctx context.Context, task domain.NewTask) error {
	ctx, span := tr.startSpan(ctx, "Add", map[string]interface{}{
		"task.has_deadline": task.Deadline != nil,
	})
	defer span.End()

	startTime := time.Now()

	var deadline interface{}
	if task.Deadline != nil {
		deadline = *task.Deadline
	}

	query, args, err := tr.db.QueryBuilder.Insert(tasksTable).
		Columns("description", "deadline").
		Values(task.Description, deadline).
		ToSql()

	if err != nil {
		return tr.fail(ctx, span, "Add", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Add", entity, query, args)

	if _, err := tr.db.ExecContext(ctx, query, args...); err != nil {
		return tr.fail(ctx, span, "Add", startTime, err)
	}

	tr.succeed(ctx, span, "Add", startTime)
	return nil
}

func (tr *TaskRepository) SetCompleted(ctx context.Context, id int64, completed bool) error {
	return tr.update(ctx, "SetCompleted", id, map[string]interface{}{"is_complete": completed})
}

func (tr *TaskRepository) UpdateDeadline(ctx context.Context, id int64, deadline domain.Date) error {
	return tr.update(ctx, "UpdateDeadline", id, map[string]interface{}{"deadline": deadline})
}

// update touches only the given columns. Zero matched rows is not an error.
func (tr *TaskRepository) update(ctx context.Context, operation string, id int64, values map[string]interface{}) error {
	ctx, span := tr.startSpan(ctx, operation, map[string]interface{}{
		"task.id": id,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Update(tasksTable).
		SetMap(values).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return tr.fail(ctx, span, operation, startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, operation, entity, query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return tr.fail(ctx, span, operation, startTime, err)
	}

	tr.recordAffected(span, result)
	tr.succeed(ctx, span, operation, startTime)
	return nil
}

func (tr *TaskRepository) Delete(ctx context.Context, id int64) error {
	ctx, span := tr.startSpan(ctx, "Delete", map[string]interface{}{
		"task.id": id,
	})
	defer span.End()

	startTime := time.Now()

	query, args, err := tr.db.QueryBuilder.Delete(tasksTable).
		Where(sq.Eq{"id": id}).
		ToSql()

	if err != nil {
		return tr.fail(ctx, span, "Delete", startTime, err)
	}

	tr.telemetry.RecordRepositoryQuery(ctx, "Delete", entity, query, args)

	result, err := tr.db.ExecContext(ctx, query, args...)

	if err != nil {
		return tr.fail(ctx, span, "Delete", startTime, err)
	}

	tr.recordAffected(span, result)
	tr.succeed(ctx, span, "Delete", startTime)
	return nil
}

func (tr *TaskRepository) recordAffected(span port.Span, result sql.Result) {
	if affected, err := result.RowsAffected(); err == nil {
		span.SetAttributes(map[string]interface{}{
			"db.rows_affected": affected,
		})
	}
}
