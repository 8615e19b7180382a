package response

import (
	"time"

	"tasklist/internal/core/domain"
)

type TaskResponse struct {
	ID            int64     `json:"id"`
	Description   string    `json:"description"`
	Deadline      *string   `json:"deadline"`
	DeadlineLabel string    `json:"deadline_label"`
	Completed     bool      `json:"completed"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
}

func NewTaskResponse(task domain.Task) TaskResponse {
	item := TaskResponse{
		ID:            task.ID,
		Description:   task.Description,
		DeadlineLabel: task.DeadlineLabel(),
		Completed:     task.Completed,
		Status:        task.StatusLabel(),
		CreatedAt:     task.CreatedAt,
	}

	if task.HasDeadline() {
		deadline := task.Deadline.String()
		item.Deadline = &deadline
	}

	return item
}

func NewTaskListResponse(tasks []domain.Task) []TaskResponse {
	items := make([]TaskResponse, 0, len(tasks))

	for _, task := range tasks {
		items = append(items, NewTaskResponse(task))
	}

	return items
}

// EventMessage is one frame of the task change feed.
type EventMessage struct {
	Type  string            `json:"type"`
	Event *domain.TaskEvent `json:"event,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type ResponseError struct {
	Code    string            `json:"code"`
	Errors  []ValidationError `json:"errors"`
	Details any               `json:"details,omitempty"`
}

type SuccessResponse struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Error ResponseError `json:"error"`
}
