package domain

import (
	"fmt"
	"time"
)

type TaskAction string

const (
	TaskAdded           TaskAction = "added"
	TaskCompletionSet   TaskAction = "completion_set"
	TaskDeleted         TaskAction = "deleted"
	TaskDeadlineUpdated TaskAction = "deadline_updated"
)

// TaskEvent tells shells that the task list changed and should be re-listed.
// TaskID is zero for inserts, the store does not report the new id.
type TaskEvent struct {
	Action TaskAction `json:"action"`
	TaskID int64      `json:"task_id,omitempty"`
	At     time.Time  `json:"at"`
}

type RowActionKind string

const (
	RowActionToggle         RowActionKind = "toggle"
	RowActionDelete         RowActionKind = "delete"
	RowActionUpdateDeadline RowActionKind = "update_deadline"
)

// RowAction is what a shell emits when the user acts on one row of the list.
type RowAction struct {
	TaskID    int64
	Kind      RowActionKind
	Completed *bool
	Deadline  string
}

func (a RowAction) Validate() error {
	if err := ValidateID(a.TaskID); err != nil {
		return err
	}

	switch a.Kind {
	case RowActionToggle:
		if a.Completed == nil {
			return NewValidationError("completed", "Completed flag is required for toggle")
		}
	case RowActionDelete, RowActionUpdateDeadline:
	default:
		return NewValidationError("action", fmt.Sprintf("Unknown action %q", a.Kind))
	}

	return nil
}
