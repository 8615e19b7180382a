package request

// Field rules here only check the shape of a request. Description and
// deadline content is validated by the task service.

type AddTaskRequest struct {
	Description string `json:"description"`
	Deadline    string `json:"deadline"`
}

type SetCompletedRequest struct {
	Completed *bool `json:"completed" validate:"required"`
}

type UpdateDeadlineRequest struct {
	Deadline string `json:"deadline"`
}

type RowActionRequest struct {
	Action    string `json:"action" validate:"required,oneof=toggle delete update_deadline"`
	Completed *bool  `json:"completed,omitempty"`
	Deadline  string `json:"deadline,omitempty"`
}
