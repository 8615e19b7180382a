package factory

import (
	"strings"

	fab "github.com/Goldziher/fabricator"
)

// TaskInput is what a shell submits when adding a task.
type TaskInput struct {
	Description string
	Deadline    string
}

// NewTaskInput fabricates a valid add request. Random deadlines would never
// parse, so Deadline defaults to a far future day unless overridden.
func NewTaskInput(customData ...map[string]any) TaskInput {
	instance := fab.New(*new(TaskInput))

	hasDeadline := false

	for _, data := range customData {
		if _, exists := data["Deadline"]; exists {
			hasDeadline = true
			break
		}
	}

	if !hasDeadline {
		customData = append(customData, map[string]any{
			"Deadline": "2099-01-01",
		})
	}

	input := instance.Build(customData...)

	if strings.TrimSpace(input.Description) == "" {
		input.Description = "Water the plants"
	}

	return input
}
