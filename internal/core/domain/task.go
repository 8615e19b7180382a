package domain

import (
	"strings"
	"time"
)

const NoDeadlineLabel = "No deadline"

type Task struct {
	ID          int64
	Description string
	Completed   bool `db:"is_complete"`
	Deadline    *Date
	CreatedAt   time.Time
}

// NewTask is the validated input of an insert.
type NewTask struct {
	Description string
	Deadline    *Date
}

func (t *Task) HasDeadline() bool {
	return t.Deadline != nil
}

func (t *Task) DeadlineLabel() string {
	if t.Deadline == nil {
		return NoDeadlineLabel
	}

	return t.Deadline.String()
}

func (t *Task) StatusLabel() string {
	if t.Completed {
		return "Completed"
	}

	return "Pending"
}

// ValidateDescription trims raw and rejects an empty result.
func ValidateDescription(raw string) (string, error) {
	description := strings.TrimSpace(raw)

	if description == "" {
		return "", NewValidationError("description", MsgDescriptionRequired)
	}

	return description, nil
}

// ValidateDeadline parses raw as YYYY-MM-DD and rejects days before the
// calendar day of now. Today is accepted.
func ValidateDeadline(raw string, now time.Time) (Date, error) {
	deadline, err := ParseDate(strings.TrimSpace(raw))

	if err != nil {
		return Date{}, NewValidationError("deadline", MsgInvalidDate)
	}

	if deadline.Before(DateOf(now)) {
		return Date{}, NewValidationError("deadline", MsgPastDeadline)
	}

	return deadline, nil
}

func ValidateID(id int64) error {
	if id <= 0 {
		return NewValidationError("id", MsgInvalidID)
	}

	return nil
}

func NewTaskInput(description, deadline string, now time.Time) (NewTask, error) {
	desc, err := ValidateDescription(description)

	if err != nil {
		return NewTask{}, err
	}

	date, err := ValidateDeadline(deadline, now)

	if err != nil {
		return NewTask{}, err
	}

	return NewTask{Description: desc, Deadline: &date}, nil
}
