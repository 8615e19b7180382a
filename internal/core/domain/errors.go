package domain

import "fmt"

const (
	MsgDescriptionRequired = "Please enter a task description"
	MsgInvalidDate         = "Invalid date format. Please use YYYY-MM-DD"
	MsgPastDeadline        = "Deadline cannot be in the past"
	MsgInvalidID           = "Task id must be a positive integer"
)

// ValidationError rejects user input before it reaches the store.
type ValidationError struct {
	Field   string
	Message string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// PersistenceError wraps any store failure that happens after validation.
type PersistenceError struct {
	Op  string
	Err error
}

func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("task store %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SchemaInitializationError means the store cannot be used at all.
type SchemaInitializationError struct {
	Err error
}

func (e *SchemaInitializationError) Error() string {
	return fmt.Sprintf("database initialization failed: %v", e.Err)
}

func (e *SchemaInitializationError) Unwrap() error {
	return e.Err
}
