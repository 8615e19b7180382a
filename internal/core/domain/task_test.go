package domain

import (
	"errors"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
)

var today = time.Date(2026, time.October, 18, 15, 30, 0, 0, time.UTC)

func TestValidateDescription(t *testing.T) {
	t.Run("should trim surrounding whitespace", func(t *testing.T) {
		desc, err := ValidateDescription("  Buy milk \n")

		assert.NoError(t, err)
		assert.Equal(t, "Buy milk", desc)
	})

	t.Run("should reject empty and blank descriptions", func(t *testing.T) {
		for _, raw := range []string{"", "   ", "\t\n"} {
			_, err := ValidateDescription(raw)

			var ve *ValidationError
			assert.True(t, errors.As(err, &ve))
			assert.Equal(t, "description", ve.Field)
			assert.Equal(t, MsgDescriptionRequired, ve.Message)
		}
	})
}

func TestValidateDeadline(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should accept a future date", func(t *testing.T) {
		d, err := ValidateDeadline("2099-01-01", today)

		Expect(err).To(BeNil())
		Expect(d.String()).To(Equal("2099-01-01"))
	})

	t.Run("should accept today", func(t *testing.T) {
		d, err := ValidateDeadline(" 2026-10-18 ", today)

		Expect(err).To(BeNil())
		Expect(d.Equal(NewDate(2026, time.October, 18))).To(BeTrue())
	})

	t.Run("should reject yesterday", func(t *testing.T) {
		_, err := ValidateDeadline("2026-10-17", today)

		var ve *ValidationError
		Expect(errors.As(err, &ve)).To(BeTrue())
		Expect(ve.Message).To(Equal(MsgPastDeadline))
	})

	t.Run("should reject unparsable dates", func(t *testing.T) {
		for _, raw := range []string{"", "tomorrow", "2099-13-01", "01/01/2099", "2099-02-30"} {
			_, err := ValidateDeadline(raw, today)

			var ve *ValidationError
			Expect(errors.As(err, &ve)).To(BeTrue(), raw)
			Expect(ve.Field).To(Equal("deadline"))
			Expect(ve.Message).To(Equal(MsgInvalidDate))
		}
	})
}

func TestNewTaskInput(t *testing.T) {
	RegisterTestingT(t)

	input, err := NewTaskInput(" Buy milk ", "2099-01-01", today)

	Expect(err).To(BeNil())
	Expect(input.Description).To(Equal("Buy milk"))
	Expect(input.Deadline).ToNot(BeNil())
	Expect(input.Deadline.String()).To(Equal("2099-01-01"))

	_, err = NewTaskInput("Y", "", today)
	Expect(err).To(HaveOccurred())

	_, err = NewTaskInput("", "2099-01-01", today)
	Expect(err.Error()).To(ContainSubstring("description"))
}

func TestTask_Labels(t *testing.T) {
	t.Run("should render missing deadline and pending status", func(t *testing.T) {
		task := Task{Description: "X"}

		assert.False(t, task.HasDeadline())
		assert.Equal(t, NoDeadlineLabel, task.DeadlineLabel())
		assert.Equal(t, "Pending", task.StatusLabel())
	})

	t.Run("should render deadline and completed status", func(t *testing.T) {
		d := NewDate(2099, time.January, 1)
		task := Task{Description: "X", Deadline: &d, Completed: true}

		assert.Equal(t, "2099-01-01", task.DeadlineLabel())
		assert.Equal(t, "Completed", task.StatusLabel())
	})
}

func TestRowAction_Validate(t *testing.T) {
	yes := true

	assert.NoError(t, RowAction{TaskID: 1, Kind: RowActionToggle, Completed: &yes}.Validate())
	assert.NoError(t, RowAction{TaskID: 1, Kind: RowActionDelete}.Validate())
	assert.NoError(t, RowAction{TaskID: 1, Kind: RowActionUpdateDeadline, Deadline: "2099-01-01"}.Validate())

	assert.Error(t, RowAction{TaskID: 0, Kind: RowActionDelete}.Validate())
	assert.Error(t, RowAction{TaskID: 1, Kind: RowActionToggle}.Validate())
	assert.Error(t, RowAction{TaskID: 1, Kind: "archive"}.Validate())
}

func TestPersistenceError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := error(NewPersistenceError("list", cause))

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "list")
}
