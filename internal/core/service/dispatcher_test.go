package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/service"
)

type recordingService struct {
	calls []string
	ids   []int64
	value interface{}
}

func (r *recordingService) List(ctx context.Context) ([]domain.Task, error) {
	return nil, nil
}

func (r *recordingService) Add(ctx context.Context, description string, deadline string) error {
	r.calls = append(r.calls, "Add")
	return nil
}

func (r *recordingService) SetCompleted(ctx context.Context, id int64, completed bool) error {
	r.calls = append(r.calls, "SetCompleted")
	r.ids = append(r.ids, id)
	r.value = completed
	return nil
}

func (r *recordingService) Delete(ctx context.Context, id int64) error {
	r.calls = append(r.calls, "Delete")
	r.ids = append(r.ids, id)
	return nil
}

func (r *recordingService) UpdateDeadline(ctx context.Context, id int64, deadline string) error {
	r.calls = append(r.calls, "UpdateDeadline")
	r.ids = append(r.ids, id)
	r.value = deadline
	return nil
}

func TestDispatcher_Dispatch(t *testing.T) {
	completed := true

	t.Run("should route toggle to SetCompleted", func(t *testing.T) {
		rec := &recordingService{}
		err := service.NewDispatcher(rec).Dispatch(context.Background(), domain.RowAction{
			TaskID: 4, Kind: domain.RowActionToggle, Completed: &completed,
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"SetCompleted"}, rec.calls)
		assert.Equal(t, []int64{4}, rec.ids)
		assert.Equal(t, true, rec.value)
	})

	t.Run("should route delete", func(t *testing.T) {
		rec := &recordingService{}
		err := service.NewDispatcher(rec).Dispatch(context.Background(), domain.RowAction{
			TaskID: 9, Kind: domain.RowActionDelete,
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"Delete"}, rec.calls)
	})

	t.Run("should route update_deadline with the raw date", func(t *testing.T) {
		rec := &recordingService{}
		err := service.NewDispatcher(rec).Dispatch(context.Background(), domain.RowAction{
			TaskID: 2, Kind: domain.RowActionUpdateDeadline, Deadline: "2099-05-05",
		})

		assert.NoError(t, err)
		assert.Equal(t, []string{"UpdateDeadline"}, rec.calls)
		assert.Equal(t, "2099-05-05", rec.value)
	})

	t.Run("should reject malformed actions before calling the service", func(t *testing.T) {
		rec := &recordingService{}
		d := service.NewDispatcher(rec)

		var validationErr *domain.ValidationError
		assert.ErrorAs(t, d.Dispatch(context.Background(), domain.RowAction{TaskID: 1, Kind: "archive"}), &validationErr)
		assert.ErrorAs(t, d.Dispatch(context.Background(), domain.RowAction{TaskID: 1, Kind: domain.RowActionToggle}), &validationErr)
		assert.ErrorAs(t, d.Dispatch(context.Background(), domain.RowAction{Kind: domain.RowActionDelete}), &validationErr)
		assert.Empty(t, rec.calls)
	})
}
