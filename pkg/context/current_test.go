package context

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCurrent(t *testing.T) {
	current := NewCurrent()
	current.Set(RequestIDKey, "abc")
	current.Set("attempt", 2)

	ctx := WithCurrent(context.Background(), current)
	got, ok := FromContext(ctx)

	assert.True(t, ok)
	assert.Equal(t, "abc", got.RequestID())

	_, ok = got.GetString("attempt")
	assert.False(t, ok)
	assert.Len(t, got.All(), 2)
}

func TestGetCurrent_WithoutValue(t *testing.T) {
	current := GetCurrent(context.Background())

	assert.NotNil(t, current)
	assert.Empty(t, current.RequestID())
}
