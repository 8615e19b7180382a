package memory

import (
	"context"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"

	"tasklist/internal/core/domain"
)

func TestBroker_PublishReachesEverySubscriber(t *testing.T) {
	RegisterTestingT(t)
	broker := NewBroker(4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := broker.Subscribe(ctx)
	assert.NoError(t, err)
	second, err := broker.Subscribe(ctx)
	assert.NoError(t, err)

	event := domain.TaskEvent{Action: domain.TaskDeleted, TaskID: 3, At: time.Now()}
	assert.NoError(t, broker.Publish(ctx, event))

	Eventually(first).Should(Receive(Equal(event)))
	Eventually(second).Should(Receive(Equal(event)))
}

func TestBroker_CancelClosesChannel(t *testing.T) {
	RegisterTestingT(t)
	broker := NewBroker(1)
	ctx, cancel := context.WithCancel(context.Background())

	events, err := broker.Subscribe(ctx)
	assert.NoError(t, err)

	cancel()

	Eventually(events).Should(BeClosed())
	assert.NoError(t, broker.Publish(context.Background(), domain.TaskEvent{Action: domain.TaskAdded}))
}

func TestBroker_SlowSubscriberDoesNotBlock(t *testing.T) {
	RegisterTestingT(t)
	broker := NewBroker(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _ := broker.Subscribe(ctx)

	for i := 0; i < 10; i++ {
		assert.NoError(t, broker.Publish(ctx, domain.TaskEvent{Action: domain.TaskAdded}))
	}

	Expect(events).To(HaveLen(1))
}

func TestBroker_Close(t *testing.T) {
	RegisterTestingT(t)
	broker := NewBroker(1)

	events, _ := broker.Subscribe(context.Background())

	assert.NoError(t, broker.Close())
	assert.NoError(t, broker.Close())

	Eventually(events).Should(BeClosed())
	assert.ErrorIs(t, broker.Publish(context.Background(), domain.TaskEvent{}), ErrClosed)

	_, err := broker.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
}
