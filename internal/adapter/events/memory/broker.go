package memory

import (
	"context"
	"errors"
	"sync"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
)

const defaultBuffer = 16

var ErrClosed = errors.New("event broker closed")

// Broker fans task events out to in-process subscribers. A subscriber that
// falls behind loses events instead of blocking publishers.
type Broker struct {
	mu          sync.Mutex
	subscribers map[chan domain.TaskEvent]struct{}
	buffer      int
	closed      bool
	done        chan struct{}
}

func NewBroker(buffer int) port.TaskEvents {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	return &Broker{
		subscribers: make(map[chan domain.TaskEvent]struct{}),
		buffer:      buffer,
		done:        make(chan struct{}),
	}
}

func (b *Broker) Publish(ctx context.Context, event domain.TaskEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}

	for ch := range b.subscribers {
		select {
		case ch <- event:
		default:
		}
	}

	return nil
}

func (b *Broker) Subscribe(ctx context.Context) (<-chan domain.TaskEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	ch := make(chan domain.TaskEvent, b.buffer)
	b.subscribers[ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
			b.unsubscribe(ch)
		case <-b.done:
		}
	}()

	return ch, nil
}

func (b *Broker) unsubscribe(ch chan domain.TaskEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.subscribers[ch]; ok {
		delete(b.subscribers, ch)
		close(ch)
	}
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}

	b.closed = true
	close(b.done)

	for ch := range b.subscribers {
		delete(b.subscribers, ch)
		close(ch)
	}

	return nil
}
