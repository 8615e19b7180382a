package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"tasklist/internal/core/domain"
	"tasklist/internal/core/port"
)

const DefaultChannel = "tasklist:task-events"

// Broker carries task events over redis pub/sub so shells attached to
// different processes all see the same changes.
type Broker struct {
	client  *redis.Client
	channel string
	logger  *zap.Logger
}

func NewBroker(client *redis.Client, channel string, logger *zap.Logger) port.TaskEvents {
	if channel == "" {
		channel = DefaultChannel
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Broker{
		client:  client,
		channel: channel,
		logger:  logger,
	}
}

func (b *Broker) Publish(ctx context.Context, event domain.TaskEvent) error {
	payload, err := json.Marshal(event)

	if err != nil {
		return err
	}

	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish task event: %w", err)
	}

	return nil
}

// Subscribe waits for redis to confirm the subscription before returning, so
// nothing published afterwards is missed.
func (b *Broker) Subscribe(ctx context.Context) (<-chan domain.TaskEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe task events: %w", err)
	}

	events := make(chan domain.TaskEvent, 16)

	go func() {
		defer close(events)
		defer pubsub.Close()

		messages := pubsub.Channel()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}

				var event domain.TaskEvent

				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("Dropping malformed task event",
						zap.String("channel", msg.Channel),
						zap.Error(err))
					continue
				}

				select {
				case events <- event:
				default:
				}
			}
		}
	}()

	return events, nil
}

func (b *Broker) Close() error {
	return b.client.Close()
}
