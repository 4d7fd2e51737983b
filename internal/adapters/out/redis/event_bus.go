package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	goredis "github.com/redis/go-redis/v9"
)

// EventBus publishes events on Redis pub/sub. Each topic maps to the channel
// prefix+topic and the message body is the JSON payload.
type EventBus struct {
	client goredis.UniversalClient
	prefix string
}

var _ ports.EventBus = (*EventBus)(nil)

func NewEventBus(client goredis.UniversalClient, channelPrefix string) *EventBus {
	return &EventBus{client: client, prefix: channelPrefix}
}

// Channel returns the pub/sub channel used for topic.
func (b *EventBus) Channel(topic string) string {
	return b.prefix + topic
}

func (b *EventBus) Publish(ctx context.Context, event ports.Event) error {
	body, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", event.Topic, err)
	}
	if err := b.client.Publish(ctx, b.Channel(event.Topic), body).Err(); err != nil {
		return errs.NewExternalServiceError(service, err)
	}
	return nil
}
