// Package events publishes domain events. A failed publish is logged and
// counted; it never fails the operation that raised the event.
package events

import (
	"context"

	"github.com/Skotchmaster/book_club/pkg/kafka"
	"github.com/Skotchmaster/book_club/pkg/logging"
	"github.com/Skotchmaster/book_club/pkg/metrics"
)

const (
	TopicUsers    = kafka.TopicUserEvents
	TopicProducts = kafka.TopicProductEvents
	TopicCarts    = kafka.TopicCartEvents
)

// Event is the JSON payload; it always carries a "type" key.
type Event map[string]any

type Publisher interface {
	Publish(ctx context.Context, topic, key string, event Event)
}

type Nop struct{}

func (Nop) Publish(context.Context, string, string, Event) {}

type Sender interface {
	PublishEvent(ctx context.Context, topic, key string, event any) error
}

type Kafka struct {
	Producer Sender
}

func NewKafka(p Sender) *Kafka {
	return &Kafka{Producer: p}
}

func (k *Kafka) Publish(ctx context.Context, topic, key string, event Event) {
	if err := k.Producer.PublishEvent(ctx, topic, key, event); err != nil {
		metrics.EventPublishErrors.WithLabelValues(topic).Inc()
		logging.FromContext(ctx).Error().
			Err(err).
			Str("topic", topic).
			Str("key", key).
			Interface("event_type", event["type"]).
			Msg("event_publish_failed")
	}
}
