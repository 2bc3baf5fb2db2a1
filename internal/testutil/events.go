package testutil

import (
	"context"
	"sync"

	"github.com/Skotchmaster/book_club/internal/events"
)

type PublishedEvent struct {
	Topic string
	Key   string
	Event events.Event
}

// Events records every published event.
type Events struct {
	mu  sync.Mutex
	All []PublishedEvent
}

func (e *Events) Publish(_ context.Context, topic, key string, event events.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.All = append(e.All, PublishedEvent{Topic: topic, Key: key, Event: event})
}

// Types returns the "type" of every recorded event in publish order.
func (e *Events) Types() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.All))
	for _, ev := range e.All {
		s, _ := ev.Event["type"].(string)
		out = append(out, s)
	}
	return out
}
