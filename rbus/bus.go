// Package rbus is a synchronous, single-threaded publish/subscribe bus.
//
// Delivery happens inline on the publishing goroutine, in subscription order.
// Handlers may publish, subscribe or unsubscribe while a delivery is in
// progress; such changes take effect for the next Publish call.
//
// Bus is NOT safe for concurrent use. It belongs to the rendering context
// that owns the graph.
package rbus

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/birdayz/rendergraph/internal/ids"
)

var ErrSubscriptionNotFound = errors.New("subscription not found")

// Topic names a stream of events.
type Topic string

// Handler receives a published payload.
type Handler func(topic Topic, payload any)

// Subscription identifies one registered handler.
type Subscription struct {
	Topic Topic
	id    uint64
}

// Publisher is the publishing half of a bus.
type Publisher interface {
	Publish(topic Topic, payload any)
}

// Subscriber is the subscribing half of a bus.
type Subscriber interface {
	Subscribe(topic Topic, h Handler) Subscription
	Unsubscribe(sub Subscription) error
}

type entry struct {
	id uint64
	h  Handler
}

// Bus is the default in-process implementation of Publisher and Subscriber.
type Bus struct {
	log      *slog.Logger
	handlers map[Topic][]entry
	wildcard []entry
	next     ids.Counter[uint64]
}

// Any subscribes to every topic.
const Any Topic = "*"

// New creates an empty bus. A nil logger discards output.
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Bus{
		log:      log,
		handlers: map[Topic][]entry{},
	}
}

// Subscribe registers h for topic. Subscribing to Any receives every event
// after the topic specific handlers.
func (b *Bus) Subscribe(topic Topic, h Handler) Subscription {
	e := entry{id: b.next.Next(), h: h}
	if topic == Any {
		b.wildcard = append(b.wildcard, e)
	} else {
		b.handlers[topic] = append(b.handlers[topic], e)
	}
	return Subscription{Topic: topic, id: e.id}
}

// Unsubscribe removes a handler registered with Subscribe.
func (b *Bus) Unsubscribe(sub Subscription) error {
	list := b.handlers[sub.Topic]
	if sub.Topic == Any {
		list = b.wildcard
	}

	idx := slices.IndexFunc(list, func(e entry) bool { return e.id == sub.id })
	if idx < 0 {
		return fmt.Errorf("%w: %s#%d", ErrSubscriptionNotFound, sub.Topic, sub.id)
	}

	// Never modify the backing array in place: an in-flight Publish may
	// still be iterating over it.
	list = slices.Concat(list[:idx], list[idx+1:])

	switch {
	case sub.Topic == Any:
		b.wildcard = list
	case len(list) == 0:
		delete(b.handlers, sub.Topic)
	default:
		b.handlers[sub.Topic] = list
	}
	return nil
}

// Publish delivers payload to every handler subscribed to topic.
func (b *Bus) Publish(topic Topic, payload any) {
	list := b.handlers[topic]
	wild := b.wildcard
	if len(list) == 0 && len(wild) == 0 {
		return
	}
	b.log.Debug("Publish", "topic", topic, "handlers", len(list)+len(wild))

	for _, e := range list {
		e.h(topic, payload)
	}
	for _, e := range wild {
		e.h(topic, payload)
	}
}

// Len returns the number of handlers subscribed to topic.
func (b *Bus) Len(topic Topic) int {
	if topic == Any {
		return len(b.wildcard)
	}
	return len(b.handlers[topic])
}

var (
	_ Publisher  = (*Bus)(nil)
	_ Subscriber = (*Bus)(nil)
)
