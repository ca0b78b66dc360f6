// internal/bus/bus.go
package bus

import (
	"fmt"
	"sync"
)

// SlotsPerTopic is the fixed subscriber capacity of every topic.
const SlotsPerTopic = 10

// Handler consumes published messages. One handler typically serves a
// whole module and demultiplexes on msg.Topic. Handlers are compared by
// interface identity to detect duplicate registration, so implementations
// must be pointer-backed.
type Handler interface {
	HandleMessage(msg Message)
}

type topicSlots struct {
	handlers [SlotsPerTopic]Handler
	count    int
}

// Bus is a synchronous publish/subscribe router. Delivery is an in-place
// call chain on the publisher's goroutine: no queue, no copy, no worker.
//
// The subscriber table is guarded by a mutex. Publish snapshots a topic's
// slots before invoking anyone, so a handler may itself publish
// (re-entry is supported); a handler subscribing mid-publish takes effect
// from the next publish on.
//
// Every contract violation is reported as an error and is a wiring bug:
// callers abort rather than continue. An unheard message is a design
// defect, not a runtime event to swallow.
type Bus struct {
	mu     sync.Mutex
	topics [topicLast + 1]topicSlots
}

// New creates a bus with one empty subscriber table per topic.
func New() *Bus {
	return &Bus{}
}

// Subscribe appends h to the topic's subscriber list. Registration order
// is delivery order. Errors: sentinel/unknown topic, nil handler, h
// already registered for t, or the topic's table full at SlotsPerTopic.
func (b *Bus) Subscribe(t Topic, h Handler) error {
	if !t.valid() {
		return fmt.Errorf("bus: subscribe on invalid topic %d", uint8(t))
	}
	if h == nil {
		return fmt.Errorf("bus: nil handler for topic %s", t)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	slots := &b.topics[t]
	for i := 0; i < slots.count; i++ {
		if slots.handlers[i] == h {
			return fmt.Errorf("bus: handler already subscribed to topic %s", t)
		}
	}
	if slots.count == SlotsPerTopic {
		return fmt.Errorf("bus: topic %s full (%d subscribers)", t, SlotsPerTopic)
	}

	slots.handlers[slots.count] = h
	slots.count++
	return nil
}

// Publish delivers msg synchronously to every subscriber of msg.Topic,
// in registration order, on the caller's goroutine. A publish on a topic
// with zero subscribers is rejected: nobody listening means the wiring
// is wrong.
func (b *Bus) Publish(msg Message) error {
	if !msg.Topic.valid() {
		return fmt.Errorf("bus: publish on invalid topic %d", uint8(msg.Topic))
	}

	b.mu.Lock()
	slots := b.topics[msg.Topic] // array copy: handlers run outside the lock
	b.mu.Unlock()

	if slots.count == 0 {
		return fmt.Errorf("bus: no subscriber for topic %s", msg.Topic)
	}

	for i := 0; i < slots.count; i++ {
		slots.handlers[i].HandleMessage(msg)
	}
	return nil
}
