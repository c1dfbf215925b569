// Package eventbus implements the filtered, non-blocking event
// broadcast that ties agents, tasks, and external observers together.
package eventbus

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/routa-core/routa/internal/store"
)

// DefaultBufferSize is the per-subscriber bounded channel capacity.
const DefaultBufferSize = 256

type subscriber struct {
	sub      store.Subscription
	ch       chan store.Event
	overflow atomic.Int64
	mu       sync.Mutex // guards drop-oldest compaction of ch and closed
	closed   bool
}

// Bus is the filtered event broadcast for one workspace.
type Bus struct {
	mu          sync.RWMutex
	subs        map[string]*subscriber
	bufferSize  int
}

// New builds an empty Bus with the default per-subscriber buffer size.
func New() *Bus {
	return &Bus{subs: make(map[string]*subscriber), bufferSize: DefaultBufferSize}
}

// NewWithBufferSize builds a Bus with a custom per-subscriber buffer.
func NewWithBufferSize(n int) *Bus {
	if n <= 0 {
		n = DefaultBufferSize
	}
	return &Bus{subs: make(map[string]*subscriber), bufferSize: n}
}

// Subscribe registers a new filtered subscription and returns its id.
func (b *Bus) Subscribe(subscriberAgentID, name string, globs []string, excludeSelf bool) string {
	id := uuid.NewString()
	s := &subscriber{
		sub: store.Subscription{
			ID:                id,
			SubscriberAgentID: subscriberAgentID,
			SubscriberName:    name,
			EventTypeGlobs:    append([]string(nil), globs...),
			ExcludeSelf:       excludeSelf,
		},
		ch: make(chan store.Event, b.bufferSize),
	}
	b.mu.Lock()
	b.subs[id] = s
	b.mu.Unlock()
	return id
}

// Unsubscribe removes a subscription; idempotent.
func (b *Bus) Unsubscribe(subscriptionID string) {
	b.mu.Lock()
	s, ok := b.subs[subscriptionID]
	if ok {
		delete(b.subs, subscriptionID)
	}
	b.mu.Unlock()
	if !ok {
		return
	}
	// Closing under s.mu serializes against deliver, which checks
	// s.closed before every send: a Publish snapshot taken just before
	// this Unsubscribe can no longer race a send onto a closed channel.
	s.mu.Lock()
	s.closed = true
	close(s.ch)
	s.mu.Unlock()
}

// Channel returns the delivery channel for a live subscription, or
// nil, false if it does not exist.
func (b *Bus) Channel(subscriptionID string) (<-chan store.Event, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.subs[subscriptionID]
	if !ok {
		return nil, false
	}
	return s.ch, true
}

// OverflowCount returns the number of events dropped for overflow on
// a given subscription.
func (b *Bus) OverflowCount(subscriptionID string) int64 {
	b.mu.RLock()
	s, ok := b.subs[subscriptionID]
	b.mu.RUnlock()
	if !ok {
		return 0
	}
	return s.overflow.Load()
}

// Publish delivers event to every matching live subscriber without
// blocking the publisher. On a full buffer, the oldest undelivered
// event is dropped to make room and the subscription's overflow
// counter is incremented.
func (b *Bus) Publish(event store.Event) {
	b.mu.RLock()
	targets := make([]*subscriber, 0, len(b.subs))
	for _, s := range b.subs {
		if s.sub.ExcludeSelf && event.SourceAgentID != "" && event.SourceAgentID == s.sub.SubscriberAgentID {
			continue
		}
		if !matchAny(s.sub.EventTypeGlobs, event.Type) {
			continue
		}
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	for _, s := range targets {
		s.deliver(event)
	}
}

func (s *subscriber) deliver(event store.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.ch <- event:
		return
	default:
	}
	// Buffer full: drop the oldest queued event, then enqueue.
	select {
	case <-s.ch:
		s.overflow.Add(1)
	default:
	}
	select {
	case s.ch <- event:
	default:
		// Raced with a concurrent receive emptying the buffer again;
		// the event is simply not delivered this cycle.
		s.overflow.Add(1)
	}
}
