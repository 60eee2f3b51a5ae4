package realtime

import (
	"sync"

	"github.com/naviohq/navio/internal/types"
)

// ChangeKind discriminates realtime changes.
type ChangeKind string

const (
	ChangeMessage ChangeKind = "message"
	ChangeEvent   ChangeKind = "event"
	ChangeProfile ChangeKind = "profile"
)

// Change is one realtime delivery. Exactly one payload field is set,
// matching Kind.
type Change struct {
	Kind    ChangeKind
	Topic   string // room guid for messages, message guid for events, user guid for profiles
	Message *types.Message
	Event   *types.Event
	Profile *types.Profile
}

// Handler receives changes. Handlers run on the publisher's goroutine
// and must not block.
type Handler func(Change)

// Subscription is a live bus registration. Unsubscribe is idempotent.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe removes the handler. Safe to call any number of times,
// including concurrently.
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.cancel)
}

type subscriber struct {
	id      int
	kind    ChangeKind
	topic   string // empty matches every topic
	handler Handler
}

// Bus is the in-process realtime fan-out. Publishers and subscribers on
// the same process see each other's changes synchronously; cross-process
// changes arrive via the database watcher.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int]subscriber
}

// NewBus returns an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[int]subscriber)}
}

// Subscribe registers a handler for one change kind on one topic. An
// empty topic subscribes to every topic of that kind.
func (b *Bus) Subscribe(kind ChangeKind, topic string, handler Handler) *Subscription {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = subscriber{id: id, kind: kind, topic: topic, handler: handler}
	b.mu.Unlock()

	return &Subscription{cancel: func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}}
}

// Publish delivers a change to every matching subscriber.
func (b *Bus) Publish(change Change) {
	b.mu.RLock()
	matched := make([]Handler, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub.kind != change.Kind {
			continue
		}
		if sub.topic != "" && sub.topic != change.Topic {
			continue
		}
		matched = append(matched, sub.handler)
	}
	b.mu.RUnlock()

	for _, h := range matched {
		h(change)
	}
}

// SubscriberCount reports live registrations, for leak checks.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
