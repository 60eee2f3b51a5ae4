// Package events maintains the live per-message reaction and receipt
// summary a message row renders under itself.
package events

import (
	"sync"

	"github.com/naviohq/navio/internal/realtime"
	"github.com/naviohq/navio/internal/types"
)

// unknownActor labels actors the resolver cannot find.
const unknownActor = "Unknown"

// Loader fetches the stored events for a message.
type Loader func(messageID string) ([]types.Event, error)

// NameResolver maps an actor id to a display name.
type NameResolver func(actorID string) (string, bool)

// Summary is the denormalized per-message view.
type Summary struct {
	// Reactions groups actors by emoji, in first-reaction order per emoji.
	Reactions map[string][]types.Actor
	// ReactionOrder lists emoji in first-appearance order, for stable
	// chip rendering.
	ReactionOrder []string
	// Receipts lists actors who have seen the message.
	Receipts []types.Actor
	// Pins and Stars list actors who pinned or starred.
	Pins  []types.Actor
	Stars []types.Actor
}

// Aggregator follows one message at a time. Retargeting to another
// message releases the previous subscription before creating the new
// one; an aggregator never holds more than one.
type Aggregator struct {
	bus     *realtime.Bus
	load    Loader
	resolve NameResolver

	mu         sync.Mutex
	messageID  string
	sub        *realtime.Subscription
	generation int
	events     []types.Event
	nameCache  map[string]string
	onChange   func(Summary)
}

// NewAggregator builds an idle aggregator. onChange fires after every
// summary-affecting update; nil is allowed.
func NewAggregator(bus *realtime.Bus, load Loader, resolve NameResolver, onChange func(Summary)) *Aggregator {
	return &Aggregator{
		bus:       bus,
		load:      load,
		resolve:   resolve,
		nameCache: make(map[string]string),
		onChange:  onChange,
	}
}

// SetMessage retargets the aggregator. Setting the current id again is a
// no-op; setting "" just unsubscribes.
func (a *Aggregator) SetMessage(messageID string) error {
	a.mu.Lock()
	if messageID == a.messageID {
		a.mu.Unlock()
		return nil
	}
	if a.sub != nil {
		a.sub.Unsubscribe()
		a.sub = nil
	}
	a.messageID = messageID
	a.events = nil
	a.generation++
	gen := a.generation
	a.mu.Unlock()

	if messageID == "" {
		a.notify()
		return nil
	}

	stored, err := a.load(messageID)
	if err != nil {
		return err
	}

	a.mu.Lock()
	// A concurrent retarget may have superseded this load.
	if gen != a.generation {
		a.mu.Unlock()
		return nil
	}
	a.events = stored
	a.sub = a.bus.Subscribe(realtime.ChangeEvent, messageID, func(change realtime.Change) {
		if change.Event != nil {
			a.append(gen, *change.Event)
		}
	})
	a.mu.Unlock()

	a.notify()
	return nil
}

func (a *Aggregator) append(gen int, ev types.Event) {
	a.mu.Lock()
	if gen != a.generation {
		a.mu.Unlock()
		return
	}
	a.events = append(a.events, ev)
	a.mu.Unlock()
	a.notify()
}

// Summary computes the current grouped view.
func (a *Aggregator) Summary() Summary {
	a.mu.Lock()
	events := make([]types.Event, len(a.events))
	copy(events, a.events)
	a.mu.Unlock()

	s := Summary{Reactions: make(map[string][]types.Actor)}

	// One logical entry per (actor, emoji) and per (actor, kind) for the
	// other kinds, regardless of duplicate rows underneath.
	seenReaction := make(map[[2]string]struct{})
	seenKind := make(map[[2]string]struct{})

	for _, ev := range events {
		switch ev.Kind {
		case types.EventEmoji:
			if ev.Payload == "" {
				continue
			}
			key := [2]string{ev.Actor, ev.Payload}
			if _, dup := seenReaction[key]; dup {
				continue
			}
			seenReaction[key] = struct{}{}
			if _, known := s.Reactions[ev.Payload]; !known {
				s.ReactionOrder = append(s.ReactionOrder, ev.Payload)
			}
			s.Reactions[ev.Payload] = append(s.Reactions[ev.Payload], a.actor(ev.Actor))
		case types.EventReceipt:
			if !markKind(seenKind, ev.Actor, "receipt") {
				continue
			}
			s.Receipts = append(s.Receipts, a.actor(ev.Actor))
		case types.EventPin:
			if !markKind(seenKind, ev.Actor, "pin") {
				continue
			}
			s.Pins = append(s.Pins, a.actor(ev.Actor))
		case types.EventStar:
			if !markKind(seenKind, ev.Actor, "star") {
				continue
			}
			s.Stars = append(s.Stars, a.actor(ev.Actor))
		}
	}
	return s
}

func markKind(seen map[[2]string]struct{}, actor, kind string) bool {
	key := [2]string{actor, kind}
	if _, dup := seen[key]; dup {
		return false
	}
	seen[key] = struct{}{}
	return true
}

// actor resolves and caches a display name. Callers hold no lock; the
// cache has its own critical section via the aggregator mutex.
func (a *Aggregator) actor(id string) types.Actor {
	a.mu.Lock()
	name, cached := a.nameCache[id]
	a.mu.Unlock()
	if !cached {
		resolved, ok := a.resolve(id)
		if !ok {
			resolved = unknownActor
		}
		name = resolved
		a.mu.Lock()
		a.nameCache[id] = name
		a.mu.Unlock()
	}
	return types.Actor{ID: id, Name: name}
}

func (a *Aggregator) notify() {
	if a.onChange != nil {
		a.onChange(a.Summary())
	}
}

// Close releases the live subscription.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.sub != nil {
		a.sub.Unsubscribe()
		a.sub = nil
	}
	a.generation++
	a.messageID = ""
	a.events = nil
}
