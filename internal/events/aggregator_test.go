package events

import (
	"testing"

	"github.com/naviohq/navio/internal/realtime"
	"github.com/naviohq/navio/internal/types"
)

func newTestAggregator(t *testing.T, stored map[string][]types.Event) (*Aggregator, *realtime.Bus) {
	t.Helper()
	bus := realtime.NewBus()
	load := func(messageID string) ([]types.Event, error) {
		return stored[messageID], nil
	}
	names := map[string]string{"usr-1": "Alice", "usr-2": "Bob"}
	resolve := func(actorID string) (string, bool) {
		name, ok := names[actorID]
		return name, ok
	}
	agg := NewAggregator(bus, load, resolve, nil)
	t.Cleanup(agg.Close)
	return agg, bus
}

func TestSummaryGroupsByEmoji(t *testing.T) {
	agg, _ := newTestAggregator(t, map[string][]types.Event{
		"msg-1": {
			{ID: "evt-1", MessageID: "msg-1", Actor: "usr-1", Kind: types.EventEmoji, Payload: "👍", CreatedAt: 1},
			{ID: "evt-2", MessageID: "msg-1", Actor: "usr-2", Kind: types.EventEmoji, Payload: "👍", CreatedAt: 2},
			{ID: "evt-3", MessageID: "msg-1", Actor: "usr-1", Kind: types.EventEmoji, Payload: "🚚", CreatedAt: 3},
			{ID: "evt-4", MessageID: "msg-1", Actor: "usr-2", Kind: types.EventReceipt, CreatedAt: 4},
		},
	})

	if err := agg.SetMessage("msg-1"); err != nil {
		t.Fatal(err)
	}
	s := agg.Summary()

	if len(s.ReactionOrder) != 2 || s.ReactionOrder[0] != "👍" || s.ReactionOrder[1] != "🚚" {
		t.Fatalf("order: %v", s.ReactionOrder)
	}
	thumbs := s.Reactions["👍"]
	if len(thumbs) != 2 || thumbs[0].Name != "Alice" || thumbs[1].Name != "Bob" {
		t.Fatalf("thumbs: %#v", thumbs)
	}
	if len(s.Receipts) != 1 || s.Receipts[0].ID != "usr-2" {
		t.Fatalf("receipts: %#v", s.Receipts)
	}
}

func TestSummaryDeduplicatesActorEmoji(t *testing.T) {
	agg, _ := newTestAggregator(t, map[string][]types.Event{
		"msg-1": {
			{ID: "evt-1", MessageID: "msg-1", Actor: "usr-1", Kind: types.EventEmoji, Payload: "👍", CreatedAt: 1},
			{ID: "evt-2", MessageID: "msg-1", Actor: "usr-1", Kind: types.EventEmoji, Payload: "👍", CreatedAt: 2},
			{ID: "evt-3", MessageID: "msg-1", Actor: "usr-1", Kind: types.EventReceipt, CreatedAt: 3},
			{ID: "evt-4", MessageID: "msg-1", Actor: "usr-1", Kind: types.EventReceipt, CreatedAt: 4},
		},
	})

	if err := agg.SetMessage("msg-1"); err != nil {
		t.Fatal(err)
	}
	s := agg.Summary()
	if len(s.Reactions["👍"]) != 1 {
		t.Fatalf("duplicate rows surfaced: %#v", s.Reactions["👍"])
	}
	if len(s.Receipts) != 1 {
		t.Fatalf("duplicate receipts: %#v", s.Receipts)
	}
}

func TestUnresolvedActorFallsBack(t *testing.T) {
	agg, _ := newTestAggregator(t, map[string][]types.Event{
		"msg-1": {
			{ID: "evt-1", MessageID: "msg-1", Actor: "usr-ghost", Kind: types.EventEmoji, Payload: "👍", CreatedAt: 1},
		},
	})

	if err := agg.SetMessage("msg-1"); err != nil {
		t.Fatal(err)
	}
	s := agg.Summary()
	if s.Reactions["👍"][0].Name != "Unknown" {
		t.Fatalf("fallback name: %#v", s.Reactions["👍"])
	}
}

func TestLiveEventsArrive(t *testing.T) {
	var updates int
	bus := realtime.NewBus()
	agg := NewAggregator(bus,
		func(string) ([]types.Event, error) { return nil, nil },
		func(string) (string, bool) { return "Alice", true },
		func(Summary) { updates++ })
	t.Cleanup(agg.Close)

	if err := agg.SetMessage("msg-1"); err != nil {
		t.Fatal(err)
	}

	bus.Publish(realtime.Change{Kind: realtime.ChangeEvent, Topic: "msg-1", Event: &types.Event{
		ID: "evt-1", MessageID: "msg-1", Actor: "usr-1", Kind: types.EventEmoji, Payload: "👍", CreatedAt: 1,
	}})
	// Another message's events must not land here.
	bus.Publish(realtime.Change{Kind: realtime.ChangeEvent, Topic: "msg-2", Event: &types.Event{
		ID: "evt-2", MessageID: "msg-2", Actor: "usr-1", Kind: types.EventEmoji, Payload: "🚚", CreatedAt: 2,
	}})

	s := agg.Summary()
	if len(s.Reactions) != 1 || len(s.Reactions["👍"]) != 1 {
		t.Fatalf("live reactions: %#v", s.Reactions)
	}
	if updates < 2 {
		t.Fatalf("onChange calls: %d", updates)
	}
}

func TestRetargetReleasesSubscription(t *testing.T) {
	agg, bus := newTestAggregator(t, map[string][]types.Event{})

	if err := agg.SetMessage("msg-1"); err != nil {
		t.Fatal(err)
	}
	if bus.SubscriberCount() != 1 {
		t.Fatalf("subscriptions: %d", bus.SubscriberCount())
	}

	if err := agg.SetMessage("msg-2"); err != nil {
		t.Fatal(err)
	}
	if bus.SubscriberCount() != 1 {
		t.Fatalf("leaked subscription: %d", bus.SubscriberCount())
	}

	// Stale msg-1 events must be ignored after retargeting.
	bus.Publish(realtime.Change{Kind: realtime.ChangeEvent, Topic: "msg-1", Event: &types.Event{
		ID: "evt-1", MessageID: "msg-1", Actor: "usr-1", Kind: types.EventEmoji, Payload: "👍", CreatedAt: 1,
	}})
	if s := agg.Summary(); len(s.Reactions) != 0 {
		t.Fatalf("stale event surfaced: %#v", s.Reactions)
	}

	agg.Close()
	if bus.SubscriberCount() != 0 {
		t.Fatalf("close leaked: %d", bus.SubscriberCount())
	}
}
