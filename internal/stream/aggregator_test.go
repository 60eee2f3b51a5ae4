package stream

import (
	"reflect"
	"testing"

	"github.com/naviohq/navio/internal/types"
)

func msg(id, author, createdAt string) types.Message {
	return types.Message{ID: id, RoomID: "rom-1", Author: author, Body: "body " + id, CreatedAt: createdAt}
}

func TestMergeDedupesAndSorts(t *testing.T) {
	snapshot := []types.Message{
		msg("msg-1", "usr-1", "2026-08-28T10:00:00.000Z"),
		msg("msg-2", "usr-2", "2026-08-28T10:01:00.000Z"),
	}
	live := []types.Message{
		msg("msg-3", "usr-1", "2026-08-28T10:02:00.000Z"),
		msg("msg-2", "usr-2", "2026-08-28T10:01:00.000Z"),
	}
	initial := []types.Message{
		msg("msg-1", "usr-1", "2026-08-28T10:00:00.000Z"),
		msg("msg-0", "usr-2", "2026-08-28T09:59:00.000Z"),
	}

	merged := Merge(snapshot, live, initial)

	wantOrder := []string{"msg-0", "msg-1", "msg-2", "msg-3"}
	var gotOrder []string
	seen := map[string]int{}
	for _, m := range merged {
		gotOrder = append(gotOrder, m.ID)
		seen[m.ID]++
	}
	if !reflect.DeepEqual(gotOrder, wantOrder) {
		t.Fatalf("order: %v", gotOrder)
	}
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("%s appears %d times", id, n)
		}
	}
}

func TestMergeFirstOccurrenceWins(t *testing.T) {
	original := msg("msg-1", "usr-1", "2026-08-28T10:00:00.000Z")
	altered := original
	altered.Body = "rewritten"

	merged := Merge([]types.Message{original}, []types.Message{altered})
	if len(merged) != 1 || merged[0].Body != original.Body {
		t.Fatalf("first occurrence lost: %#v", merged)
	}
}

func TestMergeStableOnEqualTimestamps(t *testing.T) {
	a := msg("msg-a", "usr-1", "2026-08-28T10:00:00.000Z")
	b := msg("msg-b", "usr-2", "2026-08-28T10:00:00.000Z")

	merged := Merge([]types.Message{a, b})
	if merged[0].ID != "msg-a" || merged[1].ID != "msg-b" {
		t.Fatalf("equal timestamps reordered: %v %v", merged[0].ID, merged[1].ID)
	}
}

func TestReplaceTempKeepsPosition(t *testing.T) {
	messages := []types.Message{
		msg("msg-1", "usr-2", "2026-08-28T10:00:00.000Z"),
		{ID: "tmp-abc", RoomID: "rom-1", Author: "usr-1", Body: "Hello", CreatedAt: "2026-08-28T10:00:05.000Z", Pending: true},
		msg("msg-3", "usr-2", "2026-08-28T10:00:09.000Z"),
	}
	confirmed := msg("msg-2", "usr-1", "2026-08-28T10:00:05.000Z")
	confirmed.Body = "Hello"

	if !ReplaceTemp(messages, "tmp-abc", confirmed) {
		t.Fatal("temp not found")
	}
	if len(messages) != 3 {
		t.Fatalf("length changed: %d", len(messages))
	}
	if messages[1].ID != "msg-2" || messages[1].Pending {
		t.Fatalf("slot 1: %#v", messages[1])
	}

	if ReplaceTemp(messages, "tmp-gone", confirmed) {
		t.Fatal("phantom replacement")
	}
}

func TestDropTemp(t *testing.T) {
	messages := []types.Message{
		msg("msg-1", "usr-2", "2026-08-28T10:00:00.000Z"),
		{ID: "tmp-abc", Author: "usr-1", Body: "Hello", CreatedAt: "2026-08-28T10:00:05.000Z"},
	}
	messages, ok := DropTemp(messages, "tmp-abc")
	if !ok || len(messages) != 1 || messages[0].ID != "msg-1" {
		t.Fatalf("drop: %v %#v", ok, messages)
	}
}

func TestGroupingFlags(t *testing.T) {
	messages := []types.Message{
		msg("msg-1", "usr-1", "2026-08-27T23:59:10.000Z"),
		msg("msg-2", "usr-1", "2026-08-27T23:59:40.000Z"),
		msg("msg-3", "usr-1", "2026-08-28T00:00:10.000Z"),
		msg("msg-4", "usr-2", "2026-08-28T00:00:20.000Z"),
	}

	g := Groupings(messages)

	// First message of the timeline.
	if !g[0].ShowHeader || !g[0].RenderDateDivider || g[0].Compact {
		t.Fatalf("g0: %+v", g[0])
	}
	// Same author, same minute as msg-1.
	if g[1].ShowHeader || !g[1].Compact || g[1].RenderDateDivider {
		t.Fatalf("g1: %+v", g[1])
	}
	// msg-1 is followed in the same author-minute, so no timestamp.
	if g[0].ShowTimestamp {
		t.Fatalf("g0 timestamp: %+v", g[0])
	}
	if !g[1].ShowTimestamp {
		t.Fatalf("g1 timestamp: %+v", g[1])
	}
	// Calendar date rolled over between msg-2 and msg-3.
	if !g[2].RenderDateDivider || g[2].ShowHeader || g[2].Compact {
		t.Fatalf("g2: %+v", g[2])
	}
	// Author changed: msg-3 ends its run, msg-4 starts one.
	if !g[2].ShowBottomAvatar || !g[3].ShowHeader || !g[3].ShowBottomAvatar || !g[3].ShowTimestamp {
		t.Fatalf("g2/g3: %+v %+v", g[2], g[3])
	}

	// Pure function of neighbors: identical on repeated runs.
	if again := Groupings(messages); !reflect.DeepEqual(g, again) {
		t.Fatal("grouping not deterministic")
	}
}

type memLastSeen struct {
	values map[string]string
}

func (m *memLastSeen) GetLastSeen(roomID string) (string, error) {
	return m.values[roomID], nil
}

func (m *memLastSeen) SetLastSeen(roomID, ts string) error {
	m.values[roomID] = ts
	return nil
}

func TestUnreadBoundary(t *testing.T) {
	store := &memLastSeen{values: map[string]string{}}
	messages := []types.Message{
		msg("msg-1", "usr-2", "2026-08-28T10:00:00.000Z"),
		msg("msg-2", "usr-2", "2026-08-28T10:01:00.000Z"),
		msg("msg-3", "usr-2", "2026-08-28T10:02:00.000Z"),
		msg("msg-4", "usr-2", "2026-08-28T10:03:00.000Z"),
		msg("msg-5", "usr-2", "2026-08-28T10:04:00.000Z"),
	}

	// First-ever view: watermark jumps to the newest message, zero unread.
	tracker, err := NewTracker(store, "rom-1", "usr-1", messages)
	if err != nil {
		t.Fatal(err)
	}
	if tracker.LastSeen() != "2026-08-28T10:04:00.000Z" {
		t.Fatalf("initial watermark: %q", tracker.LastSeen())
	}
	if n := tracker.UnreadCount(messages); n != 0 {
		t.Fatalf("initial unread: %d", n)
	}

	// A 6th message arrives while scrolled up: one unread, banner anchors it.
	messages = append(messages, msg("msg-6", "usr-2", "2026-08-28T10:05:00.000Z"))
	if err := tracker.Observe(messages, false); err != nil {
		t.Fatal(err)
	}
	if n := tracker.UnreadCount(messages); n != 1 {
		t.Fatalf("unread after arrival: %d", n)
	}
	if i := tracker.FirstUnread(messages); i != 5 {
		t.Fatalf("first unread index: %d", i)
	}

	// Scrolling to the bottom advances the watermark and clears the count.
	if err := tracker.Observe(messages, true); err != nil {
		t.Fatal(err)
	}
	if n := tracker.UnreadCount(messages); n != 0 {
		t.Fatalf("unread after read: %d", n)
	}
	if store.values["rom-1"] != "2026-08-28T10:05:00.000Z" {
		t.Fatalf("persisted watermark: %q", store.values["rom-1"])
	}
}

func TestUnreadSkipsOwnMessages(t *testing.T) {
	store := &memLastSeen{values: map[string]string{"rom-1": "2026-08-28T10:00:00.000Z"}}
	messages := []types.Message{
		msg("msg-1", "usr-1", "2026-08-28T10:01:00.000Z"),
		msg("msg-2", "usr-2", "2026-08-28T10:02:00.000Z"),
	}
	tracker, err := NewTracker(store, "rom-1", "usr-1", messages)
	if err != nil {
		t.Fatal(err)
	}
	if n := tracker.UnreadCount(messages); n != 1 {
		t.Fatalf("own message counted: %d", n)
	}
}

func TestMarkReadNeverMovesBackwards(t *testing.T) {
	store := &memLastSeen{values: map[string]string{"rom-1": "2026-08-28T10:05:00.000Z"}}
	tracker, err := NewTracker(store, "rom-1", "usr-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := tracker.MarkRead([]types.Message{msg("msg-1", "usr-2", "2026-08-28T10:00:00.000Z")}); err != nil {
		t.Fatal(err)
	}
	if tracker.LastSeen() != "2026-08-28T10:05:00.000Z" {
		t.Fatalf("watermark regressed: %q", tracker.LastSeen())
	}
}
