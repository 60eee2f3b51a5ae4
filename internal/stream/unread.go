package stream

import "github.com/naviohq/navio/internal/types"

// LastSeenStore persists the per-room read watermark.
type LastSeenStore interface {
	GetLastSeen(roomID string) (string, error)
	SetLastSeen(roomID, ts string) error
}

// Tracker maintains one room's unread boundary for one reader. On the
// first-ever view of a room the watermark jumps to the latest message,
// so a freshly opened room never shows an unread banner.
type Tracker struct {
	store    LastSeenStore
	roomID   string
	reader   string
	lastSeen string
}

// NewTracker loads (or initializes) the watermark for a room. messages
// is the current sorted timeline.
func NewTracker(store LastSeenStore, roomID, reader string, messages []types.Message) (*Tracker, error) {
	t := &Tracker{store: store, roomID: roomID, reader: reader}

	stored, err := store.GetLastSeen(roomID)
	if err != nil {
		return nil, err
	}
	if stored == "" {
		stored = latestTimestamp(messages)
		if stored != "" {
			if err := store.SetLastSeen(roomID, stored); err != nil {
				return nil, err
			}
		}
	}
	t.lastSeen = stored
	return t, nil
}

// LastSeen returns the current watermark timestamp.
func (t *Tracker) LastSeen() string {
	return t.lastSeen
}

// UnreadCount counts messages strictly newer than the watermark,
// excluding the reader's own.
func (t *Tracker) UnreadCount(messages []types.Message) int {
	count := 0
	for _, m := range messages {
		if m.Author == t.reader {
			continue
		}
		if m.CreatedAt > t.lastSeen {
			count++
		}
	}
	return count
}

// FirstUnread returns the index of the oldest unread message, -1 when
// everything is read. The banner anchors here.
func (t *Tracker) FirstUnread(messages []types.Message) int {
	for i, m := range messages {
		if m.Author == t.reader {
			continue
		}
		if m.CreatedAt > t.lastSeen {
			return i
		}
	}
	return -1
}

// MarkRead advances the watermark to the latest message. Called when the
// viewport reaches the bottom or the reader dismisses the banner
// explicitly. Never moves backwards.
func (t *Tracker) MarkRead(messages []types.Message) error {
	latest := latestTimestamp(messages)
	if latest == "" || latest <= t.lastSeen {
		return nil
	}
	if err := t.store.SetLastSeen(t.roomID, latest); err != nil {
		return err
	}
	t.lastSeen = latest
	return nil
}

// Observe handles new arrivals: when the reader is at the bottom the
// watermark advances silently, otherwise the unread banner stays.
func (t *Tracker) Observe(messages []types.Message, atBottom bool) error {
	if !atBottom {
		return nil
	}
	return t.MarkRead(messages)
}

func latestTimestamp(messages []types.Message) string {
	latest := ""
	for _, m := range messages {
		if m.CreatedAt > latest {
			latest = m.CreatedAt
		}
	}
	return latest
}
