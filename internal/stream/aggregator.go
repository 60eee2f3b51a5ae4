// Package stream assembles the message list a room view renders: it
// merges history, realtime arrivals and optimistic echoes into one
// ordered, deduplicated timeline and computes per-row grouping.
package stream

import (
	"sort"

	"github.com/naviohq/navio/internal/types"
)

// Merge combines message sources into one timeline. Later sources lose
// ties: when the same id appears in several sources, the first
// occurrence wins and keeps its payload. The result is sorted by
// CreatedAt (stable, so equal timestamps keep their arrival order).
func Merge(sources ...[]types.Message) []types.Message {
	seen := make(map[string]struct{})
	var merged []types.Message
	for _, source := range sources {
		for _, m := range source {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			merged = append(merged, m)
		}
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].CreatedAt < merged[j].CreatedAt
	})
	return merged
}

// ReplaceTemp swaps an optimistic echo for its confirmed server message
// in place, keeping the row position stable. Returns false when the temp
// id is not present.
func ReplaceTemp(messages []types.Message, tempID string, confirmed types.Message) bool {
	for i := range messages {
		if messages[i].ID == tempID {
			messages[i] = confirmed
			return true
		}
	}
	return false
}

// DropTemp removes a failed optimistic echo. Returns the filtered slice
// and whether anything was removed.
func DropTemp(messages []types.Message, tempID string) ([]types.Message, bool) {
	for i := range messages {
		if messages[i].ID == tempID {
			return append(messages[:i], messages[i+1:]...), true
		}
	}
	return messages, false
}
