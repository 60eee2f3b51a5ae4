package stream

import (
	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/types"
)

// Grouping carries the per-row display flags a renderer needs. Each flag
// is a pure function of the row and its immediate neighbors in the
// sorted timeline.
type Grouping struct {
	ShowHeader        bool // first of a run: no previous, or previous has another author
	ShowBottomAvatar  bool // last of a run: no next, or next has another author
	ShowTimestamp     bool // hidden when the next row continues the same author-minute
	RenderDateDivider bool // calendar date changed from the previous row
	Compact           bool // continues the previous row's author-minute
}

// GroupingAt computes flags for messages[i]. i must be in range.
func GroupingAt(messages []types.Message, i int) Grouping {
	m := messages[i]

	var g Grouping
	if i == 0 {
		g.ShowHeader = true
		g.RenderDateDivider = true
	} else {
		prev := messages[i-1]
		g.ShowHeader = prev.Author != m.Author
		g.RenderDateDivider = core.DateOf(prev.CreatedAt) != core.DateOf(m.CreatedAt)
		g.Compact = prev.Author == m.Author && core.MinuteOf(prev.CreatedAt) == core.MinuteOf(m.CreatedAt)
	}

	if i == len(messages)-1 {
		g.ShowBottomAvatar = true
		g.ShowTimestamp = true
	} else {
		next := messages[i+1]
		g.ShowBottomAvatar = next.Author != m.Author
		g.ShowTimestamp = !(next.Author == m.Author && core.MinuteOf(next.CreatedAt) == core.MinuteOf(m.CreatedAt))
	}

	return g
}

// Groupings computes flags for the whole timeline.
func Groupings(messages []types.Message) []Grouping {
	result := make([]Grouping, len(messages))
	for i := range messages {
		result[i] = GroupingAt(messages, i)
	}
	return result
}
