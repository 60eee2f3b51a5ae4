package chat

import (
	"hash/fnv"

	"github.com/charmbracelet/lipgloss"
	"github.com/naviohq/navio/internal/types"
)

var (
	textColor    = lipgloss.Color("252")
	metaColor    = lipgloss.Color("243")
	userColor    = lipgloss.Color("111")
	accentColor  = lipgloss.Color("216")
	dividerColor = lipgloss.Color("238")
	bannerColor  = lipgloss.Color("215")
	pendingColor = lipgloss.Color("240")
	errorColor   = lipgloss.Color("203")
)

var memberPalette = []lipgloss.Color{
	lipgloss.Color("111"),
	lipgloss.Color("157"),
	lipgloss.Color("216"),
	lipgloss.Color("36"),
	lipgloss.Color("183"),
	lipgloss.Color("230"),
}

// buildColorMap assigns stable colors by member order so both panes of
// a split render an author the same way.
func buildColorMap(members []types.Member) map[string]lipgloss.Color {
	colorMap := make(map[string]lipgloss.Color, len(members))
	for i, member := range members {
		colorMap[member.UserID] = memberPalette[i%len(memberPalette)]
	}
	return colorMap
}

func colorForAuthor(userID string, colorMap map[string]lipgloss.Color) lipgloss.Color {
	if color, ok := colorMap[userID]; ok {
		return color
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return memberPalette[int(h.Sum32())%len(memberPalette)]
}
