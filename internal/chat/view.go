package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/naviohq/navio/internal/card"
	"github.com/naviohq/navio/internal/codec"
	"github.com/naviohq/navio/internal/stream"
	"github.com/naviohq/navio/internal/types"
)

const inputChrome = 2 // prompt row + status row

func (m *Model) resize() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	m.input.SetWidth(m.width - 2)
	m.viewport.Width = m.width
	m.viewport.Height = m.height - m.input.Height() - m.suggestionHeight() - inputChrome
	if m.viewport.Height < 1 {
		m.viewport.Height = 1
	}
	m.refreshViewport(m.atBottom)
}

func (m *Model) refreshViewport(gotoBottom bool) {
	m.viewport.SetContent(m.renderMessages())
	if gotoBottom {
		m.viewport.GotoBottom()
		m.atBottom = true
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	if banner := m.renderUnreadBanner(); banner != "" {
		b.WriteString(banner)
		b.WriteString("\n")
	}
	if popup := m.renderSuggestions(); popup != "" {
		b.WriteString(popup)
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m *Model) renderMessages() string {
	if len(m.messages) == 0 {
		return lipgloss.NewStyle().Foreground(metaColor).Render("No messages yet.")
	}

	groupings := stream.Groupings(m.messages)
	dividerStyle := lipgloss.NewStyle().Foreground(dividerColor)
	metaStyle := lipgloss.NewStyle().Foreground(metaColor)
	firstUnread := m.tracker.FirstUnread(m.messages)

	var lines []string
	for i, msg := range m.messages {
		g := groupings[i]
		if g.RenderDateDivider && len(msg.CreatedAt) >= 10 {
			lines = append(lines, dividerStyle.Render("── "+msg.CreatedAt[:10]+" ──"))
		}
		if i == firstUnread {
			lines = append(lines, lipgloss.NewStyle().Foreground(bannerColor).Render("── new messages ──"))
		}
		if g.ShowHeader {
			header := lipgloss.NewStyle().
				Foreground(colorForAuthor(msg.Author, m.colorMap)).
				Bold(true).
				Render(m.authorName(msg.Author))
			if g.ShowTimestamp && len(msg.CreatedAt) >= 16 {
				header += metaStyle.Render("  " + msg.CreatedAt[11:16])
			}
			lines = append(lines, header)
		}
		lines = append(lines, m.renderBody(msg)...)
		if reactions := m.renderReactions(msg.ID); reactions != "" {
			lines = append(lines, reactions)
		}
		if !g.Compact {
			lines = append(lines, "")
		}
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderBody(msg types.Message) []string {
	env := codec.Decode(msg.Body)
	bodyStyle := lipgloss.NewStyle().Foreground(textColor)
	metaStyle := lipgloss.NewStyle().Foreground(metaColor)
	if msg.Pending {
		bodyStyle = lipgloss.NewStyle().Foreground(pendingColor)
	}

	var lines []string
	if env.ReplyTo != nil {
		lines = append(lines, metaStyle.Render("↪ reply to "+*env.ReplyTo))
	}
	if env.VisibleText != "" {
		text := env.VisibleText
		if env.Edited {
			text += " (edited)"
		}
		if msg.Pending {
			text += " …"
		}
		for _, line := range strings.Split(text, "\n") {
			lines = append(lines, "  "+renderMentionLine(line, env.Mentions, bodyStyle))
		}
	}
	for _, c := range env.Cards {
		lines = append(lines, m.renderCard(c)...)
	}
	for _, a := range env.Attachments {
		label := "📎 " + a.Name
		if a.URL == "" {
			label += " (upload failed)"
		}
		lines = append(lines, "  "+metaStyle.Render(label))
	}
	return lines
}

// textSegment is one run of a body line, either plain text or a linked
// mention.
type textSegment struct {
	text    string
	mention bool
}

// mentionSegments splits a line at its linked mentions. Only labels in
// the message's mention map produce mention segments; literal "@text"
// stays plain.
func mentionSegments(line string, mentions map[string]string) []textSegment {
	spans := codec.MentionSpans(line, mentions)
	if len(spans) == 0 {
		return []textSegment{{text: line}}
	}
	var segments []textSegment
	last := 0
	for _, span := range spans {
		if span.Start > last {
			segments = append(segments, textSegment{text: line[last:span.Start]})
		}
		segments = append(segments, textSegment{text: line[span.Start:span.End], mention: true})
		last = span.End
	}
	if last < len(line) {
		segments = append(segments, textSegment{text: line[last:]})
	}
	return segments
}

func renderMentionLine(line string, mentions map[string]string, body lipgloss.Style) string {
	segments := mentionSegments(line, mentions)
	mentionStyle := lipgloss.NewStyle().Foreground(userColor).Bold(true)
	var b strings.Builder
	for _, seg := range segments {
		if seg.mention {
			b.WriteString(mentionStyle.Render(seg.text))
			continue
		}
		b.WriteString(body.Render(seg.text))
	}
	return b.String()
}

func (m *Model) renderCard(c types.Card) []string {
	view := card.Render(c, card.Role(m.cfg.Role))
	cardStyle := lipgloss.NewStyle().Foreground(accentColor)
	metaStyle := lipgloss.NewStyle().Foreground(metaColor)

	lines := []string{"  " + cardStyle.Render("▣ "+view.Title)}
	if view.Detail != "" {
		lines = append(lines, "    "+metaStyle.Render(view.Detail))
	}
	if len(view.Actions) > 0 {
		lines = append(lines, "    "+metaStyle.Render("["+strings.Join(view.Actions, "] [")+"]"))
	}
	return lines
}

// renderReactions collapses the message's emoji events into one line,
// deduped per actor, plus a read count.
func (m *Model) renderReactions(messageID string) string {
	events := m.events[messageID]
	if len(events) == 0 {
		return ""
	}

	var order []string
	counts := map[string]int{}
	seen := map[string]struct{}{}
	reads := 0
	for _, ev := range events {
		switch ev.Kind {
		case types.EventEmoji:
			key := ev.Actor + "\x00" + ev.Payload
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if counts[ev.Payload] == 0 {
				order = append(order, ev.Payload)
			}
			counts[ev.Payload]++
		case types.EventReceipt:
			reads++
		}
	}

	var parts []string
	for _, emoji := range order {
		parts = append(parts, fmt.Sprintf("%s %d", emoji, counts[emoji]))
	}
	if reads > 0 {
		parts = append(parts, fmt.Sprintf("✓ %d", reads))
	}
	if len(parts) == 0 {
		return ""
	}
	return "  " + lipgloss.NewStyle().Foreground(metaColor).Render(strings.Join(parts, "  "))
}

func (m *Model) renderUnreadBanner() string {
	if m.atBottom {
		return ""
	}
	count := m.tracker.UnreadCount(m.messages)
	if count == 0 {
		return ""
	}
	label := fmt.Sprintf("%d new message", count)
	if count > 1 {
		label += "s"
	}
	return lipgloss.NewStyle().Foreground(bannerColor).Bold(true).Render("▼ " + label)
}

func (m *Model) suggestionHeight() int {
	s := m.comp.Suggestions()
	if s == nil {
		return 0
	}
	return len(s.Items)
}

func (m *Model) renderSuggestions() string {
	s := m.comp.Suggestions()
	if s == nil {
		return ""
	}
	normalStyle := lipgloss.NewStyle().Foreground(metaColor)
	selectedStyle := lipgloss.NewStyle().Foreground(userColor).Bold(true)

	lines := make([]string, 0, len(s.Items))
	for i, item := range s.Items {
		prefix := "  "
		style := normalStyle
		if i == s.Index {
			prefix = "> "
			style = selectedStyle
		}
		lines = append(lines, style.Render(prefix+item.Display))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderStatus() string {
	metaStyle := lipgloss.NewStyle().Foreground(metaColor)
	if strings.HasPrefix(m.status, "send failed") {
		metaStyle = lipgloss.NewStyle().Foreground(errorColor)
	}

	left := m.room.Name
	if target := m.comp.ReplyTo(); target != nil {
		left += " · replying to " + target.ID
	}
	if target := m.comp.Editing(); target != nil {
		left += " · editing " + target.ID
	}
	if staged := len(m.comp.Cards()); staged > 0 {
		left += fmt.Sprintf(" · %d card(s) staged", staged)
	}
	if m.status != "" {
		left += " · " + m.status
	}
	return metaStyle.Render(left)
}

func (m *Model) authorName(userID string) string {
	if name, ok := m.names[userID]; ok {
		return name
	}
	return userID
}
