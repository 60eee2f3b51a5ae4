package codec

import (
	"sort"
	"strings"

	"github.com/naviohq/navio/internal/card"
	"github.com/naviohq/navio/internal/types"
)

// Wire markers. The body is line-oriented: optional ReplyTo/Edited header
// lines, visible text with fenced card blocks, then optional Attachments
// and Mentions trailer blocks (Mentions last).
const (
	replyPrefix   = "ReplyTo:"
	editedLine    = "Edited:1"
	cardFenceOpen = "```nvcard"
	fenceClose    = "```"
	attachHeader  = "Attachments:"
	mentionHeader = "Mentions:"
	itemPrefix    = "- "
)

// Encode serializes an envelope into its canonical wire body. Encode is
// total: any envelope produces a body, and Decode(Encode(e)) preserves
// text, attachments, cards and the surviving mentions.
func Encode(env types.Envelope) string {
	var b strings.Builder

	if env.ReplyTo != nil && *env.ReplyTo != "" {
		b.WriteString(replyPrefix)
		b.WriteString(*env.ReplyTo)
		b.WriteString("\n")
	}
	if env.Edited {
		b.WriteString(editedLine)
		b.WriteString("\n")
	}

	b.WriteString(env.VisibleText)

	for _, c := range env.Cards {
		raw, err := card.Encode(c)
		if err != nil {
			continue
		}
		b.WriteString("\n")
		b.WriteString(cardFenceOpen)
		b.WriteString("\n")
		b.Write(raw)
		b.WriteString("\n")
		b.WriteString(fenceClose)
	}

	if len(env.Attachments) > 0 {
		b.WriteString("\n")
		b.WriteString(attachHeader)
		for _, a := range env.Attachments {
			b.WriteString("\n")
			b.WriteString(itemPrefix)
			b.WriteString(attachmentLine(a))
		}
	}

	mentions := survivingMentions(env.VisibleText, env.Mentions)
	if len(mentions) > 0 {
		b.WriteString("\n")
		b.WriteString(mentionHeader)
		for _, label := range sortedLabels(mentions) {
			b.WriteString("\n")
			b.WriteString(itemPrefix)
			b.WriteString(mentions[label])
			b.WriteString("|")
			b.WriteString(label)
		}
	}

	return b.String()
}

// Decode parses a wire body back into an envelope. Decode never fails:
// every malformed piece (bad card JSON, unparseable attachment line,
// malformed mention line) is dropped silently, per the chat surface's
// no-crash contract. Strip order is fixed: ReplyTo, Edited, Mentions
// trailer, Attachments trailer, then card fences.
func Decode(body string) types.Envelope {
	env := types.Envelope{Mentions: map[string]string{}}
	rest := body

	if line, tail, ok := cutLine(rest); ok && strings.HasPrefix(line, replyPrefix) {
		id := strings.TrimPrefix(line, replyPrefix)
		if id != "" {
			env.ReplyTo = &id
		}
		rest = tail
	}
	if line, tail, ok := cutLine(rest); ok && line == editedLine {
		env.Edited = true
		rest = tail
	}

	rest, mentionLines := cutTrailer(rest, mentionHeader)
	for _, line := range mentionLines {
		id, label, ok := strings.Cut(line, "|")
		if !ok || id == "" || label == "" {
			continue
		}
		env.Mentions[label] = id
	}

	rest, attachLines := cutTrailer(rest, attachHeader)
	for _, line := range attachLines {
		if a, ok := parseAttachmentLine(line); ok {
			env.Attachments = append(env.Attachments, a)
		}
	}

	env.VisibleText, env.Cards = extractCards(rest)
	env.Mentions = survivingMentions(env.VisibleText, env.Mentions)
	return env
}

// cutLine splits off the first line. ok is false for an empty body.
func cutLine(s string) (line, tail string, ok bool) {
	if s == "" {
		return "", "", false
	}
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx], s[idx+1:], true
	}
	return s, "", true
}

// cutTrailer removes a trailing "Header:\n- item\n- item" block. The block
// must start at the beginning of a line and every following non-empty line
// must be an item line, otherwise the text is left untouched.
func cutTrailer(s, header string) (string, []string) {
	var start int
	if s == header || strings.HasPrefix(s, header+"\n") {
		start = 0
	} else if idx := strings.LastIndex(s, "\n"+header); idx >= 0 {
		after := s[idx+1+len(header):]
		if after != "" && !strings.HasPrefix(after, "\n") {
			return s, nil
		}
		start = idx + 1
	} else {
		return s, nil
	}

	var items []string
	for _, line := range strings.Split(s[start+len(header):], "\n") {
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, itemPrefix) {
			return s, nil
		}
		items = append(items, strings.TrimPrefix(line, itemPrefix))
	}

	head := s[:start]
	head = strings.TrimSuffix(head, "\n")
	return head, items
}

// extractCards removes ```nvcard fences from the text and parses their
// payloads. Fences with malformed payloads are still removed from the
// visible text.
func extractCards(text string) (string, []types.Card) {
	if !strings.Contains(text, cardFenceOpen) {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	var kept []string
	var cards []types.Card

	for i := 0; i < len(lines); i++ {
		if lines[i] != cardFenceOpen {
			kept = append(kept, lines[i])
			continue
		}
		closeIdx := -1
		for j := i + 1; j < len(lines); j++ {
			if lines[j] == fenceClose {
				closeIdx = j
				break
			}
		}
		if closeIdx < 0 {
			// Unterminated fence: keep as literal text.
			kept = append(kept, lines[i])
			continue
		}
		payload := strings.Join(lines[i+1:closeIdx], "\n")
		if c, ok := card.Decode([]byte(payload)); ok {
			cards = append(cards, c)
		}
		i = closeIdx
	}

	return strings.Join(kept, "\n"), cards
}

// survivingMentions keeps only entries whose "@label" still appears
// literally in the text.
func survivingMentions(text string, mentions map[string]string) map[string]string {
	if len(mentions) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(mentions))
	for label, id := range mentions {
		if strings.Contains(text, "@"+label) {
			out[label] = id
		}
	}
	return out
}

// sortedLabels keeps the encode output canonical.
func sortedLabels(mentions map[string]string) []string {
	labels := make([]string, 0, len(mentions))
	for label := range mentions {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	return labels
}
