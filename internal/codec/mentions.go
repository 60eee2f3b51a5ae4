package codec

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// labelRe is deliberately conservative: lowercase identifier segments
// joined by single separators, so "@ops-team" links but punctuation runs
// and email local parts do not.
var labelRe = regexp.MustCompile(`@([a-zA-Z][a-zA-Z0-9]*(?:[-._][a-zA-Z0-9]+)*)`)

// MentionSpan is one linked mention inside rendered text.
type MentionSpan struct {
	Label  string
	UserID string
	Start  int // byte offset in the rendered output
	End    int
}

// LinkMentions rewrites "@label" occurrences into inline links carrying
// both id and label, for the renderer to resolve to an identity card.
// Only labels present in the mentions map are linked; a mention must sit
// on a word boundary so addresses like a@b.com stay literal text.
func LinkMentions(text string, mentions map[string]string) string {
	if len(mentions) == 0 || !strings.Contains(text, "@") {
		return text
	}
	var b strings.Builder
	last := 0
	for _, match := range labelRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := match[0], match[1]
		label := text[match[2]:match[3]]
		id, ok := mentions[label]
		if !ok || !onWordBoundary(text, start) {
			continue
		}
		b.WriteString(text[last:start])
		b.WriteString("[@")
		b.WriteString(label)
		b.WriteString("](nv://user/")
		b.WriteString(id)
		b.WriteString(")")
		last = end
	}
	b.WriteString(text[last:])
	return b.String()
}

// MentionSpans finds linkable mentions without rewriting, for renderers
// that lay out styled spans instead of markup.
func MentionSpans(text string, mentions map[string]string) []MentionSpan {
	var spans []MentionSpan
	for _, match := range labelRe.FindAllStringSubmatchIndex(text, -1) {
		start, end := match[0], match[1]
		label := text[match[2]:match[3]]
		id, ok := mentions[label]
		if !ok || !onWordBoundary(text, start) {
			continue
		}
		spans = append(spans, MentionSpan{Label: label, UserID: id, Start: start, End: end})
	}
	return spans
}

// onWordBoundary rejects an "@" directly preceded by a letter or digit,
// which is how email addresses escape linking.
func onWordBoundary(text string, at int) bool {
	if at == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:at])
	return !unicode.IsLetter(prev) && !unicode.IsDigit(prev)
}
