package composer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/naviohq/navio/internal/types"
)

const (
	suggestionLimit = 8
	maxQueryLen     = 32
)

// TriggerKind discriminates the autocomplete triggers.
type TriggerKind int

const (
	TriggerNone TriggerKind = iota
	TriggerMention
	TriggerTag
	TriggerCommand
)

// Trigger is a detected autocomplete context: the trigger character's
// byte offset, the cursor, and the query between them.
type Trigger struct {
	Kind  TriggerKind
	Query string
	Start int
	End   int
}

// Command defines a slash command with its description and the card
// type its builder stages, empty for generic commands.
type Command struct {
	Name     string
	Desc     string
	CardType string
}

// Sources feeds the three suggestion vocabularies.
type Sources struct {
	Members  []types.Member
	Tags     []string
	Commands []Command
}

// DefaultTags is the fixed tag vocabulary.
var DefaultTags = []string{
	"urgent", "delayed", "customs", "pod", "eta", "billing", "damage", "resolved",
}

// Suggestion is one popup row.
type Suggestion struct {
	Kind    TriggerKind
	Display string
	Insert  string
	UserID  string // mention suggestions only
	Command Command
}

// Suggestions is the live popup state. Index starts at -1: no row is
// highlighted until the first arrow key.
type Suggestions struct {
	Trigger Trigger
	Items   []Suggestion
	Index   int
}

// DetectTrigger finds an active trigger ending at the cursor: one of
// '@', '#', '/' preceded by start-of-input or a non-word rune, followed
// by a bounded query with no whitespace.
func DetectTrigger(text string, cursor int) *Trigger {
	if cursor > len(text) {
		cursor = len(text)
	}
	start := -1
	var kind TriggerKind
	for i := cursor - 1; i >= 0 && cursor-i <= maxQueryLen+1; i-- {
		ch := text[i]
		if ch == ' ' || ch == '\n' || ch == '\t' {
			return nil
		}
		var k TriggerKind
		switch ch {
		case '@':
			k = TriggerMention
		case '#':
			k = TriggerTag
		case '/':
			k = TriggerCommand
		default:
			continue
		}
		if !triggerBoundary(text, i) {
			return nil
		}
		start = i
		kind = k
		break
	}
	if start < 0 {
		return nil
	}
	return &Trigger{Kind: kind, Query: text[start+1 : cursor], Start: start, End: cursor}
}

// triggerBoundary requires start-of-input or a non-word rune before the
// trigger, so "a@b" never opens the mention popup.
func triggerBoundary(text string, at int) bool {
	if at == 0 {
		return true
	}
	prev, _ := utf8.DecodeLastRuneInString(text[:at])
	return !unicode.IsLetter(prev) && !unicode.IsDigit(prev)
}

// refreshSuggestions rebuilds the popup after a text change.
func (c *Composer) refreshSuggestions(cursor int) {
	trigger := DetectTrigger(c.text, cursor)
	if trigger == nil {
		c.suggestions = nil
		return
	}

	var items []Suggestion
	switch trigger.Kind {
	case TriggerMention:
		items = memberSuggestions(c.sources.Members, trigger.Query)
	case TriggerTag:
		items = tagSuggestions(c.sources.Tags, trigger.Query)
	case TriggerCommand:
		items = commandSuggestions(c.sources.Commands, trigger.Query)
	}
	if len(items) == 0 {
		c.suggestions = nil
		return
	}
	c.suggestions = &Suggestions{Trigger: *trigger, Items: items, Index: -1}
}

func memberSuggestions(members []types.Member, query string) []Suggestion {
	normalized := strings.ToLower(query)
	items := make([]Suggestion, 0, suggestionLimit)
	for _, m := range members {
		if normalized != "" &&
			!strings.Contains(strings.ToLower(m.Username), normalized) &&
			!strings.Contains(strings.ToLower(m.DisplayName), normalized) {
			continue
		}
		display := "@" + m.Username
		if m.DisplayName != "" {
			display += " (" + m.DisplayName + ")"
		}
		items = append(items, Suggestion{
			Kind:    TriggerMention,
			Display: display,
			Insert:  "@" + m.Username,
			UserID:  m.UserID,
		})
		if len(items) >= suggestionLimit {
			break
		}
	}
	return items
}

func tagSuggestions(tags []string, query string) []Suggestion {
	if len(tags) == 0 {
		tags = DefaultTags
	}
	normalized := strings.ToLower(query)
	items := make([]Suggestion, 0, suggestionLimit)
	for _, tag := range tags {
		if normalized != "" && !strings.HasPrefix(strings.ToLower(tag), normalized) {
			continue
		}
		items = append(items, Suggestion{Kind: TriggerTag, Display: "#" + tag, Insert: "#" + tag})
		if len(items) >= suggestionLimit {
			break
		}
	}
	return items
}

func commandSuggestions(commands []Command, query string) []Suggestion {
	normalized := strings.ToLower(query)
	items := make([]Suggestion, 0, suggestionLimit)
	for _, cmd := range commands {
		name := strings.TrimPrefix(cmd.Name, "/")
		if normalized != "" && !strings.HasPrefix(strings.ToLower(name), normalized) {
			continue
		}
		items = append(items, Suggestion{
			Kind:    TriggerCommand,
			Display: cmd.Name + "  " + cmd.Desc,
			Insert:  cmd.Name,
			Command: cmd,
		})
		if len(items) >= suggestionLimit {
			break
		}
	}
	return items
}

// Suggestions returns the live popup state, nil when closed.
func (c *Composer) Suggestions() *Suggestions {
	return c.suggestions
}

// MoveSuggestion moves the highlight by delta with wrap-around. The
// first Down lands on the top row, the first Up on the bottom row.
func (c *Composer) MoveSuggestion(delta int) bool {
	s := c.suggestions
	if s == nil || len(s.Items) == 0 {
		return false
	}
	if s.Index < 0 {
		if delta > 0 {
			s.Index = 0
		} else {
			s.Index = len(s.Items) - 1
		}
		return true
	}
	s.Index = (s.Index + delta + len(s.Items)) % len(s.Items)
	return true
}

// CommitSuggestion applies the highlighted row (the first when none is
// highlighted yet) and closes the popup. Mention and tag commits splice
// the insert text over the trigger span; command commits strip the
// trigger text and hand the command back for the caller to open its
// builder.
func (c *Composer) CommitSuggestion() (Suggestion, bool) {
	s := c.suggestions
	if s == nil || len(s.Items) == 0 {
		return Suggestion{}, false
	}
	idx := s.Index
	if idx < 0 {
		idx = 0
	}
	item := s.Items[idx]
	c.suggestions = nil

	switch item.Kind {
	case TriggerCommand:
		c.text = c.text[:s.Trigger.Start] + c.text[s.Trigger.End:]
	default:
		c.text = c.text[:s.Trigger.Start] + item.Insert + " " + c.text[s.Trigger.End:]
	}
	if item.Kind == TriggerMention && item.UserID != "" {
		c.AddMention(strings.TrimPrefix(item.Insert, "@"), item.UserID)
	}
	return item, true
}

// CloseSuggestions dismisses the popup without committing.
func (c *Composer) CloseSuggestions() {
	c.suggestions = nil
}
