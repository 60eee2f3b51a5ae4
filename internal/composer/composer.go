// Package composer manages everything staged in the message input
// before a send: draft text, attachments, cards, reply/edit targets,
// the mention map and the autocomplete popup.
package composer

import (
	"github.com/naviohq/navio/internal/codec"
	"github.com/naviohq/navio/internal/types"
)

// StagedFile is a file queued for upload. Nothing is uploaded before
// submit.
type StagedFile struct {
	Name string
	Data []byte
}

// Composer holds the draft state for one room's input box.
type Composer struct {
	text     string
	files    []StagedFile
	cards    []types.Card
	mentions map[string]string
	replyTo  *types.Message
	editing  *types.Message

	sources     Sources
	suggestions *Suggestions
}

// SetSources installs the autocomplete sources for the current room.
func (c *Composer) SetSources(s Sources) {
	c.sources = s
}

// New returns an empty composer.
func New() *Composer {
	return &Composer{mentions: make(map[string]string)}
}

// Text returns the current draft text.
func (c *Composer) Text() string { return c.text }

// SetText replaces the draft and re-runs trigger detection at the given
// cursor byte offset.
func (c *Composer) SetText(text string, cursor int) {
	c.text = text
	c.refreshSuggestions(cursor)
}

// Files returns the staged file list.
func (c *Composer) Files() []StagedFile { return c.files }

// AddFile appends a file to the staged list.
func (c *Composer) AddFile(f StagedFile) {
	c.files = append(c.files, f)
}

// RemoveFile drops the staged file at index i, ignoring out-of-range.
func (c *Composer) RemoveFile(i int) {
	if i < 0 || i >= len(c.files) {
		return
	}
	c.files = append(c.files[:i], c.files[i+1:]...)
}

// Cards returns the staged card list.
func (c *Composer) Cards() []types.Card { return c.cards }

// StageCard appends a card chip. Cards are never inlined into the text.
func (c *Composer) StageCard(card types.Card) {
	c.cards = append(c.cards, card)
}

// RemoveCard drops the staged card at index i, ignoring out-of-range.
func (c *Composer) RemoveCard(i int) {
	if i < 0 || i >= len(c.cards) {
		return
	}
	c.cards = append(c.cards[:i], c.cards[i+1:]...)
}

// Mentions returns the staged label-to-id map.
func (c *Composer) Mentions() map[string]string { return c.mentions }

// AddMention records a committed mention.
func (c *Composer) AddMention(label, userID string) {
	c.mentions[label] = userID
}

// ReplyTo returns the reply target, nil when not replying.
func (c *Composer) ReplyTo() *types.Message { return c.replyTo }

// Editing returns the edit target, nil when not editing.
func (c *Composer) Editing() *types.Message { return c.editing }

// SetReply enters reply mode. Reply and edit are mutually exclusive.
func (c *Composer) SetReply(target *types.Message) {
	c.replyTo = target
	if target != nil {
		c.editing = nil
	}
}

// SetEdit enters edit mode and loads the target's visible text into the
// draft. Reply mode is cleared.
func (c *Composer) SetEdit(target *types.Message) {
	c.editing = target
	if target == nil {
		return
	}
	c.replyTo = nil
	env := codec.Decode(target.Body)
	c.text = env.VisibleText
	c.cards = env.Cards
	c.mentions = env.Mentions
}

// ClearTarget leaves reply and edit mode together.
func (c *Composer) ClearTarget() {
	c.replyTo = nil
	c.editing = nil
}

// CanSubmit reports whether there is anything to send.
func (c *Composer) CanSubmit() bool {
	return c.text != "" || len(c.files) > 0 || len(c.cards) > 0
}

// Reset clears every piece of staged state.
func (c *Composer) Reset() {
	c.text = ""
	c.files = nil
	c.cards = nil
	c.mentions = make(map[string]string)
	c.replyTo = nil
	c.editing = nil
	c.suggestions = nil
}
