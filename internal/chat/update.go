package chat

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/naviohq/navio/internal/composer"
	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/logging"
	"github.com/naviohq/navio/internal/realtime"
	"github.com/naviohq/navio/internal/stream"
	"github.com/naviohq/navio/internal/types"
	"go.uber.org/zap"
)

type changeMsg realtime.Change

// fallbackMsg carries the direct store lookup for an echo whose realtime
// confirmation never arrived. found is nil on a miss.
type fallbackMsg struct {
	tempID string
	found  *types.Message
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(textarea.Blink, m.waitForChange())
}

func (m *Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.changes
		if !ok {
			return nil
		}
		return msg
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case changeMsg:
		m.applyChange(realtime.Change(msg))
		return m, m.waitForChange()

	case fallbackMsg:
		m.applyFallback(msg)
		return m, m.waitForChange()

	case tea.KeyMsg:
		return m.updateKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// applyChange folds one realtime delivery into the timeline.
func (m *Model) applyChange(change realtime.Change) {
	if change.Kind != realtime.ChangeMessage || change.Message == nil {
		return
	}
	arrival := *change.Message

	// A durable arrival may confirm an in-flight optimistic echo; in
	// that case it replaced the temp entry in place and nothing is
	// appended.
	if m.submitter.Reconciler != nil && m.submitter.Reconciler.Observe(arrival) {
		m.refreshViewport(false)
		return
	}

	m.messages = stream.Merge(m.messages, []types.Message{arrival})
	if events, err := loadEvents(m.dbConn, m.messages); err == nil {
		m.events = events
	}
	_ = m.tracker.Observe(m.messages, m.atBottom)
	m.refreshViewport(m.atBottom)
}

// confirmEcho is the reconciler's replace-in-place callback.
func (m *Model) confirmEcho(tempID string, confirmed types.Message) {
	stream.ReplaceTemp(m.messages, tempID, confirmed)
}

// queueFallback runs on the reconciler's timer goroutine when the
// realtime confirmation misses its deadline. It queries the store
// directly and hands the result to the update loop, which owns all
// timeline mutation.
func (m *Model) queueFallback(tempID string, echo types.Message) {
	floor := core.FormatISO(core.ParseISO(echo.CreatedAt).Add(-composer.MatchWindow))
	found, err := db.FindRecentByAuthorBody(m.dbConn, echo.RoomID, echo.Author, echo.Body, floor)
	if err != nil {
		logging.Warn("echo fallback query failed", zap.String("temp", tempID), zap.Error(err))
	}
	select {
	case m.changes <- fallbackMsg{tempID: tempID, found: found}:
	default:
	}
}

// applyFallback settles an echo from the fallback lookup: a hit replaces
// it in place, a miss drops it and surfaces the failure.
func (m *Model) applyFallback(f fallbackMsg) {
	r := m.submitter.Reconciler
	if f.found != nil {
		r.Resolve(f.tempID, *f.found)
		m.refreshViewport(false)
		return
	}
	r.Abandon(f.tempID)
	m.messages, _ = stream.DropTemp(m.messages, f.tempID)
	m.status = "send failed: message was not delivered"
	m.refreshViewport(false)
}

// showEcho appends the optimistic echo so the send is visible at once.
func (m *Model) showEcho(echo types.Message) {
	m.messages = append(m.messages, echo)
	m.refreshViewport(true)
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit

	case "esc":
		if m.comp.Suggestions() != nil {
			m.comp.CloseSuggestions()
			return m, nil
		}
		if m.comp.ReplyTo() != nil || m.comp.Editing() != nil {
			m.comp.ClearTarget()
			m.status = ""
			return m, nil
		}
		return m, tea.Quit

	case "up":
		if m.comp.Suggestions() != nil {
			m.comp.MoveSuggestion(-1)
			return m, nil
		}

	case "down":
		if m.comp.Suggestions() != nil {
			m.comp.MoveSuggestion(1)
			return m, nil
		}

	case "tab", "enter":
		if m.comp.Suggestions() != nil {
			m.commitSuggestion()
			return m, nil
		}
		if msg.String() == "enter" {
			m.submit()
			return m, nil
		}

	case "pgup":
		m.viewport.HalfPageUp()
		m.atBottom = m.viewport.AtBottom()
		return m, nil

	case "pgdown":
		m.viewport.HalfPageDown()
		if m.viewport.AtBottom() {
			m.atBottom = true
			_ = m.tracker.MarkRead(m.messages)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.syncComposer()
	return m, cmd
}

// syncComposer mirrors the textarea into the composer so trigger
// detection runs against the live text and cursor.
func (m *Model) syncComposer() {
	value := normalizeNewlines(m.input.Value())
	if value == m.lastInputValue {
		return
	}
	m.lastInputValue = value
	m.comp.SetText(value, m.inputCursorPos())
}

func (m *Model) commitSuggestion() {
	item, ok := m.comp.CommitSuggestion()
	if !ok {
		return
	}
	if item.Kind == composer.TriggerCommand {
		m.comp.StageCard(cardSkeleton(item.Command.CardType, m.cfg.UserID))
		m.status = "staged " + item.Command.Name
	}
	m.input.SetValue(m.comp.Text())
	m.input.CursorEnd()
	m.lastInputValue = m.comp.Text()
}

func (m *Model) submit() {
	m.syncComposer()
	msg, err := m.submitter.Submit(context.Background(), m.room, m.comp)
	if err != nil {
		m.status = "send failed: " + err.Error()
		return
	}
	m.status = ""
	m.input.Reset()
	m.lastInputValue = ""

	if msg != nil {
		if !msg.IsTemp() {
			m.messages = stream.Merge(m.messages, []types.Message{*msg})
		}
		_ = m.tracker.MarkRead(m.messages)
		m.atBottom = true
		m.refreshViewport(true)
	}
}

// inputCursorPos converts the textarea's row/column (rune) cursor into a
// byte offset, which is what the composer's trigger detection slices with.
func (m *Model) inputCursorPos() int {
	value := m.input.Value()
	if value == "" {
		return 0
	}
	lines := strings.Split(value, "\n")
	row := m.input.Line()
	if row < 0 {
		row = 0
	}
	if row >= len(lines) {
		row = len(lines) - 1
	}
	col := m.input.LineInfo().ColumnOffset
	if col < 0 {
		col = 0
	}
	lineRunes := []rune(lines[row])
	if col > len(lineRunes) {
		col = len(lineRunes)
	}

	pos := 0
	for i := 0; i < row; i++ {
		pos += len(lines[i]) + 1
	}
	pos += len(string(lineRunes[:col]))

	if pos > len(value) {
		pos = len(value)
	}
	return pos
}

func normalizeNewlines(value string) string {
	value = strings.ReplaceAll(value, "\r\n", "\n")
	value = strings.ReplaceAll(value, "\r", "\n")
	return value
}
