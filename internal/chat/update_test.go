package chat

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/naviohq/navio/internal/codec"
	"github.com/naviohq/navio/internal/composer"
	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/stream"
	"github.com/naviohq/navio/internal/types"
)

func newEchoTestModel(t *testing.T) (*Model, types.Room) {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "navio.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	room, err := db.CreateRoom(conn, types.Room{Name: "lane-1", Kind: types.RoomKindShipment})
	if err != nil {
		t.Fatal(err)
	}

	m := &Model{
		dbConn:   conn,
		cfg:      core.Config{UserID: "usr-1"},
		room:     room,
		viewport: viewport.New(0, 0),
		input:    newInputModel(),
		events:   map[string][]types.Event{},
		names:    map[string]string{},
		colorMap: map[string]lipgloss.Color{},
		comp:     composer.New(),
		changes:  make(chan tea.Msg, 4),
	}
	tracker, err := stream.NewTracker(configLastSeen{conn}, room.ID, "usr-1", nil)
	if err != nil {
		t.Fatal(err)
	}
	m.tracker = tracker
	m.submitter = &composer.Submitter{}
	m.submitter.Reconciler = composer.NewReconciler(m.confirmEcho, m.queueFallback)
	return m, room
}

func TestFallbackConfirmsEchoFromStore(t *testing.T) {
	m, room := newEchoTestModel(t)

	body := codec.Encode(types.Envelope{VisibleText: "rate confirmed"})
	echo := composer.NewTempMessage(room.ID, "usr-1", body, time.Now())
	m.messages = []types.Message{echo}
	m.submitter.Reconciler.Track(echo)

	durable, err := db.CreateMessage(m.dbConn, types.Message{RoomID: room.ID, Author: "usr-1", Body: body})
	if err != nil {
		t.Fatal(err)
	}

	// The reconciler's timer runs this when no realtime confirmation came.
	m.queueFallback(echo.ID, echo)

	fb, ok := (<-m.changes).(fallbackMsg)
	if !ok || fb.tempID != echo.ID {
		t.Fatalf("queued fallback: %#v", fb)
	}
	if fb.found == nil || fb.found.ID != durable.ID {
		t.Fatalf("store lookup: %#v", fb.found)
	}

	m.applyFallback(fb)
	if len(m.messages) != 1 || m.messages[0].ID != durable.ID || m.messages[0].IsTemp() {
		t.Fatalf("echo not replaced in place: %#v", m.messages)
	}
	if m.submitter.Reconciler.PendingCount() != 0 {
		t.Fatal("echo still pending after fallback confirmation")
	}
}

func TestFallbackMissDropsEcho(t *testing.T) {
	m, room := newEchoTestModel(t)

	echo := composer.NewTempMessage(room.ID, "usr-1", codec.Encode(types.Envelope{VisibleText: "lost"}), time.Now())
	m.messages = []types.Message{echo}
	m.submitter.Reconciler.Track(echo)

	m.queueFallback(echo.ID, echo)

	fb, ok := (<-m.changes).(fallbackMsg)
	if !ok || fb.found != nil {
		t.Fatalf("miss must carry no message: %#v", fb)
	}

	// Route through Update to cover the message dispatch.
	m.Update(fb)
	if len(m.messages) != 0 {
		t.Fatalf("failed echo not dropped: %#v", m.messages)
	}
	if m.submitter.Reconciler.PendingCount() != 0 {
		t.Fatal("failed echo still tracked")
	}
	if !strings.HasPrefix(m.status, "send failed") {
		t.Fatalf("status: %q", m.status)
	}
}

func TestInputCursorPosIsByteOffset(t *testing.T) {
	m := &Model{input: newInputModel(), comp: composer.New()}
	m.input.SetWidth(40)
	m.input.SetValue("héllo @al")
	m.input.CursorEnd()

	if got := m.inputCursorPos(); got != len("héllo @al") {
		t.Fatalf("cursor pos: %d, want %d", got, len("héllo @al"))
	}

	// Trigger detection slices with this offset, so a multibyte rune
	// before the trigger must not truncate the query.
	m.comp.SetSources(composer.Sources{Members: []types.Member{{UserID: "usr-1", Username: "alice"}}})
	m.syncComposer()
	s := m.comp.Suggestions()
	if s == nil || s.Trigger.Query != "al" {
		t.Fatalf("suggestions: %#v", s)
	}
}
