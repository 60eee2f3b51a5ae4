package chat

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/naviohq/navio/internal/backend"
	"github.com/naviohq/navio/internal/composer"
	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/notify"
	"github.com/naviohq/navio/internal/realtime"
	"github.com/naviohq/navio/internal/stream"
	"github.com/naviohq/navio/internal/types"
)

// Options configure the room view.
type Options struct {
	DB      *sql.DB
	Config  core.Config
	Backend *backend.Backend
	Bus     *realtime.Bus
	Room    types.Room
	Last    int
}

// Run starts the room UI.
func Run(opts Options) error {
	model, err := NewModel(opts)
	if err != nil {
		return err
	}
	title := "nv"
	if opts.Room.Name != "" {
		title = "nv · " + opts.Room.Name
	}
	fmt.Printf("\033]0;%s\007", title)

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	model.Close()
	return err
}

// Model implements the room view: timeline viewport, composer input,
// suggestion popup, unread banner.
type Model struct {
	dbConn  *sql.DB
	cfg     core.Config
	room    types.Room
	members []types.Member

	viewport viewport.Model
	input    textarea.Model

	messages []types.Message
	events   map[string][]types.Event
	names    map[string]string
	colorMap map[string]lipgloss.Color

	comp      *composer.Composer
	submitter *composer.Submitter
	tracker   *stream.Tracker

	changes chan tea.Msg
	sub     *realtime.Subscription

	status   string
	width    int
	height   int
	atBottom bool

	lastInputValue string
}

// NewModel loads the room timeline and wires the send pipeline.
func NewModel(opts Options) (*Model, error) {
	if opts.Last <= 0 {
		opts.Last = 50
	}

	members, err := db.GetMembers(opts.DB, opts.Room.ID)
	if err != nil {
		return nil, err
	}

	messages, err := db.GetMessages(opts.DB, types.MessageQueryOptions{
		RoomID: opts.Room.ID,
		Limit:  opts.Last,
	})
	if err != nil {
		return nil, err
	}

	eventsByMsg, err := loadEvents(opts.DB, messages)
	if err != nil {
		return nil, err
	}

	tracker, err := stream.NewTracker(configLastSeen{opts.DB}, opts.Room.ID, opts.Config.UserID, messages)
	if err != nil {
		return nil, err
	}

	comp := composer.New()
	comp.SetSources(composer.Sources{
		Members:  members,
		Tags:     composer.DefaultTags,
		Commands: cardCommands,
	})

	store := submitStore{opts.DB}
	submitter := &composer.Submitter{
		Identity: opts.Backend.Identity,
		Objects:  opts.Backend.Objects,
		Store:    store,
		Bus:      opts.Bus,
		Notifier: notify.NewQueue(&db.Store{DB: opts.DB}, opts.Config.UserID),
	}

	model := &Model{
		dbConn:    opts.DB,
		cfg:       opts.Config,
		room:      opts.Room,
		members:   members,
		viewport:  viewport.New(0, 0),
		input:     newInputModel(),
		messages:  messages,
		events:    eventsByMsg,
		names:     nameIndex(members),
		colorMap:  buildColorMap(members),
		comp:      comp,
		submitter: submitter,
		tracker:   tracker,
		changes:   make(chan tea.Msg, 64),
		atBottom:  true,
	}
	model.submitter.Reconciler = composer.NewReconciler(model.confirmEcho, model.queueFallback)
	model.submitter.OnEcho = model.showEcho

	model.sub = opts.Bus.Subscribe(realtime.ChangeMessage, opts.Room.ID, func(change realtime.Change) {
		select {
		case model.changes <- changeMsg(change):
		default:
		}
	})
	return model, nil
}

// Close releases the room subscription and any in-flight echoes.
func (m *Model) Close() {
	if m.sub != nil {
		m.sub.Unsubscribe()
	}
}

func newInputModel() textarea.Model {
	input := textarea.New()
	input.Placeholder = "Message"
	input.Prompt = "> "
	input.CharLimit = 4000
	input.SetHeight(1)
	input.ShowLineNumbers = false
	input.Focus()
	return input
}

func nameIndex(members []types.Member) map[string]string {
	names := make(map[string]string, len(members))
	for _, member := range members {
		name := member.DisplayName
		if name == "" {
			name = member.Username
		}
		names[member.UserID] = name
	}
	return names
}

func loadEvents(dbConn *sql.DB, messages []types.Message) (map[string][]types.Event, error) {
	ids := make([]string, 0, len(messages))
	for _, msg := range messages {
		ids = append(ids, msg.ID)
	}
	return db.GetEventsForMessages(dbConn, ids)
}

// configLastSeen adapts the nv_config watermark rows to the tracker.
type configLastSeen struct {
	db *sql.DB
}

func (s configLastSeen) GetLastSeen(roomID string) (string, error) {
	return db.GetLastSeen(s.db, roomID)
}

func (s configLastSeen) SetLastSeen(roomID, ts string) error {
	return db.SetLastSeen(s.db, roomID, ts)
}

// submitStore adapts the db free functions to the submitter's surface.
type submitStore struct {
	db *sql.DB
}

func (s submitStore) CreateMessage(m types.Message) (types.Message, error) {
	return db.CreateMessage(s.db, m)
}

func (s submitStore) UpdateMessageBody(id, body string) (bool, error) {
	return db.UpdateMessageBody(s.db, id, body)
}

func (s submitStore) AppendEvent(ev types.Event) (types.Event, error) {
	return db.AppendEvent(s.db, ev)
}

func (s submitStore) GetMembers(roomID string) ([]types.Member, error) {
	return db.GetMembers(s.db, roomID)
}
