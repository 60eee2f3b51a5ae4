package command

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/realtime"
	"github.com/naviohq/navio/internal/types"
)

// dbSubmitStore adapts the db free functions to the submitter surface.
type dbSubmitStore struct {
	db *sql.DB
}

func (s dbSubmitStore) CreateMessage(m types.Message) (types.Message, error) {
	return db.CreateMessage(s.db, m)
}

func (s dbSubmitStore) UpdateMessageBody(id, body string) (bool, error) {
	return db.UpdateMessageBody(s.db, id, body)
}

func (s dbSubmitStore) AppendEvent(ev types.Event) (types.Event, error) {
	return db.AppendEvent(s.db, ev)
}

func (s dbSubmitStore) GetMembers(roomID string) ([]types.Member, error) {
	return db.GetMembers(s.db, roomID)
}

// publishLatest republishes the newest rows of a room onto the bus
// after an external write to the store. Dedup on the receiving side
// makes this idempotent.
func publishLatest(ctx *CommandContext, roomID string) {
	messages, err := db.GetMessages(ctx.DB, types.MessageQueryOptions{
		RoomID:  roomID,
		Limit:   20,
		Descend: true,
	})
	if err != nil {
		return
	}
	for i := len(messages) - 1; i >= 0; i-- {
		msg := messages[i]
		ctx.Bus.Publish(realtime.Change{Kind: realtime.ChangeMessage, Topic: roomID, Message: &msg})
	}
}

func formatRelative(ms int64) string {
	secondsAgo := time.Now().UnixMilli()/1000 - ms/1000
	if secondsAgo < 0 {
		return "just now"
	}
	if secondsAgo < 60 {
		return fmt.Sprintf("%ds ago", secondsAgo)
	}
	minutesAgo := secondsAgo / 60
	if minutesAgo < 60 {
		return fmt.Sprintf("%dm ago", minutesAgo)
	}
	hoursAgo := minutesAgo / 60
	if hoursAgo < 24 {
		return fmt.Sprintf("%dh ago", hoursAgo)
	}
	return fmt.Sprintf("%dd ago", hoursAgo/24)
}
