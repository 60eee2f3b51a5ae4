package db

import (
	"database/sql"
	"strings"
	"time"

	"github.com/naviohq/navio/internal/types"
)

// AppendEvent inserts an event row. Events are append-only; there is no
// update or delete path.
func AppendEvent(db *sql.DB, event types.Event) (types.Event, error) {
	if event.CreatedAt == 0 {
		event.CreatedAt = time.Now().UnixMilli()
	}
	if event.ID == "" {
		guid, err := generateUniqueGUIDForTable(db, "nv_events", "evt")
		if err != nil {
			return types.Event{}, err
		}
		event.ID = guid
	}

	_, err := db.Exec(`
		INSERT INTO nv_events (guid, message_guid, actor, kind, payload, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, event.ID, event.MessageID, event.Actor, event.Kind, event.Payload, event.CreatedAt)
	if err != nil {
		return types.Event{}, err
	}
	return event, nil
}

// GetEventsForMessage returns a message's events in arrival order.
func GetEventsForMessage(db *sql.DB, messageID string) ([]types.Event, error) {
	rows, err := db.Query(`
		SELECT guid, message_guid, actor, kind, payload, created_at
		FROM nv_events
		WHERE message_guid = ?
		ORDER BY created_at, guid
	`, messageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEvents(rows)
}

// GetEventsForMessages batch-loads events for many messages at once.
func GetEventsForMessages(db *sql.DB, messageIDs []string) (map[string][]types.Event, error) {
	result := make(map[string][]types.Event)
	if len(messageIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(messageIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(messageIDs))
	for i, id := range messageIDs {
		args[i] = id
	}

	rows, err := db.Query(`
		SELECT guid, message_guid, actor, kind, payload, created_at
		FROM nv_events
		WHERE message_guid IN (`+placeholders+`)
		ORDER BY created_at, guid
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, err
	}
	for _, ev := range events {
		result[ev.MessageID] = append(result[ev.MessageID], ev)
	}
	return result, nil
}

func scanEvents(rows *sql.Rows) ([]types.Event, error) {
	var events []types.Event
	for rows.Next() {
		var ev types.Event
		var payload sql.NullString
		if err := rows.Scan(&ev.ID, &ev.MessageID, &ev.Actor, &ev.Kind, &payload, &ev.CreatedAt); err != nil {
			return nil, err
		}
		ev.Payload = payload.String
		events = append(events, ev)
	}
	return events, rows.Err()
}
