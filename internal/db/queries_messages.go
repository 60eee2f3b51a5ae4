package db

import (
	"database/sql"
	"strings"

	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/types"
)

const messageColumns = `guid, room_guid, author, body, created_at`

// CreateMessage inserts a new message. A zero CreatedAt gets the current
// time; a zero ID gets a fresh guid.
func CreateMessage(db *sql.DB, message types.Message) (types.Message, error) {
	if message.CreatedAt == "" {
		message.CreatedAt = core.NowISO()
	}
	if message.ID == "" {
		guid, err := generateUniqueGUIDForTable(db, "nv_messages", "msg")
		if err != nil {
			return types.Message{}, err
		}
		message.ID = guid
	}

	_, err := db.Exec(`
		INSERT INTO nv_messages (guid, room_guid, author, body, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, message.ID, message.RoomID, message.Author, message.Body, message.CreatedAt)
	if err != nil {
		return types.Message{}, err
	}
	return message, nil
}

// GetMessage returns one message, or nil when absent.
func GetMessage(db *sql.DB, id string) (*types.Message, error) {
	row := db.QueryRow("SELECT "+messageColumns+" FROM nv_messages WHERE guid = ?", id)
	var m types.Message
	if err := row.Scan(&m.ID, &m.RoomID, &m.Author, &m.Body, &m.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}

// GetMessages returns messages matching the options, in chronological
// order unless Descend is set.
func GetMessages(db *sql.DB, options types.MessageQueryOptions) ([]types.Message, error) {
	var where []string
	var args []any

	if options.RoomID != "" {
		where = append(where, "room_guid = ?")
		args = append(args, options.RoomID)
	}
	if options.Author != "" {
		where = append(where, "author = ?")
		args = append(args, options.Author)
	}
	if options.After != "" {
		where = append(where, "created_at > ?")
		args = append(args, options.After)
	}

	query := "SELECT " + messageColumns + " FROM nv_messages"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at"
	if options.Descend {
		query += " DESC"
	}
	query += ", guid"
	if options.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, options.Limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]types.Message, error) {
	var messages []types.Message
	for rows.Next() {
		var m types.Message
		if err := rows.Scan(&m.ID, &m.RoomID, &m.Author, &m.Body, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// UpdateMessageBody rewrites a message body in place, for edits.
// Returns false when the message does not exist.
func UpdateMessageBody(db *sql.DB, id, body string) (bool, error) {
	result, err := db.Exec("UPDATE nv_messages SET body = ? WHERE guid = ?", body, id)
	if err != nil {
		return false, err
	}
	count, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestMessageTime returns the newest created_at in a room, empty when
// the room has no messages. Used to seed read watermarks.
func LatestMessageTime(db *sql.DB, roomID string) (string, error) {
	row := db.QueryRow(`
		SELECT created_at FROM nv_messages
		WHERE room_guid = ?
		ORDER BY created_at DESC LIMIT 1
	`, roomID)
	var ts string
	if err := row.Scan(&ts); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return ts, nil
}

// CountMessagesAfter counts room messages strictly newer than the
// watermark, excluding the reader's own.
func CountMessagesAfter(db *sql.DB, roomID, after, excludeAuthor string) (int, error) {
	row := db.QueryRow(`
		SELECT COUNT(*) FROM nv_messages
		WHERE room_guid = ? AND created_at > ? AND author != ?
	`, roomID, after, excludeAuthor)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// FindRecentByAuthorBody returns the newest server message by the author
// with the exact body at or after the floor timestamp. Used as the
// fallback lookup when an optimistic echo misses its realtime
// confirmation.
func FindRecentByAuthorBody(db *sql.DB, roomID, author, body, floor string) (*types.Message, error) {
	row := db.QueryRow(`
		SELECT `+messageColumns+` FROM nv_messages
		WHERE room_guid = ? AND author = ? AND body = ? AND created_at >= ?
		ORDER BY created_at DESC LIMIT 1
	`, roomID, author, body, floor)
	var m types.Message
	if err := row.Scan(&m.ID, &m.RoomID, &m.Author, &m.Body, &m.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &m, nil
}
