package db

import (
	"database/sql"

	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/types"
)

// CreateRoom inserts a room.
func CreateRoom(db *sql.DB, room types.Room) (types.Room, error) {
	if room.CreatedAt == "" {
		room.CreatedAt = core.NowISO()
	}
	if room.ID == "" {
		guid, err := generateUniqueGUIDForTable(db, "nv_rooms", "rom")
		if err != nil {
			return types.Room{}, err
		}
		room.ID = guid
	}
	if room.Kind == "" {
		room.Kind = types.RoomKindChat
	}

	_, err := db.Exec(`
		INSERT INTO nv_rooms (guid, name, kind, created_at)
		VALUES (?, ?, ?, ?)
	`, room.ID, room.Name, room.Kind, room.CreatedAt)
	if err != nil {
		return types.Room{}, err
	}
	return room, nil
}

// GetRoom returns one room, or nil when absent.
func GetRoom(db *sql.DB, id string) (*types.Room, error) {
	row := db.QueryRow("SELECT guid, name, kind, created_at FROM nv_rooms WHERE guid = ?", id)
	var r types.Room
	if err := row.Scan(&r.ID, &r.Name, &r.Kind, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// ListRooms returns rooms a user belongs to, oldest first.
func ListRooms(db *sql.DB, userID string) ([]types.Room, error) {
	rows, err := db.Query(`
		SELECT r.guid, r.name, r.kind, r.created_at
		FROM nv_rooms r
		JOIN nv_members m ON m.room_guid = r.guid
		WHERE m.user_guid = ?
		ORDER BY r.created_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms []types.Room
	for rows.Next() {
		var r types.Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Kind, &r.CreatedAt); err != nil {
			return nil, err
		}
		rooms = append(rooms, r)
	}
	return rooms, rows.Err()
}

// FindDirectRoom returns the chat room whose membership is exactly the
// two given users, or nil when none exists yet.
func FindDirectRoom(db *sql.DB, userA, userB string) (*types.Room, error) {
	row := db.QueryRow(`
		SELECT r.guid, r.name, r.kind, r.created_at
		FROM nv_rooms r
		WHERE r.kind = 'chat'
		  AND (SELECT COUNT(*) FROM nv_members WHERE room_guid = r.guid) = 2
		  AND EXISTS (SELECT 1 FROM nv_members WHERE room_guid = r.guid AND user_guid = ?)
		  AND EXISTS (SELECT 1 FROM nv_members WHERE room_guid = r.guid AND user_guid = ?)
		LIMIT 1
	`, userA, userB)
	var r types.Room
	if err := row.Scan(&r.ID, &r.Name, &r.Kind, &r.CreatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &r, nil
}

// AddMember upserts a room membership row.
func AddMember(db *sql.DB, member types.Member) error {
	_, err := db.Exec(`
		INSERT INTO nv_members (room_guid, user_guid, username, display_name)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(room_guid, user_guid) DO UPDATE SET
		  username = excluded.username,
		  display_name = excluded.display_name
	`, member.RoomID, member.UserID, member.Username, member.DisplayName)
	return err
}

// GetMembers returns a room's members ordered by username.
func GetMembers(db *sql.DB, roomID string) ([]types.Member, error) {
	rows, err := db.Query(`
		SELECT room_guid, user_guid, username, display_name
		FROM nv_members
		WHERE room_guid = ?
		ORDER BY username
	`, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []types.Member
	for rows.Next() {
		var m types.Member
		var display sql.NullString
		if err := rows.Scan(&m.RoomID, &m.UserID, &m.Username, &display); err != nil {
			return nil, err
		}
		m.DisplayName = display.String
		members = append(members, m)
	}
	return members, rows.Err()
}
