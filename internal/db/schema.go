package db

import (
	"database/sql"

	"github.com/naviohq/navio/internal/core"
)

const schemaSQL = `
-- Conversation rooms
CREATE TABLE IF NOT EXISTS nv_rooms (
  guid TEXT PRIMARY KEY,               -- e.g., "rom-a1b2c3d4"
  name TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'chat',   -- 'chat' or 'shipment'
  created_at TEXT NOT NULL             -- ISO-8601 UTC
);

-- Room messages. body carries the full wire envelope.
CREATE TABLE IF NOT EXISTS nv_messages (
  guid TEXT PRIMARY KEY,               -- e.g., "msg-a1b2c3d4"
  room_guid TEXT NOT NULL,
  author TEXT NOT NULL,                -- user guid
  body TEXT NOT NULL,
  created_at TEXT NOT NULL,            -- ISO-8601 UTC; string order = time order
  FOREIGN KEY (room_guid) REFERENCES nv_rooms(guid)
);

CREATE INDEX IF NOT EXISTS idx_nv_messages_room ON nv_messages(room_guid, created_at);
CREATE INDEX IF NOT EXISTS idx_nv_messages_author ON nv_messages(author);

-- Append-only per-message events: reactions, receipts, pins, stars,
-- card action audit rows.
CREATE TABLE IF NOT EXISTS nv_events (
  guid TEXT PRIMARY KEY,               -- e.g., "evt-a1b2c3d4"
  message_guid TEXT NOT NULL,
  actor TEXT NOT NULL,                 -- user guid
  kind TEXT NOT NULL,                  -- 'emoji', 'receipt', 'pin', 'star', 'card_action'
  payload TEXT,                        -- emoji char or action name
  created_at INTEGER NOT NULL          -- unix ms
);

CREATE INDEX IF NOT EXISTS idx_nv_events_message ON nv_events(message_guid);
CREATE INDEX IF NOT EXISTS idx_nv_events_kind ON nv_events(kind);

-- Room membership, feeds autocomplete and mention fan-out
CREATE TABLE IF NOT EXISTS nv_members (
  room_guid TEXT NOT NULL,
  user_guid TEXT NOT NULL,
  username TEXT NOT NULL,              -- mention label
  display_name TEXT,
  PRIMARY KEY (room_guid, user_guid)
);

CREATE INDEX IF NOT EXISTS idx_nv_members_user ON nv_members(user_guid);

-- User profiles. tab_state is the serialized workspace document,
-- written whole (last writer wins).
CREATE TABLE IF NOT EXISTS nv_profiles (
  user_guid TEXT PRIMARY KEY,
  email TEXT,
  email_confirmed INTEGER NOT NULL DEFAULT 0,
  display_name TEXT,
  tab_state TEXT
);

-- Transport offers under negotiation
CREATE TABLE IF NOT EXISTS nv_offers (
  guid TEXT PRIMARY KEY,
  shipment_guid TEXT,
  amount REAL,
  currency TEXT,
  status TEXT NOT NULL DEFAULT 'open', -- open, accepted, declined, withdrawn, countered
  round INTEGER NOT NULL DEFAULT 1,
  updated_at INTEGER
);

-- Invoices
CREATE TABLE IF NOT EXISTS nv_invoices (
  guid TEXT PRIMARY KEY,
  amount REAL,
  currency TEXT,
  due_date TEXT,
  status TEXT NOT NULL DEFAULT 'open',
  updated_at INTEGER
);

-- Tasks
CREATE TABLE IF NOT EXISTS nv_tasks (
  guid TEXT PRIMARY KEY,
  title TEXT,
  assignee TEXT,
  due_date TEXT,
  status TEXT NOT NULL DEFAULT 'open',
  updated_at INTEGER
);

-- Approvals
CREATE TABLE IF NOT EXISTS nv_approvals (
  guid TEXT PRIMARY KEY,
  subject TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  updated_at INTEGER
);

-- Queued in-app notifications
CREATE TABLE IF NOT EXISTS nv_notifications (
  guid TEXT PRIMARY KEY,
  user_guid TEXT NOT NULL,
  kind TEXT NOT NULL,                  -- 'mention', 'task_assigned', 'approval_reminder', ...
  body TEXT,
  created_at INTEGER NOT NULL,
  seen_at INTEGER                      -- null until delivered
);

CREATE INDEX IF NOT EXISTS idx_nv_notifications_user ON nv_notifications(user_guid, seen_at);

-- Key/value configuration, including per-room read watermarks
-- under "lastseen:<room-guid>" keys
CREATE TABLE IF NOT EXISTS nv_config (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL
);
`

// DBTX represents shared methods across sql.DB and sql.Tx.
type DBTX interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// InitSchema initializes the navio schema.
func InitSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(schemaSQL); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// SchemaExists reports whether the navio schema is present.
func SchemaExists(db *sql.DB) (bool, error) {
	row := db.QueryRow(`
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='nv_messages'
	`)
	var name string
	err := row.Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return name != "", nil
}

// generateUniqueGUIDForTable draws GUIDs until one misses the table.
// Collisions are vanishingly rare but cheap to check.
func generateUniqueGUIDForTable(db DBTX, table, prefix string) (string, error) {
	for {
		guid, err := core.GenerateGUID(prefix)
		if err != nil {
			return "", err
		}
		row := db.QueryRow("SELECT 1 FROM "+table+" WHERE guid = ?", guid)
		var one int
		if err := row.Scan(&one); err == sql.ErrNoRows {
			return guid, nil
		} else if err != nil {
			return "", err
		}
	}
}
