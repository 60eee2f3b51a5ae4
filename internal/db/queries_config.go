package db

import "database/sql"

// GetConfig returns a config value, empty when unset.
func GetConfig(db *sql.DB, key string) (string, error) {
	row := db.QueryRow("SELECT value FROM nv_config WHERE key = ?", key)
	var value string
	if err := row.Scan(&value); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetConfig sets a config value.
func SetConfig(db *sql.DB, key, value string) error {
	_, err := db.Exec("INSERT OR REPLACE INTO nv_config (key, value) VALUES (?, ?)", key, value)
	return err
}

const lastSeenPrefix = "lastseen:"

// GetLastSeen returns the reader's watermark timestamp for a room,
// empty when the room has never been opened.
func GetLastSeen(db *sql.DB, roomID string) (string, error) {
	return GetConfig(db, lastSeenPrefix+roomID)
}

// SetLastSeen advances the reader's watermark. Moving backwards is
// allowed here; callers guard monotonicity.
func SetLastSeen(db *sql.DB, roomID, ts string) error {
	return SetConfig(db, lastSeenPrefix+roomID, ts)
}
