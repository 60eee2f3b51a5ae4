package db

import (
	"database/sql"

	"github.com/naviohq/navio/internal/types"
)

// UpsertProfile creates or replaces a profile row, preserving an
// existing tab_state when the incoming profile carries none.
func UpsertProfile(db *sql.DB, profile types.Profile) error {
	confirmed := 0
	if profile.EmailConfirmed {
		confirmed = 1
	}
	_, err := db.Exec(`
		INSERT INTO nv_profiles (user_guid, email, email_confirmed, display_name, tab_state)
		VALUES (?, ?, ?, ?, NULLIF(?, ''))
		ON CONFLICT(user_guid) DO UPDATE SET
		  email = excluded.email,
		  email_confirmed = excluded.email_confirmed,
		  display_name = excluded.display_name,
		  tab_state = COALESCE(excluded.tab_state, nv_profiles.tab_state)
	`, profile.UserID, profile.Email, confirmed, profile.DisplayName, profile.TabState)
	return err
}

// GetProfile returns one profile, or nil when absent.
func GetProfile(db *sql.DB, userID string) (*types.Profile, error) {
	row := db.QueryRow(`
		SELECT user_guid, email, email_confirmed, display_name, tab_state
		FROM nv_profiles WHERE user_guid = ?
	`, userID)
	var p types.Profile
	var confirmed int
	var email, display, tabState sql.NullString
	if err := row.Scan(&p.UserID, &email, &confirmed, &display, &tabState); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	p.Email = email.String
	p.EmailConfirmed = confirmed != 0
	p.DisplayName = display.String
	p.TabState = tabState.String
	return &p, nil
}

// SetTabState overwrites the serialized workspace document wholesale.
// Last writer wins.
func SetTabState(db *sql.DB, userID, tabState string) error {
	_, err := db.Exec(`
		INSERT INTO nv_profiles (user_guid, tab_state)
		VALUES (?, ?)
		ON CONFLICT(user_guid) DO UPDATE SET tab_state = excluded.tab_state
	`, userID, tabState)
	return err
}

// GetTabState returns the serialized workspace document, empty when unset.
func GetTabState(db *sql.DB, userID string) (string, error) {
	row := db.QueryRow("SELECT tab_state FROM nv_profiles WHERE user_guid = ?", userID)
	var tabState sql.NullString
	if err := row.Scan(&tabState); err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", err
	}
	return tabState.String, nil
}
