package db

import (
	"database/sql"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = conn.Close()
	})
	return conn
}

func seedRoom(t *testing.T, conn *sql.DB, name string) string {
	t.Helper()
	room, err := CreateRoom(conn, roomOf(name))
	if err != nil {
		t.Fatalf("create room: %v", err)
	}
	return room.ID
}
