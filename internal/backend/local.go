package backend

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/naviohq/navio/internal/core"
	"github.com/naviohq/navio/internal/db"
	"github.com/naviohq/navio/internal/types"
)

// LocalIdentity resolves the current user from the client config,
// backfilling profile fields from the store.
type LocalIdentity struct {
	Config *core.Config
	DB     *sql.DB
}

// CurrentUser returns nil without error when no user is configured;
// callers treat that as signed out.
func (l *LocalIdentity) CurrentUser(ctx context.Context) (*types.User, error) {
	if l.Config == nil || l.Config.UserID == "" {
		return nil, nil
	}
	user := &types.User{ID: l.Config.UserID, Email: l.Config.Email}
	if l.DB != nil {
		profile, err := db.GetProfile(l.DB, l.Config.UserID)
		if err != nil {
			return nil, err
		}
		if profile != nil {
			user.Email = profile.Email
			user.EmailConfirmed = profile.EmailConfirmed
		}
	}
	return user, nil
}

// FSObjects stores uploads under <root>/objects/<guid>/<name> and hands
// back file:// URLs.
type FSObjects struct {
	Root string
}

// Upload writes the blob and returns its URL. Each upload gets its own
// directory so identical names never collide.
func (f *FSObjects) Upload(_ context.Context, name string, data []byte) (string, error) {
	if name == "" {
		return "", fmt.Errorf("upload: empty name")
	}
	guid, err := core.GenerateGUID("obj")
	if err != nil {
		return "", err
	}
	dir := filepath.Join(f.Root, "objects", guid)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", err
	}
	return "file://" + path, nil
}

// LocalProcedures runs the server procedures directly against the store.
type LocalProcedures struct {
	DB *sql.DB
}

// GetOrCreateDirectRoom is idempotent: repeated calls for the same pair
// return the same room.
func (p *LocalProcedures) GetOrCreateDirectRoom(ctx context.Context, userA, userB types.Member) (*types.Room, error) {
	if userA.UserID == "" || userB.UserID == "" || userA.UserID == userB.UserID {
		return nil, fmt.Errorf("direct room needs two distinct users")
	}

	existing, err := db.FindDirectRoom(p.DB, userA.UserID, userB.UserID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	room, err := db.CreateRoom(p.DB, types.Room{
		Name: userA.Username + ", " + userB.Username,
		Kind: types.RoomKindChat,
	})
	if err != nil {
		return nil, err
	}
	for _, member := range []types.Member{userA, userB} {
		member.RoomID = room.ID
		if err := db.AddMember(p.DB, member); err != nil {
			return nil, err
		}
	}
	return &room, nil
}

// CreateGroupRoom creates a named room of the given kind.
func (p *LocalProcedures) CreateGroupRoom(ctx context.Context, name string, kind types.RoomKind, members []types.Member) (*types.Room, error) {
	if name == "" {
		return nil, fmt.Errorf("group room needs a name")
	}
	if kind == "" {
		kind = types.RoomKindChat
	}

	room, err := db.CreateRoom(p.DB, types.Room{Name: name, Kind: kind})
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		member.RoomID = room.ID
		if err := db.AddMember(p.DB, member); err != nil {
			return nil, err
		}
	}
	return &room, nil
}

// NewLocal assembles the fully local backend.
func NewLocal(cfg *core.Config, conn *sql.DB, stateDir string) *Backend {
	return &Backend{
		Identity:   &LocalIdentity{Config: cfg, DB: conn},
		Objects:    &FSObjects{Root: stateDir},
		Procedures: &LocalProcedures{DB: conn},
	}
}
